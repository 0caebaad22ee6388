// Package icon draws the application icon programmatically.
package icon

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
)

var (
	onlineColor  = color.RGBA{R: 0x42, G: 0x85, B: 0xf4, A: 0xff}
	offlineColor = color.RGBA{R: 0x80, G: 0x86, B: 0x8b, A: 0xff}
	starColor    = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Draw returns a size×size icon: a filled circle with a white four-point
// star. The circle is grey when offline is set.
func Draw(size int, offline bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	bg := onlineColor
	if offline {
		bg = offlineColor
	}
	c := float64(size) / 2
	r := c - 0.5
	star := r * 0.72
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - c
			dy := float64(y) + 0.5 - c
			if dx*dx+dy*dy > r*r {
				continue
			}
			if inStar(dx/star, dy/star) {
				img.SetRGBA(x, y, starColor)
			} else {
				img.SetRGBA(x, y, bg)
			}
		}
	}
	return img
}

// inStar reports whether the normalized point lies inside a concave
// four-point star (an astroid-like curve).
func inStar(u, v float64) bool {
	return math.Sqrt(math.Abs(u))+math.Sqrt(math.Abs(v)) <= 1
}

// PNG draws the icon and encodes it as PNG.
func PNG(size int, offline bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, Draw(size, offline)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
