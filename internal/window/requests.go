package window

import "sync"

// maxTracked bounds the request table; document requests that never
// finish are dropped oldest first.
const maxTracked = 256

type trackedRequest struct {
	url       string
	mainFrame bool
}

// requestTable remembers in-flight document requests so a loading
// failure, which only carries a request id, can be attributed to a URL
// and frame.
type requestTable struct {
	mu    sync.Mutex
	byID  map[string]trackedRequest
	order []string
}

func newRequestTable() *requestTable {
	return &requestTable{byID: make(map[string]trackedRequest)}
}

func (t *requestTable) add(id, url string, mainFrame bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byID[id]; !ok {
		t.order = append(t.order, id)
	}
	// Redirects reuse the request id; the latest URL wins.
	t.byID[id] = trackedRequest{url: url, mainFrame: mainFrame}
	for len(t.order) > maxTracked {
		delete(t.byID, t.order[0])
		t.order = t.order[1:]
	}
}

func (t *requestTable) take(id string) (trackedRequest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.byID[id]
	if !ok {
		return trackedRequest{}, false
	}
	delete(t.byID, id)
	for i, o := range t.order {
		if o == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return r, true
}

func (t *requestTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byID)
}
