// Package instance keeps a single shell running per user. The first
// instance listens on a unix socket in the data directory; later launches
// connect, ask it to show its window, and exit.
package instance

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Mavwarf/webshell/internal/paths"
)

// CmdShow asks the running instance to show its window.
const CmdShow = "show"

// ErrRunning is returned by Acquire when another instance answered.
var ErrRunning = errors.New("another instance is running")

const dialTimeout = time.Second

// Lock is held by the primary instance.
type Lock struct {
	ln   net.Listener
	path string
	once sync.Once
	wg   sync.WaitGroup
	log  *slog.Logger
}

// Acquire becomes the primary instance for socket path. When another
// instance is listening it is sent cmd and ErrRunning is returned.
func Acquire(path, cmd string) (*Lock, error) {
	if err := send(path, cmd); err == nil {
		return nil, ErrRunning
	}
	// Nobody answered: any socket file left behind is stale.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), paths.DirPerm); err != nil {
		return nil, err
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}
	return &Lock{ln: ln, path: path, log: slog.Default().With("component", "instance")}, nil
}

// Serve calls handle for every command received until Close. It returns
// immediately; commands are delivered from a background goroutine.
func (l *Lock) Serve(handle func(cmd string)) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for {
			conn, err := l.ln.Accept()
			if err != nil {
				if !errors.Is(err, net.ErrClosed) {
					l.log.Warn("accept failed", "err", err)
				}
				return
			}
			cmd, err := readCommand(conn)
			conn.Close()
			if err != nil {
				l.log.Warn("bad command", "err", err)
				continue
			}
			l.log.Debug("command received", "cmd", cmd)
			handle(cmd)
		}
	}()
}

// Close stops listening and removes the socket file.
func (l *Lock) Close() error {
	var err error
	l.once.Do(func() {
		err = l.ln.Close()
		l.wg.Wait()
		_ = os.Remove(l.path)
	})
	return err
}

func send(path, cmd string) error {
	conn, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		return err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(dialTimeout))
	_, err = fmt.Fprintln(conn, cmd)
	return err
}

func readCommand(conn net.Conn) (string, error) {
	_ = conn.SetReadDeadline(time.Now().Add(dialTimeout))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", err
	}
	cmd := strings.TrimSpace(line)
	if cmd == "" {
		return "", errors.New("empty command")
	}
	return cmd, nil
}
