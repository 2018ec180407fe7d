package transport

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// filePair exchanges messages through two files derived from a base path:
// "<base>.cs" carries client-to-server messages, "<base>.sc" the reverse.
// A send writes a temp file and renames it into place, so the peer never
// observes a partially written message; file presence is the turn signal.
// Receive prefers filesystem notifications and falls back to polling.
type filePair struct {
	sendPath string
	recvPath string
	poll     time.Duration
	max      uint64

	watcher *fsnotify.Watcher

	done      chan struct{}
	closeOnce sync.Once
}

func openFilePair(role Role, base string, cfg Config) (Transport, error) {
	dir := filepath.Dir(base)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: directory %s", ErrUnavailable, dir)
	}

	clientToServer := base + ".cs"
	serverToClient := base + ".sc"

	fp := &filePair{
		poll: cfg.PollInterval,
		max:  cfg.MaxMessageBytes,
		done: make(chan struct{}),
	}
	if fp.poll <= 0 {
		fp.poll = DefaultConfig().PollInterval
	}
	switch role {
	case RoleClient:
		fp.sendPath = clientToServer
		fp.recvPath = serverToClient
	case RoleServer:
		fp.sendPath = serverToClient
		fp.recvPath = clientToServer
	default:
		return nil, fmt.Errorf("%w: role %v", ErrUnavailable, role)
	}

	// Notification is an optimization over the poll ticker, never a
	// requirement; some filesystems cannot be watched.
	if w, err := fsnotify.NewWatcher(); err == nil {
		if err := w.Add(dir); err == nil {
			fp.watcher = w
		} else {
			w.Close()
		}
	}

	return fp, nil
}

func (fp *filePair) Send(payload []byte) error {
	select {
	case <-fp.done:
		return ErrClosed
	default:
	}
	if uint64(len(payload)) > fp.max {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(payload))
	}
	tmp := fp.sendPath + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrUnavailable, tmp, err)
	}
	if err := os.Rename(tmp, fp.sendPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: publish %s: %v", ErrUnavailable, fp.sendPath, err)
	}
	return nil
}

func (fp *filePair) Recv() ([]byte, error) {
	ticker := time.NewTicker(fp.poll)
	defer ticker.Stop()

	var events chan fsnotify.Event
	if fp.watcher != nil {
		events = fp.watcher.Events
	}

	for {
		select {
		case <-fp.done:
			return nil, ErrClosed
		default:
		}

		payload, ok, err := fp.consume()
		if err != nil {
			return nil, err
		}
		if ok {
			return payload, nil
		}

		select {
		case <-fp.done:
			return nil, ErrClosed
		case <-ticker.C:
		case ev := <-events:
			if ev.Name != fp.recvPath {
				continue
			}
		}
	}
}

// consume reads and removes the inbound file if it has been published.
func (fp *filePair) consume() ([]byte, bool, error) {
	payload, err := os.ReadFile(fp.recvPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: read %s: %v", ErrPeerClosed, fp.recvPath, err)
	}
	if err := os.Remove(fp.recvPath); err != nil {
		return nil, false, fmt.Errorf("%w: consume %s: %v", ErrPeerClosed, fp.recvPath, err)
	}
	if uint64(len(payload)) > fp.max {
		return nil, false, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(payload))
	}
	return payload, true, nil
}

func (fp *filePair) Close() error {
	fp.closeOnce.Do(func() {
		close(fp.done)
		if fp.watcher != nil {
			fp.watcher.Close()
		}
	})
	return nil
}
