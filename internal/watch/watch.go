// Package watch processes documents dropped into a directory.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"docqa/internal/logger"
)

const DefaultSettle = 500 * time.Millisecond

// Handler is called once per new or changed file, never concurrently.
type Handler func(ctx context.Context, path string)

type Watcher struct {
	dir    string
	handle Handler
	settle time.Duration
	exts   map[string]bool

	mu     sync.Mutex
	hashes map[string]string
	timers map[string]*time.Timer
}

type Option func(*Watcher)

// WithSettle sets how long a file must stay unchanged before it is handled.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithExtensions restricts handled files to the given extensions.
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) {
		w.exts = make(map[string]bool, len(exts))
		for _, e := range exts {
			w.exts[strings.ToLower(e)] = true
		}
	}
}

func New(dir string, handle Handler, opts ...Option) *Watcher {
	w := &Watcher{
		dir:    dir,
		handle: handle,
		settle: DefaultSettle,
		exts:   map[string]bool{".pdf": true},
		hashes: make(map[string]string),
		timers: make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Scan handles the supported files already present in the directory.
func (w *Watcher) Scan(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", w.dir, err)
	}
	for _, e := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if e.IsDir() {
			continue
		}
		w.process(ctx, filepath.Join(w.dir, e.Name()))
	}
	return nil
}

// Run watches the directory until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	logger.Info("👀 Watching %s for new documents", w.dir)

	ready := make(chan string, 16)
	done := make(chan struct{})
	defer close(done)
	defer w.stopTimers()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.supported(event.Name) {
				continue
			}
			switch {
			case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
				w.schedule(event.Name, ready, done)
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				w.forget(event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("Watcher error: %v", err)
		case path := <-ready:
			w.process(ctx, path)
		case <-ctx.Done():
			logger.Info("Watcher stopped")
			return nil
		}
	}
}

// schedule (re)starts the settle timer for path.
func (w *Watcher) schedule(path string, ready chan<- string, done <-chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.timers[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		select {
		case ready <- path:
		case <-done:
		}
	})
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.hashes, path)
	if t, ok := w.timers[path]; ok {
		t.Stop()
		delete(w.timers, path)
	}
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

// process hands path to the handler unless its content was already handled.
func (w *Watcher) process(ctx context.Context, path string) {
	if !w.supported(path) {
		return
	}
	hash, err := fileHash(path)
	if err != nil {
		logger.Warn("Could not hash %s: %v", path, err)
		return
	}

	w.mu.Lock()
	unchanged := w.hashes[path] == hash
	w.hashes[path] = hash
	w.mu.Unlock()
	if unchanged {
		logger.Debug("Skipping unchanged file: %s", path)
		return
	}

	w.handle(ctx, path)
}

func (w *Watcher) supported(path string) bool {
	return w.exts[strings.ToLower(filepath.Ext(path))]
}

func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
