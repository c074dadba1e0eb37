package replace

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of events editors emit when they
// rewrite a file (create temp, write, rename).
const reloadDebounce = 200 * time.Millisecond

// Watcher reloads a rule table when its source file changes on disk.
// On a failed reload the previous table stays in place; the failure is
// reported through the error handler and nothing else happens.
type Watcher struct {
	mu sync.Mutex

	table *Table
	path  string
	fsw   *fsnotify.Watcher

	// load reads the rule source; swapped in tests.
	load func(path string) ([]Rule, int, error)

	onReload func(count, skipped int)
	onError  func(err error)

	pending *time.Timer
	closeCh chan struct{}
	closed  bool
	wg      sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithReloadHandler sets a callback invoked after a successful reload
// with the new rule count and the number of skipped lines.
func WithReloadHandler(fn func(count, skipped int)) WatcherOption {
	return func(w *Watcher) { w.onReload = fn }
}

// WithErrorHandler sets a callback for reload failures.
func WithErrorHandler(fn func(err error)) WatcherOption {
	return func(w *Watcher) { w.onError = fn }
}

// WithLoader sets the loader used on each reload. The default is LoadFile.
func WithLoader(fn func(path string) ([]Rule, int, error)) WatcherOption {
	return func(w *Watcher) {
		if fn != nil {
			w.load = fn
		}
	}
}

// NewWatcher starts watching the rule source feeding table.
// The watch is placed on the containing directory since most editors
// replace files by rename, which drops a watch set on the file itself.
func NewWatcher(table *Table, path string, opts ...WatcherOption) (*Watcher, error) {
	if path == "" {
		return nil, ErrNoSource
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		table:   table,
		path:    abs,
		fsw:     fsw,
		load:    LoadFile,
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.loop()

	return w, nil
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.pending != nil {
		w.pending.Stop()
	}
	close(w.closeCh)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.reportError(err)
		}
	}
}

// scheduleReload arms (or re-arms) the debounce timer.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(reloadDebounce, w.reload)
}

// reload loads the source and swaps the table wholesale on success.
func (w *Watcher) reload() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	path, load := w.path, w.load
	w.mu.Unlock()

	rules, skipped, err := load(path)
	if err != nil {
		w.reportError(err)
		return
	}

	w.table.Replace(rules)
	if w.onReload != nil {
		w.onReload(len(rules), skipped)
	}
}

func (w *Watcher) reportError(err error) {
	if w.onError != nil {
		w.onError(err)
	}
}
