package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must stay quiet before it is reported.
const DefaultDebounce = 100 * time.Millisecond

// IsInventoryFile reports whether name looks like FISPACT JSON output.
func IsInventoryFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.HasSuffix(base, ".json") || strings.HasSuffix(base, ".json.bz2")
}

// Watcher reports inventory files created or rewritten in a directory.
type Watcher struct {
	Dir      string
	Files    <-chan string // Read-only external channel
	Debounce time.Duration

	files    chan string
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  bool
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a watcher for dir. Call Start to begin watching.
func NewWatcher(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ch := make(chan string, 16)
	return &Watcher{
		Dir:      dir,
		Files:    ch,
		Debounce: DefaultDebounce,
		files:    ch,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		watcher:  fw,
	}, nil
}

// Start begins watching the directory.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.Dir); err != nil {
		return err
	}
	w.started = true
	go w.loop()
	return nil
}

// Stop closes the watcher and the Files channel. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.quit)
		w.watcher.Close()
		if w.started {
			<-w.done
		}
		close(w.files)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	// Debounce: track last event time per file.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.Debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !IsInventoryFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending[event.Name] = time.Now()
			}

		case now := <-ticker.C:
			for file, t := range pending {
				if now.Sub(t) >= w.Debounce {
					delete(pending, file)
					if !w.emit(file) {
						return
					}
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal.

		case <-w.quit:
			return
		}
	}
}

// emit sends file unless it has disappeared. It returns false once the
// watcher is stopping.
func (w *Watcher) emit(file string) bool {
	if info, err := os.Stat(file); err != nil || info.IsDir() {
		return true
	}
	select {
	case w.files <- file:
		return true
	case <-w.quit:
		return false
	}
}
