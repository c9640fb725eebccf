package authority

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wyd-tools/gamevault/internal/model"
	"github.com/wyd-tools/gamevault/internal/reporter"
)

// selfWriteGrace is how long after a Facade-driven write a filesystem
// event for the same path is attributed to that write rather than an
// external collaborator.
const selfWriteGrace = 2 * time.Second

// Watcher is the optional external-modification collaborator: it watches
// game_root for writes the Facade itself did not make and records
// ModifiedOnServer/Conflict against the affected path. Core mutation
// outcomes never set these two states themselves.
type Watcher struct {
	fsw    *fsnotify.Watcher
	report reporter.Reporter

	mu         sync.Mutex
	selfWrites map[string]time.Time
	dirty      map[string]bool // true once the core has written a path the watcher has not yet seen settle
	states     map[string]model.ServerSyncState

	done chan struct{}
}

// NewWatcher starts watching every directory under root, recursively.
func NewWatcher(root string, report reporter.Reporter) (*Watcher, error) {
	if report == nil {
		report = reporter.NoOp()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:        fsw,
		report:     report,
		selfWrites: map[string]time.Time{},
		dirty:      map[string]bool{},
		states:     map[string]model.ServerSyncState{},
		done:       make(chan struct{}),
	}
	if err := w.addRecursive(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	go w.run()
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		return w.fsw.Add(path)
	})
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

// NoteSelfWrite records that the Facade itself just wrote path, so the
// filesystem event it triggers is not mistaken for an external change.
func (w *Watcher) NoteSelfWrite(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selfWrites[path] = time.Now()
	w.dirty[path] = true
	w.states[path] = model.SyncModifiedLocally
}

// State returns the last known sync state for path, SyncNotApplicable if
// the watcher has never observed anything for it.
func (w *Watcher) State(path string) model.ServerSyncState {
	w.mu.Lock()
	defer w.mu.Unlock()
	if s, ok := w.states[path]; ok {
		return s
	}
	return model.SyncNotApplicable
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.report.Warn("authority: watcher error", reporter.Fields{"error": err})
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && ev.Op&fsnotify.Create != 0 {
			_ = w.fsw.Add(ev.Name)
		}
		return
	}
	if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
		_ = w.fsw.Add(ev.Name)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if last, ok := w.selfWrites[ev.Name]; ok && time.Since(last) < selfWriteGrace {
		return
	}

	if w.dirty[ev.Name] {
		w.states[ev.Name] = model.SyncConflict
	} else {
		w.states[ev.Name] = model.SyncModifiedOnServer
	}
	w.report.Info("authority: external write detected", reporter.Fields{"path": ev.Name, "state": w.states[ev.Name].String()})
}
