package watcher

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/codescope/codescope/internal/config"
	cserr "github.com/codescope/codescope/internal/errors"
)

// Invalidator receives the project root whose cached analysis is stale.
type Invalidator interface {
	Invalidate(root string)
}

// Watcher monitors analyzed project roots and invalidates their cached
// contexts after filesystem changes settle. Events are debounced per root
// so a burst of writes (editor save, git checkout) triggers a single
// invalidation.
type Watcher struct {
	fsw      *fsnotify.Watcher
	cfg      *config.Config
	inv      Invalidator
	logger   *log.Logger
	debounce time.Duration

	mu     sync.Mutex
	roots  []string               // sorted longest-first for prefix lookup
	timers map[string]*time.Timer // pending invalidation per root

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// New creates a watcher and starts its event loop. Close releases it.
func New(cfg *config.Config, inv Invalidator, logger *log.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, cserr.New(cserr.ErrorTypeProcessing, "watch", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		fsw:      fsw,
		cfg:      cfg,
		inv:      inv,
		logger:   logger,
		debounce: cfg.Analysis.WatchDebounce,
		timers:   make(map[string]*time.Timer),
		ctx:      ctx,
		cancel:   cancel,
	}
	if w.debounce <= 0 {
		w.debounce = config.DefaultWatchDebounce
	}

	w.wg.Add(1)
	go w.processEvents()
	return w, nil
}

// Watch registers a project root. All of its non-ignored directories are
// watched recursively; later changes under any of them mark the root stale.
func (w *Watcher) Watch(root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return cserr.New(cserr.ErrorTypePathValidation, "watch", err).WithPath(root)
	}

	var added int
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree, keep walking
		}
		if !d.IsDir() {
			return nil
		}
		if path != absRoot && w.ignored(absRoot, path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
			return nil
		}
		added++
		return nil
	})
	if walkErr != nil {
		return cserr.New(cserr.ErrorTypeProcessing, "watch", walkErr).WithPath(absRoot)
	}
	if added == 0 {
		return cserr.Newf(cserr.ErrorTypeNotFound, "watch", "no watchable directories under %s", absRoot).WithPath(absRoot)
	}

	w.mu.Lock()
	w.roots = append(w.roots, absRoot)
	sort.Slice(w.roots, func(i, j int) bool { return len(w.roots[i]) > len(w.roots[j]) })
	w.mu.Unlock()

	w.logger.Info("watching project", "root", absRoot, "directories", added)
	return nil
}

// Close stops the event loop and cancels pending invalidations.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		w.cancel()
		err = w.fsw.Close()
		w.wg.Wait()

		w.mu.Lock()
		for root, timer := range w.timers {
			timer.Stop()
			delete(w.timers, root)
		}
		w.mu.Unlock()
	})
	return err
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	root := w.rootFor(event.Name)
	if root == "" {
		return
	}
	if w.ignored(root, event.Name) {
		return
	}

	// New directories need their own watch so nested changes surface.
	if event.Op&fsnotify.Create != 0 {
		if err := w.fsw.Add(event.Name); err == nil {
			w.logger.Debug("added watch for new path", "path", event.Name)
		}
	}

	w.markStale(root)
}

// markStale schedules an invalidation for root, restarting the debounce
// window if one is already pending.
func (w *Watcher) markStale(root string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[root]; ok {
		timer.Stop()
	}
	w.timers[root] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, root)
		w.mu.Unlock()

		w.inv.Invalidate(root)
		w.logger.Info("invalidated project context", "root", root)
	})
}

// rootFor returns the registered root containing path, preferring the
// longest match when roots nest.
func (w *Watcher) rootFor(path string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, root := range w.roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return root
		}
	}
	return ""
}

func (w *Watcher) ignored(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.cfg.Files.IgnorePatterns {
		if doublestar.MatchUnvalidated(pattern, rel) {
			return true
		}
		// Directory patterns like **/node_modules/** should also suppress
		// the directory entry itself.
		if trimmed, ok := strings.CutSuffix(pattern, "/**"); ok {
			if doublestar.MatchUnvalidated(trimmed, rel) {
				return true
			}
		}
	}
	return false
}
