package dev

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeType represents the type of file change.
type ChangeType int

const (
	ChangeManifest ChangeType = iota
	ChangePage
	ChangeAsset
)

// String returns the change type name used in logs.
func (t ChangeType) String() string {
	switch t {
	case ChangeManifest:
		return "manifest"
	case ChangePage:
		return "page"
	default:
		return "asset"
	}
}

// Change represents a detected file change.
type Change struct {
	Path string
	Type ChangeType
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the files and directories to watch. Directories are
	// watched with their subdirectories.
	Paths []string

	// Manifest is the route manifest file. Changes to it are reported as
	// ChangeManifest.
	Manifest string

	// Ignore lists names, globs and path segments to skip.
	Ignore []string

	// Interval is how long events are collected before they are reported
	// (default: 100ms).
	Interval time.Duration

	// Logger receives watch errors. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	".DS_Store",
	"*.tmp",
	"*.swp",
	"*~",
}

// changeOps are the fsnotify operations that count as a change. A bare
// chmod (touching timestamps) does not.
const changeOps = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

// Watcher reports file changes under the configured paths.
type Watcher struct {
	config   WatcherConfig
	onChange func(Change)
	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}

	// dirs are the watched directory roots, files the single files.
	dirs  []string
	files map[string]bool
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Interval == 0 {
		config.Interval = 100 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}
	if config.Manifest != "" {
		config.Manifest = filepath.Clean(config.Manifest)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Watcher{
		config: config,
		files:  make(map[string]bool),
	}
}

// OnChange sets the callback for file changes.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start watches until ctx is done or Stop is called. Files present when it
// starts are not reported. Events are collected for Interval and then
// reported together.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	w.watchRoots(fsw)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	var pending []Change
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return ctx.Err()
		case <-stopCh:
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				w.Stop()
				return nil
			}
			pending = append(pending, w.handle(fsw, ev)...)
		case err, ok := <-fsw.Errors:
			if !ok {
				w.Stop()
				return nil
			}
			w.config.Logger.Warn("watch error", slog.Any("error", err))
		case <-ticker.C:
			if len(pending) > 0 {
				w.report(pending)
				pending = nil
			}
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// watchRoots adds the configured paths. A single file is watched through
// its directory, which keeps working when an editor replaces the file.
func (w *Watcher) watchRoots(fsw *fsnotify.Watcher) {
	w.dirs = w.dirs[:0]
	for _, root := range w.config.Paths {
		root = filepath.Clean(root)
		info, err := os.Stat(root)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			w.files[root] = true
			w.add(fsw, filepath.Dir(root))
			continue
		}
		w.dirs = append(w.dirs, root)
		w.watchTree(fsw, root, nil)
	}
}

// watchTree adds root and its subdirectories, passing the files it finds
// to found.
func (w *Watcher) watchTree(fsw *fsnotify.Watcher, root string, found func(string)) {
	filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if w.shouldIgnore(p) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			w.add(fsw, p)
		} else if found != nil {
			found(filepath.Clean(p))
		}
		return nil
	})
}

func (w *Watcher) add(fsw *fsnotify.Watcher, dir string) {
	if err := fsw.Add(dir); err != nil {
		w.config.Logger.Warn("watching directory failed", slog.String("dir", dir), slog.Any("error", err))
	}
}

// handle turns one fsnotify event into changes. A new directory is
// watched and the files already in it are reported, since they may have
// been written before the watch was added.
func (w *Watcher) handle(fsw *fsnotify.Watcher, ev fsnotify.Event) []Change {
	if ev.Op&changeOps == 0 {
		return nil
	}
	p := filepath.Clean(ev.Name)
	if !w.watched(p) || w.shouldIgnore(p) {
		return nil
	}

	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			var changes []Change
			w.watchTree(fsw, p, func(f string) {
				changes = append(changes, Change{Path: f, Type: w.classify(f)})
			})
			return changes
		}
	}
	return []Change{{Path: p, Type: w.classify(p)}}
}

// watched reports whether p is a watched file or lies under a watched
// directory root.
func (w *Watcher) watched(p string) bool {
	if w.files[p] {
		return true
	}
	for _, dir := range w.dirs {
		if p == dir || strings.HasPrefix(p, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// report calls the callback once per change type, manifest first.
func (w *Watcher) report(changes []Change) {
	w.mu.Lock()
	callback := w.onChange
	w.mu.Unlock()

	if callback == nil || len(changes) == 0 {
		return
	}

	var first [ChangeAsset + 1]*Change
	for i := range changes {
		c := &changes[i]
		if first[c.Type] == nil {
			first[c.Type] = c
		}
	}
	for _, c := range first {
		if c != nil {
			callback(*c)
		}
	}
}

// shouldIgnore reports whether a path matches an ignore pattern by name,
// by glob on its base name, or by one of its segments.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	segments := strings.Split(filepath.ToSlash(fullPath), "/")

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if strings.ContainsAny(pattern, "*?[") {
			if matched, _ := filepath.Match(pattern, name); matched {
				return true
			}
			continue
		}
		for _, seg := range segments {
			if seg == pattern {
				return true
			}
		}
	}

	return false
}

func (w *Watcher) classify(path string) ChangeType {
	if w.config.Manifest != "" && path == w.config.Manifest {
		return ChangeManifest
	}
	return classifyChange(path)
}

// classifyChange determines the type of change based on file extension.
func classifyChange(path string) ChangeType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return ChangePage
	default:
		return ChangeAsset
	}
}
