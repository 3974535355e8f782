package plugin

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ReloadFunc is invoked with the manifest path whenever a plugin.yaml under
// a watched directory is created or modified.
type ReloadFunc func(manifestPath string)

// Watcher watches a directory tree of plugin manifests for hot reload, per
// spec.md §4.6's requirement that a plugin be swappable without restarting
// the host. Grounded on the domain stack's fsnotify usage, the same
// filesystem-event library the pack's config-reload paths use.
type Watcher struct {
	fsw    *fsnotify.Watcher
	onLoad ReloadFunc
	logger zerolog.Logger
	done   chan struct{}
}

// NewWatcher creates a Watcher rooted at dir, invoking onLoad for every
// plugin.yaml create/write event observed under it.
func NewWatcher(dir string, onLoad ReloadFunc, logger zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{fsw: fsw, onLoad: onLoad, logger: logger, done: make(chan struct{})}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != "plugin.yaml" {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.logger.Info().Str("path", event.Name).Msg("plugin manifest changed, reloading")
			w.onLoad(event.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("plugin watcher error")
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher and releases its filesystem handles.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
