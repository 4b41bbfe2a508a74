// Package watch docks ligand files as they are dropped into a directory.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/tikz/dockmate/ligand"
	"github.com/tikz/dockmate/pipeline"
	"github.com/tikz/dockmate/tool"
)

// CacheSize is the number of ligand contents remembered as already docked.
const CacheSize = 256

// Docker docks one ligand file. *pipeline.Session implements it.
type Docker interface {
	Dock(path string) (*pipeline.Result, error)
}

// Event reports the outcome for one ligand file.
type Event struct {
	Path    string
	Result  *pipeline.Result
	Skipped bool // same content already docked
	Err     error
}

// Watcher docks supported ligand files created or written in a directory,
// one at a time.
type Watcher struct {
	watcher *fsnotify.Watcher
	docker  Docker
	seen    *lru.Cache[string, string]
}

// New creates a watcher that hands files to docker.
func New(docker Docker) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create watcher")
	}
	seen, err := lru.New[string, string](CacheSize)
	if err != nil {
		w.Close()
		return nil, errors.WithStack(err)
	}
	return &Watcher{watcher: w, docker: docker, seen: seen}, nil
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run watches dir until ctx is done, calling report after every processed
// file. It returns nil when ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, dir string, report func(Event)) error {
	if err := w.watcher.Add(dir); err != nil {
		return errors.Wrapf(err, "watch %s", dir)
	}
	tool.Logger.Printf("watch: waiting for ligands in %s", dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !ligand.Supported(tool.Ext(event.Name)) || !tool.IsFile(event.Name) {
				continue
			}
			report(w.Process(event.Name))
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			tool.Logger.Printf("watch: %v", err)
		}
	}
}

// Process docks path unless a file with the same content was already docked.
// Failed files are not remembered, so a later write retries them.
func (w *Watcher) Process(path string) Event {
	ev := Event{Path: path}

	sum, err := hashFile(path)
	if err != nil {
		ev.Err = err
		return ev
	}
	if prev, ok := w.seen.Get(sum); ok {
		tool.Logger.Printf("watch: %s has the same content as %s, skipping", filepath.Base(path), filepath.Base(prev))
		ev.Skipped = true
		return ev
	}

	tool.Logger.Printf("watch: docking %s", filepath.Base(path))
	ev.Result, ev.Err = w.docker.Dock(path)
	if ev.Err == nil {
		w.seen.Add(sum, path)
	}
	return ev
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrapf(err, "read %s", path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
