package main

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/jcorbin/ppedoor/internal/ast"
	"github.com/jcorbin/ppedoor/internal/progfile"
)

// progCache holds the loaded program document, reloading it on the first
// session after the file changes. Sessions already running keep the program
// they started with.
type progCache struct {
	name string
	logf func(mess string, args ...interface{})

	mu  sync.Mutex
	prg *ast.Program
}

func newProgCache(name string, logf func(mess string, args ...interface{})) *progCache {
	return &progCache{name: filepath.Clean(name), logf: logf}
}

func (pc *progCache) get() (*ast.Program, error) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.prg == nil {
		prg, err := progfile.LoadFile(pc.name)
		if err != nil {
			return nil, err
		}
		pc.prg = prg
		pc.logf("loaded %v", pc.name)
	}
	return pc.prg, nil
}

func (pc *progCache) invalidate() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.prg = nil
}

// watch invalidates the cache whenever the program file changes, until ctx
// is done. The directory is watched rather than the file, so that editors
// that save by renaming a new file into place are seen too.
func (pc *progCache) watch(ctx context.Context, ready chan<- struct{}) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(pc.name)); err != nil {
		return err
	}
	if ready != nil {
		close(ready)
	}

	const changed = fsnotify.Create | fsnotify.Write | fsnotify.Rename | fsnotify.Remove
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) == pc.name && ev.Op&changed != 0 {
				pc.logf("%v changed (%v)", pc.name, ev.Op)
				pc.invalidate()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			pc.logf("watch error: %v", err)
		}
	}
}
