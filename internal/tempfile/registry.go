package tempfile

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"syscall"

	"github.com/google/uuid"
)

// Prefix starts the name of every registered file.
const Prefix = ".huna-"

const maxCreateAttempts = 16

// Registry tracks temporary files until they are released.
type Registry struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{paths: make(map[string]struct{})}
}

// Create makes a new private file in dir and registers it. The name is a
// random UUID, re-drawn if it already exists.
func (r *Registry) Create(dir, suffix string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating temp directory %s: %w", dir, err)
	}

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		path := filepath.Join(dir, Prefix+uuid.NewString()+suffix)

		// Register before creating so a signal between the two steps still
		// finds the path.
		r.Track(path)
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
		if err == nil {
			return f, nil
		}
		if errors.Is(err, os.ErrExist) {
			// Someone else's file; it must not be wiped on our behalf.
			r.Forget(path)
			continue
		}
		r.Forget(path)
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	return nil, fmt.Errorf("creating temp file in %s: too many name collisions", dir)
}

// Track registers an existing path.
func (r *Registry) Track(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths[path] = struct{}{}
}

// Forget unregisters path without touching the file, for temp files that
// were renamed into place.
func (r *Registry) Forget(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.paths, path)
}

// Release wipes and removes path and unregisters it.
func (r *Registry) Release(path string) error {
	err := Wipe(path)
	r.Forget(path)
	return err
}

// Paths returns the registered paths, sorted.
func (r *Registry) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.paths))
	for p := range r.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Drain releases every registered path and returns the combined errors.
func (r *Registry) Drain() error {
	var errs []error
	for _, path := range r.Paths() {
		if err := r.Release(path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Guard drains the registry when the process is interrupted or terminated
// and then calls exit with 128+signal. The returned function stops watching;
// once it returns, exit is never called.
func (r *Registry) Guard(exit func(code int)) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	done, finished := r.watch(ch, exit)
	return func() {
		signal.Stop(ch)
		close(done)
		<-finished
	}
}

// watch waits for a signal on ch until done is closed. finished is closed
// when the watcher returns without exiting.
func (r *Registry) watch(ch <-chan os.Signal, exit func(code int)) (done chan struct{}, finished <-chan struct{}) {
	done = make(chan struct{})
	fin := make(chan struct{})
	go func() {
		defer close(fin)
		select {
		case sig := <-ch:
			// Both cases may be ready at once; a stopped guard wins.
			select {
			case <-done:
				return
			default:
			}
			_ = r.Drain()
			code := 1
			if s, ok := sig.(syscall.Signal); ok {
				code = 128 + int(s)
			}
			exit(code)
		case <-done:
		}
	}()
	return done, fin
}
