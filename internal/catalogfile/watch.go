package catalogfile

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Simplici0/ecopouch/internal/pricing"
)

// Reload results passed to the observer.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Reloader rebuilds the catalog from the compiled-in base plus the override file and
// publishes it. A failed reload leaves the published catalog in place.
type Reloader struct {
	path    string
	base    *pricing.Catalog
	store   *pricing.CatalogStore
	log     zerolog.Logger
	observe func(result string)
}

func NewReloader(path string, base *pricing.Catalog, store *pricing.CatalogStore, log zerolog.Logger, observe func(string)) *Reloader {
	if observe == nil {
		observe = func(string) {}
	}
	return &Reloader{path: path, base: base, store: store, log: log, observe: observe}
}

// Path returns the override file the reloader reads.
func (r *Reloader) Path() string { return r.path }

// Reload loads the override file and swaps the result into the store.
func (r *Reloader) Reload() (*pricing.Catalog, error) {
	next, err := Load(r.path, r.base)
	if err == nil {
		_, err = r.store.Swap(next)
	}
	if err != nil {
		r.observe(ResultFailure)
		r.log.Error().Err(err).Str("path", r.path).Msg("catalog reload failed")
		return nil, err
	}
	r.observe(ResultSuccess)
	r.log.Info().Str("path", r.path).Str("version", next.Version).Msg("catalog reloaded")
	return next, nil
}

// Watcher polls a file's modification time and calls onChange when it moves forward.
type Watcher struct {
	path     string
	interval time.Duration
	onChange func()

	lastMTime time.Time
	stopOnce  sync.Once
	stopCh    chan struct{}
	done      chan struct{}
}

func NewWatcher(path string, interval time.Duration, onChange func()) *Watcher {
	return &Watcher{
		path:     path,
		interval: interval,
		onChange: onChange,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start primes the modification time and polls in a goroutine until ctx is done or
// Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	w.scan(true)
	ticker := time.NewTicker(w.interval)
	go func() {
		defer close(w.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.scan(false)
			case <-w.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop terminates polling and waits for the goroutine to exit. It must follow Start.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.done
}

func (w *Watcher) scan(prime bool) {
	fi, err := os.Stat(w.path)
	if err != nil {
		// missing file: keep the last seen time and try again next tick
		return
	}
	mt := fi.ModTime()
	if prime {
		w.lastMTime = mt
		return
	}
	if mt.After(w.lastMTime) {
		w.lastMTime = mt
		w.onChange()
	}
}
