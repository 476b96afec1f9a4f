package source

import (
	"context"
	"sync"

	"github.com/teranos/folio/errors"
	"github.com/teranos/folio/logger"
	"go.uber.org/zap"
)

// FetchFunc produces a dataset. It may block; the Loader runs it off the caller's goroutine.
type FetchFunc func(ctx context.Context) (Dataset, error)

// Loader fetches a dataset in the background and exposes it as a Source.
// A failed reload keeps the last good dataset.
type Loader struct {
	fetch FetchFunc
	log   *zap.SugaredLogger

	mu        sync.RWMutex
	ds        Dataset
	ready     bool
	err       error
	gen       uint64
	first     chan struct{}
	firstOnce sync.Once
	listeners []func(Dataset)
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoaderLogger sets the logger.
func WithLoaderLogger(log *zap.SugaredLogger) LoaderOption {
	return func(l *Loader) { l.log = log }
}

// NewLoader creates a loader around fetch. Nothing runs until Start.
func NewLoader(fetch FetchFunc, opts ...LoaderOption) *Loader {
	l := &Loader{
		fetch: fetch,
		log:   logger.ComponentLogger("source"),
		first: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FileLoader loads path with ReadFile.
func FileLoader(path string, opts ...LoaderOption) *Loader {
	return NewLoader(func(ctx context.Context) (Dataset, error) {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		return ReadFile(path)
	}, opts...)
}

// Start kicks off the first fetch.
func (l *Loader) Start(ctx context.Context) { l.Reload(ctx) }

// Reload starts a new fetch. Results of fetches superseded by a later Reload are discarded.
func (l *Loader) Reload(ctx context.Context) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.mu.Unlock()

	go func() {
		ds, err := l.fetch(ctx)
		l.finish(gen, ds, err)
	}()
}

func (l *Loader) finish(gen uint64, ds Dataset, err error) {
	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		l.log.Debugw("Discarding superseded fetch", logger.FieldGeneration, gen)
		return
	}
	l.err = err
	var listeners []func(Dataset)
	if err == nil {
		l.ds = ds
		l.ready = true
		listeners = append(listeners, l.listeners...)
	}
	l.mu.Unlock()
	l.firstOnce.Do(func() { close(l.first) })

	if err != nil {
		l.log.Warnw("Data fetch failed", logger.FieldError, err)
		return
	}
	l.log.Infow("Data loaded", "name", ds.Name, logger.FieldCount, len(ds.Records))
	for _, fn := range listeners {
		fn(ds)
	}
}

// Snapshot returns the latest dataset without blocking.
func (l *Loader) Snapshot() (Dataset, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ds, l.ready
}

// Err is the error of the most recent completed fetch.
func (l *Loader) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// OnChange registers fn to run after every successful fetch, on the fetching goroutine.
func (l *Loader) OnChange(fn func(Dataset)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Wait blocks until the first fetch completes and returns its error.
func (l *Loader) Wait(ctx context.Context) error {
	select {
	case <-l.first:
		l.mu.RLock()
		defer l.mu.RUnlock()
		if !l.ready {
			return errors.Wrap(l.err, "first fetch failed")
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
