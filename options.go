package lmm

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Logger receives diagnostic notices from the search: the derived support
// size, whether it was clamped, and progress. It never affects the result.
type Logger interface {
	Infof(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Debugf(string, ...interface{}) {}

// GlogLogger sends notices to glog. Debug notices are logged at -v=1.
type GlogLogger struct{}

func (GlogLogger) Infof(format string, args ...interface{}) {
	glog.Infof(format, args...)
}

func (GlogLogger) Debugf(format string, args ...interface{}) {
	glog.V(1).Infof(format, args...)
}

const defaultCacheSize = 4096

type options struct {
	maxK          int
	workers       int
	deterministic bool
	cacheSize     int
	logger        Logger
	err           error
}

func defaultOptions() *options {
	return &options{
		workers:       1,
		deterministic: true,
		cacheSize:     defaultCacheSize,
		logger:        nopLogger{},
	}
}

// Option configures Solve.
type Option func(*options)

// WithMaxK caps the support size. Clamping below the theoretical bound makes
// the search cheaper but may leave it without an equilibrium to find.
func WithMaxK(k int) Option {
	return func(o *options) {
		if k <= 0 {
			o.setErr(errors.Wrapf(ErrInvalidParameter, "max_k=%d must be positive", k))
			return
		}
		o.maxK = k
	}
}

// WithWorkers sets the number of goroutines searching row strategies.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n <= 0 {
			o.setErr(errors.Wrapf(ErrInvalidParameter, "workers=%d must be positive", n))
			return
		}
		o.workers = n
	}
}

// WithDeterministic selects whether a parallel search must return the same
// pair as the sequential search (the first in enumeration order), or may
// return whichever valid pair a worker finds first.
func WithDeterministic(deterministic bool) Option {
	return func(o *options) {
		o.deterministic = deterministic
	}
}

// WithCacheSize sets the number of column-strategy payoff vectors kept
// in memory. Zero disables the cache.
func WithCacheSize(n int) Option {
	return func(o *options) {
		if n < 0 {
			o.setErr(errors.Wrapf(ErrInvalidParameter, "cache size %d is negative", n))
			return
		}
		o.cacheSize = n
	}
}

// WithLogger sets the diagnostic sink. The default discards everything.
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l == nil {
			l = nopLogger{}
		}
		o.logger = l
	}
}

func (o *options) setErr(err error) {
	if o.err == nil {
		o.err = err
	}
}
