// Copyright © 2024 The ELPS authors

package analysis

import (
	"io"

	"github.com/emmanuelbernard/ceylon-spec/profiler"
	"github.com/sirupsen/logrus"
)

// Config controls the behavior of an analysis Context.
type Config struct {
	// Logger receives phase logging at debug level.
	Logger *logrus.Logger
	// Tracer opens a span per phase per unit.
	Tracer profiler.Tracer
	// Parallel is the number of units parsed concurrently.  Zero means one
	// per CPU and one disables concurrency.
	Parallel int
	// Exclude lists glob patterns of paths skipped by LoadTree.
	Exclude []string
}

// Option configures a Context.
type Option func(*Config)

// WithLogger sets the phase logger.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithTracer sets the phase tracer.
func WithTracer(t profiler.Tracer) Option {
	return func(c *Config) {
		c.Tracer = t
	}
}

// WithParallel sets the number of units parsed concurrently.
func WithParallel(n int) Option {
	return func(c *Config) {
		c.Parallel = n
	}
}

// WithExclude skips source paths matching the glob patterns.
func WithExclude(patterns ...string) Option {
	return func(c *Config) {
		c.Exclude = append(c.Exclude, patterns...)
	}
}

func newConfig(opts []Option) *Config {
	c := &Config{}
	for _, opt := range opts {
		opt(c)
	}
	if c.Logger == nil {
		c.Logger = logrus.New()
		c.Logger.SetOutput(io.Discard)
	}
	if c.Tracer == nil {
		c.Tracer = profiler.Noop()
	}
	return c
}
