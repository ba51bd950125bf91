package profiler

import "regexp"

// SkipFilter reports whether a span should not be recorded.
type SkipFilter func(s Span) bool

// WithSkipFilter sets the filter for tracing spans.
func WithSkipFilter(skipFilter SkipFilter) Option {
	return func(c *config) {
		c.skipFilter = skipFilter
	}
}

// WithPhases only records spans for the named phases.
func WithPhases(phases ...string) Option {
	keep := make(map[string]bool, len(phases))
	for _, p := range phases {
		keep[p] = true
	}
	return WithSkipFilter(func(s Span) bool {
		return !keep[s.Phase]
	})
}

// WithUnitPattern only records spans for units whose name matches pattern.
func WithUnitPattern(pattern string) (Option, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return WithSkipFilter(func(s Span) bool {
		return !re.MatchString(s.Unit)
	}), nil
}

// Labeler provides an alternative name for a span.  An empty label falls
// back to "phase:unit".
type Labeler func(s Span) string

// WithLabeler sets the labeler for tracing spans.
func WithLabeler(labeler Labeler) Option {
	return func(c *config) {
		c.labeler = labeler
	}
}
