package searchclause

import "go.uber.org/zap"

type config struct {
	logger *zap.Logger
	token  func() string
}

// Option configures a ClauseBuilder.
type Option func(*config)

// WithLogger sets the logger. The default logger discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTokenSource replaces the random token used in composite group
// parameter names. Tests use it to get stable names.
func WithTokenSource(fn func() string) Option {
	return func(c *config) {
		if fn != nil {
			c.token = fn
		}
	}
}
