package session

import (
	"log/slog"
	"time"
)

// DefaultRequestTimeout bounds a single login or register call.
const DefaultRequestTimeout = 15 * time.Second

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger, slog.Default() otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRequestTimeout overrides DefaultRequestTimeout. Expiry is reported as
// a transport failure. Non-positive values are ignored.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}
