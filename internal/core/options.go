// Options for configuring Machine instances.
package core

import "log/slog"

// DefaultMaxMicrosteps bounds the microsteps of one macrostep.
const DefaultMaxMicrosteps = 10000

// Option applies configuration to Machine via functional options pattern.
type Option func(*Machine)

// WithLogger configures the Machine with a structured logger. Sub-machines
// inherit it.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithID overrides the generated instance id.
func WithID(id string) Option {
	return func(m *Machine) {
		if id != "" {
			m.id = id
		}
	}
}

// WithObserver configures the Machine with an Observer for entry, exit and
// transition notifications. Sub-machines do not inherit it.
func WithObserver(o Observer) Option {
	return func(m *Machine) {
		if o != nil {
			m.observer = o
		}
	}
}

// WithMaxMicrosteps configures the microstep limit per macrostep. Values
// below one keep the default.
func WithMaxMicrosteps(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.maxMicrosteps = n
		}
	}
}
