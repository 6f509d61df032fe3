package service

import (
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	defaultRetryAttempts = 3
	defaultRetryInterval = 50 * time.Millisecond
	maxRetryInterval     = time.Second
)

type Option func(*CartManager)

func WithLogger(logger *zap.Logger) Option {
	return func(m *CartManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithRetryAttempts sets the total number of attempts, including the first one.
func WithRetryAttempts(attempts int) Option {
	return func(m *CartManager) {
		if attempts > 0 {
			m.attempts = attempts
		}
	}
}

func WithRetryInterval(interval time.Duration) Option {
	return func(m *CartManager) {
		if interval > 0 {
			m.interval = interval
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(m *CartManager) {
		if tracer != nil {
			m.tracer = tracer
		}
	}
}
