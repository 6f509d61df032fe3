package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nikolayk812/cartservice/internal/domain"
	"go.uber.org/zap"
)

var (
	retryOnUnavailable = []error{domain.ErrStoreUnavailable}
	retryOnConflict    = []error{domain.ErrStoreUnavailable, domain.ErrConcurrentUpdateConflict}
)

// retry runs fn up to m.attempts times while it fails with one of retryOn.
func (m *CartManager) retry(ctx context.Context, op string, retryOn []error, fn func() error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = m.interval
	eb.MaxInterval = maxRetryInterval

	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(m.attempts-1)), ctx)

	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++

		err := fn()
		if err == nil {
			return nil
		}
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return err
		}
		if !isAny(err, retryOn) {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, next time.Duration) {
		m.logger.Warn("retrying cart operation",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", next),
			zap.Error(err))
	})

	if isContextErr(err) && !errors.Is(err, domain.ErrStoreUnavailable) {
		// the caller's deadline ran out between attempts
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
	}

	return err
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isContextErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
