package client

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/TrustedSmartChain/walletcore/metrics"
)

// DefaultTimeout bounds a single remote call when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// Call runs fn under a deadline. It returns when fn returns or the deadline
// passes, whichever is first, so a call that ignores its context cannot hang
// the caller. Deadline expiry maps to ErrTimeout and unreachable endpoints to
// ErrTransport; any other error is returned unchanged.
func Call[T any](ctx context.Context, timeout time.Duration, method string, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.RemoteCallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{v: v, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return r.v, classify(method, r.err)
		}
		return r.v, nil
	case <-ctx.Done():
		var zero T
		return zero, classify(method, ctx.Err())
	}
}

func classify(method string, err error) error {
	kind := "application"
	defer func() {
		metrics.RemoteCallErrors.WithLabelValues(method, kind).Inc()
	}()

	if errors.Is(err, context.DeadlineExceeded) {
		kind = "timeout"
		return ErrTimeout.Wrapf("%s: %s", method, err)
	}
	if errors.Is(err, context.Canceled) {
		kind = "canceled"
		return err
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.DeadlineExceeded:
			kind = "timeout"
			return ErrTimeout.Wrapf("%s: %s", method, st.Message())
		case codes.Unavailable:
			kind = "transport"
			return ErrTransport.Wrapf("%s: %s", method, st.Message())
		case codes.Canceled:
			kind = "canceled"
			return context.Canceled
		}
	}
	return err
}

// IsRetryable reports whether err is a network or timeout failure the caller
// may retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrTransport)
}
