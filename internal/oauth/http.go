package oauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/metrics"
)

const (
	maxBodyBytes  = 1 << 20
	maxErrorBytes = 2048
)

// NewHTTPClient returns the client used for every provider call.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func readBody(resp *http.Response) ([]byte, error) {
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

func truncate(b []byte) string {
	if len(b) > maxErrorBytes {
		return string(b[:maxErrorBytes])
	}
	return string(b)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// transportError classifies a failed round trip.
func transportError(ctx context.Context, provider, op string, err error) error {
	if isTimeout(ctx, err) {
		return fmt.Errorf("%s %s: %w", provider, op, ErrUpstreamTimeout)
	}
	return fmt.Errorf("%s %s: %w: %v", provider, op, ErrUpstreamUnavailable, err)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrUpstreamTimeout):
		return metrics.OutcomeTimeout
	default:
		return metrics.OutcomeError
	}
}
