// Package netretry classifies transient network and Kubernetes API errors
// and computes backoff delays for retry loops.
package netretry

import (
	"context"
	"errors"
	"io"
	"net"
	"regexp"
	"strings"
	"syscall"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// statusCodePattern matches 5xx gateway codes at word boundaries so that
// ports such as ":5000" do not count.
var statusCodePattern = regexp.MustCompile(`\b50[0-4]\b`)

// transientMessages covers errors that reach us only as text, e.g. after
// Helm flattens a transport error into its own message.
var transientMessages = []string{
	"Internal Server Error",
	"Bad Gateway",
	"Service Unavailable",
	"Gateway Timeout",
	"connection reset by peer",
	"connection refused",
	"i/o timeout",
	"TLS handshake timeout",
	"unexpected EOF",
	"no such host",
}

// IsRetryable reports whether err is a transient failure worth retrying.
// Cancellation of the caller's own context is never retryable.
func IsRetryable(err error) bool {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return false
	case isTransientStatus(err), isTransientNetwork(err):
		return true
	}

	message := err.Error()

	for _, pattern := range transientMessages {
		if strings.Contains(message, pattern) {
			return true
		}
	}

	return statusCodePattern.MatchString(message)
}

func isTransientStatus(err error) bool {
	return apierrors.IsTooManyRequests(err) ||
		apierrors.IsServerTimeout(err) ||
		apierrors.IsServiceUnavailable(err) ||
		apierrors.IsInternalError(err)
}

func isTransientNetwork(err error) bool {
	if errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

// ExponentialDelay returns min(baseWait * 2^(attempt-1), maxWait).
// Attempts below 1 are treated as the first attempt.
func ExponentialDelay(attempt int, baseWait, maxWait time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	return min(baseWait*time.Duration(1<<(attempt-1)), maxWait)
}
