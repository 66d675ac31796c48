package netretry_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/Juniper/eda-apstra-project/pkg/client/netretry"
	"github.com/stretchr/testify/assert"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

var (
	errChartInvalid  = errors.New("chart.yaml: apiVersion is required")
	errPort5000      = errors.New("dial tcp registry.local:5000: permission denied")
	errRepoIndex502  = errors.New("looks like the repository index is not reachable: 502")
	errHelmGateway   = errors.New("INSTALLATION FAILED: Gateway Timeout waiting for apiserver")
	errHelmReset     = errors.New("read tcp 10.0.0.4:51234->10.0.0.1:6443: read: connection reset by peer")
	errAlreadyExists = errors.New("cannot re-use a name that is still in use")
)

var deploymentsResource = schema.GroupResource{Group: "apps", Resource: "deployments"}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "chart validation", err: errChartInvalid, want: false},
		{name: "name in use", err: errAlreadyExists, want: false},
		{name: "port 5000 is not a status code", err: errPort5000, want: false},
		{name: "caller cancelled", err: fmt.Errorf("install: %w", context.Canceled), want: false},
		{name: "status code in text", err: errRepoIndex502, want: true},
		{name: "status text", err: errHelmGateway, want: true},
		{name: "flattened reset", err: errHelmReset, want: true},
		{name: "unexpected EOF", err: fmt.Errorf("read body: %w", io.ErrUnexpectedEOF), want: true},
		{
			name: "syscall reset",
			err:  &net.OpError{Op: "read", Net: "tcp", Err: os.NewSyscallError("read", syscall.ECONNRESET)},
			want: true,
		},
		{
			name: "syscall refused",
			err:  &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)},
			want: true,
		},
		{name: "dns failure", err: &net.DNSError{Err: "server misbehaving", Name: "api.cluster.local"}, want: true},
		{name: "dns timeout", err: &net.DNSError{Err: "timeout", Name: "api.cluster.local", IsTimeout: true}, want: true},
		{name: "api throttled", err: apierrors.NewTooManyRequests("throttled", 1), want: true},
		{name: "api server timeout", err: apierrors.NewServerTimeout(deploymentsResource, "get", 1), want: true},
		{name: "api unavailable", err: apierrors.NewServiceUnavailable("apiserver restarting"), want: true},
		{name: "api internal", err: apierrors.NewInternalError(errChartInvalid), want: true},
		{name: "api not found", err: apierrors.NewNotFound(deploymentsResource, "vnet1"), want: false},
		{name: "api forbidden", err: apierrors.NewForbidden(deploymentsResource, "vnet1", errChartInvalid), want: false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, netretry.IsRetryable(testCase.err))
		})
	}
}

func TestExponentialDelay(t *testing.T) {
	t.Parallel()

	const (
		base = 3 * time.Second
		ceil = 30 * time.Second
	)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 0, want: 3 * time.Second},
		{attempt: 1, want: 3 * time.Second},
		{attempt: 2, want: 6 * time.Second},
		{attempt: 3, want: 12 * time.Second},
		{attempt: 4, want: 24 * time.Second},
		{attempt: 5, want: 30 * time.Second},
		{attempt: 12, want: 30 * time.Second},
	}

	for _, testCase := range tests {
		t.Run(fmt.Sprintf("attempt %d", testCase.attempt), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, netretry.ExponentialDelay(testCase.attempt, base, ceil))
		})
	}
}
