package helm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Juniper/eda-apstra-project/pkg/client/helm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	errConnRefused = errors.New("dial tcp 10.96.0.1:443: connect: connection refused")
	errBadChart    = errors.New("chart requires kubeVersion >= 1.30")
)

func validatorSpec() *helm.ChartSpec {
	return &helm.ChartSpec{
		ReleaseName:     "eda-validator",
		ChartPath:       "playbooks/helm-charts/juniper-eda-validator",
		Namespace:       "default",
		CreateNamespace: true,
		Wait:            true,
		Timeout:         time.Minute,
	}
}

func TestInstallChartWithRetry(t *testing.T) {
	t.Parallel()

	released := &helm.ReleaseInfo{Name: "eda-validator", Namespace: "default", Revision: 1, Status: "deployed"}

	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   error
	}{
		{name: "first attempt succeeds", wantCalls: 1},
		{name: "transient error then success", errs: []error{errConnRefused}, wantCalls: 2},
		{name: "non retryable error stops", errs: []error{errBadChart}, wantCalls: 1, wantErr: errBadChart},
		{
			name:      "retries exhausted",
			errs:      []error{errConnRefused, errConnRefused, errConnRefused, errConnRefused, errConnRefused},
			wantCalls: 5,
			wantErr:   errConnRefused,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := helm.NewMockInterface(t)
			spec := validatorSpec()
			calls := 0

			client.EXPECT().InstallOrUpgradeChart(mock.Anything, spec).
				RunAndReturn(func(context.Context, *helm.ChartSpec) (*helm.ReleaseInfo, error) {
					calls++
					if calls <= len(tt.errs) {
						return nil, tt.errs[calls-1]
					}

					return released, nil
				})

			info, err := helm.InstallChartWithRetry(context.Background(), client, spec, time.Millisecond)

			assert.Equal(t, tt.wantCalls, calls)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), "eda-validator")
				assert.Nil(t, info)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, released, info)
		})
	}
}

func TestInstallChartWithRetryCancelledDuringBackoff(t *testing.T) {
	t.Parallel()

	client := helm.NewMockInterface(t)
	ctx, cancel := context.WithCancel(context.Background())

	client.EXPECT().InstallOrUpgradeChart(mock.Anything, mock.Anything).
		RunAndReturn(func(context.Context, *helm.ChartSpec) (*helm.ReleaseInfo, error) {
			cancel()

			return nil, errConnRefused
		}).Once()

	_, err := helm.InstallChartWithRetry(ctx, client, validatorSpec(), time.Hour)

	require.ErrorIs(t, err, context.Canceled)
}

func TestInstallOrUpgradeReleaseAppliesDeadline(t *testing.T) {
	t.Parallel()

	client := helm.NewMockInterface(t)
	spec := validatorSpec()
	start := time.Now()

	client.EXPECT().InstallOrUpgradeChart(mock.Anything, spec).
		Run(func(ctx context.Context, _ *helm.ChartSpec) {
			deadline, ok := ctx.Deadline()
			assert.True(t, ok)
			assert.WithinDuration(t, start.Add(spec.Timeout+helm.ContextTimeoutBuffer), deadline, 10*time.Second)
		}).
		Return(&helm.ReleaseInfo{Name: spec.ReleaseName}, nil).Once()

	info, err := helm.InstallOrUpgradeRelease(context.Background(), client, spec)

	require.NoError(t, err)
	assert.Equal(t, "eda-validator", info.Name)
}
