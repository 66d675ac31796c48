package helm

import (
	"context"
	"fmt"
	"time"

	"github.com/Juniper/eda-apstra-project/pkg/client/netretry"
)

const (
	// ContextTimeoutBuffer is added to the Helm timeout so the context
	// outlives Helm's own status wait.
	ContextTimeoutBuffer = 5 * time.Minute

	chartInstallMaxRetries    = 5
	chartInstallRetryBaseWait = 3 * time.Second
	chartInstallRetryMaxWait  = 30 * time.Second
)

// InstallOrUpgradeRelease installs or upgrades spec under a deadline of the
// Helm timeout plus ContextTimeoutBuffer, retrying transient failures.
func InstallOrUpgradeRelease(ctx context.Context, client Interface, spec *ChartSpec) (*ReleaseInfo, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeoutOrDefault(spec.Timeout)+ContextTimeoutBuffer)
	defer cancel()

	return InstallChartWithRetry(timeoutCtx, client, spec, chartInstallRetryBaseWait)
}

// InstallChartWithRetry calls InstallOrUpgradeChart up to five times,
// backing off exponentially from baseWait while the failure is a transient
// network or API error.
func InstallChartWithRetry(
	ctx context.Context,
	client Interface,
	spec *ChartSpec,
	baseWait time.Duration,
) (*ReleaseInfo, error) {
	var lastErr error

	for attempt := 1; attempt <= chartInstallMaxRetries; attempt++ {
		info, err := client.InstallOrUpgradeChart(ctx, spec)
		if err == nil {
			return info, nil
		}

		lastErr = err

		if !netretry.IsRetryable(err) || attempt == chartInstallMaxRetries {
			break
		}

		delay := netretry.ExponentialDelay(attempt, baseWait, chartInstallRetryMaxWait)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()

			return nil, fmt.Errorf("chart install retry cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("failed to install release %s: %w", spec.ReleaseName, lastErr)
}
