package readiness

import (
	"context"
	"fmt"
	"time"

	"github.com/Juniper/eda-apstra-project/pkg/client/kube"
	"github.com/Juniper/eda-apstra-project/pkg/svc/verifyerr"
	"github.com/sirupsen/logrus"
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Poller waits for workloads to converge.
type Poller struct {
	client kube.Interface
	sleep  Sleeper
	log    logrus.FieldLogger
}

// Option configures a Poller.
type Option func(*Poller)

// WithSleeper replaces the timer-based sleeper.
func WithSleeper(sleep Sleeper) Option {
	return func(p *Poller) {
		p.sleep = sleep
	}
}

// WithLogger sets the logger used for per-attempt debug output.
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Poller) {
		p.log = log
	}
}

// NewPoller creates a Poller reading through client.
func NewPoller(client kube.Interface, opts ...Option) *Poller {
	poller := &Poller{
		client: client,
		sleep:  timerSleep,
		log:    logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(poller)
	}

	return poller
}

// WaitUntilReady fetches ref until observed(desc) == desired(desc) or
// maxAttempts fetches have been made.
//
// It returns the descriptor of the converged attempt. Failures are
// *verifyerr.Error values: Timeout when the budget runs out, ApiError as soon
// as a fetch fails (fetch errors are never retried), and Cancelled when ctx
// ends. A Timeout comes with the descriptor of the last attempt.
func (p *Poller) WaitUntilReady(
	ctx context.Context,
	ref kube.ResourceRef,
	desired CountFunc,
	observed CountFunc,
	maxAttempts int,
	interval time.Duration,
) (*kube.WorkloadDescriptor, error) {
	if maxAttempts < 1 || interval < 0 {
		return nil, fmt.Errorf("%w: attempts=%d interval=%s", ErrInvalidBudget, maxAttempts, interval)
	}

	log := p.log.WithFields(logrus.Fields{
		"resource":  ref.String(),
		"namespace": ref.Namespace,
	})

	var last *kube.WorkloadDescriptor

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ctxErr := ctx.Err()
		if ctxErr != nil {
			return nil, verifyerr.New(verifyerr.KindCancelled, ref.String(), ref.Namespace, ctxErr)
		}

		desc, err := p.client.Get(ctx, ref)
		if err != nil {
			return nil, verifyerr.FromAPIError(err, ref.String(), ref.Namespace)
		}

		last = desc

		want, got := desired(desc), observed(desc)
		if got == want {
			log.WithField("attempt", attempt).Debugf("ready (%d/%d)", got, want)

			return desc, nil
		}

		log.WithField("attempt", attempt).Debugf("not ready (%d/%d)", got, want)

		if attempt == maxAttempts {
			break
		}

		sleepErr := p.sleep(ctx, interval)
		if sleepErr != nil {
			return nil, verifyerr.New(verifyerr.KindCancelled, ref.String(), ref.Namespace, sleepErr)
		}
	}

	return last, verifyerr.New(
		verifyerr.KindTimeout,
		ref.String(),
		ref.Namespace,
		fmt.Errorf("%w: not ready after %d attempts at %s intervals", ErrTimeoutExceeded, maxAttempts, interval),
	)
}

func timerSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("readiness wait cancelled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
