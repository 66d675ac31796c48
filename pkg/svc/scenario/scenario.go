package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"time"

	"github.com/Juniper/eda-apstra-project/pkg/client/kube"
	"github.com/Juniper/eda-apstra-project/pkg/k8s"
	"github.com/Juniper/eda-apstra-project/pkg/k8s/readiness"
	"github.com/Juniper/eda-apstra-project/pkg/svc/probe"
	"github.com/Juniper/eda-apstra-project/pkg/svc/resolver"
	"github.com/Juniper/eda-apstra-project/pkg/svc/verifyerr"
	"github.com/Juniper/eda-apstra-project/pkg/utils/notify"
	"github.com/Juniper/eda-apstra-project/pkg/utils/timer"
	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// ErrMarkerAbsent is wrapped by UnreachableResult failures.
var ErrMarkerAbsent = errors.New("success marker absent from probe output")

// Target names the workloads a release is expected to create.
type Target struct {
	Namespace         string
	Deployment        string
	VirtualMachine    string
	VirtualMachineGVR schema.GroupVersionResource
	// RangeStartHint is the first address of the VM network range from the
	// values document. A mismatch with the resolved address is only warned about.
	RangeStartHint string
}

// Budget bounds each readiness wait.
type Budget struct {
	MaxAttempts int
	Interval    time.Duration
}

// Components are the collaborators a Scenario drives.
type Components struct {
	Poller *readiness.Poller
	Pods   *resolver.PodNetwork
	VMs    *resolver.VMNetwork
	Prober *probe.Prober
}

// Diagnoser summarizes unhealthy pods matching selector in namespace.
type Diagnoser func(ctx context.Context, namespace, selector string) string

// StageTiming records how long a stage took.
type StageTiming struct {
	Stage    verifyerr.Stage
	Duration time.Duration
}

// Report describes a run. On failure it lists the stages that were entered.
type Report struct {
	SourcePod     string
	SourceAddress netip.Addr
	TargetAddress netip.Addr
	Probe         *probe.Result
	Stages        []StageTiming
}

// Scenario is a single verification run. It holds no state between runs.
type Scenario struct {
	target     Target
	budget     Budget
	components Components
	diagnose   Diagnoser
	out        io.Writer
	log        logrus.FieldLogger
	now        func() time.Time
}

// Option configures a Scenario.
type Option func(*Scenario)

// WithOutput sets the writer for user-facing progress lines.
func WithOutput(out io.Writer) Option {
	return func(s *Scenario) {
		s.out = out
	}
}

// WithLogger sets the structured logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Scenario) {
		s.log = log
	}
}

// WithClock sets the clock each run's stage timer reads.
func WithClock(now func() time.Time) Option {
	return func(s *Scenario) {
		s.now = now
	}
}

// WithDiagnoser attaches pod diagnostics to readiness timeouts.
func WithDiagnoser(diagnose Diagnoser) Option {
	return func(s *Scenario) {
		s.diagnose = diagnose
	}
}

// New creates a Scenario.
func New(target Target, budget Budget, components Components, opts ...Option) *Scenario {
	scenario := &Scenario{
		target:     target,
		budget:     budget,
		components: components,
		out:        io.Discard,
		log:        logrus.StandardLogger(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(scenario)
	}

	return scenario
}

type stage struct {
	name  verifyerr.Stage
	emoji string
	title string
	run   func(ctx context.Context) error
}

// run carries values between stages of one Run call.
type run struct {
	*Scenario

	timer      timer.Timer
	report     *Report
	deployment *kube.WorkloadDescriptor
}

// Run executes Start, AwaitReadiness, ResolveAddressA, ResolveAddressB,
// RunProbe and Assert in order. ctx is checked before every stage.
func (s *Scenario) Run(ctx context.Context) (*Report, error) {
	current := &run{Scenario: s, timer: timer.NewWithClock(s.now), report: &Report{}}

	stages := []stage{
		{verifyerr.StageStart, "🚀", "Verify release workloads...", current.start},
		{verifyerr.StageAwaitReadiness, "⏳", "Await readiness...", current.awaitReadiness},
		{verifyerr.StageResolveAddressA, "🔎", "Resolve workload pod address...", current.resolvePod},
		{verifyerr.StageResolveAddressB, "🔎", "Resolve virtual machine address...", current.resolveVM},
		{verifyerr.StageRunProbe, "📡", "Probe connectivity...", current.runProbe},
		{verifyerr.StageAssert, "🧪", "Assert reachability...", current.assert},
	}

	current.timer.Start()

	for _, next := range stages {
		ctxErr := ctx.Err()
		if ctxErr != nil {
			err := verifyerr.New(verifyerr.KindCancelled, "", s.target.Namespace, ctxErr)

			return current.report, s.fail(next.name, err)
		}

		current.timer.NewStage()
		notify.Titlef(s.out, next.emoji, "%s", next.title)
		s.log.WithField("stage", next.name).Debug("stage started")

		err := next.run(ctx)

		_, elapsed := current.timer.GetTiming()
		current.report.Stages = append(current.report.Stages, StageTiming{Stage: next.name, Duration: elapsed})

		if err != nil {
			return current.report, s.fail(next.name, err)
		}
	}

	current.timer.Stop()
	current.report.Stages = append(current.report.Stages, StageTiming{Stage: verifyerr.StageDone})

	notify.SuccessWithTimerf(s.out, current.timer, "%s reached %s from pod %s",
		current.report.SourceAddress, current.report.TargetAddress, current.report.SourcePod)

	return current.report, nil
}

func (s *Scenario) fail(name verifyerr.Stage, err error) error {
	err = verifyerr.WithStage(err, name)

	s.log.WithFields(logrus.Fields{
		"stage": name,
		"kind":  verifyerr.KindOf(err),
	}).Debug(err.Error())

	return err
}

func (s *Scenario) deploymentRef() kube.ResourceRef {
	return kube.DeploymentRef(s.target.Namespace, s.target.Deployment)
}

func (s *Scenario) vmRef() kube.ResourceRef {
	return kube.CustomResourceRef(s.target.VirtualMachineGVR, s.target.Namespace, s.target.VirtualMachine)
}

func (r *run) start(_ context.Context) error {
	notify.Infof(r.out, "namespace %s, deployment %s, virtual machine %s",
		r.target.Namespace, r.target.Deployment, r.target.VirtualMachine)

	return nil
}

func (r *run) awaitReadiness(ctx context.Context) error {
	for _, ref := range []kube.ResourceRef{r.deploymentRef(), r.vmRef()} {
		notify.Activityf(r.out, "waiting for %s", ref)

		desc, err := r.components.Poller.WaitUntilReady(
			ctx,
			ref,
			readiness.DesiredCount,
			readiness.ObservedReadyCount,
			r.budget.MaxAttempts,
			r.budget.Interval,
		)
		if err != nil {
			return r.withDiagnostics(ctx, desc, err)
		}

		if !ref.IsCustom() {
			r.deployment = desc
		}

		notify.Successf(r.out, "%s ready", ref)
	}

	return nil
}

// withDiagnostics attaches a summary of the workload's failing pods to a
// readiness timeout. Without a known selector the whole namespace is listed.
func (r *run) withDiagnostics(ctx context.Context, desc *kube.WorkloadDescriptor, err error) error {
	var verr *verifyerr.Error
	if r.diagnose == nil || !errors.As(err, &verr) || verr.Kind != verifyerr.KindTimeout {
		return err
	}

	var selector string
	if desc != nil {
		selector, _ = k8s.SelectorFromMap(desc.Selector)
	}

	summary := r.diagnose(ctx, r.target.Namespace, selector)
	if summary != "" {
		verr.WithOutput(summary)
	}

	return err
}

func (r *run) resolvePod(ctx context.Context) error {
	source, err := r.components.Pods.Resolve(ctx, r.deployment)
	if err != nil {
		return err
	}

	r.report.SourcePod = source.Pod
	r.report.SourceAddress = source.Address

	notify.Successf(r.out, "pod %s has address %s", source.Pod, source.Address)

	return nil
}

func (r *run) resolveVM(ctx context.Context) error {
	address, err := r.components.VMs.Resolve(ctx, r.vmRef())
	if err != nil {
		return err
	}

	r.report.TargetAddress = address

	notify.Successf(r.out, "%s has address %s", r.vmRef(), address)
	r.checkRangeHint(address)

	return nil
}

func (r *run) checkRangeHint(address netip.Addr) {
	if r.target.RangeStartHint == "" {
		return
	}

	hint, err := resolver.ParseAddress(r.target.RangeStartHint)
	if err != nil {
		notify.Warningf(r.out, "range start hint %q is not an address", r.target.RangeStartHint)
		r.log.WithField("stage", verifyerr.StageResolveAddressB).Warn(err.Error())

		return
	}

	if hint != address {
		notify.Warningf(r.out, "resolved address %s differs from range start hint %s", address, hint)
		r.log.WithFields(logrus.Fields{
			"stage":    verifyerr.StageResolveAddressB,
			"resolved": address.String(),
			"hint":     hint.String(),
		}).Warn("virtual machine address differs from range start hint")
	}
}

func (r *run) runProbe(ctx context.Context) error {
	result, err := r.components.Prober.Probe(ctx, r.report.SourcePod, r.target.Namespace, r.report.TargetAddress)
	if err != nil {
		return err
	}

	r.report.Probe = result

	notify.Activityf(r.out, "%v exited with status %d", result.Command, result.ExitCode)

	return nil
}

func (r *run) assert(_ context.Context) error {
	if r.report.Probe.Reachable {
		notify.Successf(r.out, "all echo requests answered")

		return nil
	}

	return verifyerr.New(
		verifyerr.KindUnreachableResult,
		"pod/"+r.report.SourcePod,
		r.target.Namespace,
		fmt.Errorf("%w: %q", ErrMarkerAbsent, r.components.Prober.Marker()),
	).WithOutput(r.report.Probe.Output)
}
