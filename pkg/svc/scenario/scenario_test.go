package scenario_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Juniper/eda-apstra-project/pkg/client/kube"
	"github.com/Juniper/eda-apstra-project/pkg/client/podexec"
	"github.com/Juniper/eda-apstra-project/pkg/k8s/readiness"
	"github.com/Juniper/eda-apstra-project/pkg/svc/probe"
	"github.com/Juniper/eda-apstra-project/pkg/svc/resolver"
	"github.com/Juniper/eda-apstra-project/pkg/svc/scenario"
	"github.com/Juniper/eda-apstra-project/pkg/svc/verifyerr"
	"github.com/Juniper/eda-apstra-project/pkg/testutils/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	k8sfake "k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

const (
	deploymentName = "vnet1-deployment"
	vmName         = "vnet2-vm"
	podName        = "vnet1-deployment-7d4b9c-x2k8p"
	podStatus      = `[{"name":"apstra-rhocp-demo-helm/vnet1","interface":"ext0","ips":["10.1.1.5"]}]`
	reachable      = "PING 10.1.2.7 (10.1.2.7) 56(84) bytes of data.\n" +
		"--- 10.1.2.7 ping statistics ---\n3 packets transmitted, 3 received, 0% packet loss, time 2003ms\n"
	unreachable = "PING 10.1.2.7 (10.1.2.7) 56(84) bytes of data.\n" +
		"--- 10.1.2.7 ping statistics ---\n3 packets transmitted, 0 received, 100% packet loss, time 2051ms\n"
)

var errStreamClosed = errors.New("stream closed early")

type fakeExecutor struct {
	mu      sync.Mutex
	output  string
	err     error
	calls   int
	pod     string
	command []string
}

func (f *fakeExecutor) Exec(_ context.Context, _, pod string, command []string) (podexec.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.pod = pod
	f.command = command

	return podexec.Result{Output: f.output}, f.err
}

type harness struct {
	clientset *k8sfake.Clientset
	dynamic   *dynamicfake.FakeDynamicClient
	executor  *fakeExecutor
	sleeper   readiness.Sleeper
	sleeps    int
	vmGets    atomic.Int32
	target    scenario.Target
	budget    scenario.Budget
	opts      []scenario.Option
	out       bytes.Buffer
}

func newHarness(probeOutput string, objects ...runtime.Object) *harness {
	h := &harness{
		clientset: k8sfake.NewClientset(objects...),
		dynamic: dynamicfake.NewSimpleDynamicClientWithCustomListKinds(
			runtime.NewScheme(),
			map[schema.GroupVersionResource]string{fixtures.VirtualMachineGVR: "VirtualMachineList"},
			fixtures.VirtualMachine(vmName,
				fixtures.ContainerDiskVolume("rootdisk"),
				fixtures.ConfigDriveVolume(fixtures.UserData),
			),
		),
		executor: &fakeExecutor{output: probeOutput},
		target: scenario.Target{
			Namespace:         fixtures.Namespace,
			Deployment:        deploymentName,
			VirtualMachine:    vmName,
			VirtualMachineGVR: fixtures.VirtualMachineGVR,
		},
		budget: scenario.Budget{MaxAttempts: 3, Interval: 10 * time.Second},
	}

	h.dynamic.PrependReactor("get", "virtualmachines", func(k8stesting.Action) (bool, runtime.Object, error) {
		h.vmGets.Add(1)

		return false, nil, nil
	})

	return h
}

func readyObjects() []runtime.Object {
	return []runtime.Object{
		fixtures.Deployment(deploymentName, 1, 1),
		fixtures.Pod(podName, deploymentName, podStatus),
	}
}

func (h *harness) run(ctx context.Context) (*scenario.Report, error) {
	return h.scenario().Run(ctx)
}

func (h *harness) scenario() *scenario.Scenario {
	client := kube.NewClient(h.clientset, h.dynamic)

	sleeper := h.sleeper
	if sleeper == nil {
		sleeper = func(context.Context, time.Duration) error {
			h.sleeps++

			return nil
		}
	}

	components := scenario.Components{
		Poller: readiness.NewPoller(client, readiness.WithSleeper(sleeper)),
		Pods:   resolver.NewPodNetwork(client, "", "ext0"),
		VMs:    resolver.NewVMNetwork(client, "", "enp7s0"),
		Prober: probe.NewProber(h.executor),
	}

	opts := append([]scenario.Option{scenario.WithOutput(&h.out)}, h.opts...)

	return scenario.New(h.target, h.budget, components, opts...)
}

func stagesOf(report *scenario.Report) []verifyerr.Stage {
	stages := make([]verifyerr.Stage, 0, len(report.Stages))
	for _, timing := range report.Stages {
		stages = append(stages, timing.Stage)
	}

	return stages
}

func TestRun_Reachable(t *testing.T) {
	t.Parallel()

	h := newHarness(reachable, readyObjects()...)

	report, err := h.run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, podName, report.SourcePod)
	assert.Equal(t, "10.1.1.5", report.SourceAddress.String())
	assert.Equal(t, "10.1.2.7", report.TargetAddress.String())
	require.NotNil(t, report.Probe)
	assert.True(t, report.Probe.Reachable)
	assert.Equal(t, []verifyerr.Stage{
		verifyerr.StageStart,
		verifyerr.StageAwaitReadiness,
		verifyerr.StageResolveAddressA,
		verifyerr.StageResolveAddressB,
		verifyerr.StageRunProbe,
		verifyerr.StageAssert,
		verifyerr.StageDone,
	}, stagesOf(report))

	assert.Zero(t, h.sleeps, "ready on first poll must not sleep")
	assert.Equal(t, 1, h.executor.calls)
	assert.Equal(t, podName, h.executor.pod)
	assert.Equal(t, []string{"ping", "-c", "3", "10.1.2.7"}, h.executor.command)
	assert.Contains(t, h.out.String(), "✔ 10.1.1.5 reached 10.1.2.7 from pod "+podName)
}

func TestRun_Unreachable(t *testing.T) {
	t.Parallel()

	h := newHarness(unreachable, readyObjects()...)

	report, err := h.run(context.Background())

	require.ErrorIs(t, err, verifyerr.ErrUnreachableResult)
	require.ErrorIs(t, err, scenario.ErrMarkerAbsent)
	assert.Equal(t, verifyerr.StageAssert, verifyerr.StageOf(err))

	var verr *verifyerr.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Output, "3 packets transmitted, 0 received")
	assert.Equal(t, "pod/"+podName, verr.Resource)

	require.NotNil(t, report.Probe)
	assert.False(t, report.Probe.Reachable)
}

func TestRun_NoMatchingPodsStopsPipeline(t *testing.T) {
	t.Parallel()

	h := newHarness(reachable, fixtures.Deployment(deploymentName, 1, 1))

	report, err := h.run(context.Background())

	require.ErrorIs(t, err, verifyerr.ErrNoMatchingPods)
	assert.Equal(t, verifyerr.StageResolveAddressA, verifyerr.StageOf(err))
	assert.Equal(t, []verifyerr.Stage{
		verifyerr.StageStart,
		verifyerr.StageAwaitReadiness,
		verifyerr.StageResolveAddressA,
	}, stagesOf(report))
	assert.EqualValues(t, 1, h.vmGets.Load(), "only the readiness wait may read the virtual machine")
	assert.Zero(t, h.executor.calls)
}

func TestRun_StageTaggedFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		objects   []runtime.Object
		execErr   error
		vmIface   string
		wantErr   error
		wantStage verifyerr.Stage
	}{
		{
			name: "pod without network status",
			objects: []runtime.Object{
				fixtures.Deployment(deploymentName, 1, 1),
				fixtures.Pod(podName, deploymentName, ""),
			},
			wantErr:   verifyerr.ErrNoNetworkStatus,
			wantStage: verifyerr.StageResolveAddressA,
		},
		{
			name:      "probe transport failure",
			objects:   readyObjects(),
			execErr:   errStreamClosed,
			wantErr:   verifyerr.ErrProbeTransportFailure,
			wantStage: verifyerr.StageRunProbe,
		},
		{
			name:      "deployment missing",
			wantErr:   verifyerr.ErrAPIError,
			wantStage: verifyerr.StageAwaitReadiness,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(reachable, tc.objects...)
			h.executor.err = tc.execErr

			_, err := h.run(context.Background())

			require.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, tc.wantStage, verifyerr.StageOf(err))
		})
	}
}

func TestRun_ReadinessTimeoutWithDiagnostics(t *testing.T) {
	t.Parallel()

	var selectors []string

	h := newHarness(reachable, fixtures.Deployment(deploymentName, 1, 0))
	h.opts = append(h.opts, scenario.WithDiagnoser(func(_ context.Context, namespace, selector string) string {
		selectors = append(selectors, selector)

		return "failing pods in " + namespace + " namespace:\n  vnet1: ImagePullBackOff"
	}))

	_, err := h.run(context.Background())

	assert.Equal(t, []string{"app=" + deploymentName}, selectors)

	require.ErrorIs(t, err, verifyerr.ErrTimeout)
	require.ErrorIs(t, err, readiness.ErrTimeoutExceeded)
	assert.Equal(t, verifyerr.StageAwaitReadiness, verifyerr.StageOf(err))
	assert.Equal(t, 2, h.sleeps)

	var verr *verifyerr.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "deployment/"+deploymentName, verr.Resource)
	assert.Contains(t, verr.Output, "ImagePullBackOff")
	assert.Zero(t, h.executor.calls)
}

// steppingClock advances one second on every read.
func steppingClock() func() time.Time {
	var ticks atomic.Int64

	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	return func() time.Time {
		return start.Add(time.Duration(ticks.Add(1)) * time.Second)
	}
}

func TestRun_StageTimingsArePerRun(t *testing.T) {
	t.Parallel()

	h := newHarness(reachable, readyObjects()...)
	h.opts = append(h.opts, scenario.WithOutput(io.Discard), scenario.WithClock(steppingClock()))
	run := h.scenario()

	const runs = 4

	reports := make([]*scenario.Report, runs)
	errs := make([]error, runs)

	var wg sync.WaitGroup

	for i := range runs {
		wg.Go(func() {
			reports[i], errs[i] = run.Run(context.Background())
		})
	}

	wg.Wait()

	for i := range runs {
		require.NoError(t, errs[i])
		assert.Equal(t, []verifyerr.Stage{
			verifyerr.StageStart,
			verifyerr.StageAwaitReadiness,
			verifyerr.StageResolveAddressA,
			verifyerr.StageResolveAddressB,
			verifyerr.StageRunProbe,
			verifyerr.StageAssert,
			verifyerr.StageDone,
		}, stagesOf(reports[i]))

		for _, timing := range reports[i].Stages[:len(reports[i].Stages)-1] {
			assert.Positive(t, timing.Duration, "stage %s", timing.Stage)
		}
	}

	assert.Equal(t, runs, h.executor.calls)
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	t.Parallel()

	h := newHarness(reachable, readyObjects()...)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := h.run(ctx)

	require.ErrorIs(t, err, verifyerr.ErrCancelled)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, verifyerr.ErrTimeout)
	assert.Equal(t, verifyerr.StageStart, verifyerr.StageOf(err))
	assert.Empty(t, report.Stages)
}

func TestRun_CancelledWhileWaiting(t *testing.T) {
	t.Parallel()

	h := newHarness(reachable, fixtures.Deployment(deploymentName, 1, 0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.sleeper = func(ctx context.Context, _ time.Duration) error {
		cancel()

		return ctx.Err()
	}

	_, err := h.run(ctx)

	require.ErrorIs(t, err, verifyerr.ErrCancelled)
	assert.NotErrorIs(t, err, verifyerr.ErrTimeout)
	assert.Equal(t, verifyerr.StageAwaitReadiness, verifyerr.StageOf(err))
	assert.Zero(t, h.executor.calls)
}

func TestRun_RangeHint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		hint    string
		warning string
	}{
		{name: "matching hint", hint: "10.1.2.7"},
		{name: "matching hint with prefix", hint: "10.1.2.7/24"},
		{
			name:    "differing hint",
			hint:    "10.1.2.5",
			warning: "⚠ resolved address 10.1.2.7 differs from range start hint 10.1.2.5",
		},
		{
			name:    "unparsable hint",
			hint:    "first-free",
			warning: "⚠ range start hint \"first-free\" is not an address",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(reachable, readyObjects()...)
			h.target.RangeStartHint = tc.hint

			_, err := h.run(context.Background())

			require.NoError(t, err)

			if tc.warning == "" {
				assert.NotContains(t, h.out.String(), "⚠")
			} else {
				assert.Contains(t, h.out.String(), tc.warning)
			}
		})
	}
}
