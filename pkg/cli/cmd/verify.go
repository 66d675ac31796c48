package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/Juniper/eda-apstra-project/pkg/apis/validator/v1alpha1"
	"github.com/Juniper/eda-apstra-project/pkg/di"
	"github.com/Juniper/eda-apstra-project/pkg/k8s"
	"github.com/Juniper/eda-apstra-project/pkg/k8s/readiness"
	"github.com/Juniper/eda-apstra-project/pkg/svc/probe"
	"github.com/Juniper/eda-apstra-project/pkg/svc/resolver"
	"github.com/Juniper/eda-apstra-project/pkg/svc/scenario"
	"github.com/Juniper/eda-apstra-project/pkg/svc/verifyerr"
	"github.com/Juniper/eda-apstra-project/pkg/utils/notify"
	"github.com/Juniper/eda-apstra-project/pkg/utils/timer"
	"github.com/samber/do/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type verifyOptions struct {
	install  bool
	teardown bool
}

// NewVerifyCmd creates the verify command.
func NewVerifyCmd(runtime *di.Runtime) *cobra.Command {
	opts := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the release workloads can reach each other",
		Long: "Wait for the release's deployment and virtual machine to become ready, resolve the " +
			"pod address on virtual network 1 and the virtual machine address on virtual network 2, " +
			"and ping the virtual machine from the pod.",
		Args: cobra.NoArgs,
	}

	cmd.RunE = di.RunEWithRuntime(
		runtime,
		di.WithTimer(func(cmd *cobra.Command, injector di.Injector, tmr timer.Timer) error {
			return handleVerify(cmd, injector, tmr, opts)
		}),
		configModule,
	)

	flags := cmd.Flags()
	flags.BoolVar(&opts.install, "install", false, "install or upgrade the release before verifying")
	flags.BoolVar(&opts.teardown, "teardown", false, "uninstall the release after verifying")
	addReleaseFlags(flags)
	addVerifyFlags(flags)

	return cmd
}

//nolint:nonamedreturns // teardown inspects and may replace the result
func handleVerify(
	cmd *cobra.Command,
	injector di.Injector,
	tmr timer.Timer,
	opts *verifyOptions,
) (err error) {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	config, err := di.ResolveConfig(injector)
	if err != nil {
		return err
	}

	log, err := di.ResolveLogger(injector)
	if err != nil {
		return err
	}

	if opts.install {
		err = installRelease(ctx, injector, out, tmr, config)
		if err != nil {
			return verifyerr.WithStage(err, verifyerr.StageInstall)
		}
	}

	if opts.teardown {
		defer func() {
			err = teardownRelease(ctx, injector, out, err)
		}()
	}

	values, err := do.Invoke[*v1alpha1.Values](injector)
	if err != nil {
		return fmt.Errorf("load values document: %w", err)
	}

	run, err := newScenario(injector, config, values, out, log)
	if err != nil {
		return err
	}

	report, err := run.Run(ctx)
	if report != nil {
		for _, stage := range report.Stages {
			log.WithFields(logrus.Fields{"stage": stage.Stage, "duration": stage.Duration}).Debug("stage finished")
		}
	}

	return err
}

func newScenario(
	injector di.Injector,
	config *v1alpha1.Config,
	values *v1alpha1.Values,
	out io.Writer,
	log logrus.FieldLogger,
) (*scenario.Scenario, error) {
	client, err := di.ResolveResourceClient(injector)
	if err != nil {
		return nil, err
	}

	executor, err := di.ResolvePodExecutor(injector)
	if err != nil {
		return nil, err
	}

	target := scenario.Target{
		Namespace:         config.Namespace,
		Deployment:        values.Workloads.Deployment.Name,
		VirtualMachine:    values.Workloads.KubevirtVM.Name,
		VirtualMachineGVR: config.VirtualMachine.GVR(),
		RangeStartHint:    values.Workloads.KubevirtVM.SriovNet.RangeStart,
	}

	budget := scenario.Budget{
		MaxAttempts: config.Readiness.MaxAttempts,
		Interval:    config.Readiness.Interval,
	}

	components := scenario.Components{
		Poller: readiness.NewPoller(client, readiness.WithLogger(log)),
		Pods:   resolver.NewPodNetwork(client, config.Network.StatusAnnotation, config.Network.PodInterface),
		VMs:    resolver.NewVMNetwork(client, config.Network.ConfigVolumeKey, config.Network.VMInterface),
		Prober: probe.NewProber(executor, probe.WithCount(config.Probe.Count), probe.WithLogger(log)),
	}

	return scenario.New(target, budget, components,
		scenario.WithOutput(out),
		scenario.WithLogger(log),
		scenario.WithDiagnoser(func(ctx context.Context, namespace, selector string) string {
			return k8s.DiagnosePodFailures(ctx, client, namespace, selector)
		}),
	), nil
}

// teardownRelease uninstalls the release. A teardown failure is returned
// only when the run itself succeeded.
func teardownRelease(ctx context.Context, injector di.Injector, out io.Writer, runErr error) error {
	notify.Titlef(out, "🧹", "Teardown release...")

	inst, err := di.ResolveInstaller(injector)
	if err == nil {
		err = inst.Uninstall(context.WithoutCancel(ctx))
	}

	switch {
	case err == nil:
		notify.Successf(out, "release uninstalled")

		return runErr
	case runErr != nil:
		notify.Warningf(out, "teardown failed: %v", err)

		return runErr
	default:
		return verifyerr.WithStage(err, verifyerr.StageTeardown)
	}
}
