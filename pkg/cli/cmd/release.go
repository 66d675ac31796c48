package cmd

import (
	"context"
	"io"

	"github.com/Juniper/eda-apstra-project/pkg/apis/validator/v1alpha1"
	"github.com/Juniper/eda-apstra-project/pkg/di"
	"github.com/Juniper/eda-apstra-project/pkg/utils/notify"
	"github.com/Juniper/eda-apstra-project/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// NewInstallCmd creates the install command.
func NewInstallCmd(runtime *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install or upgrade the validator release",
		Long:  "Install the validator chart from the local chart path, or upgrade the release when it exists.",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = di.RunEWithRuntime(runtime, di.WithTimer(handleInstall), configModule)

	addReleaseFlags(cmd.Flags())

	return cmd
}

// NewUninstallCmd creates the uninstall command.
func NewUninstallCmd(runtime *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Uninstall the validator release",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = di.RunEWithRuntime(runtime, di.WithTimer(handleUninstall), configModule)

	addReleaseFlags(cmd.Flags())

	return cmd
}

func handleInstall(cmd *cobra.Command, injector di.Injector, tmr timer.Timer) error {
	config, err := di.ResolveConfig(injector)
	if err != nil {
		return err
	}

	tmr.Start()

	return installRelease(cmd.Context(), injector, cmd.OutOrStdout(), tmr, config)
}

func handleUninstall(cmd *cobra.Command, injector di.Injector, tmr timer.Timer) error {
	config, err := di.ResolveConfig(injector)
	if err != nil {
		return err
	}

	inst, err := di.ResolveInstaller(injector)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	tmr.Start()
	notify.Titlef(out, "🗑️", "Uninstall release...")
	notify.Activityf(out, "uninstalling %s from %s", config.Release.Name, config.Release.Namespace)

	err = inst.Uninstall(cmd.Context())
	if err != nil {
		return err
	}

	notify.SuccessWithTimerf(out, tmr, "release %s uninstalled", config.Release.Name)

	return nil
}

func installRelease(
	ctx context.Context,
	injector di.Injector,
	out io.Writer,
	tmr timer.Timer,
	config *v1alpha1.Config,
) error {
	inst, err := di.ResolveInstaller(injector)
	if err != nil {
		return err
	}

	notify.Titlef(out, "📦", "Install release...")
	notify.Activityf(out, "installing %s into %s from %s", config.Release.Name, config.Release.Namespace, config.Release.ChartPath)

	err = inst.Install(ctx)
	if err != nil {
		return err
	}

	notify.SuccessWithTimerf(out, tmr, "release %s installed", config.Release.Name)

	return nil
}
