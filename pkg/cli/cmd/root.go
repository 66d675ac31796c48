package cmd

import (
	"fmt"
	"sync"

	"github.com/Juniper/eda-apstra-project/pkg/apis/validator/v1alpha1"
	"github.com/Juniper/eda-apstra-project/pkg/cli/ui/errorhandler"
	"github.com/Juniper/eda-apstra-project/pkg/di"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // logrus is process-wide
var logrusConfigOnce sync.Once

// NewRootCmd creates and returns the root command with version info and subcommands.
func NewRootCmd(version, commit, date string) *cobra.Command {
	return NewRootCmdWithRuntime(di.NewRuntime(), version, commit, date)
}

// NewRootCmdWithRuntime is NewRootCmd with an explicit dependency runtime.
func NewRootCmdWithRuntime(runtime *di.Runtime, version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eda-validator",
		Short: "Verify Juniper EDA validator workloads and their connectivity",
		Long: "eda-validator installs the validator Helm release and verifies that its container " +
			"workload on virtual network 1 can reach its virtual machine on virtual network 2.",
		RunE:              handleRootRunE,
		PersistentPreRunE: configureLogging,
		SilenceUsage:      true,
	}

	cmd.Version = fmt.Sprintf("%s (Built on %s from Git SHA %s)", version, date, commit)

	flags := cmd.PersistentFlags()
	flags.String(flagConfig, "", "config file (default is ./eda-validator.yaml or $HOME/.config/eda-validator/eda-validator.yaml)")
	flags.BoolP(flagVerbose, "v", false, "enable debug logging")
	flags.String(flagKubeconfig, "", "path to the kubeconfig file")
	flags.String(flagContext, "", "kubeconfig context to use")
	flags.StringP(flagNamespace, "n", v1alpha1.DefaultNamespace, "namespace of the workloads under test")

	cmd.AddCommand(NewVerifyCmd(runtime))
	cmd.AddCommand(NewInstallCmd(runtime))
	cmd.AddCommand(NewUninstallCmd(runtime))

	return cmd
}

// Execute runs the provided root command and handles errors.
func Execute(cmd *cobra.Command) error {
	executor := errorhandler.NewExecutor()

	err := executor.Execute(cmd)
	if err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}

func handleRootRunE(cmd *cobra.Command, _ []string) error {
	// The err can safely be ignored, as it can never fail at runtime.
	_ = cmd.Help()

	return nil
}

func configureLogging(cmd *cobra.Command, _ []string) error {
	logrusConfigOnce.Do(func() {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05Z07:00",
		})
	})

	verbose, err := cmd.Flags().GetBool(flagVerbose)
	if err != nil {
		return fmt.Errorf("read --%s: %w", flagVerbose, err)
	}

	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

	return nil
}
