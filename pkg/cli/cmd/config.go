package cmd

import (
	"fmt"
	"io"

	"github.com/Juniper/eda-apstra-project/pkg/apis/validator/v1alpha1"
	"github.com/Juniper/eda-apstra-project/pkg/di"
	configmanager "github.com/Juniper/eda-apstra-project/pkg/io/config-manager"
	validatorconfigmanager "github.com/Juniper/eda-apstra-project/pkg/io/config-manager/validator"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	flagConfig     = "config"
	flagVerbose    = "verbose"
	flagKubeconfig = "kubeconfig"
	flagContext    = "context"
	flagNamespace  = "namespace"

	flagRelease          = "release"
	flagReleaseNamespace = "release-namespace"
	flagChart            = "chart"
	flagValues           = "values"
	flagReleaseTimeout   = "release-timeout"
	flagSet              = "set"

	flagMaxAttempts    = "max-attempts"
	flagInterval       = "interval"
	flagPodInterface   = "pod-interface"
	flagVMInterface    = "vm-interface"
	flagProbeCount     = "probe-count"
	flagProbeContainer = "probe-container"
)

func addReleaseFlags(flags *pflag.FlagSet) {
	flags.String(flagRelease, v1alpha1.DefaultReleaseName, "Helm release name")
	flags.String(flagReleaseNamespace, v1alpha1.DefaultReleaseNamespace, "namespace the Helm release is recorded in")
	flags.String(flagChart, v1alpha1.DefaultChartPath, "path to the validator chart")
	flags.String(flagValues, v1alpha1.DefaultValuesPath, "path to the chart values document")
	flags.Duration(flagReleaseTimeout, v1alpha1.DefaultReleaseTimeout, "time to wait for the release to become ready")
	flags.StringArray(flagSet, nil, "set chart values on top of the values document (key1=val1,key2=val2); later values win")
}

func addVerifyFlags(flags *pflag.FlagSet) {
	flags.Int(flagMaxAttempts, v1alpha1.DefaultMaxAttempts, "readiness checks per workload before giving up")
	flags.Duration(flagInterval, v1alpha1.DefaultInterval, "wait between readiness checks")
	flags.String(flagPodInterface, v1alpha1.DefaultPodInterface, "pod interface attached to virtual network 1")
	flags.String(flagVMInterface, v1alpha1.DefaultVMInterface, "virtual machine interface attached to virtual network 2")
	flags.Int(flagProbeCount, v1alpha1.DefaultProbeCount, "echo requests sent by the connectivity probe")
	flags.String(flagProbeContainer, "", "container the probe runs in (default is the pod default container)")
}

// configModule loads the configuration from the command's flags and
// registers it, with a lazily read values document.
func configModule(cmd *cobra.Command) di.Module {
	return func(injector di.Injector) error {
		configFile, err := cmd.Flags().GetString(flagConfig)
		if err != nil {
			return fmt.Errorf("read --%s: %w", flagConfig, err)
		}

		manager := validatorconfigmanager.NewConfigManager(configWriter(cmd), configFile)

		err = manager.BindFlags(cmd.Flags())
		if err != nil {
			return err
		}

		config, err := manager.Load(configmanager.LoadOptions{})
		if err != nil {
			return err
		}

		err = di.ProvideConfig(config)(injector)
		if err != nil {
			return err
		}

		do.Provide(injector, func(di.Injector) (*v1alpha1.Values, error) {
			return manager.LoadValues()
		})

		return nil
	}
}

// configWriter shows config loading progress only in verbose mode.
func configWriter(cmd *cobra.Command) io.Writer {
	verbose, _ := cmd.Flags().GetBool(flagVerbose)
	if verbose {
		return cmd.OutOrStdout()
	}

	return io.Discard
}
