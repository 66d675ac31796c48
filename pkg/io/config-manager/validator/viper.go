package configmanager

import (
	"strings"

	"github.com/Juniper/eda-apstra-project/pkg/apis/validator/v1alpha1"
	"github.com/spf13/viper"
)

// Viper setup.
const (
	EnvPrefix       = "EDA_VALIDATOR"
	ConfigName      = "eda-validator"
	ConfigType      = "yaml"
	UserConfigPath  = "$HOME/.config/eda-validator"
	LocalConfigPath = "."
)

// InitializeViper returns a viper instance with search paths, environment
// binding and every default registered. Registering defaults makes each key
// visible to AutomaticEnv.
func InitializeViper() *viper.Viper {
	v := viper.New()

	v.SetConfigName(ConfigName)
	v.SetConfigType(ConfigType)
	v.AddConfigPath(LocalConfigPath)
	v.AddConfigPath(UserConfigPath)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaults(v1alpha1.NewConfig()) {
		v.SetDefault(key, value)
	}

	return v
}

func defaults(config *v1alpha1.Config) map[string]any {
	return map[string]any{
		"kubeconfig":               config.Kubeconfig,
		"context":                  config.Context,
		"namespace":                config.Namespace,
		"release.name":             config.Release.Name,
		"release.namespace":        config.Release.Namespace,
		"release.chartPath":        config.Release.ChartPath,
		"release.valuesPath":       config.Release.ValuesPath,
		"release.timeout":          config.Release.Timeout,
		"release.set":              []string{},
		"readiness.maxAttempts":    config.Readiness.MaxAttempts,
		"readiness.interval":       config.Readiness.Interval,
		"network.statusAnnotation": config.Network.StatusAnnotation,
		"network.podInterface":     config.Network.PodInterface,
		"network.vmInterface":      config.Network.VMInterface,
		"network.configVolumeKey":  config.Network.ConfigVolumeKey,
		"virtualMachine.group":     config.VirtualMachine.Group,
		"virtualMachine.version":   config.VirtualMachine.Version,
		"virtualMachine.resource":  config.VirtualMachine.Resource,
		"probe.count":              config.Probe.Count,
		"probe.container":          config.Probe.Container,
	}
}
