package configmanager

import (
	"errors"
	"fmt"
	"io"

	"github.com/Juniper/eda-apstra-project/pkg/apis/validator/v1alpha1"
	"github.com/Juniper/eda-apstra-project/pkg/client/helm"
	"github.com/Juniper/eda-apstra-project/pkg/envvar"
	"github.com/Juniper/eda-apstra-project/pkg/fsutil"
	configmanagerinterface "github.com/Juniper/eda-apstra-project/pkg/io/config-manager"
	"github.com/Juniper/eda-apstra-project/pkg/utils/notify"
	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"sigs.k8s.io/yaml"
)

// FlagBindings maps configuration keys to the flag names that override them.
//
//nolint:gochecknoglobals // static lookup table
var FlagBindings = map[string]string{
	"kubeconfig":            "kubeconfig",
	"context":               "context",
	"namespace":             "namespace",
	"release.name":          "release",
	"release.namespace":     "release-namespace",
	"release.chartPath":     "chart",
	"release.valuesPath":    "values",
	"release.timeout":       "release-timeout",
	"release.set":           "set",
	"readiness.maxAttempts": "max-attempts",
	"readiness.interval":    "interval",
	"network.podInterface":  "pod-interface",
	"network.vmInterface":   "vm-interface",
	"probe.count":           "probe-count",
	"probe.container":       "probe-container",
}

// ConfigManager loads v1alpha1.Config.
type ConfigManager struct {
	Viper  *viper.Viper
	Config *v1alpha1.Config
	Writer io.Writer

	configFile      string
	configFileFound bool
	loaded          bool
}

var _ configmanagerinterface.ConfigManager[v1alpha1.Config] = (*ConfigManager)(nil)

// NewConfigManager creates a ConfigManager writing notifications to writer.
// A non-empty configFile replaces the config search paths.
func NewConfigManager(writer io.Writer, configFile string) *ConfigManager {
	manager := &ConfigManager{
		Viper:      InitializeViper(),
		Config:     v1alpha1.NewConfig(),
		Writer:     writer,
		configFile: configFile,
	}

	if configFile != "" {
		manager.Viper.SetConfigFile(configFile)
	}

	return manager
}

// BindFlags binds every flag in flags that overrides a configuration key.
func (m *ConfigManager) BindFlags(flags *pflag.FlagSet) error {
	for key, name := range FlagBindings {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}

		err := m.Viper.BindPFlag(key, flag)
		if err != nil {
			return fmt.Errorf("bind flag --%s to %s: %w", name, key, err)
		}
	}

	return nil
}

// Load implements configmanager.ConfigManager. Later calls return the
// configuration loaded first.
func (m *ConfigManager) Load(opts configmanagerinterface.LoadOptions) (*v1alpha1.Config, error) {
	if m.loaded {
		return m.Config, nil
	}

	if !opts.Silent {
		notify.Activityf(m.Writer, "loading configuration")
	}

	if !opts.IgnoreConfigFile {
		err := m.readConfig()
		if err != nil {
			return nil, err
		}
	}

	config := v1alpha1.NewConfig()

	err := m.Viper.Unmarshal(config, func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	envvar.ExpandAll(&config.Kubeconfig, &config.Release.ChartPath, &config.Release.ValuesPath)

	err = fsutil.ExpandHomePaths(&config.Kubeconfig, &config.Release.ChartPath, &config.Release.ValuesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to expand configured paths: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	m.Config = config
	m.loaded = true

	if !opts.Silent {
		m.notifyLoaded(opts)
	}

	return m.Config, nil
}

// LoadValues reads the chart values the release is installed with: the
// values document, resolved the way the installer resolves it, with the
// release's --set overrides applied.
func (m *ConfigManager) LoadValues() (*v1alpha1.Values, error) {
	release := m.Config.Release

	merged, err := helm.MergeValues(&helm.ChartSpec{
		ChartPath:  release.ChartPath,
		ValueFiles: release.ValueFiles(),
		SetValues:  release.SetValues,
	})
	if err != nil {
		return nil, fmt.Errorf("merge chart values: %w", err)
	}

	data, err := yaml.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encode merged values: %w", err)
	}

	return v1alpha1.ParseValues(data)
}

// ConfigFileUsed returns the config file that was read, or "" when none was found.
func (m *ConfigManager) ConfigFileUsed() string {
	if !m.configFileFound {
		return ""
	}

	return m.Viper.ConfigFileUsed()
}

func (m *ConfigManager) readConfig() error {
	err := m.Viper.ReadInConfig()
	if err == nil {
		m.configFileFound = true

		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) && m.configFile == "" {
		return nil
	}

	return fmt.Errorf("failed to read config file: %w", err)
}

func (m *ConfigManager) notifyLoaded(opts configmanagerinterface.LoadOptions) {
	if m.configFileFound {
		notify.Infof(m.Writer, "using config file %s", m.Viper.ConfigFileUsed())
	} else {
		notify.Infof(m.Writer, "no config file found, using defaults")
	}

	if opts.Timer != nil {
		notify.SuccessWithTimerf(m.Writer, opts.Timer, "configuration loaded")

		return
	}

	notify.Successf(m.Writer, "configuration loaded")
}
