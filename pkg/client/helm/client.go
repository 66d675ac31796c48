// Package helm installs and removes releases of local charts through the
// Helm v4 SDK.
package helm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	helmv4action "helm.sh/helm/v4/pkg/action"
	helmv4loader "helm.sh/helm/v4/pkg/chart/loader"
	chartv2 "helm.sh/helm/v4/pkg/chart/v2"
	helmv4cli "helm.sh/helm/v4/pkg/cli"
	helmv4kube "helm.sh/helm/v4/pkg/kube"
	v1 "helm.sh/helm/v4/pkg/release/v1"
)

// DefaultTimeout is used when a ChartSpec sets no timeout.
const DefaultTimeout = 5 * time.Minute

var (
	errReleaseNameRequired = errors.New("helm: release name is required")
	errChartPathRequired   = errors.New("helm: chart path is required")
	errChartSpecRequired   = errors.New("helm: chart spec is required")
	errUnexpectedChart     = errors.New("helm: unexpected chart type")
	errUnexpectedRelease   = errors.New("helm: unexpected release type")
)

// ChartSpec describes a release of a chart on the local filesystem.
type ChartSpec struct {
	ReleaseName string
	ChartPath   string
	Namespace   string

	CreateNamespace bool
	Wait            bool
	Timeout         time.Duration
	Silent          bool

	ValueFiles []string
	// SetValues are "key=value" assignments in --set syntax, applied in order.
	SetValues []string
}

// ReleaseInfo captures metadata about a release after an operation.
type ReleaseInfo struct {
	Name       string
	Namespace  string
	Revision   int
	Status     string
	Chart      string
	AppVersion string
}

// Interface is the Helm functionality the validator needs.
//
//go:generate mockery --name=Interface --output=. --filename=mocks.go
type Interface interface {
	InstallOrUpgradeChart(ctx context.Context, spec *ChartSpec) (*ReleaseInfo, error)
	UninstallRelease(ctx context.Context, releaseName, namespace string) error
}

// Client is the default Interface implementation.
type Client struct {
	actionConfig *helmv4action.Configuration
	settings     *helmv4cli.EnvSettings
	debugLog     func(string, ...any)
}

var _ Interface = (*Client)(nil)

// NewClientWithLogger creates a Client for the given kubeconfig and context.
// Empty values fall back to Helm's environment settings. debug receives
// namespace switch failures.
func NewClientWithLogger(kubeConfig, kubeContext string, debug func(string, ...any)) (*Client, error) {
	if debug == nil {
		debug = func(string, ...any) {}
	}

	settings := helmv4cli.New()
	if kubeConfig != "" {
		settings.KubeConfig = kubeConfig
	}

	if kubeContext != "" {
		settings.KubeContext = kubeContext
	}

	actionConfig := new(helmv4action.Configuration)

	err := actionConfig.Init(settings.RESTClientGetter(), settings.Namespace(), os.Getenv("HELM_DRIVER"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize helm action config: %w", err)
	}

	return &Client{actionConfig: actionConfig, settings: settings, debugLog: debug}, nil
}

// InstallOrUpgradeChart upgrades the release when it has history and installs it otherwise.
func (c *Client) InstallOrUpgradeChart(ctx context.Context, spec *ChartSpec) (*ReleaseInfo, error) {
	return c.installRelease(ctx, spec)
}

// UninstallRelease removes releaseName from namespace.
func (c *Client) UninstallRelease(ctx context.Context, releaseName, namespace string) error {
	if releaseName == "" {
		return errReleaseNameRequired
	}

	ctxErr := ctx.Err()
	if ctxErr != nil {
		return fmt.Errorf("uninstall release context cancelled: %w", ctxErr)
	}

	cleanup, err := c.switchNamespace(namespace)
	if err != nil {
		return err
	}
	defer cleanup()

	client := helmv4action.NewUninstall(c.actionConfig)
	client.KeepHistory = false
	client.WaitStrategy = helmv4kube.HookOnlyStrategy

	_, err = client.Run(releaseName)
	if err != nil {
		return fmt.Errorf("uninstall release %q: %w", releaseName, err)
	}

	return nil
}

func (c *Client) installRelease(ctx context.Context, spec *ChartSpec) (*ReleaseInfo, error) {
	err := validateSpec(spec)
	if err != nil {
		return nil, err
	}

	cleanup, err := c.switchNamespace(spec.Namespace)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	chart, err := loadChart(spec.ChartPath)
	if err != nil {
		return nil, err
	}

	values, err := MergeValues(spec)
	if err != nil {
		return nil, err
	}

	run := func() (any, error) {
		if c.releaseExists(spec.ReleaseName) {
			return c.newUpgrade(spec).RunWithContext(ctx, spec.ReleaseName, chart, values)
		}

		return c.newInstall(spec).RunWithContext(ctx, chart, values)
	}

	var result any
	if spec.Silent {
		result, err = runWithSilencedStderr(run)
	} else {
		result, err = run()
	}

	if err != nil {
		return nil, fmt.Errorf("release %q: %w", spec.ReleaseName, err)
	}

	rel, ok := result.(*v1.Release)
	if !ok {
		return nil, fmt.Errorf("%w: %T", errUnexpectedRelease, result)
	}

	return releaseToInfo(rel), nil
}

func (c *Client) releaseExists(name string) bool {
	history := helmv4action.NewHistory(c.actionConfig)
	history.Max = 1

	releases, err := history.Run(name)

	return err == nil && len(releases) > 0
}

func (c *Client) newInstall(spec *ChartSpec) *helmv4action.Install {
	client := helmv4action.NewInstall(c.actionConfig)
	client.ReleaseName = spec.ReleaseName
	client.Namespace = spec.Namespace
	client.CreateNamespace = spec.CreateNamespace
	client.WaitStrategy = waitStrategy(spec)
	client.Timeout = timeoutOrDefault(spec.Timeout)

	return client
}

func (c *Client) newUpgrade(spec *ChartSpec) *helmv4action.Upgrade {
	client := helmv4action.NewUpgrade(c.actionConfig)
	client.Namespace = spec.Namespace
	client.WaitStrategy = waitStrategy(spec)
	client.Timeout = timeoutOrDefault(spec.Timeout)

	return client
}

func (c *Client) switchNamespace(namespace string) (func(), error) {
	previous := c.settings.Namespace()
	if namespace == "" || previous == namespace {
		return func() {}, nil
	}

	c.settings.SetNamespace(namespace)

	err := c.actionConfig.Init(c.settings.RESTClientGetter(), namespace, os.Getenv("HELM_DRIVER"))
	if err != nil {
		c.settings.SetNamespace(previous)
		_ = c.actionConfig.Init(c.settings.RESTClientGetter(), previous, os.Getenv("HELM_DRIVER"))

		return nil, fmt.Errorf("failed to set helm namespace %q: %w", namespace, err)
	}

	return func() {
		c.settings.SetNamespace(previous)

		restoreErr := c.actionConfig.Init(c.settings.RESTClientGetter(), previous, os.Getenv("HELM_DRIVER"))
		if restoreErr != nil {
			c.debugLog("failed to restore helm namespace: %v", restoreErr)
		}
	}, nil
}

func validateSpec(spec *ChartSpec) error {
	switch {
	case spec == nil:
		return errChartSpecRequired
	case spec.ReleaseName == "":
		return errReleaseNameRequired
	case spec.ChartPath == "":
		return errChartPathRequired
	default:
		return nil
	}
}

func loadChart(path string) (*chartv2.Chart, error) {
	loaded, err := helmv4loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart %s: %w", path, err)
	}

	chart, ok := loaded.(*chartv2.Chart)
	if !ok {
		return nil, fmt.Errorf("%w: %T", errUnexpectedChart, loaded)
	}

	return chart, nil
}

func waitStrategy(spec *ChartSpec) helmv4kube.WaitStrategy {
	if spec.Wait {
		return helmv4kube.StatusWatcherStrategy
	}

	return helmv4kube.HookOnlyStrategy
}

func timeoutOrDefault(timeout time.Duration) time.Duration {
	if timeout == 0 {
		return DefaultTimeout
	}

	return timeout
}

func releaseToInfo(rel *v1.Release) *ReleaseInfo {
	if rel == nil {
		return nil
	}

	info := &ReleaseInfo{
		Name:      rel.Name,
		Namespace: rel.Namespace,
		Revision:  rel.Version,
	}

	if rel.Info != nil {
		info.Status = rel.Info.Status.String()
	}

	if rel.Chart != nil && rel.Chart.Metadata != nil {
		info.Chart = rel.Chart.Metadata.Name
		info.AppVersion = rel.Chart.Metadata.AppVersion
	}

	return info
}
