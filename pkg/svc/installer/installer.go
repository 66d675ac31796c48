package installer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Juniper/eda-apstra-project/pkg/apis/validator/v1alpha1"
	"github.com/Juniper/eda-apstra-project/pkg/client/helm"
	"github.com/sirupsen/logrus"
)

// ErrReleaseRequired is returned when the configuration names no release or chart.
var ErrReleaseRequired = errors.New("installer: release name and chart path are required")

// Interface installs and uninstalls the release under test.
type Interface interface {
	// Install installs or upgrades the release.
	Install(ctx context.Context) error

	// Uninstall removes the release.
	Uninstall(ctx context.Context) error
}

// Installer manages a single release of a local chart.
type Installer struct {
	client helm.Interface
	spec   *helm.ChartSpec
	log    logrus.FieldLogger
}

var _ Interface = (*Installer)(nil)

// NewInstaller creates an Installer for release using client.
func NewInstaller(client helm.Interface, release v1alpha1.Release, log logrus.FieldLogger) (*Installer, error) {
	if release.Name == "" || release.ChartPath == "" {
		return nil, ErrReleaseRequired
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Installer{
		client: client,
		spec:   ChartSpecFor(release),
		log:    log.WithFields(logrus.Fields{"release": release.Name, "namespace": release.Namespace}),
	}, nil
}

// ChartSpecFor maps release configuration onto a Helm chart spec.
func ChartSpecFor(release v1alpha1.Release) *helm.ChartSpec {
	spec := &helm.ChartSpec{
		ReleaseName:     release.Name,
		ChartPath:       release.ChartPath,
		Namespace:       release.Namespace,
		CreateNamespace: true,
		Wait:            true,
		Timeout:         release.Timeout,
		Silent:          true,
		ValueFiles:      release.ValueFiles(),
		SetValues:       release.SetValues,
	}

	return spec
}

// Spec returns the chart spec used for installs.
func (i *Installer) Spec() *helm.ChartSpec {
	return i.spec
}

// Install installs or upgrades the release, retrying transient failures.
func (i *Installer) Install(ctx context.Context) error {
	started := time.Now()

	info, err := helm.InstallOrUpgradeRelease(ctx, i.client, i.spec)
	if err != nil {
		return fmt.Errorf("failed to install %s release: %w", i.spec.ReleaseName, err)
	}

	entry := i.log.WithField("duration", time.Since(started))
	if info != nil {
		entry = entry.WithFields(logrus.Fields{
			"revision":   info.Revision,
			"status":     info.Status,
			"chart":      info.Chart,
			"appVersion": info.AppVersion,
		})
	}

	entry.Debug("release installed")

	return nil
}

// Uninstall removes the release.
func (i *Installer) Uninstall(ctx context.Context) error {
	err := i.client.UninstallRelease(ctx, i.spec.ReleaseName, i.spec.Namespace)
	if err != nil {
		return fmt.Errorf("failed to uninstall %s release: %w", i.spec.ReleaseName, err)
	}

	i.log.Debug("release uninstalled")

	return nil
}
