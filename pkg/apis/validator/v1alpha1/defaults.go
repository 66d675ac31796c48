package v1alpha1

import (
	"time"

	nadv1 "github.com/k8snetworkplumbingwg/network-attachment-definition-client/pkg/apis/k8s.cni.cncf.io/v1"
)

// Default configuration values.
const (
	DefaultNamespace              = "apstra-rhocp-demo-helm"
	DefaultReleaseName            = "juniper-eda-validator"
	DefaultReleaseNamespace       = "default"
	DefaultChartPath              = "playbooks/helm-charts/juniper-eda-validator"
	DefaultValuesPath             = DefaultChartPath + "/values.yaml"
	DefaultReleaseTimeout         = 5 * time.Minute
	DefaultMaxAttempts            = 10
	DefaultInterval               = 10 * time.Second
	DefaultStatusAnnotation       = nadv1.NetworkStatusAnnot
	DefaultPodInterface           = "ext0"
	DefaultVMInterface            = "enp7s0"
	DefaultConfigVolumeKey        = "cloudInitConfigDrive"
	DefaultVirtualMachineGroup    = "kubevirt.io"
	DefaultVirtualMachineVersion  = "v1"
	DefaultVirtualMachineResource = "virtualmachines"
	DefaultProbeCount             = 3
)

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Namespace: DefaultNamespace,
		Release: Release{
			Name:       DefaultReleaseName,
			Namespace:  DefaultReleaseNamespace,
			ChartPath:  DefaultChartPath,
			ValuesPath: DefaultValuesPath,
			Timeout:    DefaultReleaseTimeout,
		},
		Readiness: Readiness{
			MaxAttempts: DefaultMaxAttempts,
			Interval:    DefaultInterval,
		},
		Network: Network{
			StatusAnnotation: DefaultStatusAnnotation,
			PodInterface:     DefaultPodInterface,
			VMInterface:      DefaultVMInterface,
			ConfigVolumeKey:  DefaultConfigVolumeKey,
		},
		VirtualMachine: VirtualMachine{
			Group:    DefaultVirtualMachineGroup,
			Version:  DefaultVirtualMachineVersion,
			Resource: DefaultVirtualMachineResource,
		},
		Probe: Probe{Count: DefaultProbeCount},
	}
}
