package v1alpha1

import (
	"time"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Config is the eda-validator configuration.
type Config struct {
	// Kubeconfig is the kubeconfig path. Empty uses the default loading rules.
	Kubeconfig string `json:"kubeconfig,omitempty" mapstructure:"kubeconfig"`
	// Context is the kubeconfig context. Empty uses the current context.
	Context    string `json:"context,omitempty" mapstructure:"context"`
	// Namespace holds the workloads created by the release.
	Namespace  string `json:"namespace,omitempty" mapstructure:"namespace"`

	Release        Release        `json:"release"        mapstructure:"release"`
	Readiness      Readiness      `json:"readiness"      mapstructure:"readiness"`
	Network        Network        `json:"network"        mapstructure:"network"`
	VirtualMachine VirtualMachine `json:"virtualMachine" mapstructure:"virtualMachine"`
	Probe          Probe          `json:"probe"          mapstructure:"probe"`
}

// Release describes the Helm release under test.
type Release struct {
	Name       string        `json:"name,omitempty"       mapstructure:"name"`
	Namespace  string        `json:"namespace,omitempty"  mapstructure:"namespace"`
	ChartPath  string        `json:"chartPath,omitempty"  mapstructure:"chartPath"`
	ValuesPath string        `json:"valuesPath,omitempty" mapstructure:"valuesPath"`
	Timeout    time.Duration `json:"timeout,omitempty"    mapstructure:"timeout"`

	// SetValues are "key=value" overrides in --set syntax, applied after the
	// values document in order.
	SetValues []string `json:"set,omitempty" mapstructure:"set"`
}

// ValueFiles returns the values documents layered into the release.
func (r Release) ValueFiles() []string {
	if r.ValuesPath == "" {
		return nil
	}

	return []string{r.ValuesPath}
}

// Readiness bounds every readiness wait.
type Readiness struct {
	MaxAttempts int           `json:"maxAttempts,omitempty" mapstructure:"maxAttempts"`
	Interval    time.Duration `json:"interval,omitempty"    mapstructure:"interval"`
}

// Network names where addresses are read from.
type Network struct {
	// StatusAnnotation is the pod annotation carrying network-status records.
	StatusAnnotation string `json:"statusAnnotation,omitempty" mapstructure:"statusAnnotation"`
	// PodInterface is the workload pod interface on virtual network 1.
	PodInterface     string `json:"podInterface,omitempty" mapstructure:"podInterface"`
	// VMInterface is the netplan ethernet of the virtual machine on virtual network 2.
	VMInterface      string `json:"vmInterface,omitempty" mapstructure:"vmInterface"`
	// ConfigVolumeKey is the volume source key holding inline cloud-init.
	ConfigVolumeKey  string `json:"configVolumeKey,omitempty" mapstructure:"configVolumeKey"`
}

// VirtualMachine addresses the virtual machine custom resource.
type VirtualMachine struct {
	Group    string `json:"group,omitempty"    mapstructure:"group"`
	Version  string `json:"version,omitempty"  mapstructure:"version"`
	Resource string `json:"resource,omitempty" mapstructure:"resource"`
}

// GVR returns the group/version/resource of the virtual machine type.
func (v VirtualMachine) GVR() schema.GroupVersionResource {
	return schema.GroupVersionResource{Group: v.Group, Version: v.Version, Resource: v.Resource}
}

// Probe configures the connectivity probe.
type Probe struct {
	Count     int    `json:"count,omitempty" mapstructure:"count"`
	// Container selects the exec container. Empty uses the pod default.
	Container string `json:"container,omitempty" mapstructure:"container"`
}
