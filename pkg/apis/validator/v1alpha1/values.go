package v1alpha1

import (
	"errors"
	"fmt"

	"sigs.k8s.io/yaml"
)

// ErrValuesIncomplete is returned when the values document lacks a workload name.
var ErrValuesIncomplete = errors.New("values document is incomplete")

// Values is the part of the chart values document the verification reads.
type Values struct {
	Workloads Workloads `json:"workloads"`
}

// Workloads lists the workloads the chart renders.
type Workloads struct {
	Deployment DeploymentValues `json:"deployment"`
	KubevirtVM KubevirtVMValues `json:"kubevirtvm"`
}

// DeploymentValues describes the container workload on virtual network 1.
type DeploymentValues struct {
	Name string `json:"name"`
}

// KubevirtVMValues describes the virtual machine on virtual network 2.
type KubevirtVMValues struct {
	Name     string        `json:"name"`
	SriovNet SriovNetValue `json:"sriovnet"`
}

// SriovNetValue carries the virtual network 2 range hints.
type SriovNetValue struct {
	RangeStart string `json:"rangeStart,omitempty"`
}

// ParseValues decodes a values document and checks both workload names are set.
func ParseValues(data []byte) (*Values, error) {
	var values Values

	err := yaml.Unmarshal(data, &values)
	if err != nil {
		return nil, fmt.Errorf("decode values document: %w", err)
	}

	var missing []error

	if values.Workloads.Deployment.Name == "" {
		missing = append(missing, fmt.Errorf("%w: workloads.deployment.name", ErrValuesIncomplete))
	}

	if values.Workloads.KubevirtVM.Name == "" {
		missing = append(missing, fmt.Errorf("%w: workloads.kubevirtvm.name", ErrValuesIncomplete))
	}

	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}

	return &values, nil
}
