package readiness

import "github.com/Juniper/eda-apstra-project/pkg/client/kube"

// CountFunc extracts a replica or instance count from a descriptor.
type CountFunc func(desc *kube.WorkloadDescriptor) int32

// DesiredCount returns the declared count, defaulting to 1 when the API
// omits it (the apiserver default for spec.replicas).
func DesiredCount(desc *kube.WorkloadDescriptor) int32 {
	if desc == nil || desc.DesiredCount == nil {
		return 1
	}

	return *desc.DesiredCount
}

// ObservedReadyCount returns the ready count, defaulting to 0 when the API
// omits it (availableReplicas is dropped from status while zero).
func ObservedReadyCount(desc *kube.WorkloadDescriptor) int32 {
	if desc == nil || desc.ObservedReadyCount == nil {
		return 0
	}

	return *desc.ObservedReadyCount
}
