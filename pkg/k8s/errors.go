package k8s

import "errors"

// ErrSelectorEmpty is returned when a workload declares no selector labels.
var ErrSelectorEmpty = errors.New("label selector is empty")
