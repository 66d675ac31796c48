package v1alpha1

import "errors"

// ErrFieldRequired is returned when a required field is empty.
var ErrFieldRequired = errors.New("field is required")

// ErrInvalidBudget is returned for a non-positive attempt count or a negative interval.
var ErrInvalidBudget = errors.New("invalid readiness budget")

// ErrInvalidProbeCount is returned for a probe count below 1.
var ErrInvalidProbeCount = errors.New("invalid probe count")

// ErrInvalidName is returned when a Kubernetes object name is not DNS-1123 compliant.
var ErrInvalidName = errors.New("invalid name")
