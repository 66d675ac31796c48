package v1alpha1

import (
	"errors"
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"
)

// Validate reports every invalid field of c at once.
func (c *Config) Validate() error {
	var errs []error

	required := []struct {
		field string
		value string
	}{
		{"namespace", c.Namespace},
		{"release.name", c.Release.Name},
		{"release.namespace", c.Release.Namespace},
		{"network.podInterface", c.Network.PodInterface},
		{"network.vmInterface", c.Network.VMInterface},
		{"network.configVolumeKey", c.Network.ConfigVolumeKey},
		{"virtualMachine.version", c.VirtualMachine.Version},
		{"virtualMachine.resource", c.VirtualMachine.Resource},
	}

	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrFieldRequired, field.field))
		}
	}

	errs = append(errs,
		validateName("namespace", c.Namespace, validation.IsDNS1123Label),
		validateName("release.namespace", c.Release.Namespace, validation.IsDNS1123Label),
	)

	if c.Readiness.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("%w: readiness.maxAttempts must be at least 1, got %d",
			ErrInvalidBudget, c.Readiness.MaxAttempts))
	}

	if c.Readiness.Interval < 0 {
		errs = append(errs, fmt.Errorf("%w: readiness.interval must not be negative, got %s",
			ErrInvalidBudget, c.Readiness.Interval))
	}

	if c.Probe.Count < 1 {
		errs = append(errs, fmt.Errorf("%w: probe.count must be at least 1, got %d",
			ErrInvalidProbeCount, c.Probe.Count))
	}

	return errors.Join(errs...)
}

func validateName(field, value string, check func(string) []string) error {
	if value == "" {
		return nil
	}

	problems := check(value)
	if len(problems) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %s %q: %s", ErrInvalidName, field, value, strings.Join(problems, "; "))
}
