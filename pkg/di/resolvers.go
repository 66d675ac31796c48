package di

import (
	"fmt"

	"github.com/Juniper/eda-apstra-project/pkg/apis/validator/v1alpha1"
	"github.com/Juniper/eda-apstra-project/pkg/client/helm"
	"github.com/Juniper/eda-apstra-project/pkg/client/kube"
	"github.com/Juniper/eda-apstra-project/pkg/client/podexec"
	"github.com/Juniper/eda-apstra-project/pkg/svc/installer"
	"github.com/Juniper/eda-apstra-project/pkg/utils/timer"
	"github.com/samber/do/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"k8s.io/client-go/kubernetes"
)

// Dependency resolvers.

// ResolveTimer retrieves the timer dependency from the injector with consistent error handling.
func ResolveTimer(injector Injector) (timer.Timer, error) {
	tmr, err := do.Invoke[timer.Timer](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve timer dependency: %w", err)
	}

	return tmr, nil
}

// ResolveLogger retrieves the diagnostic logger.
func ResolveLogger(injector Injector) (logrus.FieldLogger, error) {
	log, err := do.Invoke[logrus.FieldLogger](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve logger dependency: %w", err)
	}

	return log, nil
}

// ResolveConfig retrieves the configuration registered by ProvideConfig.
func ResolveConfig(injector Injector) (*v1alpha1.Config, error) {
	config, err := do.Invoke[*v1alpha1.Config](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve config dependency: %w", err)
	}

	return config, nil
}

// ResolveClientset retrieves the typed Kubernetes client.
func ResolveClientset(injector Injector) (kubernetes.Interface, error) {
	clientset, err := do.Invoke[kubernetes.Interface](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve kubernetes client dependency: %w", err)
	}

	return clientset, nil
}

// ResolveResourceClient retrieves the resource status client.
func ResolveResourceClient(injector Injector) (kube.Interface, error) {
	client, err := do.Invoke[kube.Interface](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve resource client dependency: %w", err)
	}

	return client, nil
}

// ResolvePodExecutor retrieves the pod command executor.
func ResolvePodExecutor(injector Injector) (podexec.Interface, error) {
	executor, err := do.Invoke[podexec.Interface](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve pod executor dependency: %w", err)
	}

	return executor, nil
}

// ResolveHelmClient retrieves the Helm client.
func ResolveHelmClient(injector Injector) (helm.Interface, error) {
	client, err := do.Invoke[helm.Interface](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve helm client dependency: %w", err)
	}

	return client, nil
}

// ResolveInstaller retrieves the release installer.
func ResolveInstaller(injector Injector) (installer.Interface, error) {
	inst, err := do.Invoke[installer.Interface](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve installer dependency: %w", err)
	}

	return inst, nil
}

// Handler decorators.

// WithTimer decorates a handler to automatically resolve the timer dependency.
func WithTimer(
	handler func(cmd *cobra.Command, injector Injector, tmr timer.Timer) error,
) func(cmd *cobra.Command, injector Injector) error {
	return func(cmd *cobra.Command, injector Injector) error {
		tmr, err := ResolveTimer(injector)
		if err != nil {
			return err
		}

		return handler(cmd, injector, tmr)
	}
}
