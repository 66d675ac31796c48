package di

import (
	"github.com/Juniper/eda-apstra-project/pkg/apis/validator/v1alpha1"
	"github.com/Juniper/eda-apstra-project/pkg/client/helm"
	"github.com/Juniper/eda-apstra-project/pkg/client/kube"
	"github.com/Juniper/eda-apstra-project/pkg/client/podexec"
	"github.com/Juniper/eda-apstra-project/pkg/k8s"
	"github.com/Juniper/eda-apstra-project/pkg/svc/installer"
	"github.com/Juniper/eda-apstra-project/pkg/utils/timer"
	"github.com/samber/do/v2"
	"github.com/sirupsen/logrus"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// Dependency providers.

// NewRuntime constructs the shared runtime container used by the commands.
// Providers that need configuration expect it from ProvideConfig.
func NewRuntime() *Runtime {
	return New(
		provideTimer,
		provideLogger,
		provideKubernetesClients,
		provideHelmClient,
		provideInstaller,
	)
}

// ProvideConfig registers the loaded configuration.
func ProvideConfig(config *v1alpha1.Config) Module {
	return func(i Injector) error {
		do.ProvideValue(i, config)

		return nil
	}
}

func provideTimer(i Injector) error {
	do.Provide(i, func(Injector) (timer.Timer, error) {
		return timer.New(), nil
	})

	return nil
}

func provideLogger(i Injector) error {
	do.Provide(i, func(Injector) (logrus.FieldLogger, error) {
		return logrus.StandardLogger(), nil
	})

	return nil
}

func provideKubernetesClients(i Injector) error {
	do.Provide(i, func(i Injector) (*rest.Config, error) {
		config, err := ResolveConfig(i)
		if err != nil {
			return nil, err
		}

		return k8s.BuildRESTConfig(config.Kubeconfig, config.Context)
	})

	do.Provide(i, func(i Injector) (kubernetes.Interface, error) {
		restConfig, err := do.Invoke[*rest.Config](i)
		if err != nil {
			return nil, err
		}

		return k8s.NewClientset(restConfig)
	})

	do.Provide(i, func(i Injector) (dynamic.Interface, error) {
		restConfig, err := do.Invoke[*rest.Config](i)
		if err != nil {
			return nil, err
		}

		return k8s.NewDynamicClient(restConfig)
	})

	do.Provide(i, func(i Injector) (kube.Interface, error) {
		clientset, err := ResolveClientset(i)
		if err != nil {
			return nil, err
		}

		dynamicClient, err := do.Invoke[dynamic.Interface](i)
		if err != nil {
			return nil, err
		}

		return kube.NewClient(clientset, dynamicClient), nil
	})

	do.Provide(i, func(i Injector) (podexec.Interface, error) {
		config, err := ResolveConfig(i)
		if err != nil {
			return nil, err
		}

		restConfig, err := do.Invoke[*rest.Config](i)
		if err != nil {
			return nil, err
		}

		return podexec.NewExecutor(restConfig, podexec.WithContainer(config.Probe.Container))
	})

	return nil
}

func provideHelmClient(i Injector) error {
	do.Provide(i, func(i Injector) (helm.Interface, error) {
		config, err := ResolveConfig(i)
		if err != nil {
			return nil, err
		}

		log, err := ResolveLogger(i)
		if err != nil {
			return nil, err
		}

		return helm.NewClientWithLogger(config.Kubeconfig, config.Context, log.Debugf)
	})

	return nil
}

func provideInstaller(i Injector) error {
	do.Provide(i, func(i Injector) (installer.Interface, error) {
		config, err := ResolveConfig(i)
		if err != nil {
			return nil, err
		}

		client, err := ResolveHelmClient(i)
		if err != nil {
			return nil, err
		}

		log, err := ResolveLogger(i)
		if err != nil {
			return nil, err
		}

		return installer.NewInstaller(client, config.Release, log)
	})

	return nil
}
