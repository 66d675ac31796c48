package di_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Juniper/eda-apstra-project/pkg/apis/validator/v1alpha1"
	"github.com/Juniper/eda-apstra-project/pkg/client/helm"
	"github.com/Juniper/eda-apstra-project/pkg/di"
	"github.com/Juniper/eda-apstra-project/pkg/svc/installer"
	"github.com/Juniper/eda-apstra-project/pkg/utils/timer"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKubeconfig = `apiVersion: v1
kind: Config
clusters:
- name: lab
  cluster:
    server: https://127.0.0.1:6443
contexts:
- name: lab
  context:
    cluster: lab
    user: lab
current-context: lab
users:
- name: lab
  user:
    token: secret
`

func testConfig(t *testing.T) *v1alpha1.Config {
	t.Helper()

	path := filepath.Join(t.TempDir(), "kubeconfig")
	require.NoError(t, os.WriteFile(path, []byte(testKubeconfig), 0o600))

	config := v1alpha1.NewConfig()
	config.Kubeconfig = path
	config.Release.ChartPath = "playbooks/helm-charts/juniper-eda-validator"

	return config
}

func TestNewRuntimeProvidesKubernetesClients(t *testing.T) {
	t.Parallel()

	err := di.NewRuntime().Invoke(func(injector di.Injector) error {
		config, err := di.ResolveConfig(injector)
		require.NoError(t, err)
		assert.Equal(t, v1alpha1.DefaultNamespace, config.Namespace)

		clientset, err := di.ResolveClientset(injector)
		require.NoError(t, err)
		assert.NotNil(t, clientset)

		client, err := di.ResolveResourceClient(injector)
		require.NoError(t, err)
		assert.NotNil(t, client)

		executor, err := di.ResolvePodExecutor(injector)
		require.NoError(t, err)
		assert.NotNil(t, executor)

		log, err := di.ResolveLogger(injector)
		require.NoError(t, err)
		assert.NotNil(t, log)

		return nil
	}, di.ProvideConfig(testConfig(t)))

	require.NoError(t, err)
}

func TestNewRuntimeProvidesInstallerWithOverriddenHelm(t *testing.T) {
	t.Parallel()

	client := helm.NewMockInterface(t)
	overrideHelm := func(i di.Injector) error {
		do.OverrideValue[helm.Interface](i, client)

		return nil
	}

	err := di.NewRuntime().Invoke(func(injector di.Injector) error {
		inst, err := di.ResolveInstaller(injector)
		require.NoError(t, err)

		concrete, ok := inst.(*installer.Installer)
		require.True(t, ok)
		assert.Equal(t, v1alpha1.DefaultReleaseName, concrete.Spec().ReleaseName)

		return nil
	}, di.ProvideConfig(testConfig(t)), overrideHelm)

	require.NoError(t, err)
}

func TestResolversWithoutConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		resolve func(di.Injector) error
		want    string
	}{
		{
			name:    "config",
			resolve: func(i di.Injector) error { _, err := di.ResolveConfig(i); return err },
			want:    "resolve config dependency",
		},
		{
			name:    "resource client",
			resolve: func(i di.Injector) error { _, err := di.ResolveResourceClient(i); return err },
			want:    "resolve resource client dependency",
		},
		{
			name:    "pod executor",
			resolve: func(i di.Injector) error { _, err := di.ResolvePodExecutor(i); return err },
			want:    "resolve pod executor dependency",
		},
		{
			name:    "installer",
			resolve: func(i di.Injector) error { _, err := di.ResolveInstaller(i); return err },
			want:    "resolve installer dependency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := di.NewRuntime().Invoke(tt.resolve)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestResolveTimerFromEmptyInjector(t *testing.T) {
	t.Parallel()

	tmr, err := di.ResolveTimer(do.New())

	require.Error(t, err)
	assert.Nil(t, tmr)
	assert.Contains(t, err.Error(), "resolve timer dependency")
}

func TestWithTimer(t *testing.T) {
	t.Parallel()

	called := false
	handler := di.WithTimer(func(_ *cobra.Command, _ di.Injector, tmr timer.Timer) error {
		called = true

		tmr.Start()

		return nil
	})

	err := di.NewRuntime().Invoke(func(injector di.Injector) error {
		return handler(&cobra.Command{}, injector)
	})

	require.NoError(t, err)
	assert.True(t, called)
}
