package cmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Juniper/eda-apstra-project/pkg/cli/cmd"
	"github.com/Juniper/eda-apstra-project/pkg/client/kube"
	"github.com/Juniper/eda-apstra-project/pkg/client/podexec"
	"github.com/Juniper/eda-apstra-project/pkg/di"
	"github.com/Juniper/eda-apstra-project/pkg/svc/installer"
	"github.com/Juniper/eda-apstra-project/pkg/testutils/fixtures"
	"github.com/Juniper/eda-apstra-project/pkg/utils/timer"
	"github.com/samber/do/v2"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes"
	k8sfake "k8s.io/client-go/kubernetes/fake"
)

const (
	deploymentName = "vnet1-deployment"
	vmName         = "vnet2-vm"
	podName        = "vnet1-deployment-7d4b9c-x2k8p"
	podStatus      = `[{"name":"apstra-rhocp-demo-helm/vnet1","interface":"ext0","ips":["10.1.1.5"]}]`
	reachable      = "--- 10.1.2.7 ping statistics ---\n3 packets transmitted, 3 received, 0% packet loss\n"
	unreachable    = "--- 10.1.2.7 ping statistics ---\n3 packets transmitted, 0 received, 100% packet loss\n"
	valuesDocument = `workloads:
  deployment:
    name: vnet1-deployment
  kubevirtvm:
    name: vnet2-vm
    sriovnet:
      rangeStart: 10.1.2.7
`
)

type fakeExecutor struct {
	output string
	calls  int
}

func (f *fakeExecutor) Exec(context.Context, string, string, []string) (podexec.Result, error) {
	f.calls++

	return podexec.Result{Output: f.output}, nil
}

type fakeInstaller struct {
	installErr   error
	uninstallErr error
	installs     int
	uninstalls   int
}

func (f *fakeInstaller) Install(context.Context) error {
	f.installs++

	return f.installErr
}

func (f *fakeInstaller) Uninstall(context.Context) error {
	f.uninstalls++

	return f.uninstallErr
}

type fixture struct {
	executor  *fakeExecutor
	installer *fakeInstaller
	objects   []runtime.Object
	dir       string
}

func newFixture(t *testing.T, probeOutput string) *fixture {
	t.Helper()

	dir := t.TempDir()
	valuesPath := filepath.Join(dir, "values.yaml")
	require.NoError(t, os.WriteFile(valuesPath, []byte(valuesDocument), 0o600))

	config := "namespace: " + fixtures.Namespace + "\n" +
		"release:\n  valuesPath: " + valuesPath + "\n" +
		"readiness:\n  maxAttempts: 2\n  interval: 1ms\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "eda-validator.yaml"), []byte(config), 0o600))

	return &fixture{
		executor:  &fakeExecutor{output: probeOutput},
		installer: &fakeInstaller{},
		objects: []runtime.Object{
			fixtures.Deployment(deploymentName, 1, 1),
			fixtures.Pod(podName, deploymentName, podStatus),
		},
		dir: dir,
	}
}

func (f *fixture) runtime() *di.Runtime {
	clientset := k8sfake.NewClientset(f.objects...)
	dynamicClient := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(
		runtime.NewScheme(),
		map[schema.GroupVersionResource]string{fixtures.VirtualMachineGVR: "VirtualMachineList"},
		fixtures.VirtualMachine(vmName,
			fixtures.ContainerDiskVolume("rootdisk"),
			fixtures.ConfigDriveVolume(fixtures.UserData),
		),
	)
	log, _ := logrustest.NewNullLogger()

	return di.New(func(i di.Injector) error {
		do.ProvideValue[timer.Timer](i, timer.New())
		do.ProvideValue[logrus.FieldLogger](i, log)
		do.ProvideValue[kubernetes.Interface](i, clientset)
		do.ProvideValue[kube.Interface](i, kube.NewClient(clientset, dynamicClient))
		do.ProvideValue[podexec.Interface](i, f.executor)
		do.ProvideValue[installer.Interface](i, f.installer)

		return nil
	})
}

// execute runs the root command with args plus --config pointing at the fixture.
func (f *fixture) execute(args ...string) (string, error) {
	var out bytes.Buffer

	root := cmd.NewRootCmdWithRuntime(f.runtime(), "test", "none", "unknown")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--config", filepath.Join(f.dir, "eda-validator.yaml")))

	err := cmd.Execute(root)

	return out.String(), err
}
