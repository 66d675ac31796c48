// Package fixtures builds synthetic Kubernetes objects for verification tests.
package fixtures

import (
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/utils/ptr"
)

// Namespace is the namespace every fixture lives in.
const Namespace = "apstra-rhocp-demo-helm"

// NetworkStatusAnnotation is the Multus network-status annotation key.
const NetworkStatusAnnotation = "k8s.v1.cni.cncf.io/network-status"

// VirtualMachineGVR addresses KubeVirt VirtualMachines.
var VirtualMachineGVR = schema.GroupVersionResource{ //nolint:gochecknoglobals // immutable test fixture
	Group:    "kubevirt.io",
	Version:  "v1",
	Resource: "virtualmachines",
}

// UserData is cloud-config user data whose first write_files entry carries a
// netplan document giving enp7s0 the address 10.1.2.7/24.
const UserData = `#cloud-config
user: cloud-user
write_files:
- path: /etc/netplan/60-vnet2.yaml
  permissions: "0600"
  content: |
    network:
      version: 2
      ethernets:
        enp7s0:
          dhcp4: false
          addresses:
          - 10.1.2.7/24
          routes:
          - to: 10.1.1.0/24
            via: 10.1.2.1
runcmd:
- netplan apply
`

// Deployment returns a Deployment selecting app=<name>.
func Deployment(name string, desired, available int32) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: Namespace},
		Spec: appsv1.DeploymentSpec{
			Replicas: ptr.To(desired),
			Selector: &metav1.LabelSelector{MatchLabels: map[string]string{"app": name}},
		},
		Status: appsv1.DeploymentStatus{AvailableReplicas: available},
	}
}

// Pod returns a pod labelled app=<app> with an optional network-status annotation.
func Pod(name, app, networkStatus string) *corev1.Pod {
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: Namespace,
			Labels:    map[string]string{"app": app},
		},
		Status: corev1.PodStatus{Phase: corev1.PodRunning},
	}

	if networkStatus != "" {
		pod.Annotations = map[string]string{NetworkStatusAnnotation: networkStatus}
	}

	return pod
}

// VirtualMachine returns a ready KubeVirt VirtualMachine whose template
// declares volumes in order.
func VirtualMachine(name string, volumes ...any) *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "kubevirt.io/v1",
		"kind":       "VirtualMachine",
		"metadata": map[string]any{
			"name":      name,
			"namespace": Namespace,
		},
		"spec": map[string]any{
			"running": true,
			"template": map[string]any{
				"metadata": map[string]any{
					"labels": map[string]any{"kubevirt.io/vm": name},
				},
				"spec": map[string]any{
					"volumes": volumes,
				},
			},
		},
		"status": map[string]any{
			"ready": true,
		},
	}}
}

// ContainerDiskVolume returns a volume without cloud-init.
func ContainerDiskVolume(name string) map[string]any {
	return map[string]any{
		"name": name,
		"containerDisk": map[string]any{
			"image": "quay.io/containerdisks/fedora:40",
		},
	}
}

// ConfigDriveVolume returns a cloudInitConfigDrive volume with inline user data.
func ConfigDriveVolume(userData string) map[string]any {
	return map[string]any{
		"name": "cloudinitdisk",
		"cloudInitConfigDrive": map[string]any{
			"userData": userData,
		},
	}
}
