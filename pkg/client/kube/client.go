package kube

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/utils/ptr"
)

// runStrategyHalted is the KubeVirt run strategy of a VM that is meant to be stopped.
const runStrategyHalted = "Halted"

// Interface is the subset of the Kubernetes API the verifier reads.
type Interface interface {
	Get(ctx context.Context, ref ResourceRef) (*WorkloadDescriptor, error)
	ListPods(ctx context.Context, namespace, selector string) ([]corev1.Pod, error)
}

// Client reads workloads through a clientset and a dynamic client.
type Client struct {
	clientset kubernetes.Interface
	dynamic   dynamic.Interface
}

var _ Interface = (*Client)(nil)

// NewClient creates a Client.
func NewClient(clientset kubernetes.Interface, dynamicClient dynamic.Interface) *Client {
	return &Client{clientset: clientset, dynamic: dynamicClient}
}

// Get fetches the descriptor of ref. API errors, including NotFound, are
// returned wrapped so callers can classify them with apierrors.
func (c *Client) Get(ctx context.Context, ref ResourceRef) (*WorkloadDescriptor, error) {
	if ref.IsCustom() {
		return c.getCustomResource(ctx, ref)
	}

	return c.getDeployment(ctx, ref)
}

// ListPods lists pods in namespace matching the label selector, in API order.
func (c *Client) ListPods(ctx context.Context, namespace, selector string) ([]corev1.Pod, error) {
	pods, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: selector,
	})
	if err != nil {
		return nil, fmt.Errorf("list pods %q in %s: %w", selector, namespace, err)
	}

	return pods.Items, nil
}

func (c *Client) getDeployment(ctx context.Context, ref ResourceRef) (*WorkloadDescriptor, error) {
	deployment, err := c.clientset.AppsV1().Deployments(ref.Namespace).Get(ctx, ref.Name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("get deployment %s/%s: %w", ref.Namespace, ref.Name, err)
	}

	return deploymentDescriptor(deployment), nil
}

func (c *Client) getCustomResource(ctx context.Context, ref ResourceRef) (*WorkloadDescriptor, error) {
	obj, err := c.dynamic.Resource(ref.GVR).Namespace(ref.Namespace).Get(ctx, ref.Name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s %s/%s: %w", ref.GVR.Resource, ref.Namespace, ref.Name, err)
	}

	return customResourceDescriptor(obj), nil
}

func deploymentDescriptor(deployment *appsv1.Deployment) *WorkloadDescriptor {
	desc := &WorkloadDescriptor{
		Kind:               KindDeployment,
		Name:               deployment.Name,
		Namespace:          deployment.Namespace,
		DesiredCount:       deployment.Spec.Replicas,
		ObservedReadyCount: ptr.To(deployment.Status.AvailableReplicas),
		Annotations:        deployment.Annotations,
	}

	if deployment.Spec.Selector != nil {
		desc.Selector = deployment.Spec.Selector.MatchLabels
	}

	return desc
}

// customResourceDescriptor maps a KubeVirt-style VirtualMachine onto a
// descriptor: one desired instance unless the VM is halted, and one ready
// instance when status.ready is true.
func customResourceDescriptor(obj *unstructured.Unstructured) *WorkloadDescriptor {
	desc := &WorkloadDescriptor{
		Kind:        obj.GetKind(),
		Name:        obj.GetName(),
		Namespace:   obj.GetNamespace(),
		Annotations: obj.GetAnnotations(),
		Object:      obj,
	}

	desired := int32(1)

	running, found, err := unstructured.NestedBool(obj.Object, "spec", "running")
	if err == nil && found && !running {
		desired = 0
	}

	strategy, found, err := unstructured.NestedString(obj.Object, "spec", "runStrategy")
	if err == nil && found && strategy == runStrategyHalted {
		desired = 0
	}

	desc.DesiredCount = ptr.To(desired)

	ready, found, err := unstructured.NestedBool(obj.Object, "status", "ready")
	if err == nil && found {
		observed := int32(0)
		if ready {
			observed = 1
		}

		desc.ObservedReadyCount = ptr.To(observed)
	}

	selector, found, err := unstructured.NestedStringMap(obj.Object, "spec", "template", "metadata", "labels")
	if err == nil && found {
		desc.Selector = selector
	}

	return desc
}
