package kube

import (
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// KindDeployment is the descriptor kind of apps/v1 Deployments.
const KindDeployment = "Deployment"

// ResourceRef addresses a workload. A zero GVR means an apps/v1 Deployment;
// any other GVR is read as a custom resource.
type ResourceRef struct {
	Name      string
	Namespace string
	GVR       schema.GroupVersionResource
}

// DeploymentRef addresses a Deployment.
func DeploymentRef(namespace, name string) ResourceRef {
	return ResourceRef{Name: name, Namespace: namespace}
}

// CustomResourceRef addresses a custom resource by group/version/resource.
func CustomResourceRef(gvr schema.GroupVersionResource, namespace, name string) ResourceRef {
	return ResourceRef{Name: name, Namespace: namespace, GVR: gvr}
}

// IsCustom reports whether the reference addresses a custom resource.
func (r ResourceRef) IsCustom() bool {
	return !r.GVR.Empty()
}

// String renders the reference as "<resource>/<name>".
func (r ResourceRef) String() string {
	if r.IsCustom() {
		return fmt.Sprintf("%s/%s", r.GVR.GroupResource().String(), r.Name)
	}

	return "deployment/" + r.Name
}

// WorkloadDescriptor is the typed view of a workload the verifier consumes.
// Optional fields are pointers or nil maps; a nil value means the API did
// not report the field.
type WorkloadDescriptor struct {
	Kind      string
	Name      string
	Namespace string

	// DesiredCount is the declared replica or instance count.
	DesiredCount *int32
	// ObservedReadyCount is the number of replicas or instances reported ready.
	ObservedReadyCount *int32

	Selector    map[string]string
	Annotations map[string]string

	// Object holds the full document of a custom resource. Nil for Deployments.
	Object *unstructured.Unstructured
}
