// Package kube provides a read-only accessor over the Kubernetes resource API.
//
// The Client returns WorkloadDescriptors, a typed view over Deployments and
// custom resources (KubeVirt VirtualMachines), and lists pods by label
// selector. Nothing is cached: every call reaches the API server.
package kube
