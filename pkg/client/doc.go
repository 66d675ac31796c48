// Package client provides thin clients over the Kubernetes and Helm APIs.
//
//   - helm: release install, upgrade and uninstall from a local chart
//   - kube: workload descriptors and pod listing for the verification
//   - netretry: transient error classification and backoff
//   - podexec: command execution inside pods
package client
