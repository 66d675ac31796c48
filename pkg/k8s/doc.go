// Package k8s provides Kubernetes client configuration and general-purpose utilities.
//
// Key features:
//   - REST config building from kubeconfig files (BuildRESTConfig)
//   - Clientset and dynamic client creation (NewClientset, NewDynamicClient)
//   - Deterministic label selectors from selector maps (SelectorFromMap)
//   - Pod failure summaries for diagnostics (DiagnosePodFailures)
//
// For resource readiness polling, see the [readiness] sub-package.
package k8s
