// Package podexec runs commands inside running pods through the Kubernetes
// exec subresource, preferring the WebSocket transport and falling back to
// SPDY when the API server or a proxy refuses the upgrade.
package podexec
