// Package probe runs a one-shot ping from inside a pod and decides
// reachability from the captured output rather than the exit status.
package probe
