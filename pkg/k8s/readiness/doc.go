// Package readiness provides bounded readiness polling for Kubernetes workloads.
//
// A Poller fetches a workload descriptor once per attempt and compares the
// observed-ready count to the desired count with exact equality. It sleeps a
// fixed interval between attempts and gives up after a fixed number of
// attempts, so a broken deployment can never hang a verification run.
//
// Key features:
//   - Bounded-attempt polling (Poller.WaitUntilReady)
//   - Count extractors for Deployments and VirtualMachines (DesiredCount, ObservedReadyCount)
//   - Immediate, non-retried propagation of API errors
package readiness
