// Package svc provides the verification services.
//
// Subpackages:
//   - installer: validator release install and teardown
//   - probe: ping-based connectivity probe run inside a pod
//   - resolver: pod and virtual machine address resolution
//   - scenario: the staged verification pipeline
//   - verifyerr: failure kinds and stages reported by the pipeline
package svc
