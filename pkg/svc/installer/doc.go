// Package installer installs and removes the validator Helm release that
// deploys the workloads under test.
package installer
