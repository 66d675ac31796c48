// Package cmd provides the eda-validator command-line interface.
//
// The root command carries connection and logging flags and delegates to:
//   - verify: run the connectivity verification against a deployed release
//   - install: install or upgrade the validator Helm release
//   - uninstall: remove the validator Helm release
package cmd
