// Package cli groups the command-line layer.
//
//   - cli/cmd: cobra commands (verify, install, uninstall)
//   - cli/ui/errorhandler: command execution and failure rendering
package cli
