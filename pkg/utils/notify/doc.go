// Package notify writes user-facing CLI lines: titles for each verification
// stage, then activity, success, warning, info and error lines marked with
// a colored symbol (►, ✔, ⚠, ℹ, ✗).
//
// Wrap command output in a [StageSeparatingWriter] to get a blank line
// before every stage title.
package notify
