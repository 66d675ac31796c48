// Package utils provides small shared utilities.
//
//   - notify: formatted terminal messages with symbols, colors and timing
//   - timer: total and per-stage duration tracking
package utils
