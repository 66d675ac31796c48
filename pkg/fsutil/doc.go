// Package fsutil holds filesystem path helpers.
package fsutil
