// Package logfields defines common logging fields which are used across packages
package logfields

const (
	// LogSubsys is the field denoting the subsystem when logging
	LogSubsys = "subsys"

	// Pass is the unique identifier of a generation pass
	Pass = "pass"

	// File is an input or output file path
	File = "file"

	// Package is a Go package import path
	Package = "package"

	// Type is a Go type name
	Type = "type"

	// Unit is an incremental cache unit, e.g. "pkg:example.com/shop"
	Unit = "unit"

	// Kind is the kind of a generated artifact
	Kind = "kind"

	// Code is a diagnostic code
	Code = "code"

	// Count is a number of items
	Count = "count"

	// Duration is the duration of an operation
	Duration = "duration"

	// Event is a file system event
	Event = "event"

	// Written is the number of files written by a pass
	Written = "written"

	// Unchanged is the number of files whose content did not change
	Unchanged = "unchanged"

	// Removed is the number of stale files removed by a pass
	Removed = "removed"

	// Skipped is the number of units served from the cache
	Skipped = "skipped"
)
