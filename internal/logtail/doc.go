// Package logtail reads the tail of the console's own log file for the
// activity view.
//
// Read returns the last N lines using a ring buffer, so large files are never
// held in memory. Parse turns a zerolog JSON line into an Entry and Format
// renders it compactly:
//
//	09:30:00 WRN request failed collection=patients op=delete seq=3
//
// Lines that are not JSON (a panic trace, for example) pass through as-is.
package logtail
