// Package meminfo samples Android process memory through adb, parses the
// dumpsys meminfo report, and tracks how usage drifts from the first sample.
package meminfo
