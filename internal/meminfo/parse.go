package meminfo

import (
	"strconv"
	"strings"
	"time"
)

// Snapshot is one parsed meminfo report. All sizes are in megabytes.
type Snapshot struct {
	NativeHeapMB  float64   `json:"native_heap_mb"`
	UnknownMB     float64   `json:"unknown_mb"`
	TotalMB       float64   `json:"total_mb"`
	UnreachableMB float64   `json:"unreachable_mb"`
	Taken         time.Time `json:"taken"`
}

// ParseMeminfo extracts the Native Heap, Unknown and TOTAL PSS rows from
// `dumpsys meminfo <package>` output. Only the table rows are read; the
// "App Summary" lines carry a colon and are skipped. Rows that are missing
// or malformed leave their field at zero.
func ParseMeminfo(report string) Snapshot {
	var snap Snapshot

	for _, line := range strings.Split(report, "\n") {
		line = strings.TrimSpace(line)
		if strings.Contains(line, ":") {
			continue
		}

		fields := strings.Fields(line)
		switch {
		case strings.HasPrefix(line, "Native Heap"):
			if kb, ok := kilobytesAt(fields, 2); ok {
				snap.NativeHeapMB = kb / 1024
			}
		case strings.HasPrefix(line, "Unknown"):
			if kb, ok := kilobytesAt(fields, 1); ok {
				snap.UnknownMB = kb / 1024
			}
		case strings.HasPrefix(line, "TOTAL"):
			if kb, ok := kilobytesAt(fields, 1); ok {
				snap.TotalMB = kb / 1024
			}
		}
	}

	return snap
}

// ParseUnreachable reads the byte count from a
// "Unreachable memory: 12,345 bytes ..." line and returns it in megabytes.
// When several lines match, the last parsable one wins.
func ParseUnreachable(report string) float64 {
	var mb float64
	for _, line := range strings.Split(report, "\n") {
		if !strings.Contains(line, "Unreachable memory") {
			continue
		}

		_, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		tokens := strings.Fields(rest)
		if len(tokens) == 0 {
			continue
		}

		digits := strings.ReplaceAll(tokens[0], ",", "")
		if !isDigits(digits) {
			continue
		}

		n, err := strconv.ParseUint(digits, 10, 64)
		if err != nil {
			continue
		}
		mb = float64(n) / 1024 / 1024
	}

	return mb
}

func kilobytesAt(fields []string, idx int) (float64, bool) {
	if len(fields) <= idx || !isDigits(fields[idx]) {
		return 0, false
	}

	n, err := strconv.ParseUint(fields[idx], 10, 64)
	if err != nil {
		return 0, false
	}
	return float64(n), true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
