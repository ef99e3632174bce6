package commands

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// LastBatch summarises the most recent completed batch found in the log
type LastBatch struct {
	Time      time.Time
	RunID     string
	Converted int
}

// ParseLogFile reads the last N lines from the log file and extracts the
// most recent batch run
func ParseLogFile(logPath string, maxLines int) ([]string, LastBatch) {
	var last LastBatch

	content, err := os.ReadFile(logPath)
	if err != nil {
		return []string{"Unable to read log file"}, last
	}

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")

	// Get last N lines
	startIdx := 0
	if len(lines) > maxLines {
		startIdx = len(lines) - maxLines
	}
	recentLines := lines[startIdx:]

	// Look for most recent "batch completed" line
	for i := len(recentLines) - 1; i >= 0; i-- {
		line := recentLines[i]
		if !strings.Contains(line, "batch completed") {
			continue
		}

		// Format: 2025-11-27 14:11:57 INFO batch completed run_id=... files_converted=3
		if len(line) > 19 {
			if t, err := time.ParseInLocation(time.DateTime, line[:19], time.Local); err == nil {
				last.Time = t
			}
		}

		if idx := strings.Index(line, "run_id="); idx != -1 {
			fields := strings.Fields(line[idx+len("run_id="):])
			if len(fields) > 0 {
				last.RunID = fields[0]
			}
		}

		// Best effort - ignore errors
		if idx := strings.Index(line, "files_converted="); idx != -1 {
			_, _ = fmt.Sscanf(line[idx:], "files_converted=%d", &last.Converted) //nolint:errcheck // best effort parsing
		}
		break
	}

	return recentLines, last
}
