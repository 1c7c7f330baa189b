// Package util provides shared utilities for the CLI
package util

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// PrintJSON writes a JSON representation of v to w with proper indentation
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// NewTabWriter creates a new tabwriter configured for CLI output
func NewTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// FormatUnix formats Unix seconds in loc, or "-" for zero
func FormatUnix(sec int64, loc *time.Location) string {
	if sec == 0 {
		return "-"
	}
	return time.Unix(sec, 0).In(loc).Format("2006-01-02 15:04")
}

// FormatSeconds formats a duration given in seconds, like "1d2h30m"
func FormatSeconds(sec int64) string {
	if sec <= 0 {
		return "0s"
	}
	days := sec / 86400
	sec %= 86400
	hours := sec / 3600
	sec %= 3600
	minutes := sec / 60
	sec %= 60

	out := ""
	if days > 0 {
		out += fmt.Sprintf("%dd", days)
	}
	if hours > 0 {
		out += fmt.Sprintf("%dh", hours)
	}
	if minutes > 0 {
		out += fmt.Sprintf("%dm", minutes)
	}
	if sec > 0 {
		out += fmt.Sprintf("%ds", sec)
	}
	return out
}
