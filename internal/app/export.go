package app

import (
	"path"
	"regexp"
	"strings"
	"time"
)

var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9_/-]+`)

// exportPrefix names one snapshot: <prefix>/<yyyymmdd_hhmmss>.
func exportPrefix(prefix string, now time.Time) string {
	prefix = sanitizeForPath(prefix)
	if prefix == "" {
		prefix = "gallery"
	}
	return path.Join(prefix, now.UTC().Format("20060102_150405"))
}

func sanitizeForPath(s string) string {
	s = strings.ToLower(s)
	s = sanitizeRegex.ReplaceAllString(s, "_")
	return strings.Trim(s, "_/")
}
