package model

import (
	"fmt"
	"net/url"
	"strings"
)

// FormatDuration renders seconds as m:ss. Unknown (0) durations render empty.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func FormatViews(views int) string {
	switch {
	case views <= 0:
		return "0 views"
	case views >= 1_000_000:
		return fmt.Sprintf("%.1fM views", float64(views)/1_000_000)
	case views >= 1_000:
		return fmt.Sprintf("%.1fK views", float64(views)/1_000)
	default:
		return fmt.Sprintf("%d views", views)
	}
}

// ResolveAsset turns a site-relative asset path into an absolute URL.
// Absolute URLs pass through; an empty path yields fallback.
func ResolveAsset(base, path, fallback string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		path = fallback
	}
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	baseURL, err := url.Parse(base)
	if err != nil || baseURL.Host == "" {
		return path
	}
	ref, err := url.Parse(path)
	if err != nil {
		return path
	}
	return baseURL.ResolveReference(ref).String()
}
