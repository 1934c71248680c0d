package engine

import (
	"regexp"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
)

// UserAgentChrome is the canonical UA header, matching the Chrome version the
// TLS fingerprint impersonates.
const UserAgentChrome = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// CleanHTML strips HTML tags and trims whitespace.
func CleanHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8.
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

// CollapseSpace folds runs of whitespace into single spaces and trims.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// JobKey returns the cross-source dedup key for a listing: case-insensitive
// title + company name, whitespace-normalized. The same role scraped from two
// boards collapses to one key.
func JobKey(title, company string) string {
	return strings.ToLower(CollapseSpace(title)) + "|" + strings.ToLower(CollapseSpace(company))
}
