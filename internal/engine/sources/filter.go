package sources

import (
	"sort"
	"time"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// Dedup removes listings that repeat a (title, company) key, case-insensitive.
// The first occurrence wins, so concatenation order decides precedence.
func Dedup(listings []engine.JobListing) []engine.JobListing {
	seen := make(map[string]bool, len(listings))
	out := make([]engine.JobListing, 0, len(listings))
	for _, l := range listings {
		key := engine.JobKey(l.Title, l.Company.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, l)
	}
	return out
}

// FilterByAge keeps listings published within the last maxAgeHours.
// A listing without a publish timestamp is unknown-but-eligible and is kept.
// maxAgeHours <= 0 disables the filter.
func FilterByAge(listings []engine.JobListing, maxAgeHours int, now time.Time) []engine.JobListing {
	if maxAgeHours <= 0 {
		return listings
	}
	cutoff := now.Add(-time.Duration(maxAgeHours) * time.Hour)
	out := make([]engine.JobListing, 0, len(listings))
	for _, l := range listings {
		if l.PublishedAt == nil || !l.PublishedAt.Before(cutoff) {
			out = append(out, l)
		}
	}
	return out
}

// SortByPublished orders listings newest first. Listings without a timestamp
// sink to the end; the sort is stable so source precedence survives ties.
func SortByPublished(listings []engine.JobListing) {
	sort.SliceStable(listings, func(i, j int) bool {
		pi, pj := listings[i].PublishedAt, listings[j].PublishedAt
		switch {
		case pi == nil:
			return false
		case pj == nil:
			return true
		default:
			return pi.After(*pj)
		}
	})
}
