package sources

import (
	"encoding/json"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// jobPosting is the subset of a schema.org JobPosting embedded as JSON-LD on
// job detail pages. Indeed, ZipRecruiter and LinkedIn all ship one.
type jobPosting struct {
	Type               string          `json:"@type"`
	Title              string          `json:"title"`
	Description        string          `json:"description"` // HTML
	DatePosted         string          `json:"datePosted"`
	EmploymentType     json.RawMessage `json:"employmentType"` // string or []string
	HiringOrganization struct {
		Name   string          `json:"name"`
		SameAs string          `json:"sameAs"`
		Logo   json.RawMessage `json:"logo"` // string or {"url": ...}
	} `json:"hiringOrganization"`
	BaseSalary struct {
		Currency string `json:"currency"`
		Value    struct {
			MinValue float64 `json:"minValue"`
			MaxValue float64 `json:"maxValue"`
			UnitText string  `json:"unitText"`
		} `json:"value"`
	} `json:"baseSalary"`
	JobLocationType string `json:"jobLocationType"` // "TELECOMMUTE" for remote
}

// extractJobPosting scans a document's ld+json scripts for a JobPosting node.
func extractJobPosting(doc *goquery.Document) *jobPosting {
	var found *jobPosting
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}
		if p := parseJobPosting([]byte(raw)); p != nil {
			found = p
			return false
		}
		return true
	})
	return found
}

// parseJobPosting decodes a JSON-LD blob that may be a single node or an array.
func parseJobPosting(raw []byte) *jobPosting {
	var single jobPosting
	if err := json.Unmarshal(raw, &single); err == nil && single.Type == "JobPosting" {
		return &single
	}
	var many []jobPosting
	if err := json.Unmarshal(raw, &many); err == nil {
		for i := range many {
			if many[i].Type == "JobPosting" {
				return &many[i]
			}
		}
	}
	return nil
}

// enrichFromPosting copies detail fields from a JobPosting into a partial
// listing. Fields already populated by the card parser are kept.
func enrichFromPosting(l *engine.JobListing, p *jobPosting) {
	if p.Description != "" {
		if md, err := htmltomarkdown.ConvertString(p.Description); err == nil {
			l.Description = strings.TrimSpace(md)
		} else {
			l.Description = engine.CleanHTML(p.Description)
		}
	}
	if l.PublishedAt == nil && p.DatePosted != "" {
		if t, ok := parsePostedDate(p.DatePosted); ok {
			l.PublishedAt = &t
		}
	}
	if l.JobType == "" {
		l.JobType = employmentTypeString(p.EmploymentType)
	}
	if l.Company.Website == "" {
		l.Company.Website = p.HiringOrganization.SameAs
	}
	if l.Company.Logo == "" {
		l.Company.Logo = logoURL(p.HiringOrganization.Logo)
	}
	if l.Salary == nil && p.BaseSalary.Value.MinValue > 0 {
		cur := p.BaseSalary.Currency
		if cur == "" {
			cur = "USD"
		}
		l.Salary = &engine.Salary{
			Min:      int(p.BaseSalary.Value.MinValue),
			Max:      int(p.BaseSalary.Value.MaxValue),
			Currency: cur,
		}
	}
	if !l.IsRemote && strings.EqualFold(p.JobLocationType, "TELECOMMUTE") {
		l.IsRemote = true
	}
}

// parsePostedDate accepts the timestamp shapes portals actually emit:
// full RFC 3339, date-time without zone, and bare dates.
func parsePostedDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func employmentTypeString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return strings.ToLower(one)
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 {
		return strings.ToLower(many[0])
	}
	return ""
}

func logoURL(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.URL
	}
	return ""
}
