package sources

import (
	"testing"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

const linkedInCardHTML = `
<ul>
  <li>
    <div class="base-card">
      <a class="base-card__full-link" href="https://www.linkedin.com/jobs/view/senior-go-developer-at-acme-4123456789?refId=abc">link</a>
      <h3 class="base-search-card__title">
        Senior Go Developer
      </h3>
      <h4 class="base-search-card__subtitle"><a>Acme Corp</a></h4>
      <span class="job-search-card__location">Berlin, Germany (Remote)</span>
      <time class="job-search-card__listdate" datetime="2026-03-08">2 days ago</time>
    </div>
  </li>
  <li>
    <div class="base-card">
      <h3 class="base-search-card__title">No Link Card</h3>
    </div>
  </li>
</ul>`

func TestParseLinkedInCards(t *testing.T) {
	cards := parseLinkedInCards([]byte(linkedInCardHTML))
	if len(cards) != 1 {
		t.Fatalf("parsed %d cards, want 1 (cards without a link are dropped)", len(cards))
	}

	c := cards[0]
	if c.Title != "Senior Go Developer" {
		t.Errorf("title = %q", c.Title)
	}
	if c.Company != "Acme Corp" {
		t.Errorf("company = %q", c.Company)
	}
	if c.JobID != "4123456789" {
		t.Errorf("job id = %q, want 4123456789", c.JobID)
	}
	if c.URL != "https://www.linkedin.com/jobs/view/senior-go-developer-at-acme-4123456789" {
		t.Errorf("url = %q (query string must be stripped)", c.URL)
	}
	if c.Posted != "2026-03-08" {
		t.Errorf("posted = %q, want the datetime attribute", c.Posted)
	}
}

func TestLinkedInCardToListing(t *testing.T) {
	c := linkedInCard{
		JobID:    "4123456789",
		Title:    "Senior Go Developer",
		Company:  "Acme Corp",
		Location: "Berlin, Germany (Remote)",
		URL:      "https://www.linkedin.com/jobs/view/4123456789",
		Posted:   "2026-03-08",
	}

	l := c.toListing(engine.SearchQuery{})
	if l.Source != engine.SourceLinkedIn {
		t.Errorf("source = %q", l.Source)
	}
	if !l.IsRemote {
		t.Error("remote location string must set IsRemote")
	}
	if l.PublishedAt == nil {
		t.Fatal("PublishedAt not parsed")
	}
	if got := l.PublishedAt.Format("2006-01-02"); got != "2026-03-08" {
		t.Errorf("published = %s", got)
	}
}

func TestParseJobPosting(t *testing.T) {
	raw := []byte(`{
		"@type": "JobPosting",
		"title": "Backend Engineer",
		"datePosted": "2026-03-07T09:30:00Z",
		"employmentType": ["FULL_TIME"],
		"jobLocationType": "TELECOMMUTE",
		"hiringOrganization": {"name": "Gamma", "sameAs": "https://gamma.example"},
		"baseSalary": {"currency": "USD", "value": {"minValue": 120000, "maxValue": 150000, "unitText": "YEAR"}}
	}`)

	p := parseJobPosting(raw)
	if p == nil {
		t.Fatal("parseJobPosting returned nil")
	}

	var l engine.JobListing
	enrichFromPosting(&l, p)

	if !l.IsRemote {
		t.Error("TELECOMMUTE must set IsRemote")
	}
	if l.Salary == nil || l.Salary.Min != 120000 || l.Salary.Max != 150000 {
		t.Errorf("salary = %+v", l.Salary)
	}
	if l.JobType != "full_time" {
		t.Errorf("job type = %q", l.JobType)
	}
	if l.PublishedAt == nil {
		t.Error("datePosted not parsed")
	}
}

func TestParsePostedDate(t *testing.T) {
	tests := []struct {
		in   string
		ok   bool
		want string
	}{
		{"2026-03-08", true, "2026-03-08"},
		{"2026-03-07T09:30:00Z", true, "2026-03-07"},
		{"2026-03-07T09:30:00", true, "2026-03-07"},
		{"2 days ago", false, ""},
		{"", false, ""},
	}
	for _, tt := range tests {
		got, ok := parsePostedDate(tt.in)
		if ok != tt.ok {
			t.Errorf("parsePostedDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got.Format("2006-01-02") != tt.want {
			t.Errorf("parsePostedDate(%q) = %s, want %s", tt.in, got.Format("2006-01-02"), tt.want)
		}
	}
}
