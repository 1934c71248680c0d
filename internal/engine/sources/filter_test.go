package sources

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func listing(title, company string, published *time.Time) engine.JobListing {
	return engine.JobListing{
		ID:          title + "@" + company,
		Title:       title,
		Company:     engine.Company{Name: company},
		PublishedAt: published,
	}
}

func TestDedup(t *testing.T) {
	in := []engine.JobListing{
		listing("Go Developer", "Acme", nil),
		listing("go developer", "ACME", nil), // same key, different case
		listing("Go Developer", "Beta", nil),
		listing("Rust Developer", "Acme", nil),
	}

	out := Dedup(in)
	if len(out) != 3 {
		t.Fatalf("Dedup returned %d listings, want 3", len(out))
	}
	// First occurrence wins.
	if out[0].Company.Name != "Acme" {
		t.Errorf("first survivor company = %q, want Acme", out[0].Company.Name)
	}
}

func TestFilterByAge(t *testing.T) {
	now, _ := time.Parse(time.RFC3339, "2026-03-10T12:00:00Z")

	fresh := now.Add(-2 * time.Hour)
	stale := now.Add(-30 * time.Hour)

	in := []engine.JobListing{
		listing("Fresh", "A", &fresh),
		listing("Stale", "B", &stale),
		listing("Unknown", "C", nil),
	}

	out := FilterByAge(in, 24, now)
	if len(out) != 2 {
		t.Fatalf("FilterByAge returned %d listings, want 2", len(out))
	}
	if out[0].Title != "Fresh" || out[1].Title != "Unknown" {
		t.Errorf("survivors = %q, %q; want Fresh, Unknown", out[0].Title, out[1].Title)
	}

	// Disabled filter keeps everything.
	if got := FilterByAge(in, 0, now); len(got) != 3 {
		t.Errorf("disabled filter returned %d listings, want 3", len(got))
	}
}

func TestSortByPublished(t *testing.T) {
	in := []engine.JobListing{
		listing("Old", "A", ts("2026-03-01T00:00:00Z")),
		listing("NoDate", "B", nil),
		listing("New", "C", ts("2026-03-09T00:00:00Z")),
		listing("Mid", "D", ts("2026-03-05T00:00:00Z")),
	}

	SortByPublished(in)

	want := []string{"New", "Mid", "Old", "NoDate"}
	for i, title := range want {
		if in[i].Title != title {
			t.Errorf("position %d = %q, want %q", i, in[i].Title, title)
		}
	}
}

// stubAdapter returns canned listings or an error, ignoring the session.
type stubAdapter struct {
	name     engine.Source
	listings []engine.JobListing
	err      error
}

func (s *stubAdapter) Name() engine.Source { return s.name }

func (s *stubAdapter) Search(_ context.Context, _ *engine.Session, _ engine.SearchQuery) ([]engine.JobListing, error) {
	return s.listings, s.err
}

func TestAggregate(t *testing.T) {
	engine.Init(engine.Config{})

	newer := ts("2026-03-09T00:00:00Z")
	older := ts("2026-03-08T00:00:00Z")

	adapters := []Adapter{
		&stubAdapter{name: engine.SourceLinkedIn, listings: []engine.JobListing{
			listing("Go Developer", "Acme", older),
			listing("SRE", "Beta", newer),
		}},
		&stubAdapter{name: engine.SourceIndeed, listings: []engine.JobListing{
			// Duplicate of the LinkedIn entry: must lose to it.
			listing("go developer", "acme", newer),
			listing("Platform Engineer", "Gamma", nil),
		}},
		&stubAdapter{name: engine.SourceZipRecruiter, err: &engine.NavigationError{
			URL: "https://www.ziprecruiter.com", Op: "GET", Err: errors.New("blocked"),
		}},
	}

	out := aggregate(context.Background(), adapters, engine.SearchQuery{Keywords: "go"})

	if len(out) != 3 {
		t.Fatalf("aggregate returned %d listings, want 3", len(out))
	}
	// Sorted newest first, undated last.
	if out[0].Title != "SRE" {
		t.Errorf("out[0] = %q, want SRE", out[0].Title)
	}
	if out[2].Title != "Platform Engineer" {
		t.Errorf("out[2] = %q, want Platform Engineer", out[2].Title)
	}
	// The first-seen duplicate keeps its source's data.
	for _, l := range out {
		if engine.JobKey(l.Title, l.Company.Name) == engine.JobKey("Go Developer", "Acme") {
			if l.PublishedAt == nil || !l.PublishedAt.Equal(*older) {
				t.Errorf("dedup kept the later source's listing")
			}
		}
	}
}

func TestAggregateAllSourcesFail(t *testing.T) {
	engine.Init(engine.Config{})

	adapters := []Adapter{
		&stubAdapter{name: engine.SourceLinkedIn, err: errors.New("authwall")},
		&stubAdapter{name: engine.SourceIndeed, err: errors.New("blocked")},
	}

	out := aggregate(context.Background(), adapters, engine.SearchQuery{Keywords: "go"})
	if len(out) != 0 {
		t.Fatalf("aggregate returned %d listings, want 0", len(out))
	}
}
