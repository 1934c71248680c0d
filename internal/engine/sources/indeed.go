package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

const (
	indeedSearchPage = "https://www.indeed.com/jobs"
	indeedViewJob    = "https://www.indeed.com/viewjob?jk="
)

// indeedJobKeyRe extracts the job key from viewjob URLs and card ids.
var indeedJobKeyRe = regexp.MustCompile(`(?:jk=|job_)([0-9a-f]{8,})`)

// Indeed scrapes the desktop serp and enriches each hit from the JSON-LD
// JobPosting that Indeed embeds on every viewjob page. Indeed has no public
// data endpoint, so a blocked serp means an empty contribution for this
// source.
type Indeed struct{}

func (*Indeed) Name() engine.Source { return engine.SourceIndeed }

func (a *Indeed) Search(ctx context.Context, session *engine.Session, query engine.SearchQuery) ([]engine.JobListing, error) {
	engine.IncrIndeedSearches()

	var listings []engine.JobListing
	seen := make(map[string]bool)

	// Indeed pages by the &start= offset, 10 or 15 cards per page. Scroll
	// until the listing count stops advancing.
	_, scrollErr := engine.ScrollToBottom(ctx, engine.Cfg.MaxScrollPages, func(ctx context.Context, position int) (int, error) {
		if len(listings) >= engine.Cfg.MaxListingsPerSource {
			return position, nil
		}
		page, err := session.Navigate(ctx, a.pageURL(query, position))
		if err != nil {
			return position, err
		}
		if isIndeedBlocked(page) {
			return position, &engine.NavigationError{URL: page.URL, Op: "scroll", Err: fmt.Errorf("blocked with status %d", page.StatusCode)}
		}
		doc, err := page.Doc()
		if err != nil {
			return position, err
		}
		added := 0
		for _, l := range parseIndeedCards(doc) {
			if seen[l.ID] {
				continue
			}
			seen[l.ID] = true
			listings = append(listings, l)
			added++
		}
		if added == 0 {
			return position, nil
		}
		return len(listings), nil
	})
	if scrollErr != nil {
		if len(listings) == 0 {
			return nil, fmt.Errorf("indeed search: %w", scrollErr)
		}
		slog.Debug("indeed: scroll stopped early", slog.Int("cards", len(listings)), slog.Any("error", scrollErr))
	}

	if len(listings) > engine.Cfg.MaxListingsPerSource {
		listings = listings[:engine.Cfg.MaxListingsPerSource]
	}

	for i := range listings {
		if err := a.enrich(ctx, session, &listings[i]); err != nil {
			engine.IncrDetailFetchErrors()
			slog.Debug("indeed: detail fetch failed", slog.String("job_id", listings[i].ID), slog.Any("error", err))
		}
	}
	return listings, nil
}

func (a *Indeed) pageURL(query engine.SearchQuery, start int) string {
	u, _ := url.Parse(indeedSearchPage)
	q := u.Query()
	q.Set("q", query.Keywords)
	q.Set("sort", "date")
	if start > 0 {
		q.Set("start", fmt.Sprintf("%d", start))
	}
	switch {
	case query.RemoteOnly:
		q.Set("l", "Remote")
	case query.Location != "":
		q.Set("l", query.Location)
	}
	if query.MaxAgeHours > 0 {
		days := (query.MaxAgeHours + 23) / 24
		q.Set("fromage", fmt.Sprintf("%d", days))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// isIndeedBlocked detects the Cloudflare/captcha interstitial.
func isIndeedBlocked(p *engine.Page) bool {
	if p.StatusCode == 403 || p.StatusCode == 429 {
		return true
	}
	body := string(p.Body)
	return strings.Contains(body, "cf-challenge") || strings.Contains(body, "hcaptcha")
}

// parseIndeedCards extracts partial listings from serp cards. Indeed keys
// everything off data-jk attributes and jcs-JobTitle anchors.
func parseIndeedCards(doc *goquery.Document) []engine.JobListing {
	var out []engine.JobListing
	doc.Find("a[data-jk], div.job_seen_beacon").Each(func(_ int, s *goquery.Selection) {
		jk, _ := s.Attr("data-jk")
		if jk == "" {
			if href, ok := s.Find("a.jcs-JobTitle").First().Attr("href"); ok {
				if m := indeedJobKeyRe.FindStringSubmatch(href); m != nil {
					jk = m[1]
				}
			}
		}
		if jk == "" {
			return
		}

		title := engine.CollapseSpace(s.Find("h2.jobTitle span, span[title]").First().Text())
		if title == "" {
			title = engine.CollapseSpace(s.Find("span").First().Text())
		}
		company := engine.CollapseSpace(s.Find(`[data-testid="company-name"], span.companyName`).First().Text())
		location := engine.CollapseSpace(s.Find(`[data-testid="text-location"], div.companyLocation`).First().Text())
		if title == "" || company == "" {
			return
		}

		out = append(out, engine.JobListing{
			ID:             jk,
			Title:          title,
			Company:        engine.Company{Name: company},
			Location:       location,
			IsRemote:       strings.Contains(strings.ToLower(location), "remote"),
			ApplicationURL: indeedViewJob + jk,
			Source:         engine.SourceIndeed,
		})
	})
	return out
}

// enrich pulls the JSON-LD JobPosting off the viewjob page.
func (a *Indeed) enrich(ctx context.Context, session *engine.Session, l *engine.JobListing) error {
	engine.IncrDetailFetches()

	ctx, cancel := context.WithTimeout(ctx, engine.Cfg.FetchTimeout)
	defer cancel()

	page, err := session.Navigate(ctx, l.ApplicationURL)
	if err != nil {
		return err
	}
	doc, err := page.Doc()
	if err != nil {
		return err
	}
	if p := extractJobPosting(doc); p != nil {
		enrichFromPosting(l, p)
	}
	return nil
}
