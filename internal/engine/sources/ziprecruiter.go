package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

const zipSearchPage = "https://www.ziprecruiter.com/jobs-search"

// ZipRecruiter scrapes the public jobs-search serp. ZipRecruiter renders job
// cards server-side inside article.job_result elements and embeds a JSON-LD
// JobPosting on each detail page.
type ZipRecruiter struct{}

func (*ZipRecruiter) Name() engine.Source { return engine.SourceZipRecruiter }

func (a *ZipRecruiter) Search(ctx context.Context, session *engine.Session, query engine.SearchQuery) ([]engine.JobListing, error) {
	engine.IncrZipRecruiterSearches()

	var listings []engine.JobListing
	seen := make(map[string]bool)

	_, scrollErr := engine.ScrollToBottom(ctx, engine.Cfg.MaxScrollPages, func(ctx context.Context, position int) (int, error) {
		if len(listings) >= engine.Cfg.MaxListingsPerSource {
			return position, nil
		}
		// ZipRecruiter pages are 1-based; position counts collected cards.
		pageNum := position/20 + 1
		page, err := session.Navigate(ctx, a.pageURL(query, pageNum))
		if err != nil {
			return position, err
		}
		if page.StatusCode == 403 || page.StatusCode == 429 {
			return position, &engine.NavigationError{URL: page.URL, Op: "scroll", Err: fmt.Errorf("blocked with status %d", page.StatusCode)}
		}
		doc, err := page.Doc()
		if err != nil {
			return position, err
		}
		added := 0
		for _, l := range parseZipCards(doc) {
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
			return nil, fmt.Errorf("ziprecruiter search: %w", scrollErr)
		}
		slog.Debug("ziprecruiter: scroll stopped early", slog.Int("cards", len(listings)), slog.Any("error", scrollErr))
	}

	if len(listings) > engine.Cfg.MaxListingsPerSource {
		listings = listings[:engine.Cfg.MaxListingsPerSource]
	}

	for i := range listings {
		if err := a.enrich(ctx, session, &listings[i]); err != nil {
			engine.IncrDetailFetchErrors()
			slog.Debug("ziprecruiter: detail fetch failed", slog.String("job_id", listings[i].ID), slog.Any("error", err))
		}
	}
	return listings, nil
}

func (a *ZipRecruiter) pageURL(query engine.SearchQuery, pageNum int) string {
	u, _ := url.Parse(zipSearchPage)
	q := u.Query()
	q.Set("search", query.Keywords)
	if query.RemoteOnly {
		q.Set("refine_by_location_type", "only_remote")
	}
	if query.Location != "" {
		q.Set("location", query.Location)
	}
	if query.MaxAgeHours > 0 {
		days := (query.MaxAgeHours + 23) / 24
		q.Set("days", fmt.Sprintf("%d", days))
	}
	if pageNum > 1 {
		q.Set("page", fmt.Sprintf("%d", pageNum))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func parseZipCards(doc *goquery.Document) []engine.JobListing {
	var out []engine.JobListing
	doc.Find("article.job_result, div.job_content").Each(func(_ int, s *goquery.Selection) {
		link := s.Find("a.job_link, h2 a").First()
		href, _ := link.Attr("href")
		title := engine.CollapseSpace(link.Text())
		if href == "" || title == "" {
			return
		}
		company := engine.CollapseSpace(s.Find("a.company_name, [data-testid='job-card-company']").First().Text())
		location := engine.CollapseSpace(s.Find("a.company_location, [data-testid='job-card-location']").First().Text())

		id := href
		if u, err := url.Parse(href); err == nil && u.Path != "" {
			id = strings.Trim(u.Path, "/")
		}

		out = append(out, engine.JobListing{
			ID:             id,
			Title:          title,
			Company:        engine.Company{Name: company},
			Location:       location,
			IsRemote:       strings.Contains(strings.ToLower(location), "remote"),
			ApplicationURL: href,
			Source:         engine.SourceZipRecruiter,
		})
	})
	return out
}

func (a *ZipRecruiter) enrich(ctx context.Context, session *engine.Session, l *engine.JobListing) error {
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
