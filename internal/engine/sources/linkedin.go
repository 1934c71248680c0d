package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// LinkedIn job search URLs. The guest API returns the same cards as the public
// search page without a login, which makes it the data-endpoint fallback when
// the page itself hits the auth wall.
const (
	linkedInSearchPage = "https://www.linkedin.com/jobs/search"
	linkedInGuestAPI   = "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search"
	linkedInJobView    = "https://www.linkedin.com/jobs/view/"
)

// linkedInJobIDRe extracts the job ID from LinkedIn job URLs.
// Matches both /jobs/view/4335742219 and /jobs/view/golang-developer-at-x-4335742219.
var linkedInJobIDRe = regexp.MustCompile(`/jobs/view/[^?]*?(\d{7,})`)

var errLinkedInAuthWall = errors.New("linkedin auth wall")

// LinkedIn discovers jobs through the public search page with a guest-API
// fallback. LinkedIn blocks non-browser TLS fingerprints, so the session's
// Chrome fingerprint is required rather than optional.
type LinkedIn struct{}

func (*LinkedIn) Name() engine.Source { return engine.SourceLinkedIn }

// linkedInCard is one parsed job card.
type linkedInCard struct {
	Title    string
	Company  string
	Location string
	URL      string
	JobID    string
	Posted   string
}

func (a *LinkedIn) Search(ctx context.Context, session *engine.Session, query engine.SearchQuery) ([]engine.JobListing, error) {
	engine.IncrLinkedInSearches()

	var cards []linkedInCard
	seen := make(map[string]bool)
	collect := func(batch []linkedInCard) int {
		added := 0
		for _, c := range batch {
			key := c.JobID
			if key == "" {
				key = c.URL
			}
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			cards = append(cards, c)
			added++
		}
		return added
	}

	// Primary: the public search page.
	page, err := session.Navigate(ctx, a.pageURL(linkedInSearchPage, query, 0))
	switch {
	case err != nil:
		slog.Debug("linkedin: search page failed, using guest api", slog.Any("error", err))
	case isLinkedInAuthWalled(page):
		slog.Debug("linkedin: auth wall on search page, using guest api")
	default:
		collect(parseLinkedInCards(page.Body))
	}

	// "Scroll": page the guest endpoint until the card count stops advancing.
	_, scrollErr := engine.ScrollToBottom(ctx, engine.Cfg.MaxScrollPages, func(ctx context.Context, position int) (int, error) {
		if len(cards) >= engine.Cfg.MaxListingsPerSource {
			return position, nil
		}
		batchPage, err := session.Navigate(ctx, a.pageURL(linkedInGuestAPI, query, position))
		if err != nil {
			return position, err
		}
		if isLinkedInAuthWalled(batchPage) {
			return position, &engine.NavigationError{URL: batchPage.URL, Op: "scroll", Err: errLinkedInAuthWall}
		}
		if collect(parseLinkedInCards(batchPage.Body)) == 0 {
			return position, nil
		}
		return len(cards), nil
	})
	if scrollErr != nil {
		if len(cards) == 0 {
			return nil, fmt.Errorf("linkedin search: %w", scrollErr)
		}
		slog.Debug("linkedin: scroll stopped early", slog.Int("cards", len(cards)), slog.Any("error", scrollErr))
	}

	if len(cards) > engine.Cfg.MaxListingsPerSource {
		cards = cards[:engine.Cfg.MaxListingsPerSource]
	}

	listings := make([]engine.JobListing, 0, len(cards))
	for _, c := range cards {
		l := c.toListing(query)
		// Detail enrichment is best-effort: a failed visit keeps the partial listing.
		if err := a.enrich(ctx, session, &l); err != nil {
			engine.IncrDetailFetchErrors()
			slog.Debug("linkedin: detail fetch failed", slog.String("job_id", l.ID), slog.Any("error", err))
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// pageURL builds a search URL against base with the guest API's offset param.
func (a *LinkedIn) pageURL(base string, query engine.SearchQuery, start int) string {
	u, _ := url.Parse(base)
	q := u.Query()
	q.Set("keywords", query.Keywords)
	q.Set("sortBy", "DD") // sort by date
	q.Set("start", fmt.Sprintf("%d", start))
	if query.Location != "" {
		q.Set("location", query.Location)
	}
	if query.RemoteOnly {
		q.Set("f_WT", "2") // workplace type: remote
	}
	if query.MaxAgeHours > 0 {
		q.Set("f_TPR", fmt.Sprintf("r%d", query.MaxAgeHours*3600))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// isLinkedInAuthWalled detects the login/challenge wall on a response.
func isLinkedInAuthWalled(p *engine.Page) bool {
	if p.StatusCode == 999 || p.StatusCode == 403 || p.StatusCode == 401 {
		return true
	}
	body := string(p.Body)
	return strings.Contains(body, "authwall") || strings.Contains(body, "checkpoint/challenge")
}

// parseLinkedInCards extracts job cards from guest API or search page HTML
// using golang.org/x/net/html for robust tree-based parsing.
func parseLinkedInCards(body []byte) []linkedInCard {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil
	}

	var cards []linkedInCard
	for _, li := range findElements(doc, "li") {
		if c := parseLinkedInCard(li); c.Title != "" && c.URL != "" {
			cards = append(cards, c)
		}
	}
	return cards
}

func parseLinkedInCard(li *html.Node) linkedInCard {
	var c linkedInCard

	if link := findByClass(li, "base-card__full-link"); link != nil {
		if href := getAttr(link, "href"); href != "" {
			c.URL = strings.TrimSpace(strings.SplitN(href, "?", 2)[0])
			if m := linkedInJobIDRe.FindStringSubmatch(c.URL); m != nil {
				c.JobID = m[1]
			}
		}
	}
	if n := findByClass(li, "base-search-card__title"); n != nil {
		c.Title = engine.CollapseSpace(textContent(n))
	}
	if n := findByClass(li, "base-search-card__subtitle"); n != nil {
		c.Company = engine.CollapseSpace(textContent(n))
	}
	if n := findByClass(li, "job-search-card__location"); n != nil {
		c.Location = engine.CollapseSpace(textContent(n))
	}
	// Prefer the ISO datetime attribute over relative text like "2 days ago".
	if n := findByClass(li, "job-search-card__listdate"); n != nil {
		if dt := getAttr(n, "datetime"); dt != "" {
			c.Posted = strings.TrimSpace(dt)
		}
	}
	return c
}

func (c linkedInCard) toListing(query engine.SearchQuery) engine.JobListing {
	l := engine.JobListing{
		ID:             c.JobID,
		Title:          c.Title,
		Company:        engine.Company{Name: c.Company},
		Location:       c.Location,
		ApplicationURL: c.URL,
		Source:         engine.SourceLinkedIn,
	}
	if l.ID == "" {
		l.ID = c.URL
	}
	if strings.Contains(strings.ToLower(c.Location), "remote") || query.RemoteOnly {
		l.IsRemote = true
	}
	if c.Posted != "" {
		if t, ok := parsePostedDate(c.Posted); ok {
			l.PublishedAt = &t
		}
	}
	return l
}

// enrich visits the job view page for description, salary and logo.
func (a *LinkedIn) enrich(ctx context.Context, session *engine.Session, l *engine.JobListing) error {
	if l.ID == "" || l.ID == l.ApplicationURL {
		return nil
	}
	engine.IncrDetailFetches()

	ctx, cancel := context.WithTimeout(ctx, engine.Cfg.FetchTimeout)
	defer cancel()

	page, err := session.Navigate(ctx, linkedInJobView+l.ID)
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
	if l.Description == "" {
		if markup := doc.Find(".show-more-less-html__markup").First(); markup.Length() > 0 {
			if inner, err := markup.Html(); err == nil {
				if md, err := htmltomarkdown.ConvertString(inner); err == nil {
					l.Description = strings.TrimSpace(md)
				}
			}
		}
	}
	return nil
}
