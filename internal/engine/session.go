package engine

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Session is one controlled browser identity: a cookie-jarred fingerprinted
// client driving a linear sequence of navigations. A session is exclusively
// owned by the adapter that created it and must be closed on every exit path.
type Session struct {
	bc *BrowserClient

	mu      sync.Mutex
	lastURL string
	closed  bool
}

// NewSession opens a fresh browser session using the engine configuration.
func NewSession() (*Session, error) {
	bc, err := NewBrowserClient(int(cfg.NavigationTimeout.Seconds()), cfg.ProxyURL)
	if err != nil {
		return nil, err
	}
	return &Session{bc: bc}, nil
}

// Close releases the session. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.bc.Close()
}

// Page is one rendered response within a session.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte

	doc *goquery.Document
}

// Doc parses the page body on first use.
func (p *Page) Doc() (*goquery.Document, error) {
	if p.doc != nil {
		return p.doc, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	if err != nil {
		return nil, &NavigationError{URL: p.URL, Op: "parse", Err: err}
	}
	p.doc = doc
	return doc, nil
}

// Navigate loads a URL in the session. Navigation is a suspension point with
// a bounded timeout; failures come back as NavigationError.
func (s *Session) Navigate(ctx context.Context, target string) (*Page, error) {
	return s.request(ctx, "GET", target, nil, "")
}

// SubmitForm posts url-encoded form values to action, as a browser would on
// pressing the form's submit control.
func (s *Session) SubmitForm(ctx context.Context, action string, values url.Values) (*Page, error) {
	return s.request(ctx, "POST", action, values, "application/x-www-form-urlencoded")
}

func (s *Session) request(ctx context.Context, method, target string, values url.Values, contentType string) (*Page, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, &NavigationError{URL: target, Op: method, Err: context.Canceled}
	}
	referer := s.lastURL
	s.mu.Unlock()

	headers := ChromeHeaders()
	if referer != "" {
		headers["referer"] = referer
	}
	if contentType != "" {
		headers["content-type"] = contentType
	}

	var body string
	if values != nil {
		body = values.Encode()
	}

	type resp struct {
		data   []byte
		status int
	}
	r, err := RetryDo(ctx, DefaultRetryConfig, func() (resp, error) {
		var rd io.Reader
		if body != "" {
			rd = strings.NewReader(body)
		}
		data, status, err := s.bc.Do(method, target, headers, rd)
		if err != nil {
			return resp{}, err
		}
		if IsRetryableStatus(status) {
			return resp{}, &httpStatusError{StatusCode: status}
		}
		return resp{data, status}, nil
	})
	if err != nil {
		return nil, &NavigationError{URL: target, Op: method, Err: err}
	}

	s.mu.Lock()
	s.lastURL = target
	s.mu.Unlock()

	return &Page{URL: target, StatusCode: r.status, Body: r.data}, nil
}

// ScrollToBottom emulates scrolling a lazy-loading page: advance is invoked
// with the current position and reports the new one, and the loop stops as
// soon as the position no longer grows. Deliberately not time-bounded, so slow
// connections still load everything; maxPages is a hard stop against endless
// feeds.
func ScrollToBottom(ctx context.Context, maxPages int, advance func(ctx context.Context, position int) (int, error)) (int, error) {
	if maxPages <= 0 {
		maxPages = cfg.MaxScrollPages
	}
	position := 0
	for i := 0; i < maxPages; i++ {
		if ctx.Err() != nil {
			return position, ctx.Err()
		}
		next, err := advance(ctx, position)
		if err != nil {
			return position, err
		}
		if next <= position {
			return position, nil
		}
		position = next
	}
	return position, nil
}
