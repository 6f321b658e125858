package explain

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/xkcd/internal/xkcd"
)

const DefaultBaseURL = "https://www.explainxkcd.com/wiki/index.php"

var ErrNoExplanation = errors.New("explanation section not found")

type Explanation struct {
	Text     string
	URL      string
	ComicURL string
	Number   int
}

// Comic resolves the comic this explanation belongs to.
func (e Explanation) Comic(ctx context.Context, src interface {
	FetchByNumber(ctx context.Context, number int) (xkcd.Comic, error)
}) (xkcd.Comic, error) {
	return src.FetchByNumber(ctx, e.Number)
}

type Scraper struct {
	fetcher xkcd.Fetcher
	baseURL string
	site    string
	log     interface{ Debugf(string, ...any) }
}

type Option func(*Scraper)

func WithBaseURL(u string) Option {
	return func(s *Scraper) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			s.baseURL = u
		}
	}
}

// WithSite sets the comic site used for Explanation.ComicURL.
func WithSite(site string) Option {
	return func(s *Scraper) { s.site = site }
}

func WithDebugLogger(l interface{ Debugf(string, ...any) }) Option {
	return func(s *Scraper) { s.log = l }
}

func NewScraper(f xkcd.Fetcher, opts ...Option) *Scraper {
	if f == nil {
		f = xkcd.NewHTTPFetcher(nil)
	}

	s := &Scraper{
		fetcher: f,
		baseURL: DefaultBaseURL,
		site:    xkcd.DefaultSite,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// PageURL is the wiki page of the given comic number.
func (s *Scraper) PageURL(number int) string {
	return s.baseURL + "/" + strconv.Itoa(number)
}

// Explain fetches and parses the wiki page of comic number.
func (s *Scraper) Explain(ctx context.Context, number int) (Explanation, error) {
	if number <= 0 {
		return Explanation{}, &xkcd.InvalidNumberError{Number: number}
	}

	pageURL := s.PageURL(number)
	if s.log != nil {
		s.log.Debugf("fetching explanation %s\n", pageURL)
	}

	body, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		var reqErr *xkcd.RequestError
		if errors.As(err, &reqErr) {
			return Explanation{}, reqErr
		}
		return Explanation{}, &xkcd.RequestError{URL: pageURL, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return Explanation{}, fmt.Errorf("parse explanation page %s: %w", pageURL, err)
	}

	text, err := ExtractSection(doc, "Explanation")
	if err != nil {
		return Explanation{}, err
	}

	return Explanation{
		Text:     text,
		URL:      pageURL,
		ComicURL: strings.TrimRight(s.site, "/") + "/" + strconv.Itoa(number) + "/",
		Number:   number,
	}, nil
}

// ExplainComic explains an already resolved comic.
func (s *Scraper) ExplainComic(ctx context.Context, c xkcd.Comic) (Explanation, error) {
	e, err := s.Explain(ctx, c.Number())
	if err != nil {
		return Explanation{}, err
	}

	e.ComicURL = c.Permalink()
	return e, nil
}

var innerWhitespace = regexp.MustCompile(`[ \t\r\n]+`)

// ExtractSection returns the text under the h2 whose anchor id is id. Both
// the legacy "span.mw-headline" markup and the newer "div.mw-heading"
// wrapper are handled. Notice boxes (tables) are skipped.
func ExtractSection(doc *goquery.Document, id string) (string, error) {
	anchor := doc.Find("#" + id).First()
	if anchor.Length() == 0 {
		return "", ErrNoExplanation
	}

	start := anchor.Closest("h2")
	if start.Length() == 0 {
		return "", ErrNoExplanation
	}
	if wrapper := start.Parent(); wrapper.HasClass("mw-heading") {
		start = wrapper
	}

	var parts []string
	for sel := start.Next(); sel.Length() > 0; sel = sel.Next() {
		if isSectionBoundary(sel) {
			break
		}

		switch goquery.NodeName(sel) {
		case "p":
			parts = appendText(parts, sel.Text())
		case "ul", "ol":
			sel.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
				if t := clean(li.Text()); t != "" {
					parts = append(parts, "- "+t)
				}
			})
		case "dl":
			sel.Children().Each(func(_ int, item *goquery.Selection) {
				parts = appendText(parts, item.Text())
			})
		case "h3", "h4":
			heading := sel.Find(".mw-headline")
			if heading.Length() == 0 {
				heading = sel
			}
			parts = appendText(parts, heading.Text())
		case "div":
			if sel.HasClass("mw-heading") {
				parts = appendText(parts, sel.Find("h3, h4").Text())
			}
		}
	}

	if len(parts) == 0 {
		return "", ErrNoExplanation
	}

	return strings.Join(parts, "\n\n"), nil
}

func isSectionBoundary(sel *goquery.Selection) bool {
	if goquery.NodeName(sel) == "h2" {
		return true
	}

	return sel.HasClass("mw-heading2")
}

func appendText(parts []string, raw string) []string {
	if t := clean(raw); t != "" {
		return append(parts, t)
	}
	return parts
}

func clean(s string) string {
	s = strings.ReplaceAll(s, "[edit]", "")
	return strings.TrimSpace(innerWhitespace.ReplaceAllString(s, " "))
}
