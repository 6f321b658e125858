package explain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/xkcd/internal/xkcd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyPage = `<html><body><div id="mw-content-text">
<table class="notice"><tr><td>Title text: Calling a cab means cutting into beer money.</td></tr></table>
<h2><span class="mw-headline" id="Explanation">Explanation</span><span class="editsection">[edit]</span></h2>
<table><tr><td>This explanation may be incomplete.</td></tr></table>
<p>Designated drivers are people who stay
   sober so they can drive the others home.</p>
<ul><li>First point</li><li>Second   point</li></ul>
<h3><span class="mw-headline" id="Trivia_note">Trivia note</span></h3>
<dl><dd>Cueball is the driver.</dd></dl>
<h2><span class="mw-headline" id="Transcript">Transcript</span></h2>
<p>[Cueball stands]</p>
</div></body></html>`

const modernPage = `<html><body><div class="mw-parser-output">
<div class="mw-heading mw-heading2"><h2 id="Explanation">Explanation</h2><span class="mw-editsection">[edit]</span></div>
<p>First paragraph.</p>
<p>Second paragraph.</p>
<div class="mw-heading mw-heading2"><h2 id="Transcript">Transcript</h2></div>
<p>Not part of it.</p>
</div></body></html>`

func docFrom(t *testing.T, html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractSectionLegacyMarkup(t *testing.T) {
	text, err := ExtractSection(docFrom(t, legacyPage), "Explanation")
	require.NoError(t, err)

	assert.Equal(t, strings.Join([]string{
		"Designated drivers are people who stay sober so they can drive the others home.",
		"- First point",
		"- Second point",
		"Trivia note",
		"Cueball is the driver.",
	}, "\n\n"), text)
	assert.NotContains(t, text, "Cueball stands")
	assert.NotContains(t, text, "incomplete")
}

func TestExtractSectionModernMarkup(t *testing.T) {
	text, err := ExtractSection(docFrom(t, modernPage), "Explanation")
	require.NoError(t, err)

	assert.Equal(t, "First paragraph.\n\nSecond paragraph.", text)
}

func TestExtractSectionMissing(t *testing.T) {
	_, err := ExtractSection(docFrom(t, `<html><body><p>nothing</p></body></html>`), "Explanation")
	assert.ErrorIs(t, err, ErrNoExplanation)

	_, err = ExtractSection(docFrom(t, `<h2 id="Explanation">Explanation</h2><h2>Next</h2>`), "Explanation")
	assert.ErrorIs(t, err, ErrNoExplanation)
}

func TestExplain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wiki/index.php/589" {
			http.NotFound(w, r)
			return
		}
		_, _ = fmt.Fprint(w, legacyPage)
	}))
	defer srv.Close()

	s := NewScraper(xkcd.NewHTTPFetcher(srv.Client()), WithBaseURL(srv.URL+"/wiki/index.php/"))

	e, err := s.Explain(context.Background(), 589)
	require.NoError(t, err)

	assert.Equal(t, 589, e.Number)
	assert.Equal(t, srv.URL+"/wiki/index.php/589", e.URL)
	assert.Equal(t, "http://xkcd.com/589/", e.ComicURL)
	assert.True(t, strings.HasPrefix(e.Text, "Designated drivers"))

	_, err = s.Explain(context.Background(), 3)
	var reqErr *xkcd.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "HTTP 404", reqErr.Detail())
}

func TestExplainInvalidNumber(t *testing.T) {
	called := false
	s := NewScraper(xkcd.FetcherFunc(func(context.Context, string) (string, error) {
		called = true
		return "", nil
	}))

	_, err := s.Explain(context.Background(), 0)

	assert.ErrorIs(t, err, xkcd.ErrInvalidNumber)
	assert.False(t, called)
}

func TestExplainWrapsTransportFailure(t *testing.T) {
	s := NewScraper(xkcd.FetcherFunc(func(context.Context, string) (string, error) {
		return "", errors.New("no route to host")
	}))

	_, err := s.Explain(context.Background(), 5)

	var reqErr *xkcd.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, DefaultBaseURL+"/5", reqErr.URL)
}

func TestExplanationComic(t *testing.T) {
	resolver := xkcd.NewResolver(xkcd.FetcherFunc(func(_ context.Context, url string) (string, error) {
		return `{"title": "Designated Drivers", "num": 589, "img": "i", "alt": "a",
			"year": "2009", "month": "5", "day": "27"}`, nil
	}))

	c, err := Explanation{Number: 589}.Comic(context.Background(), resolver)
	require.NoError(t, err)
	assert.Equal(t, "Designated Drivers", c.Title())

	s := NewScraper(xkcd.FetcherFunc(func(context.Context, string) (string, error) {
		return modernPage, nil
	}))
	e, err := s.ExplainComic(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, c.Permalink(), e.ComicURL)
}
