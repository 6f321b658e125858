package xkcd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultSite is the upstream comic site. Both the JSON endpoints and the
// permalinks are derived from it.
const DefaultSite = "http://xkcd.com"

// Date is a calendar date without a time component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Comic is one resolved comic. It can only be produced by a Resolver and
// its fields are read-only.
type Comic struct {
	site      string
	title     string
	imageURL  string
	altText   string
	number    int
	published Date
}

func (c Comic) Title() string    { return c.title }
func (c Comic) ImageURL() string { return c.imageURL }
func (c Comic) AltText() string  { return c.altText }
func (c Comic) Number() int      { return c.number }
func (c Comic) Published() Date  { return c.published }

// Permalink is the canonical page of the comic, always derived from its number.
func (c Comic) Permalink() string {
	return permalink(c.site, c.number)
}

func (c Comic) String() string {
	return fmt.Sprintf("#%d %q (%s)", c.number, c.title, c.published)
}

type comicJSON struct {
	Title     string `json:"title"`
	Permalink string `json:"permalink"`
	ImageURL  string `json:"img"`
	AltText   string `json:"alt"`
	Number    int    `json:"num"`
	Date      string `json:"date"`
}

func (c Comic) MarshalJSON() ([]byte, error) {
	return json.Marshal(comicJSON{
		Title:     c.title,
		Permalink: c.Permalink(),
		ImageURL:  c.imageURL,
		AltText:   c.altText,
		Number:    c.number,
		Date:      c.published.String(),
	})
}

func permalink(site string, number int) string {
	return normalizeSite(site) + "/" + strconv.Itoa(number) + "/"
}

func normalizeSite(site string) string {
	site = strings.TrimRight(strings.TrimSpace(site), "/")
	if site == "" {
		return DefaultSite
	}
	return site
}
