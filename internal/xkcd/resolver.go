// Package xkcd resolves comic identifiers (a number, the latest comic or a
// random one) into fully populated Comic values using the public JSON API.
//
// Every bounds check queries the latest comic number afresh; nothing is
// cached, so two calls may observe different latest comics.
package xkcd

import (
	"context"
	"math/rand/v2"
	"strconv"
)

// Source is the set of resolution operations offered to callers.
type Source interface {
	FetchByNumber(ctx context.Context, number int) (Comic, error)
	FetchLatest(ctx context.Context) (Comic, error)
	FetchRandom(ctx context.Context) (Comic, error)
}

type debugLogger interface {
	Debugf(string, ...any)
}

// Resolver implements Source on top of a Fetcher. Its fields are fixed at
// construction, so one Resolver may serve concurrent calls.
type Resolver struct {
	fetcher Fetcher
	site    string
	intN    func(n int) int
	log     debugLogger
}

type Option func(*Resolver)

// WithSite overrides the upstream base URL, e.g. for a test server.
func WithSite(site string) Option {
	return func(r *Resolver) { r.site = normalizeSite(site) }
}

// WithRandom sets the source used by FetchRandom. intN must return a value
// in [0, n) and be safe for concurrent use.
func WithRandom(intN func(n int) int) Option {
	return func(r *Resolver) {
		if intN != nil {
			r.intN = intN
		}
	}
}

func WithDebugLogger(l debugLogger) Option {
	return func(r *Resolver) { r.log = l }
}

func NewResolver(f Fetcher, opts ...Option) *Resolver {
	if f == nil {
		f = NewHTTPFetcher(nil)
	}

	r := &Resolver{
		fetcher: f,
		site:    DefaultSite,
		intN:    rand.IntN,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Site is the base URL comics are fetched from.
func (r *Resolver) Site() string { return r.site }

func (r *Resolver) latestURL() string {
	return r.site + "/info.0.json"
}

func (r *Resolver) comicURL(number int) string {
	return r.site + "/" + strconv.Itoa(number) + "/info.0.json"
}

// FetchByNumber resolves comic number after checking it against a fresh
// latest number. Numbers <= 0 fail without any network call.
func (r *Resolver) FetchByNumber(ctx context.Context, number int) (Comic, error) {
	if number <= 0 {
		return Comic{}, &InvalidNumberError{Number: number}
	}

	latest, err := r.LatestNumber(ctx)
	if err != nil {
		return Comic{}, err
	}

	return r.fetchWithin(ctx, number, latest)
}

// FetchLatest resolves the most recently published comic.
func (r *Resolver) FetchLatest(ctx context.Context) (Comic, error) {
	return r.fetch(ctx, r.latestURL())
}

// LatestNumber is the number of the latest comic.
func (r *Resolver) LatestNumber(ctx context.Context) (int, error) {
	c, err := r.FetchLatest(ctx)
	if err != nil {
		return 0, err
	}

	return c.Number(), nil
}

// FetchRandom resolves a comic drawn uniformly from [1, latest]. The latest
// comic is looked up once and its number is used as the bound.
func (r *Resolver) FetchRandom(ctx context.Context) (Comic, error) {
	latest, err := r.FetchLatest(ctx)
	if err != nil {
		return Comic{}, err
	}

	number := 1 + r.intN(latest.Number())
	if r.log != nil {
		r.log.Debugf("random comic %d of %d\n", number, latest.Number())
	}
	if number == latest.Number() {
		return latest, nil
	}

	return r.fetchWithin(ctx, number, latest.Number())
}

func (r *Resolver) fetchWithin(ctx context.Context, number, latest int) (Comic, error) {
	if number <= 0 || number > latest {
		return Comic{}, &InvalidNumberError{Number: number}
	}

	return r.fetch(ctx, r.comicURL(number))
}

func (r *Resolver) fetch(ctx context.Context, url string) (Comic, error) {
	if r.log != nil {
		r.log.Debugf("resolving %s\n", url)
	}

	body, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		return Comic{}, asRequestError(url, err)
	}

	return decodeComic(r.site, body)
}
