package downloader

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/brogergvhs/xkcd/internal/util"

	"golang.org/x/time/rate"
)

// Job is one comic image to save.
type Job struct {
	Number   int
	Title    string
	ImageURL string
	Referer  string
}

// FileName is "<number>_<slug><ext>", zero padded so archives sort by number.
func (j Job) FileName() string {
	ext := strings.ToLower(path.Ext(strings.SplitN(j.ImageURL, "?", 2)[0]))
	if ext == "" || len(ext) > 5 {
		ext = ".png"
	}

	name := fmt.Sprintf("%04d", j.Number)
	if slug := sanitize(j.Title); slug != "" {
		name += "_" + slug
	}

	return name + ext
}

// Progress receives updates as comics finish.
type Progress interface {
	Update(done, total int, bytes int64)
	MarkDone()
}

type Options struct {
	OutputDir  string
	SkipBroken bool
	// RequestsPerSecond limits image requests; zero or less disables it.
	RequestsPerSecond float64
	Attempts          int
	DebugLogger       interface{ Debugf(string, ...any) }
}

type Downloader struct {
	client     *http.Client
	outputDir  string
	skipBroken bool
	attempts   int
	limiter    *rate.Limiter
	log        interface{ Debugf(string, ...any) }
}

func New(c *http.Client, opts Options) *Downloader {
	if c == nil {
		c = http.DefaultClient
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.Attempts < 1 {
		opts.Attempts = 3
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Downloader{
		client:     c,
		outputDir:  opts.OutputDir,
		skipBroken: opts.SkipBroken,
		attempts:   opts.Attempts,
		limiter:    limiter,
		log:        opts.DebugLogger,
	}
}

// Result lists the saved files in job order; failed jobs are absent.
type Result struct {
	Files  []string
	Bytes  int64
	Errors []error
}

type runState struct {
	mu    sync.Mutex
	done  int
	total int
	bytes int64
}

// DownloadAll saves every job using up to maxParallel workers. A failed job
// fails the whole run unless SkipBroken is set.
func (d *Downloader) DownloadAll(ctx context.Context, jobs []Job, maxParallel int, ph Progress) (Result, error) {
	if err := os.MkdirAll(d.outputDir, 0755); err != nil {
		return Result{}, err
	}

	total := len(jobs)
	if maxParallel < 1 {
		maxParallel = 1
	}
	if maxParallel > total && total > 0 {
		maxParallel = total
	}

	st := &runState{total: total}
	if ph != nil {
		ph.Update(0, total, 0)
	}

	files := make([]string, total)
	errs := make([]error, total)

	update := func(doneDelta int, bytesDelta int64) {
		st.mu.Lock()
		defer st.mu.Unlock()
		st.done += doneDelta
		st.bytes += bytesDelta
		if ph != nil {
			ph.Update(st.done, st.total, st.bytes)
		}
	}
	progress := func(delta int64) { update(0, delta) }

	idx := make(chan int)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for i := range idx {
			j := jobs[i]
			out := filepath.Join(d.outputDir, j.FileName())

			if err := d.downloadWithRetry(ctx, j, out, progress); err != nil {
				errs[i] = fmt.Errorf("comic %d: %w", j.Number, err)
				update(1, 0)
				continue
			}

			files[i] = out
			update(1, 0)
		}
	}

	wg.Add(maxParallel)
	for w := 0; w < maxParallel; w++ {
		go worker()
	}

dispatch:
	for i := range jobs {
		select {
		case <-ctx.Done():
			break dispatch
		case idx <- i:
		}
	}

	close(idx)
	wg.Wait()
	if ph != nil {
		ph.MarkDone()
	}

	res := Result{Bytes: st.bytes}
	for i := range jobs {
		if files[i] != "" {
			res.Files = append(res.Files, files[i])
		}
		if errs[i] != nil {
			res.Errors = append(res.Errors, errs[i])
		}
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	if len(res.Errors) > 0 && !d.skipBroken {
		return res, fmt.Errorf("failed %d/%d comics (use --skip-broken to continue): %w",
			len(res.Errors), total, errors.Join(res.Errors...))
	}

	return res, nil
}

func (d *Downloader) downloadWithRetry(ctx context.Context, j Job, output string, progress func(int64)) error {
	var err error
	for attempt := 1; attempt <= d.attempts; attempt++ {
		var n int64
		n, err = d.download(ctx, j, output, progress)
		if err == nil {
			return nil
		}
		// bytes of a failed attempt do not count
		progress(-n)

		if d.log != nil {
			d.log.Debugf("comic %d attempt %d failed: %v\n", j.Number, attempt, err)
		}
		if attempt == d.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
		}
	}

	return err
}

// download returns the bytes written even on failure so the caller can
// roll back progress.
func (d *Downloader) download(ctx context.Context, j Job, output string, progress func(int64)) (int64, error) {
	if j.ImageURL == "" {
		return 0, errors.New("comic has no image")
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.ImageURL, nil)
	if err != nil {
		return 0, err
	}

	if j.Referer != "" {
		req.Header.Set("Referer", j.Referer)
	}
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, _ := mime.ParseMediaType(ct); !strings.HasPrefix(mt, "image/") {
			return 0, fmt.Errorf("unexpected MIME: %s", ct)
		}
	}

	partial := output + util.PartialSuffix
	f, err := os.Create(partial)
	if err != nil {
		return 0, err
	}

	written, err := copyWithProgress(f, resp.Body, progress)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(partial)
		return written, err
	}

	if err := os.Rename(partial, output); err != nil {
		_ = os.Remove(partial)
		return written, err
	}

	return written, nil
}

var reUnderscore = regexp.MustCompile(`_+`)

func sanitize(s string) string {
	s = strings.ToLower(s)

	clean := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			clean = append(clean, r)
		case r == '\'' || r == '(' || r == ')':
		default:
			clean = append(clean, '_')
		}
	}

	return strings.Trim(reUnderscore.ReplaceAllString(string(clean), "_"), "_")
}
