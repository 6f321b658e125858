package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProgress struct {
	mu    sync.Mutex
	done  int
	total int
	bytes int64
	marks int
}

func (p *fakeProgress) Update(done, total int, bytes int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done, p.total, p.bytes = done, total, bytes
}

func (p *fakeProgress) MarkDone() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.marks++
}

func imageServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	var flaky atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/comics/flaky.png":
			if flaky.Add(1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fallthrough
		case "/comics/designated_drivers.png", "/comics/barrel.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("PNGDATA"))
		case "/comics/page.png":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &flaky
}

func TestJobFileName(t *testing.T) {
	tests := []struct {
		name     string
		job      Job
		expected string
	}{
		{"simple", Job{Number: 589, Title: "Designated Drivers", ImageURL: "https://imgs.xkcd.com/comics/designated_drivers.png"}, "0589_designated_drivers.png"},
		{"punctuation", Job{Number: 1, Title: "Barrel - Part 1", ImageURL: "https://imgs.xkcd.com/comics/barrel_cropped_(1).jpg"}, "0001_barrel_part_1.jpg"},
		{"apostrophe", Job{Number: 2500, Title: "Don't Do It", ImageURL: "https://x/y.PNG?v=2"}, "2500_dont_do_it.png"},
		{"no extension", Job{Number: 12, Title: "", ImageURL: "https://x/y"}, "0012.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.job.FileName())
		})
	}
}

func TestDownloadAll(t *testing.T) {
	srv, flaky := imageServer(t)
	dir := t.TempDir()

	d := New(srv.Client(), Options{OutputDir: dir, Attempts: 2})
	jobs := []Job{
		{Number: 589, Title: "Designated Drivers", ImageURL: srv.URL + "/comics/designated_drivers.png"},
		{Number: 1, Title: "Barrel - Part 1", ImageURL: srv.URL + "/comics/barrel.png"},
		{Number: 7, Title: "Flaky", ImageURL: srv.URL + "/comics/flaky.png"},
	}
	ph := &fakeProgress{}

	res, err := d.DownloadAll(context.Background(), jobs, 2, ph)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "0589_designated_drivers.png"),
		filepath.Join(dir, "0001_barrel_part_1.png"),
		filepath.Join(dir, "0007_flaky.png"),
	}, res.Files)
	assert.Equal(t, int64(3*len("PNGDATA")), res.Bytes)
	assert.Equal(t, int32(2), flaky.Load())

	data, err := os.ReadFile(res.Files[0])
	require.NoError(t, err)
	assert.Equal(t, "PNGDATA", string(data))

	assert.Equal(t, 3, ph.done)
	assert.Equal(t, 3, ph.total)
	assert.Equal(t, res.Bytes, ph.bytes)
	assert.Equal(t, 1, ph.marks)
}

func TestDownloadAllFailures(t *testing.T) {
	srv, _ := imageServer(t)
	jobs := []Job{
		{Number: 1, Title: "Barrel", ImageURL: srv.URL + "/comics/barrel.png"},
		{Number: 2, Title: "Missing", ImageURL: srv.URL + "/comics/missing.png"},
		{Number: 3, Title: "Not an image", ImageURL: srv.URL + "/comics/page.png"},
	}

	strict := New(srv.Client(), Options{OutputDir: t.TempDir(), Attempts: 1})
	res, err := strict.DownloadAll(context.Background(), jobs, 3, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed 2/3 comics")
	assert.Len(t, res.Files, 1)
	assert.Len(t, res.Errors, 2)

	dir := t.TempDir()
	lenient := New(srv.Client(), Options{OutputDir: dir, Attempts: 1, SkipBroken: true})
	res, err = lenient.DownloadAll(context.Background(), jobs, 1, nil)
	require.NoError(t, err)
	assert.Len(t, res.Files, 1)
	assert.Len(t, res.Errors, 2)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "failed downloads must not leave partial files")
}

func TestDownloadAllCancelled(t *testing.T) {
	srv, _ := imageServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New(srv.Client(), Options{OutputDir: t.TempDir(), RequestsPerSecond: 1})
	_, err := d.DownloadAll(ctx, []Job{
		{Number: 1, ImageURL: srv.URL + "/comics/barrel.png"},
		{Number: 2, ImageURL: srv.URL + "/comics/barrel.png"},
	}, 1, nil)

	assert.ErrorIs(t, err, context.Canceled)
}
