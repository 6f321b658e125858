package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/brogergvhs/xkcd/internal/config"
	"github.com/brogergvhs/xkcd/internal/downloader"
	"github.com/brogergvhs/xkcd/internal/selection"
	"github.com/brogergvhs/xkcd/internal/ui"
	"github.com/brogergvhs/xkcd/internal/util"
	"github.com/brogergvhs/xkcd/internal/xkcd"

	"github.com/spf13/cobra"
)

var (
	// selection
	flagRange  string
	flagList   string
	flagLatest bool
	flagRandom bool

	// runtime
	flagOutput       string
	flagImageWorkers int
	flagRPS          float64
	flagDryRun       bool
	flagSkipBroken   bool
	flagCBZ          bool
)

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download [number...]",
		Short: "Download comic images, optionally packed into a CBZ. Uses the defaults from the selected config, overwritten by CLI flags",
		RunE:  runDownload,
	}

	// selection
	downloadCmd.Flags().StringVar(&flagRange, "range", "", "download a range of comics (e.g. 5-12)")
	downloadCmd.Flags().StringVar(&flagList, "list", "", "download specific comics (e.g. 1,3,5)")
	downloadCmd.Flags().BoolVar(&flagLatest, "latest", false, "include the latest comic")
	downloadCmd.Flags().BoolVar(&flagRandom, "random", false, "include a random comic")

	// runtime
	downloadCmd.Flags().StringVar(&flagOutput, "output", "", "output folder")
	downloadCmd.Flags().IntVar(&flagImageWorkers, "image-workers", 0, "parallel image downloads")
	downloadCmd.Flags().Float64Var(&flagRPS, "requests-per-second", 0, "limit image requests per second")
	downloadCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "show what would be downloaded, don't download")
	downloadCmd.Flags().BoolVar(&flagSkipBroken, "skip-broken", false, "skip failed comics instead of failing the whole run")
	downloadCmd.Flags().BoolVar(&flagCBZ, "cbz", false, "pack the images into a single CBZ")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	opts := globalOptions()
	opts.Output = flagOutput
	opts.ImageWorkers = flagImageWorkers
	opts.RequestsPerSecond = flagRPS
	opts.SkipBroken = flagSkipBroken
	opts.CBZ = flagCBZ

	svc, err := newServices(opts)
	if err != nil {
		return err
	}
	cfg, logSvc := svc.cfg, svc.log

	nums, err := selection.Parse(args, flagRange, flagList)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	// comics already resolved while building the selection
	known := map[int]xkcd.Comic{}

	if flagLatest {
		c, err := svc.resolver.FetchLatest(ctx)
		if err != nil {
			return err
		}
		known[c.Number()] = c
		if !slices.Contains(nums, c.Number()) {
			nums = append(nums, c.Number())
		}
	}
	if flagRandom {
		c, err := svc.resolver.FetchRandom(ctx)
		if err != nil {
			return err
		}
		known[c.Number()] = c
		if !slices.Contains(nums, c.Number()) {
			nums = append(nums, c.Number())
		}
	}

	if len(nums) == 0 {
		return fmt.Errorf("no comics selected (pass numbers, --range, --list, --latest or --random)")
	}

	fmt.Printf("Config file: %s\n", svc.usedPath)
	comics, err := resolveAll(ctx, svc.resolver, nums, known, cfg, logSvc)
	if err != nil {
		return err
	}
	if len(comics) == 0 {
		return fmt.Errorf("none of the %d selected comics could be resolved", len(nums))
	}

	if flagDryRun {
		fmt.Printf("Dry-run: %d comics selected.\n\n", len(comics))
		for i, c := range comics {
			fmt.Printf("%3d) #%d %s  [%s]\n    %s\n", i+1, c.Number(), c.Title(), c.Published(), c.ImageURL())
		}
		return nil
	}

	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}
	util.SetupInterruptHandler(cfg.Output)

	jobs := make([]downloader.Job, len(comics))
	for i, c := range comics {
		jobs[i] = downloader.Job{
			Number:   c.Number(),
			Title:    c.Title(),
			ImageURL: c.ImageURL(),
			Referer:  c.Permalink(),
		}
	}

	dl := downloader.New(svc.client, downloader.Options{
		OutputDir:         cfg.Output,
		SkipBroken:        cfg.SkipBroken,
		RequestsPerSecond: cfg.RequestsPerSecond,
		DebugLogger:       logSvc,
	})

	pm := ui.NewProgressManager()
	handle := pm.Register("xkcd")
	stats := &ui.Stats{}
	start := time.Now()

	res, err := dl.DownloadAll(ctx, jobs, cfg.ImageWorkers, handle)
	handle.MarkDone()
	pm.Close()

	stats.TotalComics.Add(int64(len(res.Files)))
	stats.TotalBytes.Add(res.Bytes)
	stats.Failed.Add(int64(len(res.Errors) + len(nums) - len(comics)))

	if err != nil {
		util.RemovePartialFiles(cfg.Output)
		return err
	}
	for _, e := range res.Errors {
		logSvc.Warnf("Skipped %v\n", e)
	}

	if cfg.CBZ && len(res.Files) > 0 {
		cbzOut := filepath.Join(cfg.Output, cbzName(comics))
		if err := util.CreateCBZ(res.Files, cbzOut); err != nil {
			return fmt.Errorf("CBZ failed: %w", err)
		}
		for _, f := range res.Files {
			_ = os.Remove(f)
		}
		logSvc.Infof("Packed %d comics into %s\n", len(res.Files), cbzOut)
	}

	fmt.Println()
	fmt.Println("Download Summary:")
	fmt.Printf("Comics: %d\n", stats.TotalComics.Load())
	if failed := stats.Failed.Load(); failed > 0 {
		fmt.Printf("Failed: %d\n", failed)
	}
	fmt.Printf("Data:   %s\n", util.Human(stats.TotalBytes.Load()))
	fmt.Printf("Time:   %s\n", time.Since(start).Round(time.Second))
	fmt.Println("\nAll done.")

	return nil
}

// resolveAll fetches the metadata of nums, in order, with up to
// cfg.ImageWorkers lookups in flight. Failed lookups abort the run unless
// skip_broken is set, in which case they are logged and left out.
func resolveAll(ctx context.Context, src xkcd.Source, nums []int, known map[int]xkcd.Comic, cfg *config.Config, logSvc *ui.Logger) ([]xkcd.Comic, error) {
	comics := make([]xkcd.Comic, len(nums))
	errs := make([]error, len(nums))

	sem := make(chan struct{}, max(1, cfg.ImageWorkers))
	var wg sync.WaitGroup

	for i, n := range nums {
		if c, ok := known[n]; ok {
			comics[i] = c
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			comics[i], errs[i] = src.FetchByNumber(ctx, n)
		}()
	}
	wg.Wait()

	out := make([]xkcd.Comic, 0, len(nums))
	for i, err := range errs {
		if err == nil {
			out = append(out, comics[i])
			continue
		}
		if !cfg.SkipBroken {
			return nil, fmt.Errorf("comic %d: %w", nums[i], err)
		}
		logSvc.Warnf("Skipping comic %d: %v\n", nums[i], err)
	}

	return out, nil
}

func cbzName(comics []xkcd.Comic) string {
	first, last := comics[0].Number(), comics[0].Number()
	for _, c := range comics[1:] {
		first = min(first, c.Number())
		last = max(last, c.Number())
	}

	if first == last {
		return fmt.Sprintf("xkcd_%04d.cbz", first)
	}
	return fmt.Sprintf("xkcd_%04d-%04d.cbz", first, last)
}
