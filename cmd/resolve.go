package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/brogergvhs/xkcd/internal/xkcd"
)

// resolveArg accepts a comic number, "latest" or "random".
func resolveArg(ctx context.Context, src xkcd.Source, arg string) (xkcd.Comic, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "latest":
		return src.FetchLatest(ctx)
	case "random":
		return src.FetchRandom(ctx)
	}

	n, err := parseNumber(arg)
	if err != nil {
		return xkcd.Comic{}, err
	}

	return src.FetchByNumber(ctx, n)
}

func parseNumber(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("expected a comic number, latest or random, got %q", arg)
	}
	return n, nil
}
