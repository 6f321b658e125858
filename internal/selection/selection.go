// Package selection turns CLI selections (positional numbers, a range like
// "5-12" and a list like "1,3,5") into comic numbers. Bounds against the
// latest comic are left to the resolver.
package selection

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxRange caps how many numbers a single range may expand to.
const MaxRange = 500

// Parse combines args, rng and list into deduplicated numbers, in the order
// they were given.
func Parse(args []string, rng, list string) ([]int, error) {
	var out []int
	seen := map[int]bool{}
	add := func(n int) {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}

	for _, a := range args {
		n, err := atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid comic number %q", a)
		}
		add(n)
	}

	if rng != "" {
		nums, err := Range(rng)
		if err != nil {
			return nil, err
		}
		for _, n := range nums {
			add(n)
		}
	}

	if list != "" {
		nums, err := List(list)
		if err != nil {
			return nil, err
		}
		for _, n := range nums {
			add(n)
		}
	}

	return out, nil
}

// Range expands "start-end" (inclusive).
func Range(rng string) ([]int, error) {
	parts := strings.Split(rng, "-")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid range %q (want start-end)", rng)
	}

	start, err1 := atoi(parts[0])
	end, err2 := atoi(parts[1])
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("invalid range %q (want start-end)", rng)
	}
	if start > end {
		return nil, fmt.Errorf("invalid range %q: start after end", rng)
	}
	// end-start cannot overflow: start >= 0 since the split is on "-"
	if end-start >= MaxRange {
		return nil, fmt.Errorf("range %q is larger than %d comics", rng, MaxRange)
	}

	out := make([]int, 0, end-start+1)
	for n := start; n <= end; n++ {
		out = append(out, n)
	}

	return out, nil
}

// List parses "1,3,5". Empty items are skipped.
func List(list string) ([]int, error) {
	var out []int
	for p := range strings.SplitSeq(list, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		n, err := atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid comic number %q in list", p)
		}
		out = append(out, n)
	}

	return out, nil
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
