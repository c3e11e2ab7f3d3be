package segment

import (
	"context"
	"math"
	"time"
)

// Best returns the segmentation with the most tokens. Ties go to the one that
// comes first in results. An empty results slice gives ErrNoSegmentation.
func Best(results []Segmentation) (Segmentation, error) {
	if len(results) == 0 {
		return nil, ErrNoSegmentation
	}
	best := results[0]
	for _, seg := range results[1:] {
		if len(seg) > len(best) {
			best = seg
		}
	}
	return best, nil
}

// Longest finds the segmentation Best(Enumerate(...)) would pick without
// enumerating. most[i] is the largest token count covering weld[i:], or -1 when
// weld[i:] cannot be covered. Candidates are scanned shortest first and only a
// strict improvement replaces the choice, which reproduces the enumeration tie-break.
func Longest(ctx context.Context, p Problem, opts Options) (Segmentation, Stats, error) {
	start := time.Now()
	ctx, cancel := withTimeout(ctx, opts)
	defer cancel()

	if p.Dict == nil {
		if p.Weld == "" {
			return Segmentation{}, Stats{}, nil
		}
		return nil, Stats{Elapsed: time.Since(start)}, ErrNoSegmentation
	}

	n := len(p.Weld)
	b := newBudget(ctx, opts.MaxSteps)
	most := make([]int, n+1)
	choice := make([]int, n+1)
	var candidates []string

	for i := n - 1; i >= 0; i-- {
		most[i] = -1
		candidates = p.Dict.AppendMatchesAt(candidates[:0], p.Weld, i)
		for _, tok := range candidates {
			if err := b.step(); err != nil {
				return nil, Stats{Steps: b.steps, Elapsed: time.Since(start)}, err
			}
			next := i + len(tok)
			if most[next] < 0 {
				continue
			}
			if c := most[next] + 1; c > most[i] {
				most[i] = c
				choice[i] = len(tok)
			}
		}
	}

	stats := Stats{Steps: b.steps, Elapsed: time.Since(start)}
	if most[0] < 0 {
		return nil, stats, ErrNoSegmentation
	}

	seg := make(Segmentation, 0, most[0])
	for i := 0; i < n; i += choice[i] {
		seg = append(seg, p.Weld[i:i+choice[i]])
	}
	return seg, stats, nil
}

// CountAll returns how many complete segmentations p.Weld has, without listing
// them. The count saturates at math.MaxInt64.
func CountAll(p Problem) int64 {
	n := len(p.Weld)
	if p.Dict == nil {
		if n == 0 {
			return 1
		}
		return 0
	}

	ways := make([]int64, n+1)
	ways[n] = 1
	var candidates []string
	for i := n - 1; i >= 0; i-- {
		candidates = p.Dict.AppendMatchesAt(candidates[:0], p.Weld, i)
		for _, tok := range candidates {
			ways[i] = addSaturating(ways[i], ways[i+len(tok)])
		}
	}
	return ways[0]
}

func addSaturating(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}
