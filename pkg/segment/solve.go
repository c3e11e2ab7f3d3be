package segment

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// Solve runs one complete solve: precondition check, search, selection.
//
// An empty dictionary returns ErrEmptyDictionary before any search. A finished
// search that covers nothing returns ErrNoSegmentation with Result.Total == 0.
// A search stopped by its budget returns an error wrapping ErrBudgetExceeded.
func Solve(ctx context.Context, p Problem, opts Options) (Result, error) {
	res := Result{Mode: opts.Mode}
	if res.Mode == "" {
		res.Mode = ModeDP
	}
	if p.Dict.Len() == 0 {
		return res, ErrEmptyDictionary
	}

	log.Debug("Solving weld", "mode", res.Mode, "len", len(p.Weld), "tokens", p.Dict.Len())

	switch res.Mode {
	case ModeExhaustive:
		all, stats, err := Enumerate(ctx, p, opts)
		res.Stats = stats
		res.Total = int64(len(all))
		if err != nil {
			log.Debugf("Enumeration stopped after %d steps with %d segmentations", stats.Steps, len(all))
			return res, err
		}
		res.Best, err = Best(all)
		if err != nil {
			return res, err
		}
	case ModeDP:
		best, stats, err := Longest(ctx, p, opts)
		res.Stats = stats
		if err != nil {
			return res, err
		}
		res.Best = best
		res.Total = CountAll(p)
	default:
		return res, fmt.Errorf("unknown search mode %q", res.Mode)
	}

	log.Debugf("Took [ %v ] and %d steps, best has %d tokens out of %d segmentations",
		res.Elapsed, res.Steps, len(res.Best), res.Total)
	return res, nil
}
