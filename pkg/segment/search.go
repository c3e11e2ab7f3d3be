package segment

import (
	"context"
	"time"

	"github.com/bastiangx/weldsplit/pkg/tokens"
)

// Enumerate returns every complete segmentation of p.Weld, in shortest-token-first
// depth-first order. An empty weld has exactly one segmentation, the empty one.
// A weld nothing covers yields an empty slice and a nil error.
//
// On ErrBudgetExceeded the segmentations found so far are returned with it.
func Enumerate(ctx context.Context, p Problem, opts Options) ([]Segmentation, Stats, error) {
	start := time.Now()
	ctx, cancel := withTimeout(ctx, opts)
	defer cancel()

	s := &searcher{
		dict:   p.Dict,
		weld:   p.Weld,
		budget: newBudget(ctx, opts.MaxSteps),
	}
	if p.Dict != nil {
		s.path = make(Segmentation, 0, len(p.Weld))
		err := s.walk(0, 0)
		stats := Stats{Steps: s.budget.steps, Elapsed: time.Since(start)}
		return s.results, stats, err
	}
	// no dictionary: only the empty weld is covered
	if p.Weld == "" {
		s.results = append(s.results, Segmentation{})
	}
	return s.results, Stats{Elapsed: time.Since(start)}, nil
}

// searcher holds the state of one Enumerate call. path is the single in-progress
// buffer: every append before a recursive walk is undone after it returns.
type searcher struct {
	dict    *tokens.Dictionary
	weld    string
	path    Segmentation
	results []Segmentation
	budget  *budget
	// matches[d] is the candidate buffer for recursion depth d
	matches [][]string
}

func (s *searcher) walk(pos, depth int) error {
	if pos == len(s.weld) {
		s.results = append(s.results, s.path.Clone())
		return nil
	}

	if depth == len(s.matches) {
		s.matches = append(s.matches, nil)
	}
	candidates := s.dict.AppendMatchesAt(s.matches[depth][:0], s.weld, pos)
	s.matches[depth] = candidates

	for _, tok := range candidates {
		if err := s.budget.step(); err != nil {
			return err
		}
		s.path = append(s.path, tok)
		err := s.walk(pos+len(tok), depth+1)
		s.path = s.path[:len(s.path)-1]
		if err != nil {
			return err
		}
	}
	return nil
}
