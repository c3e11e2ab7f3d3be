/*
Package segment splits a weld string into dictionary tokens.

A segmentation is an ordered list of tokens whose concatenation is exactly the
weld: no gaps, no overlaps, no leftovers. Two ways to get at them are provided.

Enumerate walks every complete segmentation depth-first. It is exponential in the
worst case (think a dictionary holding every single character) and exists for
exact verification and for callers that want the full list:

	all, stats, err := segment.Enumerate(ctx, segment.Problem{Dict: d, Weld: "123"}, opts)
	best, err := segment.Best(all)

Longest answers the usual question, the segmentation with the most tokens, in
O(len(weld) * maxTokenLen) with dynamic programming, and CountAll counts every
segmentation the same way without listing them.

# Ordering

At each position candidates are tried shortest token first. Every candidate at a
position is a prefix of the same remaining text, so this is also lexicographic
order, and it does not depend on how the dictionary was filled. Best keeps the
first segmentation with the maximum token count in that order, and Longest
reconstructs the very same one.

# Budgets

Options.MaxSteps and Options.Timeout bound the work. A search that hits either
(or whose context is cancelled) stops with ErrBudgetExceeded, which callers
should treat as inconclusive rather than as proof that no segmentation exists.
*/
package segment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bastiangx/weldsplit/pkg/tokens"
)

var (
	// ErrEmptyDictionary means there is nothing to match against; no search runs.
	ErrEmptyDictionary = errors.New("dictionary is empty")
	// ErrNoSegmentation means the search completed and nothing covers the weld.
	ErrNoSegmentation = errors.New("no valid segmentation")
	// ErrBudgetExceeded means the search was stopped before it could finish.
	ErrBudgetExceeded = errors.New("search budget exceeded")
)

// Mode picks the search strategy used by Solve.
type Mode string

const (
	// ModeDP finds the best segmentation with dynamic programming.
	ModeDP Mode = "dp"
	// ModeExhaustive enumerates every segmentation and selects among them.
	ModeExhaustive Mode = "exhaustive"
)

// ParseMode converts a config or flag value into a Mode. Empty means ModeDP.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeDP:
		return ModeDP, nil
	case ModeExhaustive:
		return ModeExhaustive, nil
	}
	return "", fmt.Errorf("unknown search mode %q (want %q or %q)", s, ModeDP, ModeExhaustive)
}

// Problem is one solve: the dictionary and the weld it is matched against.
// Neither is modified.
type Problem struct {
	Dict *tokens.Dictionary
	Weld string
}

// Options tunes a search. The zero value means dynamic programming with no limits.
type Options struct {
	Mode Mode
	// MaxSteps caps candidate expansions, 0 for unlimited.
	MaxSteps int64
	// Timeout caps wall time, 0 for unlimited.
	Timeout time.Duration
}

// Segmentation is an ordered list of token ids.
type Segmentation []string

// Join concatenates the tokens back into the weld they cover.
func (s Segmentation) Join() string {
	return strings.Join(s, "")
}

// Clone returns a copy that shares no memory with s.
func (s Segmentation) Clone() Segmentation {
	out := make(Segmentation, len(s))
	copy(out, s)
	return out
}

// Stats describes the work a search did.
type Stats struct {
	Steps   int64
	Elapsed time.Duration
}

// Result is what Solve hands to a reporter.
type Result struct {
	Mode Mode
	Best Segmentation
	// Total is the number of complete segmentations of the weld.
	Total int64
	Stats
}
