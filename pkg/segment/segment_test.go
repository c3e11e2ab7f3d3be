package segment

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"

	"github.com/bastiangx/weldsplit/pkg/tokens"
)

func dictOf(t testing.TB, ids ...string) *tokens.Dictionary {
	t.Helper()
	d := tokens.New()
	for _, id := range ids {
		if err := d.Add(id, nil); err != nil {
			t.Fatalf("Add(%q): %v", id, err)
		}
	}
	return d
}

func TestEnumerateExamples(t *testing.T) {
	testCases := []struct {
		ids         []string
		weld        string
		expected    []Segmentation
		best        Segmentation
		description string
	}{
		{
			[]string{"1", "12", "23", "123"}, "123",
			[]Segmentation{{"1", "23"}, {"123"}},
			Segmentation{"1", "23"},
			"Prefix tokens where 12+3 dead-ends",
		},
		{
			[]string{"a", "ab", "b"}, "ab",
			[]Segmentation{{"a", "b"}, {"ab"}},
			Segmentation{"a", "b"},
			"Two tokens beat one",
		},
		{
			[]string{"xyz"}, "abc",
			nil,
			nil,
			"Nothing covers the weld",
		},
		{
			[]string{"12", "34"}, "1234",
			[]Segmentation{{"12", "34"}},
			Segmentation{"12", "34"},
			"Single path",
		},
		{
			[]string{"1", "2"}, "1231",
			nil,
			nil,
			"Gap in the middle",
		},
		{
			[]string{"a"}, "",
			[]Segmentation{{}},
			Segmentation{},
			"Empty weld has the empty segmentation",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			p := Problem{Dict: dictOf(t, tc.ids...), Weld: tc.weld}
			all, _, err := Enumerate(context.Background(), p, Options{})
			if err != nil {
				t.Fatalf("Enumerate: %v", err)
			}
			if len(all) != len(tc.expected) {
				t.Fatalf("expected %d segmentations, got %d: %v", len(tc.expected), len(all), all)
			}
			for i := range all {
				if !reflect.DeepEqual([]string(all[i]), []string(tc.expected[i])) {
					t.Errorf("segmentation %d: expected %v, got %v", i, tc.expected[i], all[i])
				}
			}

			best, err := Best(all)
			if tc.best == nil {
				if !errors.Is(err, ErrNoSegmentation) {
					t.Errorf("expected ErrNoSegmentation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Best: %v", err)
			}
			if !reflect.DeepEqual([]string(best), []string(tc.best)) {
				t.Errorf("expected best %v, got %v", tc.best, best)
			}
		})
	}
}

func TestSolveEmptyDictionary(t *testing.T) {
	for _, mode := range []Mode{ModeDP, ModeExhaustive} {
		t.Run(string(mode), func(t *testing.T) {
			_, err := Solve(context.Background(), Problem{Dict: tokens.New(), Weld: "anything"}, Options{Mode: mode})
			if !errors.Is(err, ErrEmptyDictionary) {
				t.Errorf("expected ErrEmptyDictionary, got %v", err)
			}
			_, err = Solve(context.Background(), Problem{Weld: "anything"}, Options{Mode: mode})
			if !errors.Is(err, ErrEmptyDictionary) {
				t.Errorf("nil dictionary: expected ErrEmptyDictionary, got %v", err)
			}
		})
	}
}

func TestSolveModesAgree(t *testing.T) {
	p := Problem{Dict: dictOf(t, "1", "12", "23", "123", "3"), Weld: "123123"}

	dp, err := Solve(context.Background(), p, Options{Mode: ModeDP})
	if err != nil {
		t.Fatalf("dp: %v", err)
	}
	ex, err := Solve(context.Background(), p, Options{Mode: ModeExhaustive})
	if err != nil {
		t.Fatalf("exhaustive: %v", err)
	}

	if !reflect.DeepEqual(dp.Best, ex.Best) {
		t.Errorf("dp picked %v, exhaustive picked %v", dp.Best, ex.Best)
	}
	if dp.Total != ex.Total {
		t.Errorf("dp counted %d, exhaustive counted %d", dp.Total, ex.Total)
	}
	if dp.Best.Join() != p.Weld {
		t.Errorf("best %v does not rebuild %q", dp.Best, p.Weld)
	}
}

func TestSolveNoSegmentation(t *testing.T) {
	p := Problem{Dict: dictOf(t, "xyz"), Weld: "abc"}
	for _, mode := range []Mode{ModeDP, ModeExhaustive} {
		t.Run(string(mode), func(t *testing.T) {
			res, err := Solve(context.Background(), p, Options{Mode: mode})
			if !errors.Is(err, ErrNoSegmentation) {
				t.Fatalf("expected ErrNoSegmentation, got %v", err)
			}
			if res.Total != 0 || len(res.Best) != 0 {
				t.Errorf("expected empty result, got %+v", res)
			}
		})
	}
}

func TestSolveUnknownMode(t *testing.T) {
	_, err := Solve(context.Background(), Problem{Dict: dictOf(t, "a"), Weld: "a"}, Options{Mode: "greedy"})
	if err == nil {
		t.Fatal("expected an error for an unknown mode")
	}
}

func TestResultsDoNotAliasPath(t *testing.T) {
	p := Problem{Dict: dictOf(t, "a", "aa"), Weld: "aaaa"}
	all, _, err := Enumerate(context.Background(), p, Options{})
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 segmentations of aaaa, got %d", len(all))
	}

	snapshot := make([]string, len(all))
	for i, seg := range all {
		snapshot[i] = strings.Join(seg, "|")
	}
	for i := range all[0] {
		all[0][i] = "mutated"
	}
	for i := 1; i < len(all); i++ {
		if got := strings.Join(all[i], "|"); got != snapshot[i] {
			t.Errorf("segmentation %d changed from %s to %s", i, snapshot[i], got)
		}
	}
}

func TestBudgetMaxSteps(t *testing.T) {
	// every split of 20 a's: fib(21) segmentations, far more than 50 steps
	p := Problem{Dict: dictOf(t, "a", "aa"), Weld: strings.Repeat("a", 20)}

	all, stats, err := Enumerate(context.Background(), p, Options{MaxSteps: 50})
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded, got %v", err)
	}
	if stats.Steps != 51 {
		t.Errorf("expected to stop on step 51, got %d", stats.Steps)
	}
	for _, seg := range all {
		if seg.Join() != p.Weld {
			t.Errorf("partial result %v is not a complete segmentation", seg)
		}
	}

	_, _, err = Longest(context.Background(), p, Options{MaxSteps: 5})
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Errorf("Longest: expected ErrBudgetExceeded, got %v", err)
	}

	res, err := Solve(context.Background(), p, Options{Mode: ModeExhaustive, MaxSteps: 50})
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Errorf("Solve: expected ErrBudgetExceeded, got %v", err)
	}
	if res.Best != nil {
		t.Errorf("aborted solve should not pick a best segmentation, got %v", res.Best)
	}
}

func TestBudgetCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Problem{Dict: dictOf(t, "a"), Weld: "aaa"}
	_, _, err := Enumerate(ctx, p, Options{})
	if !errors.Is(err, ErrBudgetExceeded) || !errors.Is(err, context.Canceled) {
		t.Errorf("Enumerate: expected budget error wrapping context.Canceled, got %v", err)
	}
	_, _, err = Longest(ctx, p, Options{})
	if !errors.Is(err, ErrBudgetExceeded) || !errors.Is(err, context.Canceled) {
		t.Errorf("Longest: expected budget error wrapping context.Canceled, got %v", err)
	}
}

func TestBestTieBreakKeepsFirst(t *testing.T) {
	results := []Segmentation{{"ab"}, {"a", "bc"}, {"ab", "c"}, {"a", "b", "c"}, {"x", "y", "z"}}
	best, err := Best(results)
	if err != nil {
		t.Fatalf("Best: %v", err)
	}
	if !reflect.DeepEqual(best, Segmentation{"a", "b", "c"}) {
		t.Errorf("expected first 3-token segmentation, got %v", best)
	}
}

func TestCountAll(t *testing.T) {
	testCases := []struct {
		ids         []string
		weld        string
		expected    int64
		description string
	}{
		{[]string{"1", "12", "23", "123"}, "123", 2, "Example with dead end"},
		{[]string{"a", "aa"}, strings.Repeat("a", 10), 89, "Fibonacci splits"},
		{[]string{"xyz"}, "abc", 0, "No cover"},
		{[]string{"a"}, "", 1, "Empty weld"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got := CountAll(Problem{Dict: dictOf(t, tc.ids...), Weld: tc.weld})
			if got != tc.expected {
				t.Errorf("expected %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestCountAllSaturates(t *testing.T) {
	// splits of n a's with tokens a and aa grow like fib(n+1); fib(93) overflows int64
	p := Problem{Dict: dictOf(t, "a", "aa"), Weld: strings.Repeat("a", 200)}
	if got := CountAll(p); got != 1<<63-1 {
		t.Errorf("expected saturated count, got %d", got)
	}
}

func TestParseMode(t *testing.T) {
	testCases := []struct {
		input    string
		expected Mode
		wantErr  bool
	}{
		{"", ModeDP, false},
		{"dp", ModeDP, false},
		{" Exhaustive ", ModeExhaustive, false},
		{"greedy", "", true},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%q", tc.input), func(t *testing.T) {
			got, err := ParseMode(tc.input)
			if (err != nil) != tc.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

// Random small dictionaries over a tiny alphabet, so prefixes collide a lot.
// Checks the properties every solve must hold regardless of input.
func TestRandomProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	alphabet := "ab1"

	randomString := func(maxLen int) string {
		n := 1 + rng.IntN(maxLen)
		var sb strings.Builder
		for i := 0; i < n; i++ {
			sb.WriteByte(alphabet[rng.IntN(len(alphabet))])
		}
		return sb.String()
	}

	for round := 0; round < 200; round++ {
		d := tokens.New()
		size := 1 + rng.IntN(6)
		for i := 0; i < size; i++ {
			_ = d.Add(randomString(3), nil)
		}
		weld := randomString(12)
		p := Problem{Dict: d, Weld: weld}

		all, _, err := Enumerate(context.Background(), p, Options{})
		if err != nil {
			t.Fatalf("round %d: Enumerate: %v", round, err)
		}
		for _, seg := range all {
			if seg.Join() != weld {
				t.Fatalf("round %d: %v does not rebuild %q", round, seg, weld)
			}
			for _, tok := range seg {
				if !d.Has(tok) {
					t.Fatalf("round %d: %q is not a token", round, tok)
				}
			}
		}

		if got := CountAll(p); got != int64(len(all)) {
			t.Fatalf("round %d: CountAll=%d, enumerated %d", round, got, len(all))
		}

		exBest, exErr := Best(all)
		dpBest, _, dpErr := Longest(context.Background(), p, Options{})
		if (exErr == nil) != (dpErr == nil) {
			t.Fatalf("round %d: exhaustive err %v, dp err %v", round, exErr, dpErr)
		}
		if exErr != nil {
			continue
		}
		for _, seg := range all {
			if len(seg) > len(exBest) {
				t.Fatalf("round %d: %v is longer than best %v", round, seg, exBest)
			}
		}
		if !reflect.DeepEqual(exBest, dpBest) {
			t.Fatalf("round %d: weld %q exhaustive %v, dp %v", round, weld, exBest, dpBest)
		}

		again, _, _ := Longest(context.Background(), p, Options{})
		if len(again) != len(dpBest) {
			t.Fatalf("round %d: repeated solve changed the count", round)
		}
	}
}

// every single char present: exponential for Enumerate, linear for Longest
func BenchmarkEnumerate(b *testing.B) {
	p := Problem{Dict: dictOf(b, "1", "2", "12", "21", "121"), Weld: strings.Repeat("12", 8)}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = Enumerate(context.Background(), p, Options{})
	}
}

func BenchmarkLongest(b *testing.B) {
	p := Problem{Dict: dictOf(b, "1", "2", "12", "21", "121"), Weld: strings.Repeat("12", 8)}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = Longest(context.Background(), p, Options{})
	}
}
