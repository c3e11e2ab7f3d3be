// Package report renders solve results for people. Nothing in the search
// packages prints; they hand a segment.Result here.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bastiangx/weldsplit/internal/utils"
	"github.com/bastiangx/weldsplit/pkg/segment"
	"github.com/charmbracelet/lipgloss"
)

// Report is everything one rendered solve shows.
type Report struct {
	RosterPath string
	Weld       string
	Employees  int
	// IDs are listed when non-nil
	IDs    []string
	Result segment.Result
	Err    error
	// Describe returns the owner shown next to an id, e.g. "Hoxha, Arben"
	Describe func(id string) string
}

// Styles used by the renderer. The zero value renders plain text.
type Styles struct {
	Header lipgloss.Style
	ID     lipgloss.Style
	Count  lipgloss.Style
	Warn   lipgloss.Style
	Muted  lipgloss.Style
}

// DefaultStyles are the colored styles used on terminals.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}),
		ID: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"}),
		Count: lipgloss.NewStyle().Bold(true),
		Warn: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#b4637a", Dark: "#eb6f92"}),
		Muted: lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#9893a5", Dark: "#6e6a86"}),
	}
}

// Renderer writes reports to w.
type Renderer struct {
	w      io.Writer
	styles Styles
}

// NewRenderer returns a renderer writing to w, colored when color is set.
func NewRenderer(w io.Writer, color bool) *Renderer {
	r := &Renderer{w: w}
	if color {
		r.styles = DefaultStyles()
	}
	return r
}

// Header prints the inputs of a solve.
func (r *Renderer) Header(rosterPath, weld string) {
	r.printf("Employees file: %s\n", rosterPath)
	r.printf("Weld string: %s\n\n", weld)
}

// Roster prints what was loaded. ids may be nil.
func (r *Renderer) Roster(employees int, ids []string) {
	r.printf("Loaded %s employees\n", r.styles.Count.Render(utils.FormatWithCommas(int64(employees))))
	if ids != nil {
		r.printf("Available employee IDs: [%s]\n", strings.Join(ids, ", "))
	}
	r.printf("\n")
}

// Outcome prints the result of a solve, or why there is none.
func (r *Renderer) Outcome(rep Report) {
	switch {
	case errors.Is(rep.Err, segment.ErrEmptyDictionary):
		r.printf("%s\n", r.styles.Warn.Render("No employees loaded!"))
		return
	case errors.Is(rep.Err, segment.ErrNoSegmentation):
		r.printf("%s\n", r.styles.Warn.Render("No valid decomposition found!"))
		r.printf("%s\n", r.styles.Warn.Render("No valid sequence found!"))
		return
	case errors.Is(rep.Err, segment.ErrBudgetExceeded):
		r.printf("%s\n", r.styles.Warn.Render("Search stopped before finishing: "+rep.Err.Error()))
		r.printf("%s\n", r.styles.Muted.Render(fmt.Sprintf(
			"Result is inconclusive after %s steps", utils.FormatWithCommas(rep.Result.Steps))))
		return
	case rep.Err != nil:
		r.printf("%s\n", r.styles.Warn.Render("Error: "+rep.Err.Error()))
		return
	}

	res := rep.Result
	r.printf("Found %s possible decomposition(s)\n", r.styles.Count.Render(utils.FormatWithCommas(res.Total)))
	r.printf("Best decomposition has %s commits\n", r.styles.Count.Render(fmt.Sprint(len(res.Best))))
	r.printf("\n%s\n", r.styles.Header.Render(" Longest Commit sequence (one per line):"))
	for _, id := range res.Best {
		owner := ""
		if rep.Describe != nil {
			owner = rep.Describe(id)
		}
		r.printf("%s: %s\n", r.styles.ID.Render(id), owner)
	}
	r.printf("%s\n", r.styles.Muted.Render(fmt.Sprintf("(%s mode, %s steps, %v)",
		res.Mode, utils.FormatWithCommas(res.Steps), res.Elapsed)))
}

// Render prints a full report: inputs, roster, outcome.
func (r *Renderer) Render(rep Report) {
	r.Header(rep.RosterPath, rep.Weld)
	r.Roster(rep.Employees, rep.IDs)
	r.Outcome(rep)
}

func (r *Renderer) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}
