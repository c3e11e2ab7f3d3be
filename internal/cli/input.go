// Package cli handles interactive weld input, mainly for trying rosters out and debugging.
package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/bastiangx/weldsplit/internal/report"
	"github.com/bastiangx/weldsplit/pkg/roster"
	"github.com/bastiangx/weldsplit/pkg/segment"
	"github.com/bastiangx/weldsplit/pkg/tokens"
	"github.com/charmbracelet/log"
)

// InputHandler reads welds line by line and reports the best split for each.
type InputHandler struct {
	dict         *tokens.Dictionary
	opts         segment.Options
	maxWeldLen   int
	renderer     *report.Renderer
	requestCount int
}

// NewInputHandler handles initialization of the InputHandler. maxWeldLen of 0 means no limit.
func NewInputHandler(dict *tokens.Dictionary, opts segment.Options, maxWeldLen int, renderer *report.Renderer) *InputHandler {
	return &InputHandler{
		dict:       dict,
		opts:       opts,
		maxWeldLen: maxWeldLen,
		renderer:   renderer,
	}
}

// Start begins the interface loop on stdin.
func (h *InputHandler) Start(ctx context.Context) error {
	log.Print("weldsplit CLI")
	log.Print("type a weld and press Enter to split it (Ctrl+C or Ctrl+D to exit):")
	return h.Run(ctx, os.Stdin)
}

// Run reads welds from r until EOF, which ends the loop without error.
// Blank lines are skipped.
func (h *InputHandler) Run(ctx context.Context, r io.Reader) error {
	reader := bufio.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Print("> ")
		line, err := reader.ReadString('\n')
		weld := strings.TrimSpace(line)
		if weld != "" {
			h.handleInput(ctx, weld)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// handleInput solves one weld and renders the outcome.
func (h *InputHandler) handleInput(ctx context.Context, weld string) {
	h.requestCount++

	if h.maxWeldLen > 0 && len(weld) > h.maxWeldLen {
		log.Errorf("Weld too long: %d bytes (max %d)", len(weld), h.maxWeldLen)
		return
	}

	log.Debug("Processing request", "n", h.requestCount, "weld", weld)
	res, err := segment.Solve(ctx, segment.Problem{Dict: h.dict, Weld: weld}, h.opts)
	log.Debugf("Took [ %v ] for weld '%s'", res.Elapsed, weld)

	h.renderer.Outcome(report.Report{
		Weld:     weld,
		Result:   res,
		Err:      err,
		Describe: roster.Describe(h.dict),
	})
}
