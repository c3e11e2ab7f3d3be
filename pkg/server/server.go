package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bastiangx/weldsplit/internal/logger"
	"github.com/bastiangx/weldsplit/pkg/config"
	"github.com/bastiangx/weldsplit/pkg/segment"
	"github.com/bastiangx/weldsplit/pkg/tokens"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles the IPC for weld splitting
type Server struct {
	dict         *tokens.Dictionary
	config       *config.Config
	dec          *msgpack.Decoder
	enc          *msgpack.Encoder
	log          *log.Logger
	requestCount int
}

// NewServer creates a server using stdin/stdout for IPC
func NewServer(dict *tokens.Dictionary, cfg *config.Config) *Server {
	return NewServerWithIO(dict, cfg, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server reading requests from r and writing responses to w.
func NewServerWithIO(dict *tokens.Dictionary, cfg *config.Config, r io.Reader, w io.Writer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Server{
		dict:   dict,
		config: cfg,
		dec:    msgpack.NewDecoder(r),
		enc:    msgpack.NewEncoder(w),
		log:    logger.New("server"),
	}
}

// Start begins listening for IPC requests. It returns nil once the input is
// exhausted, or the context error once ctx is done.
func (s *Server) Start(ctx context.Context) error {
	s.log.Debug("Starting Server.", "employees", s.dict.Len())

	if err := s.send(map[string]string{"status": statusReady}); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		// One whole frame is read before decoding so a bad request
		// never leaves the stream misaligned.
		var raw msgpack.RawMessage
		if err := s.dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Debugf("Input closed after %d requests", s.requestCount)
				return nil
			}
			s.log.Errorf("Reading request: %v", err)
			return err
		}
		s.requestCount++

		var req SplitRequest
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.log.Warnf("Unmarshaling request: %v", err)
			if err := s.sendError("", "invalid msgpack request", CodeBadRequest); err != nil {
				return err
			}
			continue
		}
		if err := s.handleRequest(ctx, req); err != nil {
			return err
		}
	}
}

// handleRequest routes a decoded request. Only write failures are returned.
func (s *Server) handleRequest(ctx context.Context, req SplitRequest) error {
	if req.ID == "" {
		return s.sendError("", "missing 'id'", CodeBadRequest)
	}

	switch req.Action {
	case "":
		return s.handleSplit(ctx, req)
	case actionGetInfo:
		return s.send(s.info(req.ID))
	default:
		return s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), CodeBadRequest)
	}
}

func (s *Server) info(id string) InfoResponse {
	modes := []string{string(segment.ModeDP)}
	if s.config.Server.AllowExhaustive {
		modes = append(modes, string(segment.ModeExhaustive))
	}
	return InfoResponse{
		ID:         id,
		Status:     statusOK,
		Employees:  s.dict.Len(),
		MaxWeldLen: s.config.Search.MaxWeldLen,
		Modes:      modes,
	}
}

func (s *Server) handleSplit(ctx context.Context, req SplitRequest) error {
	opts, err := s.options(req)
	if err != nil {
		s.log.Debug("Rejected request", "id", req.ID, "err", err)
		return s.sendError(req.ID, err.Error(), CodeBadRequest)
	}

	start := time.Now()
	res, err := segment.Solve(ctx, segment.Problem{Dict: s.dict, Weld: req.Weld}, opts)
	elapsed := time.Since(start)
	if err != nil {
		s.log.Debug("Split failed", "id", req.ID, "err", err, "steps", res.Steps)
		return s.sendError(req.ID, err.Error(), errorCode(err))
	}
	s.log.Debugf("Took [ %v ] for request %s", elapsed, req.ID)

	return s.send(SplitResponse{
		ID:        req.ID,
		IDs:       res.Best,
		Count:     len(res.Best),
		Total:     res.Total,
		TimeTaken: elapsed.Microseconds(),
	})
}

// options validates req against the config and merges the two.
func (s *Server) options(req SplitRequest) (segment.Options, error) {
	if limit := s.config.Search.MaxWeldLen; limit > 0 && len(req.Weld) > limit {
		return segment.Options{}, fmt.Errorf("weld exceeds maximum length of %d", limit)
	}
	if req.MaxSteps < 0 {
		return segment.Options{}, fmt.Errorf("negative step budget %d", req.MaxSteps)
	}

	opts, err := s.config.SearchOptions()
	if err != nil {
		return segment.Options{}, err
	}
	if req.Mode != "" {
		if opts.Mode, err = segment.ParseMode(req.Mode); err != nil {
			return segment.Options{}, err
		}
	}
	if opts.Mode == segment.ModeExhaustive && !s.config.Server.AllowExhaustive {
		return segment.Options{}, errors.New("exhaustive mode is disabled on this server")
	}

	if req.MaxSteps > 0 {
		opts.MaxSteps = req.MaxSteps
	}
	if ceiling := int64(s.config.Server.MaxSteps); ceiling > 0 && (opts.MaxSteps == 0 || opts.MaxSteps > ceiling) {
		opts.MaxSteps = ceiling
	}
	return opts, nil
}

func errorCode(err error) int {
	switch {
	case errors.Is(err, segment.ErrEmptyDictionary):
		return CodeUnavailable
	case errors.Is(err, segment.ErrNoSegmentation):
		return CodeNotFound
	case errors.Is(err, segment.ErrBudgetExceeded):
		return CodeTimeout
	}
	return CodeInternal
}

func (s *Server) send(response any) error {
	if err := s.enc.Encode(response); err != nil {
		s.log.Errorf("Encoding response: %v", err)
		return err
	}
	return nil
}

func (s *Server) sendError(id, message string, code int) error {
	return s.send(SplitError{ID: id, Error: message, Code: code})
}
