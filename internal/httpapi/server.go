// Package httpapi exposes the driver tool's scheduling pipeline as an
// HTTP service, for batch or CI callers that would rather send a
// program over the wire than shell out to the driver binary. It is a
// thin adapter: every request runs the same parse -> transform.Pipeline
// -> exact/list scheduler sequence internal/cli's root command runs,
// and nothing here changes scheduling semantics.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/schedcore/rpsched/pkg/chain"
	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/history"
	"github.com/schedcore/rpsched/pkg/iodot"
	"github.com/schedcore/rpsched/pkg/iotext/ddl"
	"github.com/schedcore/rpsched/pkg/iotext/lsd"
	"github.com/schedcore/rpsched/pkg/memo"
	"github.com/schedcore/rpsched/pkg/scheduler/exact"
	"github.com/schedcore/rpsched/pkg/scheduler/list"
	"github.com/schedcore/rpsched/pkg/transform"
)

// Server holds the configuration a /schedule request runs with.
type Server struct {
	Router *chi.Mux

	Timeout        time.Duration
	TransformNames []string
	Store          memo.Store     // optional, shared exact-scheduler memoization
	History        *history.Store // optional, run-history recording
	Logger         *log.Logger
}

// New builds a Server and registers its routes.
func New(timeout time.Duration, transformNames []string, store memo.Store, hist *history.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		Router:         chi.NewRouter(),
		Timeout:        timeout,
		TransformNames: transformNames,
		Store:          store,
		History:        hist,
		Logger:         logger,
	}
	s.Router.Use(middleware.RequestID)
	s.Router.Use(middleware.Recoverer)
	s.Router.Post("/schedule", s.handleSchedule)
	return s
}

// scheduleRequest is the POST /schedule JSON body: one input program in
// one of the two text formats.
type scheduleRequest struct {
	Format  string `json:"format"` // "ddl" or "lsd"
	Program string `json:"program"`
}

// scheduleResponse carries both recognized output shapes in one body -
// the DOT text and the analysis trace - so a caller only needs one
// request regardless of which it wants.
type scheduleResponse struct {
	Dot      string         `json:"dot"`
	Analysis []analysisStep `json:"analysis"`
	Peak     int            `json:"peak"`
	Units    int            `json:"units"`
}

type analysisStep struct {
	Position int    `json:"position"`
	Unit     string `json:"unit"`
	IRP      int    `json:"irp"`
	Live     int    `json:"live"`
	Peak     int    `json:"peak"`
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d, err := parseProgram(req.Format, req.Program)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	ps := &transform.PipelineScheduler{
		Pipeline: transform.BuildPipelineNamed(s.TransformNames),
		Inner: &exact.Scheduler{
			Timeout:  s.Timeout,
			Fallback: list.New(),
			Store:    s.Store,
		},
	}
	sink := chain.New()
	if err := ps.Schedule(d, sink); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	wallTime := time.Since(start)

	resp := buildResponse(d, sink)

	if s.History != nil {
		s.recordHistory(r.Context(), req.Program, sink, resp.Peak, wallTime)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.Logger.Warnf("encoding response: %v", err)
	}
}

func parseProgram(format, program string) (*dag.DAG, error) {
	r := strings.NewReader(program)
	switch format {
	case "ddl":
		return ddl.Parse(r)
	case "lsd":
		return lsd.Parse(r)
	default:
		return nil, fmt.Errorf("unknown format %q (want \"ddl\" or \"lsd\")", format)
	}
}

func buildResponse(d *dag.DAG, sink *chain.Chain) scheduleResponse {
	trace := sink.ComputeRPTrace(d, false)
	steps := make([]analysisStep, len(trace))
	peak := 0
	for i, st := range trace {
		if st.Peak > peak {
			peak = st.Peak
		}
		steps[i] = analysisStep{
			Position: st.Position,
			Unit:     st.Unit.String(),
			IRP:      int(st.IRP),
			Live:     st.Live,
			Peak:     st.Peak,
		}
	}
	return scheduleResponse{
		Dot:      iodot.ToDOT(d, iodot.Options{}),
		Analysis: steps,
		Peak:     peak,
		Units:    sink.Len(),
	}
}

func (s *Server) recordHistory(ctx context.Context, program string, sink *chain.Chain, peak int, wallTime time.Duration) {
	labels := make([]string, sink.Len())
	for i, u := range sink.Units() {
		labels[i] = u.String()
	}
	run := history.Run{
		InputHash: memo.Hash([]byte(program)),
		Schedule:  labels,
		PeakRP:    peak,
		WallTime:  wallTime,
	}
	if err := s.History.Record(ctx, run); err != nil {
		s.Logger.Warnf("recording run history: %v", err)
	}
}
