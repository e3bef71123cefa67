// Package server exposes the grading pipeline over HTTP.
//
// Routes:
//
//	POST /v1/analyze       — multipart WAV upload, full pipeline
//	POST /v1/analyze/text  — JSON transcript, grading only
//	GET  /metrics          — Prometheus scrape endpoint
//	GET  /healthz, /readyz — probes
//
// Successful analyses return the grading result as JSON. Failures return the
// structured error shape with a stable "type" field so clients can branch on
// the failure category without parsing messages.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/Achu067/speak/internal/grade"
	"github.com/Achu067/speak/internal/health"
	"github.com/Achu067/speak/internal/observe"
	"github.com/Achu067/speak/pkg/audio"
	"github.com/Achu067/speak/pkg/provider/stt"
)

const (
	// maxUploadBytes bounds the multipart form size for audio uploads.
	maxUploadBytes = 32 << 20

	// shutdownTimeout bounds graceful drain of in-flight requests.
	shutdownTimeout = 10 * time.Second
)

// Option is a functional option for configuring a [Server].
type Option func(*Server)

// WithLogger sets the server logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics attaches the observability instruments used by the HTTP
// middleware and the transcription timer.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithHealth attaches a health handler whose probe routes are registered on
// the server mux.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) { s.health = h }
}

// Server wires the transcription provider and the grading engine behind the
// HTTP API. Construct with [New]; immutable afterwards.
type Server struct {
	grader  *grade.Grader
	stt     stt.Provider
	logger  *slog.Logger
	metrics *observe.Metrics
	health  *health.Handler
}

// New creates a [Server]. The stt provider may be nil, in which case the
// audio endpoint responds with a transcription failure and only the
// text endpoint is usable.
func New(grader *grade.Grader, sttProvider stt.Provider, opts ...Option) *Server {
	s := &Server{
		grader: grader,
		stt:    sttProvider,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the fully routed HTTP handler, wrapped in the tracing and
// metrics middleware when metrics are attached.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /v1/analyze/text", s.handleAnalyzeText)
	mux.Handle("GET /metrics", promhttp.Handler())
	if s.health != nil {
		s.health.Register(mux)
	}

	if s.metrics != nil {
		return observe.Middleware(s.metrics)(mux)
	}
	return mux
}

// Run serves the API on addr until ctx is cancelled, then drains in-flight
// requests for up to [shutdownTimeout].
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: listen on %s: %w", addr, err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// handleAnalyze handles POST /v1/analyze: a multipart form with an "audio"
// WAV file and an optional "language" field.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, grade.KindAudioError,
			"Invalid upload", "expected multipart form with an audio file: "+err.Error(), nil)
		return
	}

	language := r.FormValue("language")
	if language == "" {
		language = grade.DefaultLanguage
	}

	file, _, err := r.FormFile("audio")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, grade.KindAudioError,
			"Missing audio file", `form field "audio" is required`, nil)
		return
	}
	defer file.Close()

	clip, err := audio.DecodeWAV(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, grade.KindAudioError,
			"Could not decode audio", err.Error(), nil)
		return
	}
	if err := audio.Validate(clip); err != nil {
		s.writeError(w, http.StatusBadRequest, grade.KindAudioError,
			"Audio clip too short", err.Error(), clipDebug(clip))
		return
	}
	clip = audio.Normalize(clip)

	if s.stt == nil {
		s.writeError(w, http.StatusBadGateway, grade.KindTranscriptionFailed,
			"Transcription unavailable", "no speech-to-text backend configured", nil)
		return
	}

	start := time.Now()
	result, err := s.stt.Transcribe(r.Context(), clip, stt.Config{Language: language})
	if s.metrics != nil {
		s.metrics.RecordSTT(r.Context(), time.Since(start))
	}
	if err != nil {
		s.logger.Error("transcription failed", "language", language, "error", err)
		s.recordError(r.Context(), language, grade.KindTranscriptionFailed)
		s.writeError(w, http.StatusBadGateway, grade.KindTranscriptionFailed,
			"Transcription failed", err.Error(), nil)
		return
	}

	s.analyze(w, r, result.Text, language, clipDebug(clip))
}

// analyzeTextRequest is the JSON body for the text endpoint.
type analyzeTextRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// handleAnalyzeText handles POST /v1/analyze/text: grading a transcript that
// was produced elsewhere.
func (s *Server) handleAnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req analyzeTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, grade.KindAnalysisFailed,
			"Invalid request body", err.Error(), nil)
		return
	}
	if req.Language == "" {
		req.Language = grade.DefaultLanguage
	}

	s.analyze(w, r, req.Text, req.Language, nil)
}

// analyze runs the grading engine and writes either the result or the mapped
// error shape. debug is attached to no-speech errors only.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request, text, language string, debug map[string]any) {
	result, err := s.grader.Analyze(r.Context(), text, language)
	switch {
	case errors.Is(err, grade.ErrNoSpeech):
		s.recordError(r.Context(), language, grade.KindNoSpeechDetected)
		s.writeError(w, http.StatusUnprocessableEntity, grade.KindNoSpeechDetected,
			"No speech detected", "the recognizer produced an empty transcript", debug)
		return
	case err != nil:
		s.logger.Error("analysis failed", "language", language, "error", err)
		s.recordError(r.Context(), language, grade.KindAnalysisFailed)
		s.writeError(w, http.StatusInternalServerError, grade.KindAnalysisFailed,
			"Analysis failed", err.Error(), nil)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// clipDebug collects the audio diagnostics attached to no-speech and
// too-short error results.
func clipDebug(c audio.Clip) map[string]any {
	return map[string]any{
		"duration_ms": c.Duration().Milliseconds(),
		"sample_rate": c.SampleRate,
		"channels":    c.Channels,
	}
}

func (s *Server) recordError(ctx context.Context, language string, kind grade.ErrorKind) {
	if s.metrics != nil {
		s.metrics.RecordAnalysisError(ctx, language, string(kind))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, kind grade.ErrorKind, headline, message string, debug map[string]any) {
	s.writeJSON(w, status, grade.NewErrorResult(kind, headline, message, debug))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "error", err)
	}
}
