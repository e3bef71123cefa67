// Package grade implements the pronunciation grading engine: reference
// phrase selection, word-level mistake classification with optional
// phoneme-based escalation, templated feedback, and a bounded 0–100 score.
//
// The pipeline for one transcript is:
//
//  1. Select the canonical reference phrase the speaker was attempting
//     (word-level similarity against the language's phrase list).
//  2. Align recognized words against the reference and classify the
//     discrepancies into incorrect, extra, and pronunciation mistakes.
//  3. Render deterministic feedback lines from the mistake buckets.
//  4. Score character-level similarity minus capped mistake penalties.
//
// A [Grader] is immutable after construction and safe for concurrent use:
// every Analyze call operates on call-local data only. The only external
// call is the optional phonemizer, which is bounded by a per-call timeout
// and whose failure merely skips escalation.
package grade

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Achu067/speak/internal/observe"
	"github.com/Achu067/speak/pkg/provider/phonemizer"
)

// ErrNoSpeech is returned by [Grader.Analyze] for an empty transcript.
// Callers map it to the no-speech error result, attaching any audio
// diagnostics they hold.
var ErrNoSpeech = errors.New("no speech detected")

// defaultPhonemeTimeout bounds a single phonemizer call. A timeout is
// treated exactly like a phonemization failure: escalation is skipped.
const defaultPhonemeTimeout = 10 * time.Second

// Option is a functional option for configuring a [Grader].
type Option func(*Grader)

// WithPhonemizer attaches the phoneme transcription backend used for
// pronunciation escalation. When nil (the default) escalation is skipped
// entirely.
func WithPhonemizer(p phonemizer.Provider) Option {
	return func(g *Grader) { g.phonemizer = p }
}

// WithLogger sets the logger for non-fatal diagnostics. Defaults to
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *Grader) { g.logger = l }
}

// WithMetrics attaches the observability instruments. When nil (the
// default) no metrics are recorded.
func WithMetrics(m *observe.Metrics) Option {
	return func(g *Grader) { g.metrics = m }
}

// WithReferenceThreshold overrides the reference-selection similarity
// threshold. Default: 0.70.
func WithReferenceThreshold(t float64) Option {
	return func(g *Grader) { g.referenceThreshold = t }
}

// WithPhonemeThreshold overrides the phoneme-escalation similarity
// threshold. Default: 0.85.
func WithPhonemeThreshold(t float64) Option {
	return func(g *Grader) { g.phonemeThreshold = t }
}

// WithPhonemeTimeout overrides the per-call phonemizer timeout. Default: 10s.
func WithPhonemeTimeout(d time.Duration) Option {
	return func(g *Grader) { g.phonemeTimeout = d }
}

// WithPenaltyWeights overrides the per-mistake-type score deductions.
func WithPenaltyWeights(w PenaltyWeights) Option {
	return func(g *Grader) { g.weights = w }
}

// WithPenaltyCap overrides the maximum total score deduction. Default: 40.
func WithPenaltyCap(cap float64) Option {
	return func(g *Grader) { g.penaltyCap = cap }
}

// Grader is the grading engine. Construct with [New]; immutable afterwards.
type Grader struct {
	languages  LanguageBook
	phonemizer phonemizer.Provider
	logger     *slog.Logger
	metrics    *observe.Metrics

	referenceThreshold float64
	phonemeThreshold   float64
	phonemeTimeout     time.Duration
	weights            PenaltyWeights
	penaltyCap         float64
}

// New creates a [Grader] over the given language book.
func New(languages LanguageBook, opts ...Option) *Grader {
	g := &Grader{
		languages:          languages,
		logger:             slog.Default(),
		referenceThreshold: defaultReferenceThreshold,
		phonemeThreshold:   defaultPhonemeThreshold,
		phonemeTimeout:     defaultPhonemeTimeout,
		weights:            DefaultPenaltyWeights(),
		penaltyCap:         defaultPenaltyCap,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Analyze grades the recognized transcript against the language's canonical
// phrases and returns the full result. An empty transcript returns
// [ErrNoSpeech]. Unknown language codes silently fall back to
// [DefaultLanguage] material; the result echoes the requested code.
func (g *Grader) Analyze(ctx context.Context, recognized, language string) (*Result, error) {
	if recognized == "" {
		return nil, ErrNoSpeech
	}

	start := time.Now()

	reference := g.languages.SelectReference(recognized, language, g.referenceThreshold)
	mistakes, corrected := g.classify(ctx, recognized, reference, language)
	feedback := g.feedback(mistakes, language)
	score := g.score(recognized, reference, mistakes)

	if g.metrics != nil {
		g.metrics.RecordAnalysis(ctx, language, time.Since(start), score)
	}
	g.logger.Debug("analysis complete",
		"language", language,
		"reference", reference,
		"mistakes", len(mistakes),
		"score", score,
	)

	return &Result{
		OriginalText:  recognized,
		ReferenceText: reference,
		CorrectedText: corrected,
		Mistakes:      mistakes,
		Feedback:      feedback,
		Score:         score,
		Language:      language,
	}, nil
}
