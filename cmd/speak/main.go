// Command speak grades spoken pronunciation practice. It runs either as an
// HTTP API server or as a one-shot CLI that analyzes a single WAV file and
// prints the grading result as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Achu067/speak/internal/config"
	"github.com/Achu067/speak/internal/grade"
	"github.com/Achu067/speak/internal/health"
	"github.com/Achu067/speak/internal/observe"
	"github.com/Achu067/speak/internal/resilience"
	"github.com/Achu067/speak/internal/server"
	"github.com/Achu067/speak/pkg/audio"
	"github.com/Achu067/speak/pkg/provider/phonemizer"
	"github.com/Achu067/speak/pkg/provider/phonemizer/espeak"
	"github.com/Achu067/speak/pkg/provider/phonemizer/metaphone"
	"github.com/Achu067/speak/pkg/provider/stt"
	sttopenai "github.com/Achu067/speak/pkg/provider/stt/openai"
	"github.com/Achu067/speak/pkg/provider/stt/whisper"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	audioPath := flag.String("audio", "", "WAV file to analyze once; omit to run the HTTP server")
	language := flag.String("language", grade.DefaultLanguage, "two-letter language code for one-shot analysis")
	outputPath := flag.String("output", "", "file to write the one-shot JSON result to (default stdout)")
	listenAddr := flag.String("listen", "", "HTTP listen address, overrides server.listen_addr")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "speak: config file %q not found, copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "speak: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Server.LogLevel.Level(),
	}))
	slog.SetDefault(logger)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "speak",
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Providers ─────────────────────────────────────────────────────────────
	sttProvider, closeSTT, err := buildSTT(cfg)
	if err != nil {
		slog.Error("failed to build stt provider", "err", err)
		return 1
	}
	if closeSTT != nil {
		defer closeSTT()
	}

	phonemizerProvider := buildPhonemizer(cfg)

	// ── Grading engine ────────────────────────────────────────────────────────
	gradeOpts := []grade.Option{
		grade.WithLogger(logger),
		grade.WithMetrics(metrics),
		grade.WithPenaltyWeights(cfg.PenaltyWeights()),
	}
	if phonemizerProvider != nil {
		gradeOpts = append(gradeOpts, grade.WithPhonemizer(phonemizerProvider))
	}
	if cfg.Grading.ReferenceThreshold > 0 {
		gradeOpts = append(gradeOpts, grade.WithReferenceThreshold(cfg.Grading.ReferenceThreshold))
	}
	if cfg.Grading.PhonemeThreshold > 0 {
		gradeOpts = append(gradeOpts, grade.WithPhonemeThreshold(cfg.Grading.PhonemeThreshold))
	}
	if cfg.Grading.PenaltyCap > 0 {
		gradeOpts = append(gradeOpts, grade.WithPenaltyCap(cfg.Grading.PenaltyCap))
	}
	if cfg.Providers.Phonemizer.Timeout > 0 {
		gradeOpts = append(gradeOpts, grade.WithPhonemeTimeout(cfg.Providers.Phonemizer.Timeout))
	}
	grader := grade.New(cfg.LanguageBook(), gradeOpts...)

	// ── One-shot mode ─────────────────────────────────────────────────────────
	if *audioPath != "" {
		return analyzeFile(ctx, grader, sttProvider, *audioPath, *language, *outputPath)
	}

	// ── Server mode ───────────────────────────────────────────────────────────
	addr := *listenAddr
	if addr == "" {
		addr = cfg.Server.ListenAddr
	}
	if addr == "" {
		addr = ":8080"
	}

	healthHandler := health.New(healthCheckers(sttProvider, phonemizerProvider)...)

	srv := server.New(grader, sttProvider,
		server.WithLogger(logger),
		server.WithMetrics(metrics),
		server.WithHealth(healthHandler),
	)

	slog.Info("speak starting",
		"config", *configPath,
		"listen_addr", addr,
		"stt", cfg.Providers.STT.Name,
		"phonemizer", cfg.Providers.Phonemizer.Name,
	)

	if err := srv.Run(ctx, addr); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// buildSTT instantiates the configured speech-to-text backend. The returned
// close function releases backend resources and may be nil.
func buildSTT(cfg *config.Config) (stt.Provider, func() error, error) {
	entry := cfg.Providers.STT
	switch entry.Name {
	case "":
		return nil, nil, nil
	case "whisper":
		p, err := whisper.New(entry.ModelPath)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	case "openai":
		var opts []sttopenai.Option
		if entry.BaseURL != "" {
			opts = append(opts, sttopenai.WithBaseURL(entry.BaseURL))
		}
		if entry.Model != "" {
			opts = append(opts, sttopenai.WithModel(entry.Model))
		}
		p, err := sttopenai.New(entry.APIKey, opts...)
		if err != nil {
			return nil, nil, err
		}
		return p, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown stt backend %q", entry.Name)
	}
}

// buildPhonemizer instantiates the configured phonemization backend, wrapping
// primary and fallback in a circuit-breaking chain. Returns nil when no
// backend is configured, which disables pronunciation escalation.
func buildPhonemizer(cfg *config.Config) phonemizer.Provider {
	entry := cfg.Providers.Phonemizer
	if entry.Name == "" {
		return nil
	}

	chain := resilience.NewPhonemizerChain(entry.Name, newPhonemizerBackend(entry.Name, entry), resilience.CircuitBreakerConfig{})
	if entry.Fallback != "" && entry.Fallback != entry.Name {
		chain.AddFallback(entry.Fallback, newPhonemizerBackend(entry.Fallback, entry))
	}
	return chain
}

func newPhonemizerBackend(name string, entry config.PhonemizerEntry) phonemizer.Provider {
	if name == "espeak" {
		var opts []espeak.Option
		if entry.Timeout > 0 {
			opts = append(opts, espeak.WithTimeout(entry.Timeout))
		}
		return espeak.New(entry.BaseURL, opts...)
	}
	return metaphone.New()
}

// healthCheckers builds the readiness probes for the configured providers.
func healthCheckers(sttProvider stt.Provider, phonemizerProvider phonemizer.Provider) []health.Checker {
	var checkers []health.Checker

	checkers = append(checkers, health.Checker{
		Name: "stt",
		Check: func(_ context.Context) error {
			if sttProvider == nil {
				return errors.New("no speech-to-text backend configured")
			}
			return nil
		},
	})

	if phonemizerProvider != nil {
		checkers = append(checkers, health.Checker{
			Name: "phonemizer",
			Check: func(ctx context.Context) error {
				_, err := phonemizerProvider.ToPhonemes(ctx, "ready", grade.DefaultLanguage)
				return err
			},
		})
	}

	return checkers
}

// analyzeFile runs the full pipeline over a single WAV file and writes the
// result (or the structured error shape) as indented JSON.
func analyzeFile(ctx context.Context, grader *grade.Grader, sttProvider stt.Provider, path, language, outputPath string) int {
	clip, err := audio.LoadFile(path)
	if err != nil {
		return writeOutput(outputPath, grade.NewErrorResult(grade.KindAudioError,
			"Could not load audio", err.Error(), nil), 1)
	}

	if sttProvider == nil {
		return writeOutput(outputPath, grade.NewErrorResult(grade.KindTranscriptionFailed,
			"Transcription unavailable", "no speech-to-text backend configured", nil), 1)
	}

	transcript, err := sttProvider.Transcribe(ctx, clip, stt.Config{Language: language})
	if err != nil {
		return writeOutput(outputPath, grade.NewErrorResult(grade.KindTranscriptionFailed,
			"Transcription failed", err.Error(), nil), 1)
	}

	result, err := grader.Analyze(ctx, transcript.Text, language)
	switch {
	case errors.Is(err, grade.ErrNoSpeech):
		return writeOutput(outputPath, grade.NewErrorResult(grade.KindNoSpeechDetected,
			"No speech detected", "the recognizer produced an empty transcript", map[string]any{
				"duration_ms": clip.Duration().Milliseconds(),
				"sample_rate": clip.SampleRate,
				"channels":    clip.Channels,
			}), 1)
	case err != nil:
		return writeOutput(outputPath, grade.NewErrorResult(grade.KindAnalysisFailed,
			"Analysis failed", err.Error(), nil), 1)
	}

	return writeOutput(outputPath, result, 0)
}

// writeOutput marshals v as indented JSON to outputPath or stdout and returns
// code for the process exit status.
func writeOutput(outputPath string, v any, code int) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "speak: encode result: %v\n", err)
		return 1
	}
	data = append(data, '\n')

	if outputPath == "" {
		_, _ = os.Stdout.Write(data)
		return code
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "speak: write %q: %v\n", outputPath, err)
		return 1
	}
	return code
}
