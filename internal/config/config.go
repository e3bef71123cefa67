// Package config provides the configuration schema and loader for the
// pronunciation grading service.
package config

import (
	"log/slog"
	"time"

	"github.com/Achu067/speak/internal/grade"
)

// LogLevel controls log verbosity for the server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level maps l to the corresponding [slog.Level]. Unknown values map to
// info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config is the root configuration structure. It is typically loaded from a
// YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Grading   GradingConfig   `yaml:"grading"`

	// Languages overrides or extends the built-in per-language phrase and
	// tip tables. Keys are two-letter language codes.
	Languages map[string]grade.Language `yaml:"languages"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the HTTP API listens on (e.g. ":8080").
	// Only used in serve mode.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// ProvidersConfig declares which backend to use for each pipeline stage.
type ProvidersConfig struct {
	STT        STTEntry        `yaml:"stt"`
	Phonemizer PhonemizerEntry `yaml:"phonemizer"`
}

// STTEntry selects and configures the speech-to-text backend.
type STTEntry struct {
	// Name selects the implementation: "whisper" (local whisper.cpp model)
	// or "openai" (hosted transcription API).
	Name string `yaml:"name"`

	// ModelPath is the whisper.cpp model file ("whisper" only).
	ModelPath string `yaml:"model_path"`

	// APIKey authenticates against the hosted API ("openai" only).
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the hosted API endpoint. Leave empty for the
	// default.
	BaseURL string `yaml:"base_url"`

	// Model selects a hosted model (e.g. "whisper-1"). Ignored by the
	// local backend.
	Model string `yaml:"model"`
}

// PhonemizerEntry selects and configures the phoneme transcription backend.
type PhonemizerEntry struct {
	// Name selects the primary implementation: "espeak" (REST server) or
	// "metaphone" (in-process). Empty disables pronunciation escalation.
	Name string `yaml:"name"`

	// BaseURL is the espeak-ng server address ("espeak" only).
	BaseURL string `yaml:"base_url"`

	// Timeout bounds a single phonemization call. Default: 10s.
	Timeout time.Duration `yaml:"timeout"`

	// Fallback optionally names a second implementation tried when the
	// primary fails (typically "metaphone" behind an "espeak" primary).
	Fallback string `yaml:"fallback"`
}

// GradingConfig exposes the tunable constants of the grading engine. The
// defaults reproduce the original grading tables exactly.
type GradingConfig struct {
	// ReferenceThreshold is the minimum word-level similarity for a phrase
	// to be selected as the reference. Default: 0.70.
	ReferenceThreshold float64 `yaml:"reference_threshold"`

	// PhonemeThreshold is the phoneme-level similarity below which word
	// mistakes escalate to pronunciation mistakes. Default: 0.85.
	PhonemeThreshold float64 `yaml:"phoneme_threshold"`

	// PenaltyCap is the maximum total score deduction. Default: 40.
	PenaltyCap float64 `yaml:"penalty_cap"`

	// Weights are the per-mistake-type deductions. Defaults: 3/2/1.
	Weights WeightsConfig `yaml:"weights"`
}

// WeightsConfig holds the per-mistake-type score deductions.
type WeightsConfig struct {
	Pronunciation float64 `yaml:"pronunciation"`
	IncorrectWord float64 `yaml:"incorrect_word"`
	ExtraWord     float64 `yaml:"extra_word"`
}

// LanguageBook merges the configured language overrides over the built-in
// tables and returns the resulting read-only book.
func (c *Config) LanguageBook() grade.LanguageBook {
	book := grade.DefaultLanguageBook()
	for code, override := range c.Languages {
		entry := book[code]
		if len(override.Phrases) > 0 {
			entry.Phrases = override.Phrases
		}
		if len(override.Tips) > 0 {
			entry.Tips = override.Tips
		}
		book[code] = entry
	}
	return book
}

// PenaltyWeights converts the configured weights to the engine's type,
// substituting defaults for unset (zero) values.
func (c *Config) PenaltyWeights() grade.PenaltyWeights {
	w := grade.DefaultPenaltyWeights()
	if c.Grading.Weights.Pronunciation > 0 {
		w.Pronunciation = c.Grading.Weights.Pronunciation
	}
	if c.Grading.Weights.IncorrectWord > 0 {
		w.IncorrectWord = c.Grading.Weights.IncorrectWord
	}
	if c.Grading.Weights.ExtraWord > 0 {
		w.ExtraWord = c.Grading.Weights.ExtraWord
	}
	return w
}
