// Package stt defines the Provider interface for speech-to-text backends.
//
// A provider wraps a transcription engine (a local whisper.cpp model or the
// hosted OpenAI transcription API) behind a uniform batch interface: a
// normalised audio clip goes in, a transcript string comes out. Pronunciation
// grading operates on complete recorded clips, so no streaming surface is
// exposed.
//
// Implementations must be safe for concurrent use; multiple clips may be
// transcribed simultaneously.
package stt

import (
	"context"

	"github.com/Achu067/speak/pkg/audio"
)

// Config carries the recognition hints for a transcription call.
type Config struct {
	// Language is the two-letter language code for recognition (e.g. "en",
	// "fr"). An empty string lets the provider auto-detect, if supported.
	Language string
}

// Result is the outcome of a transcription call. Text may be empty when the
// clip contains no recognisable speech — that is not an error.
type Result struct {
	// Text is the transcribed speech content, whitespace-trimmed.
	Text string

	// Language is the language the provider recognised against. Equal to
	// Config.Language unless the provider auto-detected.
	Language string
}

// Provider is the abstraction over any speech-to-text backend.
type Provider interface {
	// Transcribe converts a normalised audio clip (mono, 16 kHz, 16-bit PCM)
	// into text. Returns an error only for engine failures; silence yields an
	// empty Result.Text and a nil error.
	Transcribe(ctx context.Context, clip audio.Clip, cfg Config) (Result, error)
}
