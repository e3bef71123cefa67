// Package phonemizer defines the Provider interface for phoneme
// transcription backends.
//
// A phonemizer converts a text string plus a language code into an ordered
// sequence of phoneme tokens. The grading engine compares the phoneme
// sequences of the recognized and reference texts to decide whether
// word-level mistakes are actually pronunciation issues.
//
// Phonemization is an optional enrichment: callers must treat any error
// (including timeouts) as "no phoneme data available" rather than failing
// the analysis.
package phonemizer

import "context"

// Provider is the abstraction over any phoneme transcription backend.
//
// Implementations must be safe for concurrent use.
type Provider interface {
	// ToPhonemes returns the phoneme token sequence for text in the given
	// two-letter language. The token granularity is backend-specific; the
	// only contract is that identical pronunciations produce identical
	// sequences.
	ToPhonemes(ctx context.Context, text, language string) ([]string, error)
}
