// Package metaphone provides a local, dependency-light phonemizer.Provider
// built on Double Metaphone encoding.
//
// It produces one phonetic code token per input word instead of a true IPA
// transcription. The codes are coarser than espeak-ng output but share the
// property the grading engine relies on: words that sound alike encode
// alike. It serves as the in-process fallback when no espeak-ng server is
// reachable.
//
// Double Metaphone is English-centric; for other languages the codes are an
// approximation, which is acceptable for a fallback whose failure mode is
// simply "no escalation".
package metaphone

import (
	"context"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/Achu067/speak/pkg/provider/phonemizer"
)

// Compile-time interface assertion.
var _ phonemizer.Provider = (*Provider)(nil)

// Provider implements phonemizer.Provider using Double Metaphone codes.
// It is stateless and safe for concurrent use.
type Provider struct{}

// New returns a new Provider.
func New() *Provider {
	return &Provider{}
}

// ToPhonemes encodes each whitespace-separated word of text as its primary
// Double Metaphone code. Words that produce an empty primary code (no
// consonant structure) fall back to the secondary code, then to the
// lowercased word itself so that token positions are preserved.
func (p *Provider) ToPhonemes(_ context.Context, text, _ string) ([]string, error) {
	words := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		primary, secondary := matchr.DoubleMetaphone(w)
		switch {
		case primary != "":
			tokens = append(tokens, primary)
		case secondary != "":
			tokens = append(tokens, secondary)
		default:
			tokens = append(tokens, w)
		}
	}
	return tokens, nil
}
