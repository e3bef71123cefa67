// Package mock provides a configurable in-memory phonemizer.Provider for
// tests.
package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/Achu067/speak/pkg/provider/phonemizer"
)

// Compile-time interface assertion.
var _ phonemizer.Provider = (*Provider)(nil)

// Provider is a mock phonemizer. Phonemes maps input text to the token
// sequence to return; unmapped texts fall back to splitting the text into
// words. Err, when non-nil, is returned for every call.
type Provider struct {
	mu sync.Mutex

	Phonemes map[string][]string
	Err      error

	// Calls records the (text, language) pairs of all invocations.
	Calls [][2]string
}

// ToPhonemes returns the canned sequence for text or Err.
func (p *Provider) ToPhonemes(_ context.Context, text, language string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Calls = append(p.Calls, [2]string{text, language})
	if p.Err != nil {
		return nil, p.Err
	}
	if seq, ok := p.Phonemes[text]; ok {
		return seq, nil
	}
	return strings.Fields(text), nil
}
