// Package mock provides a configurable in-memory stt.Provider for tests.
package mock

import (
	"context"
	"sync"

	"github.com/Achu067/speak/pkg/audio"
	"github.com/Achu067/speak/pkg/provider/stt"
)

// Compile-time assertion that Provider satisfies stt.Provider.
var _ stt.Provider = (*Provider)(nil)

// Provider is a mock stt.Provider. The zero value returns empty transcripts.
// All fields may be mutated between calls; access is mutex-guarded.
type Provider struct {
	mu sync.Mutex

	// Text is returned as the transcript for every call.
	Text string

	// Err, when non-nil, is returned from Transcribe instead of a result.
	Err error

	// Calls records the configs of all Transcribe invocations.
	Calls []stt.Config
}

// Transcribe returns the canned Text or Err and records the call.
func (p *Provider) Transcribe(_ context.Context, _ audio.Clip, cfg stt.Config) (stt.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Calls = append(p.Calls, cfg)
	if p.Err != nil {
		return stt.Result{}, p.Err
	}
	return stt.Result{Text: p.Text, Language: cfg.Language}, nil
}
