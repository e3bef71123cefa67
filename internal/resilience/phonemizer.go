package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Achu067/speak/pkg/provider/phonemizer"
)

// ErrAllPhonemizersFailed is returned when every entry in a
// [PhonemizerChain] fails or has an open circuit breaker.
var ErrAllPhonemizersFailed = errors.New("all phonemizers failed")

// phonemizerEntry pairs a named provider with its dedicated breaker.
type phonemizerEntry struct {
	name     string
	provider phonemizer.Provider
	breaker  *CircuitBreaker
}

// PhonemizerChain is a phonemizer.Provider that tries a primary backend and
// zero or more fallbacks in registration order. Each entry has its own
// circuit breaker, so a repeatedly failing espeak-ng server stops being
// probed on the hot path while the local fallback keeps serving.
//
// PhonemizerChain is safe for concurrent use.
type PhonemizerChain struct {
	entries []phonemizerEntry
	cbCfg   CircuitBreakerConfig
}

// Compile-time assertion that PhonemizerChain satisfies phonemizer.Provider.
var _ phonemizer.Provider = (*PhonemizerChain)(nil)

// NewPhonemizerChain creates a chain with primary as the first entry.
// Additional fallbacks are registered via [PhonemizerChain.AddFallback].
// cbCfg.Name is overridden per entry.
func NewPhonemizerChain(primaryName string, primary phonemizer.Provider, cbCfg CircuitBreakerConfig) *PhonemizerChain {
	c := &PhonemizerChain{cbCfg: cbCfg}
	c.add(primaryName, primary)
	return c
}

// AddFallback appends a fallback provider, tried after all earlier entries.
func (c *PhonemizerChain) AddFallback(name string, p phonemizer.Provider) {
	c.add(name, p)
}

func (c *PhonemizerChain) add(name string, p phonemizer.Provider) {
	cfg := c.cbCfg
	cfg.Name = "phonemizer/" + name
	c.entries = append(c.entries, phonemizerEntry{
		name:     name,
		provider: p,
		breaker:  NewCircuitBreaker(cfg),
	})
}

// ToPhonemes tries each entry in order until one succeeds. Entries with an
// open breaker are skipped. When every entry fails the last error is
// returned wrapped in [ErrAllPhonemizersFailed]; callers treat that like any
// other phonemization failure.
func (c *PhonemizerChain) ToPhonemes(ctx context.Context, text, language string) ([]string, error) {
	var lastErr error
	for i := range c.entries {
		entry := &c.entries[i]

		var tokens []string
		err := entry.breaker.Execute(func() error {
			var innerErr error
			tokens, innerErr = entry.provider.ToPhonemes(ctx, text, language)
			return innerErr
		})
		if err == nil {
			return tokens, nil
		}
		lastErr = err
		if errors.Is(err, ErrCircuitOpen) {
			slog.Debug("skipping phonemizer (circuit open)", "phonemizer", entry.name)
		} else {
			slog.Warn("phonemizer failed, trying next", "phonemizer", entry.name, "error", err)
		}
	}
	return nil, fmt.Errorf("%w: %w", ErrAllPhonemizersFailed, lastErr)
}
