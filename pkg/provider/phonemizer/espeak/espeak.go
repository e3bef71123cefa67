// Package espeak provides a phonemizer.Provider that talks to an espeak-ng
// phonemization server via its REST API.
//
// The server (any thin HTTP wrapper around `espeak-ng -x -q`) is expected to
// expose POST /phonemize accepting a JSON body {"text": ..., "language": ...}
// and returning {"phonemes": "..."} with tokens separated by whitespace.
// Because espeak-ng operates in batch mode, one HTTP call is made per
// ToPhonemes invocation.
//
// Typical usage:
//
//	p := espeak.New("http://localhost:7070",
//	    espeak.WithTimeout(10*time.Second),
//	)
//	phonemes, err := p.ToPhonemes(ctx, "how are you", "en")
package espeak

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Achu067/speak/pkg/provider/phonemizer"
)

const (
	defaultTimeout    = 10 * time.Second
	phonemizeEndpoint = "/phonemize"

	// maxErrorBodyBytes caps how much of an error response body is read for
	// inclusion in the returned error.
	maxErrorBodyBytes = 512
)

// Compile-time interface assertion.
var _ phonemizer.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithTimeout sets the per-request HTTP timeout. Defaults to 10s. A timeout
// surfaces as an ordinary error from ToPhonemes; callers treat it as
// "phonemization unavailable".
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely. Useful for
// tests with httptest servers or custom transports.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// Provider implements phonemizer.Provider against an espeak-ng server.
// It is safe for concurrent use.
type Provider struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Provider targeting the espeak-ng server at baseURL
// (e.g. "http://localhost:7070").
func New(baseURL string, opts ...Option) *Provider {
	p := &Provider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// phonemizeRequest is the JSON body sent to the server.
type phonemizeRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// phonemizeResponse is the JSON body returned by the server.
type phonemizeResponse struct {
	Phonemes string `json:"phonemes"`
}

// ToPhonemes requests the phoneme transcription of text from the server and
// splits the response into whitespace-separated tokens.
func (p *Provider) ToPhonemes(ctx context.Context, text, language string) ([]string, error) {
	body, err := json.Marshal(phonemizeRequest{Text: text, Language: language})
	if err != nil {
		return nil, fmt.Errorf("espeak: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+phonemizeEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("espeak: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("espeak: phonemize request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("espeak: server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var pr phonemizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("espeak: decode response: %w", err)
	}

	return strings.Fields(pr.Phonemes), nil
}
