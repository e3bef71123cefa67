package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known backend names per provider kind. Used by
// [Validate] to reject unrecognised names early instead of failing at
// provider construction.
var ValidProviderNames = map[string][]string{
	"stt":        {"whisper", "openai"},
	"phonemizer": {"espeak", "metaphone"},
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if name := cfg.Providers.STT.Name; name != "" && !slices.Contains(ValidProviderNames["stt"], name) {
		errs = append(errs, fmt.Errorf("providers.stt.name %q is unknown; valid values: %v", name, ValidProviderNames["stt"]))
	}
	if cfg.Providers.STT.Name == "whisper" && cfg.Providers.STT.ModelPath == "" {
		errs = append(errs, errors.New("providers.stt.model_path is required for the whisper backend"))
	}
	if cfg.Providers.STT.Name == "openai" && cfg.Providers.STT.APIKey == "" {
		errs = append(errs, errors.New("providers.stt.api_key is required for the openai backend"))
	}

	for _, name := range []string{cfg.Providers.Phonemizer.Name, cfg.Providers.Phonemizer.Fallback} {
		if name != "" && !slices.Contains(ValidProviderNames["phonemizer"], name) {
			errs = append(errs, fmt.Errorf("phonemizer backend %q is unknown; valid values: %v", name, ValidProviderNames["phonemizer"]))
		}
	}
	if cfg.Providers.Phonemizer.Name == "espeak" && cfg.Providers.Phonemizer.BaseURL == "" {
		errs = append(errs, errors.New("providers.phonemizer.base_url is required for the espeak backend"))
	}
	if cfg.Providers.Phonemizer.Timeout < 0 {
		errs = append(errs, errors.New("providers.phonemizer.timeout must not be negative"))
	}

	if t := cfg.Grading.ReferenceThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("grading.reference_threshold %v is outside [0,1]", t))
	}
	if t := cfg.Grading.PhonemeThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("grading.phoneme_threshold %v is outside [0,1]", t))
	}
	if cfg.Grading.PenaltyCap < 0 {
		errs = append(errs, errors.New("grading.penalty_cap must not be negative"))
	}

	for code, lang := range cfg.Languages {
		if len(code) != 2 {
			errs = append(errs, fmt.Errorf("languages key %q is not a two-letter code", code))
		}
		for i, phrase := range lang.Phrases {
			if phrase == "" {
				errs = append(errs, fmt.Errorf("languages.%s.phrases[%d] is empty", code, i))
			}
		}
	}

	return errors.Join(errs...)
}
