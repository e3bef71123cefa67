package grade

import (
	"context"
	"strings"

	"github.com/Achu067/speak/pkg/seqdiff"
)

const (
	// defaultPhonemeThreshold is the phoneme-level similarity below which
	// word mistakes are escalated to pronunciation issues. Inherited from
	// the original grading tables; tunable via grading.phoneme_threshold.
	defaultPhonemeThreshold = 0.85

	// silencePlaceholder stands in for a reference word that has no
	// counterpart when building the corrected text.
	silencePlaceholder = "[silence]"
)

// classify aligns the recognized words against the reference words and
// returns the mistake list plus the corrected text. When the language is
// supported and a phonemizer is configured, whole-string phoneme similarity
// below the threshold escalates every incorrect-word mistake to a
// pronunciation mistake in place; extra words are never escalated.
//
// Phonemization failures (including timeouts) are logged and absorbed — the
// word-level classification always survives.
func (g *Grader) classify(ctx context.Context, recognized, reference, language string) ([]Mistake, string) {
	recognizedWords := tokenize(recognized)
	referenceWords := tokenize(reference)

	mistakes := []Mistake{}
	var correctedWords []string

	for _, op := range seqdiff.Opcodes(recognizedWords, referenceWords) {
		switch op.Tag {
		case seqdiff.OpReplace, seqdiff.OpDelete:
			for i := op.I1; i < op.I2; i++ {
				if i >= len(recognizedWords) {
					continue
				}
				m := Mistake{
					Word:     recognizedWords[i],
					Position: i,
					Type:     MistakeIncorrectWord,
				}
				if op.J1 < len(referenceWords) {
					m.Correct = referenceWords[op.J1]
				}
				mistakes = append(mistakes, m)
				if m.Correct != "" {
					correctedWords = append(correctedWords, m.Correct)
				} else {
					correctedWords = append(correctedWords, silencePlaceholder)
				}
			}

		case seqdiff.OpInsert:
			for i := op.I1; i < op.I2; i++ {
				mistakes = append(mistakes, Mistake{
					Word:     recognizedWords[i],
					Position: i,
					Type:     MistakeExtraWord,
				})
			}

		case seqdiff.OpEqual:
			correctedWords = append(correctedWords, recognizedWords[op.I1:op.I2]...)
		}
	}

	g.escalate(ctx, mistakes, recognized, reference, language)

	return mistakes, strings.Join(correctedWords, " ")
}

// escalate upgrades incorrect-word mistakes to pronunciation mistakes when
// the phoneme sequences of the full recognized and reference texts diverge
// beyond the phoneme threshold.
func (g *Grader) escalate(ctx context.Context, mistakes []Mistake, recognized, reference, language string) {
	if g.phonemizer == nil || !g.languages.Supported(language) {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, g.phonemeTimeout)
	defer cancel()

	recognizedPhonemes, err := g.phonemizer.ToPhonemes(ctx, recognized, language)
	if err != nil {
		g.phonemizeFailed(ctx, err)
		return
	}
	referencePhonemes, err := g.phonemizer.ToPhonemes(ctx, reference, language)
	if err != nil {
		g.phonemizeFailed(ctx, err)
		return
	}

	if seqdiff.Ratio(recognizedPhonemes, referencePhonemes) >= g.phonemeThreshold {
		return
	}
	for i := range mistakes {
		if mistakes[i].Type == MistakeIncorrectWord {
			mistakes[i].Type = MistakePronunciation
		}
	}
}

// phonemizeFailed logs a skipped escalation and counts it. Never fatal.
func (g *Grader) phonemizeFailed(ctx context.Context, err error) {
	g.logger.Warn("phonemization failed, skipping escalation", "error", err)
	if g.metrics != nil {
		g.metrics.RecordPhonemizerError(ctx)
	}
}
