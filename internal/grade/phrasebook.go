package grade

import (
	"strings"

	"github.com/Achu067/speak/pkg/seqdiff"
)

// defaultReferenceThreshold is the minimum word-level similarity for a
// canonical phrase to be accepted as the reference. Inherited from the
// original grading tables; tunable via grading.reference_threshold.
const defaultReferenceThreshold = 0.70

// tokenize lowercases s and splits it into whitespace-delimited words.
func tokenize(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

// SelectReference picks the canonical phrase the speaker was most likely
// attempting. The language's phrase list is tried in listed order and the
// first phrase whose word-level similarity with the transcript exceeds
// threshold wins.
//
// When no phrase qualifies — or the transcript is empty — the transcript
// itself is returned, so downstream classification degenerates to a
// no-mistake comparison.
func (b LanguageBook) SelectReference(recognized, language string, threshold float64) string {
	words := tokenize(recognized)
	for _, phrase := range b.Resolve(language).Phrases {
		if seqdiff.Ratio(words, tokenize(phrase)) > threshold {
			return phrase
		}
	}
	return recognized
}
