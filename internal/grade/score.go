package grade

import (
	"strings"

	"github.com/Achu067/speak/pkg/seqdiff"
)

// Mistake penalty weights and the total penalty cap. Inherited from the
// original grading tables; tunable via grading config.
const (
	defaultPenaltyPronunciation = 3
	defaultPenaltyIncorrectWord = 2
	defaultPenaltyExtraWord     = 1
	defaultPenaltyCap           = 40
)

// score computes the bounded 0–100 score: character-level similarity of the
// lowercased texts scaled to 100, minus the capped sum of per-mistake
// penalties. An empty reference scores 0.
func (g *Grader) score(recognized, reference string, mistakes []Mistake) float64 {
	if reference == "" {
		return 0
	}

	base := seqdiff.Ratio(
		[]rune(strings.ToLower(recognized)),
		[]rune(strings.ToLower(reference)),
	) * 100

	penalty := 0.0
	for _, m := range mistakes {
		switch m.Type {
		case MistakePronunciation:
			penalty += g.weights.Pronunciation
		case MistakeIncorrectWord:
			penalty += g.weights.IncorrectWord
		case MistakeExtraWord:
			penalty += g.weights.ExtraWord
		}
	}
	if penalty > g.penaltyCap {
		penalty = g.penaltyCap
	}

	s := base - penalty
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// PenaltyWeights holds the per-mistake-type score deductions.
type PenaltyWeights struct {
	Pronunciation float64
	IncorrectWord float64
	ExtraWord     float64
}

// DefaultPenaltyWeights returns the built-in deduction table.
func DefaultPenaltyWeights() PenaltyWeights {
	return PenaltyWeights{
		Pronunciation: defaultPenaltyPronunciation,
		IncorrectWord: defaultPenaltyIncorrectWord,
		ExtraWord:     defaultPenaltyExtraWord,
	}
}
