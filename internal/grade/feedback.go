package grade

import "fmt"

const (
	// praiseLine opens the feedback for a mistake-free analysis.
	praiseLine = "Excellent pronunciation! No mistakes detected."

	// maxExampleLines caps the per-bucket example lines in feedback.
	maxExampleLines = 3
)

// feedback renders the deterministic feedback lines for the given mistakes.
// Clean results get the praise line plus the first two tips; flawed results
// get per-bucket summaries followed by the full tip list. Relative mistake
// order is preserved within each bucket.
func (g *Grader) feedback(mistakes []Mistake, language string) []string {
	tips := g.languages.Resolve(language).Tips

	if len(mistakes) == 0 {
		lines := []string{praiseLine}
		if len(tips) > 2 {
			tips = tips[:2]
		}
		return append(lines, tips...)
	}

	var pronunciation, incorrect, extra []Mistake
	for _, m := range mistakes {
		switch m.Type {
		case MistakePronunciation:
			pronunciation = append(pronunciation, m)
		case MistakeIncorrectWord:
			incorrect = append(incorrect, m)
		case MistakeExtraWord:
			extra = append(extra, m)
		}
	}

	var lines []string

	if len(pronunciation) > 0 {
		lines = append(lines, fmt.Sprintf("Pronunciation issues (%d):", len(pronunciation)))
		for _, m := range capExamples(pronunciation) {
			// The recognized word is deliberately repeated in place of a
			// phonetic rendering; this phrasing is part of the output
			// contract.
			lines = append(lines, fmt.Sprintf("• '%s' sounded like %s instead of %s", m.Word, m.Word, m.Correct))
		}
	}

	if len(incorrect) > 0 {
		lines = append(lines, fmt.Sprintf("Incorrect words (%d):", len(incorrect)))
		for _, m := range capExamples(incorrect) {
			if m.Correct != "" {
				lines = append(lines, fmt.Sprintf("• Used '%s' instead of '%s'", m.Word, m.Correct))
			} else {
				lines = append(lines, fmt.Sprintf("• Unrecognized word: '%s'", m.Word))
			}
		}
	}

	if len(extra) > 0 {
		lines = append(lines, fmt.Sprintf("Extra words detected (%d)", len(extra)))
	}

	lines = append(lines, "\nTips for improvement:")
	return append(lines, tips...)
}

// capExamples limits a bucket to [maxExampleLines] entries.
func capExamples(bucket []Mistake) []Mistake {
	if len(bucket) > maxExampleLines {
		return bucket[:maxExampleLines]
	}
	return bucket
}
