package grade

import (
	"time"
)

// MistakeType classifies a single grading mistake.
type MistakeType string

const (
	// MistakeIncorrectWord marks a word that does not match the reference at
	// its position.
	MistakeIncorrectWord MistakeType = "incorrect_word"

	// MistakeExtraWord marks a word the speaker added beyond the reference.
	MistakeExtraWord MistakeType = "extra_word"

	// MistakePronunciation marks an incorrect word re-classified as a
	// pronunciation issue after phoneme-level comparison.
	MistakePronunciation MistakeType = "pronunciation"
)

// Mistake is a single discrepancy between the recognized and reference word
// sequences. Position indexes into the recognized word sequence. Correct is
// empty for extra words, and for incorrect words when the reference has no
// counterpart word.
type Mistake struct {
	Word     string      `json:"word"`
	Correct  string      `json:"correct"`
	Position int         `json:"position"`
	Type     MistakeType `json:"type"`
}

// Result is the successful outcome of one analysis. Field names form the
// external JSON contract and must not change.
type Result struct {
	OriginalText  string    `json:"original_text"`
	ReferenceText string    `json:"reference_text"`
	CorrectedText string    `json:"corrected_text"`
	Mistakes      []Mistake `json:"mistakes"`
	Feedback      []string  `json:"feedback"`
	Score         float64   `json:"score"`
	Language      string    `json:"language"`
}

// ErrorKind identifies the failure category in an [ErrorResult].
type ErrorKind string

const (
	KindNoSpeechDetected    ErrorKind = "no_speech_detected"
	KindAudioError          ErrorKind = "audio_error"
	KindTranscriptionFailed ErrorKind = "transcription_failed"
	KindAnalysisFailed      ErrorKind = "analysis_failed"
)

// ErrorResult is the structured failure shape produced at the pipeline
// boundary. Exactly one of Result or ErrorResult is emitted per analysis.
type ErrorResult struct {
	Error     string         `json:"error"`
	Message   string         `json:"message"`
	Type      ErrorKind      `json:"type"`
	Timestamp string         `json:"timestamp"`
	Debug     map[string]any `json:"debug,omitempty"`
}

// NewErrorResult builds an [ErrorResult] with the current UTC timestamp.
// headline is the short human-readable error field ("No speech detected");
// message carries collaborator detail and may be empty.
func NewErrorResult(kind ErrorKind, headline, message string, debug map[string]any) ErrorResult {
	return ErrorResult{
		Error:     headline,
		Message:   message,
		Type:      kind,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Debug:     debug,
	}
}
