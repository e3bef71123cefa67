package grade

// DefaultLanguage is the language every lookup falls back to when a language
// code is not in the book. Unknown codes never produce an error.
const DefaultLanguage = "en"

// Language holds the static per-language grading material: the canonical
// phrases a learner may be attempting and the improvement tips appended to
// feedback.
type Language struct {
	// Phrases are tried in order by the reference selector; first match wins.
	Phrases []string `yaml:"phrases"`

	// Tips are the improvement hints for this language. The first two are
	// shown after a clean result, all of them after a flawed one.
	Tips []string `yaml:"tips"`
}

// LanguageBook maps a two-letter language code to its grading material. It
// is built once at startup and treated as read-only afterwards, so it may be
// shared freely across concurrent analyses.
type LanguageBook map[string]Language

// DefaultLanguageBook returns the built-in phrase and tip tables. Config
// files may override or extend individual languages; see config.Apply.
func DefaultLanguageBook() LanguageBook {
	return LanguageBook{
		"en": {
			Phrases: []string{"hello", "how are you", "my name is"},
			Tips: []string{
				"Stress the right syllable in longer words",
				"Pay close attention to vowel sounds",
				"Release final consonants clearly",
			},
		},
		"fr": {
			Phrases: []string{"bonjour", "comment ça va", "je m'appelle"},
			Tips: []string{
				"Practice nasal vowels like 'on', 'an' and 'in'",
				"Final consonants are usually silent in French",
				"The French 'r' comes from the back of the throat",
			},
		},
		"de": {
			Phrases: []string{"hallo", "wie geht's", "mein name ist"},
			Tips: []string{
				"Pronounce consonants clearly and forcefully",
				"Distinguish between long and short vowels",
				"Practice the two 'ch' sounds after front and back vowels",
			},
		},
		"nl": {
			Phrases: []string{"hallo", "hoe gaat het", "mijn naam is"},
			Tips: []string{
				"Practice the guttural 'g' sound",
				"Watch the difference between long and short vowels",
				"The 'ui' diphthong has no English equivalent",
			},
		},
		"ko": {
			Phrases: []string{"안녕하세요", "이름이 뭐예요", "감사합니다"},
			Tips: []string{
				"Distinguish tense consonants from plain ones",
				"Practice vowel combinations carefully",
				"Keep syllables even in length and rhythm",
			},
		},
	}
}

// Resolve returns the entry for code, falling back to [DefaultLanguage] when
// the code is unknown.
func (b LanguageBook) Resolve(code string) Language {
	if l, ok := b[code]; ok {
		return l
	}
	return b[DefaultLanguage]
}

// Supported reports whether code has its own entry (no fallback involved).
// Phoneme escalation only runs for supported languages.
func (b LanguageBook) Supported(code string) bool {
	_, ok := b[code]
	return ok
}
