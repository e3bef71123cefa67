package metaphone_test

import (
	"context"
	"testing"

	"github.com/Achu067/speak/pkg/provider/phonemizer/metaphone"
)

func TestToPhonemes_OneTokenPerWord(t *testing.T) {
	t.Parallel()

	p := metaphone.New()
	tokens, err := p.ToPhonemes(context.Background(), "How Are You", "en")
	if err != nil {
		t.Fatalf("ToPhonemes: %v", err)
	}
	if len(tokens) != 3 {
		t.Fatalf("tokens = %v, want 3", tokens)
	}
	for i, tok := range tokens {
		if tok == "" {
			t.Errorf("tokens[%d] is empty", i)
		}
	}
}

func TestToPhonemes_SimilarWordsEncodeAlike(t *testing.T) {
	t.Parallel()

	p := metaphone.New()
	ctx := context.Background()

	a, err := p.ToPhonemes(ctx, "night", "en")
	if err != nil {
		t.Fatalf("ToPhonemes: %v", err)
	}
	b, err := p.ToPhonemes(ctx, "knight", "en")
	if err != nil {
		t.Fatalf("ToPhonemes: %v", err)
	}
	if a[0] != b[0] {
		t.Errorf("night = %q, knight = %q, want identical codes", a[0], b[0])
	}
}

func TestToPhonemes_CaseInsensitive(t *testing.T) {
	t.Parallel()

	p := metaphone.New()
	ctx := context.Background()

	upper, _ := p.ToPhonemes(ctx, "HELLO", "en")
	lower, _ := p.ToPhonemes(ctx, "hello", "en")
	if upper[0] != lower[0] {
		t.Errorf("HELLO = %q, hello = %q, want identical codes", upper[0], lower[0])
	}
}

func TestToPhonemes_EmptyText(t *testing.T) {
	t.Parallel()

	p := metaphone.New()
	tokens, err := p.ToPhonemes(context.Background(), "", "en")
	if err != nil {
		t.Fatalf("ToPhonemes: %v", err)
	}
	if len(tokens) != 0 {
		t.Errorf("tokens = %v, want none for empty text", tokens)
	}
}
