package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/handycook/foodscan/internal/domain"
)

type fakeCorrectionRepo struct {
	records map[string]*domain.CorrectionRecord
}

func newFakeCorrectionRepo() *fakeCorrectionRepo {
	return &fakeCorrectionRepo{records: make(map[string]*domain.CorrectionRecord)}
}

func (r *fakeCorrectionRepo) GetCorrection(ctx context.Context, hash string) (*domain.CorrectionRecord, error) {
	record, ok := r.records[hash]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (r *fakeCorrectionRepo) PutCorrection(ctx context.Context, record *domain.CorrectionRecord) error {
	copied := *record
	r.records[record.Hash] = &copied
	return nil
}

type fakeCorrector struct {
	result *domain.CorrectionResult
	err    error
	calls  int
	logos  []string
}

func (f *fakeCorrector) CorrectText(ctx context.Context, ocrText string, logoTexts []string) (*domain.CorrectionResult, error) {
	f.calls++
	f.logos = logoTexts
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestHashOCRText(t *testing.T) {
	t.Run("is 16 hex characters", func(t *testing.T) {
		hash := HashOCRText("ORGANIC TOMATOES")
		if len(hash) != 16 {
			t.Errorf("hash length = %d, want 16", len(hash))
		}
	})

	t.Run("invariant under line order", func(t *testing.T) {
		a := HashOCRText("ORGANIC\nTOMATOES")
		b := HashOCRText("TOMATOES\nORGANIC")
		if a != b {
			t.Errorf("hashes differ for reordered lines: %s vs %s", a, b)
		}
	})

	t.Run("invariant under case and whitespace", func(t *testing.T) {
		a := HashOCRText("Organic Tomatoes")
		b := HashOCRText("  ORGANIC TOMATOES  ")
		if a != b {
			t.Errorf("hashes differ for case/whitespace variants: %s vs %s", a, b)
		}
	})

	t.Run("invariant under blank lines and CRLF", func(t *testing.T) {
		a := HashOCRText("milk\nbread")
		b := HashOCRText("milk\r\n\r\n\r\nbread\r\n")
		if a != b {
			t.Errorf("hashes differ for blank-line/CRLF variants: %s vs %s", a, b)
		}
	})

	t.Run("bare carriage return separates lines", func(t *testing.T) {
		a := HashOCRText("milk\nbread")
		b := HashOCRText("milk\rbread")
		if a != b {
			t.Errorf("hashes differ for CR vs LF separators: %s vs %s", a, b)
		}
	})

	t.Run("different content hashes differently", func(t *testing.T) {
		if HashOCRText("milk") == HashOCRText("bread") {
			t.Error("distinct texts produced the same hash")
		}
	})
}

func TestCorrectOCR_LLMPath(t *testing.T) {
	repo := newFakeCorrectionRepo()
	corrector := &fakeCorrector{result: &domain.CorrectionResult{
		FoodTerms:   []domain.FoodTerm{{Term: "organic tomatoes", Confidence: 0.9, Category: "Vegetables"}},
		ProductName: "organic tomatoes",
		Model:       "gemini-2.5-flash-lite",
		TokensUsed:  180,
	}}
	service := NewOCRService(repo, corrector)

	got, err := service.CorrectOCR(context.Background(), "0RGANIC\nT0MATOES", nil)
	if err != nil {
		t.Fatalf("CorrectOCR error = %v", err)
	}
	if got.Cached || got.Source != domain.CorrectionLLM {
		t.Errorf("Cached/Source = %v/%q, want fresh llm", got.Cached, got.Source)
	}
	if len(got.FoodTerms) != 1 || got.FoodTerms[0].Term != "organic tomatoes" {
		t.Errorf("FoodTerms = %+v", got.FoodTerms)
	}
	if got.TokensUsed != 180 {
		t.Errorf("TokensUsed = %d, want 180", got.TokensUsed)
	}

	// Result must be persisted under the content hash
	stored := repo.records[HashOCRText("0RGANIC\nT0MATOES")]
	if stored == nil {
		t.Fatal("correction not persisted")
	}
	if stored.LLMModel != "gemini-2.5-flash-lite" || stored.TokensUsed != 180 {
		t.Errorf("stored metadata = %+v", stored)
	}
}

func TestCorrectOCR_CacheHitSkipsLLM(t *testing.T) {
	repo := newFakeCorrectionRepo()
	corrector := &fakeCorrector{result: &domain.CorrectionResult{
		FoodTerms: []domain.FoodTerm{{Term: "milk", Confidence: 0.95, Category: "Dairy"}},
	}}
	service := NewOCRService(repo, corrector)
	ctx := context.Background()

	if _, err := service.CorrectOCR(ctx, "WHOLE MLIK", nil); err != nil {
		t.Fatalf("first CorrectOCR error = %v", err)
	}

	// Same label, different photo: reordered lines and casing
	got, err := service.CorrectOCR(ctx, "whole mlik\n", nil)
	if err != nil {
		t.Fatalf("second CorrectOCR error = %v", err)
	}
	if !got.Cached || got.Source != domain.CorrectionCache {
		t.Errorf("Cached/Source = %v/%q, want cache hit", got.Cached, got.Source)
	}
	if corrector.calls != 1 {
		t.Errorf("LLM called %d times, want 1", corrector.calls)
	}
}

func TestCorrectOCR_FallbackOnLLMFailure(t *testing.T) {
	repo := newFakeCorrectionRepo()
	corrector := &fakeCorrector{err: domain.ErrLLMUnavailable}
	service := NewOCRService(repo, corrector)

	got, err := service.CorrectOCR(context.Background(), "FRESH MILK\nWHITE BREAD\nCHEESE SLICES\nTOMATO SAUCE", nil)
	if err != nil {
		t.Fatalf("CorrectOCR error = %v", err)
	}
	if got.Source != domain.CorrectionFallback {
		t.Errorf("Source = %q, want fallback", got.Source)
	}
	if len(got.FoodTerms) != fallbackMaxTerms {
		t.Errorf("got %d terms, want capped at %d", len(got.FoodTerms), fallbackMaxTerms)
	}
	for _, term := range got.FoodTerms {
		if term.Confidence != 0.3 || term.Category != domain.CategoryOther {
			t.Errorf("fallback term = %+v, want confidence 0.3 and category Other", term)
		}
	}

	// Fallback results are not cached, so the LLM is retried next time
	if len(repo.records) != 0 {
		t.Error("fallback result was persisted")
	}
}

func TestCorrectOCR_FallbackOnMalformedReply(t *testing.T) {
	service := NewOCRService(newFakeCorrectionRepo(), &fakeCorrector{err: domain.ErrMalformedReply})

	got, err := service.CorrectOCR(context.Background(), "GLORP ZZZX", nil)
	if err != nil {
		t.Fatalf("CorrectOCR error = %v", err)
	}
	if got.Source != domain.CorrectionFallback {
		t.Errorf("Source = %q, want fallback", got.Source)
	}
	if len(got.FoodTerms) != 0 {
		t.Errorf("FoodTerms = %+v, want none for unrecognizable text", got.FoodTerms)
	}
}

func TestCorrectOCR_EmptyText(t *testing.T) {
	service := NewOCRService(newFakeCorrectionRepo(), &fakeCorrector{})

	if _, err := service.CorrectOCR(context.Background(), "   \n ", nil); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}
}

func TestCorrectOCR_PassesLogoHints(t *testing.T) {
	corrector := &fakeCorrector{result: &domain.CorrectionResult{FoodTerms: []domain.FoodTerm{}}}
	service := NewOCRService(newFakeCorrectionRepo(), corrector)

	_, err := service.CorrectOCR(context.Background(), "BANANAS", []string{"Chiquita"})
	if err != nil {
		t.Fatalf("CorrectOCR error = %v", err)
	}
	if len(corrector.logos) != 1 || corrector.logos[0] != "Chiquita" {
		t.Errorf("logo hints = %v, want [Chiquita]", corrector.logos)
	}
}
