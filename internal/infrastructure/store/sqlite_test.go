package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/handycook/foodscan/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestWordRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	record := &domain.WordRecord{
		Word:       "apple",
		IsFood:     true,
		Category:   "Fruits",
		Source:     domain.SourceUSDA,
		Confidence: 1.0,
		MatchScore: 1.0,
		USDA: &domain.USDAMatch{
			FdcID:        123456,
			Description:  "Apple, raw",
			DataType:     "Foundation",
			FoodCategory: "Fruits and Fruit Juices",
		},
		Nutrients: &domain.Nutrients{Calories: 52, Carbs: 13.8},
	}

	if err := s.PutWord(ctx, record); err != nil {
		t.Fatalf("PutWord failed: %v", err)
	}

	got, err := s.GetWord(ctx, "apple")
	if err != nil {
		t.Fatalf("GetWord failed: %v", err)
	}
	if got == nil {
		t.Fatal("GetWord returned nil for stored word")
	}
	if got.Word != "apple" || !got.IsFood || got.Category != "Fruits" {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.Source != domain.SourceUSDA {
		t.Errorf("Source = %q, want %q", got.Source, domain.SourceUSDA)
	}
	if got.USDA == nil || got.USDA.FdcID != 123456 {
		t.Errorf("USDA match not preserved: %+v", got.USDA)
	}
	if got.Nutrients == nil || got.Nutrients.Calories != 52 {
		t.Errorf("nutrients not preserved: %+v", got.Nutrients)
	}
	if got.DetectionCount != 1 {
		t.Errorf("DetectionCount = %d, want 1", got.DetectionCount)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestGetWord_Missing(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetWord(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("GetWord failed: %v", err)
	}
	if got != nil {
		t.Errorf("GetWord = %+v, want nil for unknown word", got)
	}
}

func TestGetWord_NormalizesLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	record := &domain.WordRecord{Word: "banana", IsFood: true, Category: "Fruits", Source: domain.SourceUSDA, Confidence: 0.95}
	if err := s.PutWord(ctx, record); err != nil {
		t.Fatalf("PutWord failed: %v", err)
	}

	got, err := s.GetWord(ctx, "  BANANA ")
	if err != nil {
		t.Fatalf("GetWord failed: %v", err)
	}
	if got == nil {
		t.Fatal("case-insensitive lookup missed a stored word")
	}
}

func TestPutWord_UpdatePreservesCounters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	record := &domain.WordRecord{Word: "kale", IsFood: true, Category: "Vegetables", Source: domain.SourceUSDA, Confidence: 0.9}
	if err := s.PutWord(ctx, record); err != nil {
		t.Fatalf("PutWord failed: %v", err)
	}
	if err := s.RecordFeedback(ctx, "kale", true); err != nil {
		t.Fatalf("RecordFeedback failed: %v", err)
	}
	if err := s.RecordFeedback(ctx, "kale", false); err != nil {
		t.Fatalf("RecordFeedback failed: %v", err)
	}

	// Re-classification must not reset feedback counters
	record.Confidence = 0.95
	if err := s.PutWord(ctx, record); err != nil {
		t.Fatalf("PutWord failed: %v", err)
	}

	got, err := s.GetWord(ctx, "kale")
	if err != nil {
		t.Fatalf("GetWord failed: %v", err)
	}
	if got.AcceptanceCount != 1 || got.RejectionCount != 1 {
		t.Errorf("counters = %d/%d, want 1/1", got.AcceptanceCount, got.RejectionCount)
	}
	if got.Confidence != 0.95 {
		t.Errorf("Confidence = %v, want 0.95", got.Confidence)
	}
	if got.DetectionCount != 2 {
		t.Errorf("DetectionCount = %d, want 2", got.DetectionCount)
	}
}

func TestRecordFeedback_UnknownWordCreatesRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.RecordFeedback(ctx, "mystery", true); err != nil {
		t.Fatalf("RecordFeedback failed: %v", err)
	}

	got, err := s.GetWord(ctx, "mystery")
	if err != nil {
		t.Fatalf("GetWord failed: %v", err)
	}
	if got == nil {
		t.Fatal("feedback on an unknown word was dropped")
	}
	if got.AcceptanceCount != 1 {
		t.Errorf("AcceptanceCount = %d, want 1", got.AcceptanceCount)
	}
}

func TestListWords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	words := []*domain.WordRecord{
		{Word: "apple", IsFood: true, Category: "Fruits", Source: domain.SourceUSDA, Confidence: 1.0},
		{Word: "limestone", IsFood: false, Source: domain.SourceUSDANoMatch, Confidence: 0.7},
		{Word: "organic", IsFood: true, IsGeneric: true, Category: "Other", Source: domain.SourceSeed, Confidence: 1.0},
	}
	for _, w := range words {
		if err := s.PutWord(ctx, w); err != nil {
			t.Fatalf("PutWord(%q) failed: %v", w.Word, err)
		}
	}

	got, err := s.ListWords(ctx)
	if err != nil {
		t.Fatalf("ListWords failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListWords returned %d records, want 3", len(got))
	}

	byWord := make(map[string]domain.WordRecord, len(got))
	for _, r := range got {
		byWord[r.Word] = r
	}
	if !byWord["organic"].IsGeneric {
		t.Error("IsGeneric flag not preserved")
	}
	if byWord["limestone"].IsFood {
		t.Error("limestone stored as food")
	}
}

func TestCorrectionRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	record := &domain.CorrectionRecord{
		Hash:    "abc123def4567890",
		OCRText: "ORGNIC TOMA\nTOES",
		FoodTerms: []domain.FoodTerm{
			{Term: "organic tomatoes", Confidence: 0.9, Category: "Vegetables"},
		},
		BrandName:   "",
		ProductName: "organic tomatoes",
		LLMModel:    "gemini-2.5-flash-lite",
		TokensUsed:  240,
	}

	if err := s.PutCorrection(ctx, record); err != nil {
		t.Fatalf("PutCorrection failed: %v", err)
	}

	got, err := s.GetCorrection(ctx, "abc123def4567890")
	if err != nil {
		t.Fatalf("GetCorrection failed: %v", err)
	}
	if got == nil {
		t.Fatal("GetCorrection returned nil for stored hash")
	}
	if len(got.FoodTerms) != 1 || got.FoodTerms[0].Term != "organic tomatoes" {
		t.Errorf("food terms not preserved: %+v", got.FoodTerms)
	}
	if got.LLMModel != "gemini-2.5-flash-lite" || got.TokensUsed != 240 {
		t.Errorf("LLM metadata not preserved: %+v", got)
	}
}

func TestGetCorrection_Miss(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetCorrection(context.Background(), "deadbeefdeadbeef")
	if err != nil {
		t.Fatalf("GetCorrection failed: %v", err)
	}
	if got != nil {
		t.Errorf("GetCorrection = %+v, want nil on miss", got)
	}
}

func TestPutCorrection_TruncatesStoredText(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'a'
	}

	record := &domain.CorrectionRecord{
		Hash:      "ffff0000ffff0000",
		OCRText:   string(long),
		FoodTerms: []domain.FoodTerm{},
	}
	if err := s.PutCorrection(ctx, record); err != nil {
		t.Fatalf("PutCorrection failed: %v", err)
	}

	got, err := s.GetCorrection(ctx, "ffff0000ffff0000")
	if err != nil {
		t.Fatalf("GetCorrection failed: %v", err)
	}
	if len(got.OCRText) != storedTextLimit {
		t.Errorf("stored text length = %d, want %d", len(got.OCRText), storedTextLimit)
	}
}
