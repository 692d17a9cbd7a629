package domain

import (
	"context"
	"time"
)

// WordRepository persists classified words. Entries are append/merge
// only: feedback mutates counters, nothing is ever deleted.
type WordRepository interface {
	GetWord(ctx context.Context, word string) (*WordRecord, error)
	PutWord(ctx context.Context, record *WordRecord) error
	ListWords(ctx context.Context) ([]WordRecord, error)
	RecordFeedback(ctx context.Context, word string, accepted bool) error
}

// CorrectionRepository persists OCR correction results keyed by the
// content hash of the normalized input text.
type CorrectionRepository interface {
	GetCorrection(ctx context.Context, hash string) (*CorrectionRecord, error)
	PutCorrection(ctx context.Context, record *CorrectionRecord) error
}

// FoodDataSource searches the external food database for candidates.
type FoodDataSource interface {
	SearchFoods(ctx context.Context, query string) (*USDASearchResponse, error)
}

// CorrectionResult is what the LLM corrector returns on success.
type CorrectionResult struct {
	FoodTerms   []FoodTerm
	BrandName   string
	ProductName string
	Model       string
	TokensUsed  int64
}

// Corrector reconstructs food terms from raw OCR text.
type Corrector interface {
	CorrectText(ctx context.Context, ocrText string, logoTexts []string) (*CorrectionResult, error)
}

// ClassificationCache is the in-memory read cache that fronts the word
// repository on the hot classification path.
type ClassificationCache interface {
	Get(ctx context.Context, word string) (*WordClassification, error)
	Set(ctx context.Context, word string, classification *WordClassification, ttl time.Duration) error
	Delete(ctx context.Context, word string) error
	Exists(ctx context.Context, word string) (bool, error)
}
