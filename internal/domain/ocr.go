package domain

import "time"

// FoodTerm is a single corrected food term extracted from OCR text.
type FoodTerm struct {
	Term       string  `json:"term"`
	Confidence float64 `json:"confidence"`
	Category   string  `json:"category"`
}

// CorrectionSource identifies how an OCR correction was produced.
type CorrectionSource string

const (
	CorrectionLLM      CorrectionSource = "llm"
	CorrectionCache    CorrectionSource = "cache"
	CorrectionFallback CorrectionSource = "fallback"
)

// OCRCorrection is the result of correcting one OCR text blob.
type OCRCorrection struct {
	FoodTerms   []FoodTerm       `json:"foodTerms"`
	BrandName   string           `json:"brandName,omitempty"`
	ProductName string           `json:"productName,omitempty"`
	Cached      bool             `json:"cached"`
	Source      CorrectionSource `json:"source"`
	TokensUsed  int64            `json:"-"`
}

// CorrectionRecord is the persisted cache entry for an OCR correction,
// keyed by the content hash of the normalized input text.
type CorrectionRecord struct {
	Hash        string
	OCRText     string
	FoodTerms   []FoodTerm
	BrandName   string
	ProductName string
	LLMModel    string
	TokensUsed  int64
	CreatedAt   time.Time
}
