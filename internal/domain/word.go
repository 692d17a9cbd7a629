package domain

import (
	"strings"
	"time"
)

// ClassificationSource identifies where a word classification came from.
type ClassificationSource string

const (
	SourceUSDA        ClassificationSource = "usda"
	SourceUSDANoMatch ClassificationSource = "usda_no_match"
	SourceUSDAError   ClassificationSource = "usda_error"
	SourceCached      ClassificationSource = "cached"
	SourceLLM         ClassificationSource = "llm"
	SourceFallback    ClassificationSource = "fallback"
	SourceSeed        ClassificationSource = "seed"
)

// Categories is the fixed set of food categories used across the pipeline.
// The LLM prompt, the USDA category mapping and the word lists all draw
// from this list; anything outside it collapses to CategoryOther.
var Categories = []string{
	"Fruits", "Vegetables", "Meat", "Seafood", "Dairy",
	"Bakery", "Pantry Staples", "Condiments", "Beverages", "Frozen", "Other",
}

const CategoryOther = "Other"

// IsKnownCategory reports whether c is one of the fixed categories.
func IsKnownCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// NormalizeWord is the single normalization applied before any word
// comparison or cache lookup: lowercase plus surrounding whitespace trim.
func NormalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// USDAMatch carries the USDA metadata attached to a food classification.
type USDAMatch struct {
	FdcID        int64  `json:"fdcId"`
	Description  string `json:"description"`
	DataType     string `json:"dataType"`
	FoodCategory string `json:"foodCategory"`
}

// Nutrients holds the key nutrients extracted from a matched USDA record.
type Nutrients struct {
	Calories float64 `json:"calories,omitempty"`
	Protein  float64 `json:"protein,omitempty"`
	Carbs    float64 `json:"carbs,omitempty"`
	Fat      float64 `json:"fat,omitempty"`
	Fiber    float64 `json:"fiber,omitempty"`
}

// WordClassification is the result of classifying a single word.
// Category is empty when the word is not a food.
type WordClassification struct {
	Word       string               `json:"word,omitempty"`
	IsFood     bool                 `json:"isFood"`
	Category   string               `json:"category,omitempty"`
	Source     ClassificationSource `json:"source"`
	Confidence float64              `json:"confidence"`
	MatchScore float64              `json:"matchScore,omitempty"`
	USDA       *USDAMatch           `json:"usda,omitempty"`
	Nutrients  *Nutrients           `json:"nutrients,omitempty"`

	// USDAResultCount records how many candidates the food database
	// returned for a non-food verdict. Stored for later auditing.
	USDAResultCount int `json:"-"`
}

// WordRecord is the persisted cache entry for a classified word.
// Records are created on first classification and only ever mutated by
// feedback counters; they are never deleted.
type WordRecord struct {
	Word            string
	IsFood          bool
	IsGeneric       bool
	Category        string
	Source          ClassificationSource
	Confidence      float64
	MatchScore      float64
	USDA            *USDAMatch
	Nutrients       *Nutrients
	USDAResultCount int
	DetectionCount  int
	AcceptanceCount int
	RejectionCount  int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Classification converts a stored record into a cache-sourced result.
func (r *WordRecord) Classification() WordClassification {
	return WordClassification{
		Word:       r.Word,
		IsFood:     r.IsFood,
		Category:   r.Category,
		Source:     SourceCached,
		Confidence: r.Confidence,
		USDA:       r.USDA,
	}
}

// WordLists is the bulk word-list payload served to scanner clients.
type WordLists struct {
	FoodWords    map[string][]string `json:"foodWords"`
	NonFoodWords []string            `json:"nonFoodWords"`
	GenericWords []string            `json:"genericWords"`
	Version      string              `json:"version"`
}
