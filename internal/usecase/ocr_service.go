package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"sort"
	"strings"

	"github.com/handycook/foodscan/internal/domain"
)

// fallbackMaxTerms caps how many terms the keyword fallback may return
const fallbackMaxTerms = 3

// fallbackVocabulary is scanned against the raw OCR text when the LLM
// is unavailable or returns garbage. Common staples only; the goal is a
// usable answer, not a good one.
var fallbackVocabulary = []string{
	"milk", "bread", "cheese", "butter", "eggs", "chicken", "beef",
	"pork", "fish", "rice", "pasta", "cereal", "yogurt", "cream",
	"juice", "water", "coffee", "tea", "sugar", "flour", "salt",
	"pepper", "oil", "sauce", "soup", "beans", "corn", "tomato",
	"potato", "onion", "apple",
}

// OCRService corrects raw OCR text into food terms. Results are cached
// by a content hash of the normalized input, so the same label photo
// never pays for two LLM calls.
type OCRService struct {
	corrections domain.CorrectionRepository
	corrector   domain.Corrector
}

// NewOCRService creates a new OCR correction service
func NewOCRService(corrections domain.CorrectionRepository, corrector domain.Corrector) *OCRService {
	return &OCRService{
		corrections: corrections,
		corrector:   corrector,
	}
}

// CorrectOCR corrects one OCR text blob. Lookup order is the correction
// cache, then the LLM, then the keyword fallback. Only LLM results are
// cached: fallback output is weak and should be retried against the LLM
// next time.
func (s *OCRService) CorrectOCR(ctx context.Context, ocrText string, logoTexts []string) (*domain.OCRCorrection, error) {
	if strings.TrimSpace(ocrText) == "" {
		return nil, domain.ErrInvalidRequest
	}

	hash := HashOCRText(ocrText)

	record, err := s.corrections.GetCorrection(ctx, hash)
	if err != nil {
		log.Printf("[OCR] Correction cache lookup failed for %s: %v", hash, err)
	}
	if record != nil {
		return &domain.OCRCorrection{
			FoodTerms:   record.FoodTerms,
			BrandName:   record.BrandName,
			ProductName: record.ProductName,
			Cached:      true,
			Source:      domain.CorrectionCache,
		}, nil
	}

	result, err := s.corrector.CorrectText(ctx, ocrText, logoTexts)
	if err != nil {
		log.Printf("[OCR] LLM correction failed for %s: %v", hash, err)
		return s.fallbackCorrection(ocrText), nil
	}

	if err := s.corrections.PutCorrection(ctx, &domain.CorrectionRecord{
		Hash:        hash,
		OCRText:     ocrText,
		FoodTerms:   result.FoodTerms,
		BrandName:   result.BrandName,
		ProductName: result.ProductName,
		LLMModel:    result.Model,
		TokensUsed:  result.TokensUsed,
	}); err != nil {
		log.Printf("[OCR] Failed to cache correction %s: %v", hash, err)
	}

	return &domain.OCRCorrection{
		FoodTerms:   result.FoodTerms,
		BrandName:   result.BrandName,
		ProductName: result.ProductName,
		Cached:      false,
		Source:      domain.CorrectionLLM,
		TokensUsed:  result.TokensUsed,
	}, nil
}

// fallbackCorrection scans the raw text for common staples. Confidence
// is deliberately low: these are guesses, not corrections.
func (s *OCRService) fallbackCorrection(ocrText string) *domain.OCRCorrection {
	text := strings.ToLower(ocrText)

	var terms []domain.FoodTerm
	for _, word := range fallbackVocabulary {
		if strings.Contains(text, word) {
			terms = append(terms, domain.FoodTerm{
				Term:       word,
				Confidence: 0.3,
				Category:   domain.CategoryOther,
			})
			if len(terms) == fallbackMaxTerms {
				break
			}
		}
	}

	return &domain.OCRCorrection{
		FoodTerms: terms,
		Cached:    false,
		Source:    domain.CorrectionFallback,
	}
}

// HashOCRText derives the correction cache key from OCR text. The text
// is normalized first so line order, blank lines, casing and stray
// whitespace from different photos of the same label all hash alike.
func HashOCRText(ocrText string) string {
	normalized := strings.ToLower(ocrText)
	normalized = strings.ReplaceAll(normalized, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	var lines []string
	for _, line := range strings.Split(normalized, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	sort.Strings(lines)

	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])[:16]
}
