package scanner

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/handycook/foodscan/internal/domain"
)

// defaultMinConfidence drops low-quality label and object annotations
const defaultMinConfidence = 0.5

// Parser turns raw vision responses into candidate detections using the
// local word store. Unknown words accumulate in a parser-scoped buffer
// so the caller can classify them between frames; each parser belongs
// to one scan session.
type Parser struct {
	store         *WordStore
	ocr           WordAPI
	minConfidence float64

	mu           sync.Mutex
	unknownSeen  map[string]bool
	unknownOrder []string
}

// NewParser creates a parser bound to a word store. The API client is
// only used for OCR correction; pass nil to skip OCR text entirely.
func NewParser(store *WordStore, ocr WordAPI, minConfidence float64) *Parser {
	if minConfidence <= 0 {
		minConfidence = defaultMinConfidence
	}
	return &Parser{
		store:         store,
		ocr:           ocr,
		minConfidence: minConfidence,
		unknownSeen:   make(map[string]bool),
	}
}

// Parse extracts detections from one vision response. Logos never
// become detections; their texts feed OCR correction as brand hints.
// Labels and objects resolve against the word store: known foods are
// kept, non-food and generic words dropped, unknown words buffered and
// emitted as pending.
func (p *Parser) Parse(ctx context.Context, resp *domain.VisionResponse) []domain.RawDetection {
	if resp == nil || len(resp.Responses) == 0 {
		return nil
	}
	ann := resp.Responses[0]

	var logoTexts []string
	for _, logo := range ann.LogoAnnotations {
		if logo.Description != "" {
			logoTexts = append(logoTexts, logo.Description)
		}
	}

	var detections []domain.RawDetection

	detections = append(detections, p.parseOCR(ctx, ann.TextAnnotations, logoTexts)...)

	for _, label := range ann.LabelAnnotations {
		if d, ok := p.resolve(label.Description, label.Score, domain.SourceLabel, nil); ok {
			detections = append(detections, d)
		}
	}

	for _, object := range ann.LocalizedObjectAnnotations {
		if d, ok := p.resolve(object.Name, object.Score, domain.SourceObject, object.BoundingPoly); ok {
			detections = append(detections, d)
		}
	}

	return detections
}

// parseOCR sends the full text block through OCR correction. A failed
// correction contributes nothing; labels and objects still stand.
func (p *Parser) parseOCR(ctx context.Context, texts []domain.VisionText, logoTexts []string) []domain.RawDetection {
	if p.ocr == nil || len(texts) == 0 {
		return nil
	}

	// The first annotation is the full text block
	fullText := texts[0].Description
	if fullText == "" {
		return nil
	}

	correction, err := p.ocr.CorrectOCR(ctx, fullText, logoTexts)
	if err != nil {
		log.Printf("[PARSER] OCR correction failed: %v", err)
		return nil
	}

	// A recognized product collapses to one labeled detection, prefixed
	// with the brand when one was found
	if correction.ProductName != "" {
		label := correction.ProductName
		if correction.BrandName != "" {
			label = fmt.Sprintf("%s - %s", correction.BrandName, correction.ProductName)
		}
		// Confidence follows the best food term; 0.9 is only the
		// default for a product the model named without any terms
		confidence := 0.9
		var category string
		if len(correction.FoodTerms) > 0 {
			confidence = correction.FoodTerms[0].Confidence
			for _, term := range correction.FoodTerms[1:] {
				if term.Confidence > confidence {
					confidence = term.Confidence
				}
			}
			category = correction.FoodTerms[0].Category
		}
		return []domain.RawDetection{{
			Label:      label,
			Confidence: confidence,
			Source:     domain.SourceOCR,
			Category:   category,
		}}
	}
	if len(correction.FoodTerms) == 0 {
		return nil
	}

	detections := make([]domain.RawDetection, 0, len(correction.FoodTerms))
	for _, term := range correction.FoodTerms {
		detections = append(detections, domain.RawDetection{
			Label:      term.Term,
			Confidence: term.Confidence,
			Source:     domain.SourceOCR,
			Category:   term.Category,
		})
	}
	return detections
}

// resolve classifies one label or object annotation against the store.
func (p *Parser) resolve(text string, score float64, source domain.DetectionSource, box *domain.BoundingBox) (domain.RawDetection, bool) {
	if score < p.minConfidence {
		return domain.RawDetection{}, false
	}

	word := domain.NormalizeWord(text)
	if word == "" {
		return domain.RawDetection{}, false
	}

	kind, category := p.store.Lookup(word)
	switch kind {
	case WordFood:
		return domain.RawDetection{
			Label:       word,
			Confidence:  score,
			Source:      source,
			BoundingBox: box,
			Category:    category,
		}, true
	case WordNonFood, WordGeneric:
		return domain.RawDetection{}, false
	default:
		p.bufferUnknown(word)
		return domain.RawDetection{
			Label:       word,
			Confidence:  score,
			Source:      source,
			BoundingBox: box,
			IsPending:   true,
		}, true
	}
}

func (p *Parser) bufferUnknown(word string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.unknownSeen[word] {
		return
	}
	p.unknownSeen[word] = true
	p.unknownOrder = append(p.unknownOrder, word)
}

// TakeUnknownWords returns the buffered unknown words in first-seen
// order and clears the buffer. Words sighted again after the take are
// buffered fresh.
func (p *Parser) TakeUnknownWords() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	words := p.unknownOrder
	p.unknownOrder = nil
	p.unknownSeen = make(map[string]bool)
	return words
}
