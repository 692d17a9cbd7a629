package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/handycook/foodscan/internal/domain"
	"github.com/lithammer/dedent"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash-lite"

// maxFoodTerms bounds the reply even when the model ignores the prompt
const maxFoodTerms = 5

// correctionPrompt instructs the model to reconstruct food terms from
// grocery-label OCR output. OCR text from packaging is fragmented and
// noisy, so the rules focus on reassembly rather than translation.
var correctionPrompt = strings.TrimSpace(dedent.Dedent(`
	You are correcting OCR output from photos of grocery product labels.

	OCR text:
	%s
	%s
	Rules:
	- The text is fragmented: words may be split across lines or merged. Reconstruct the product terms.
	- Fix obvious OCR errors (e.g. "0RGANIC" -> "organic", "T0MATOES" -> "tomatoes", "MLIK" -> "milk").
	- Distinguish the brand name from the product itself. "CHIQUITA BANANAS" has brand "Chiquita" and product "bananas".
	- Ignore barcodes, item codes, weights, prices, percentages and dates.
	- Return at most 5 food terms. Fewer is better than guessing.
	- Each term gets a confidence between 0 and 1 and one category from exactly this list: Fruits, Vegetables, Meat, Seafood, Dairy, Bakery, Pantry Staples, Condiments, Beverages, Frozen, Other.

	Respond in JSON format with these fields:
	- foodTerms: array of {"term": string, "confidence": number, "category": string}
	- brandName: the brand if identifiable (empty string if unknown)
	- productName: the main product name (empty string if unknown)

	Example response:
	{"foodTerms": [{"term": "organic tomatoes", "confidence": 0.9, "category": "Vegetables"}], "brandName": "", "productName": "organic tomatoes"}

	Respond ONLY with the JSON object, no markdown or other text.
`))

// GeminiCorrector implements domain.Corrector using Google's Gemini API.
type GeminiCorrector struct {
	client *genai.Client
	model  string
}

// NewGeminiCorrector creates a Gemini-backed OCR corrector.
func NewGeminiCorrector(ctx context.Context, apiKey, model string) (*GeminiCorrector, error) {
	if apiKey == "" {
		return nil, domain.ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if model == "" {
		model = defaultModel
	}

	return &GeminiCorrector{client: client, model: model}, nil
}

// CorrectText asks the model to reconstruct food terms from raw OCR
// text. Logo texts, when present, are passed as brand hints.
func (g *GeminiCorrector) CorrectText(ctx context.Context, ocrText string, logoTexts []string) (*domain.CorrectionResult, error) {
	logoHint := ""
	if len(logoTexts) > 0 {
		logoHint = fmt.Sprintf("\nLogos detected on the packaging (likely brand names): %s\n", strings.Join(logoTexts, ", "))
	}

	prompt := fmt.Sprintf(correctionPrompt, ocrText, logoHint)

	result, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLLMUnavailable, err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty response", domain.ErrMalformedReply)
	}

	correction, err := parseCorrectionReply(result.Text())
	if err != nil {
		return nil, err
	}
	correction.Model = g.model

	if result.UsageMetadata != nil {
		correction.TokensUsed = int64(result.UsageMetadata.TotalTokenCount)
	}

	log.Printf("[LLM] Correction: model=%s terms=%d brand=%q tokens=%d",
		g.model, len(correction.FoodTerms), correction.BrandName, correction.TokensUsed)

	return correction, nil
}

// correctionReply mirrors the JSON shape the prompt asks for
type correctionReply struct {
	FoodTerms []struct {
		Term       string  `json:"term"`
		Confidence float64 `json:"confidence"`
		Category   string  `json:"category"`
	} `json:"foodTerms"`
	BrandName   string `json:"brandName"`
	ProductName string `json:"productName"`
}

// parseCorrectionReply extracts and validates the JSON object from the
// model's reply. Markdown fences and chatty prefixes are tolerated; a
// reply without a usable foodTerms array is ErrMalformedReply.
func parseCorrectionReply(text string) (*domain.CorrectionResult, error) {
	text = strings.TrimSpace(text)

	// Extract the JSON object (handles markdown blocks and chatty responses)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object found in response", domain.ErrMalformedReply)
	}
	text = text[start : end+1]

	var reply correctionReply
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedReply, err)
	}
	if reply.FoodTerms == nil {
		return nil, fmt.Errorf("%w: missing foodTerms array", domain.ErrMalformedReply)
	}

	result := &domain.CorrectionResult{
		BrandName:   strings.TrimSpace(reply.BrandName),
		ProductName: strings.TrimSpace(reply.ProductName),
		FoodTerms:   make([]domain.FoodTerm, 0, len(reply.FoodTerms)),
	}

	for _, t := range reply.FoodTerms {
		term := domain.NormalizeWord(t.Term)
		if term == "" {
			continue
		}

		confidence := t.Confidence
		if confidence <= 0 || confidence > 1 {
			confidence = 0.8
		}

		category := t.Category
		if !domain.IsKnownCategory(category) {
			category = domain.CategoryOther
		}

		result.FoodTerms = append(result.FoodTerms, domain.FoodTerm{
			Term:       term,
			Confidence: confidence,
			Category:   category,
		})
		if len(result.FoodTerms) == maxFoodTerms {
			break
		}
	}

	return result, nil
}
