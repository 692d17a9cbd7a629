package llm

import (
	"context"

	"github.com/handycook/foodscan/internal/domain"
)

// Disabled is the corrector used when no LLM API key is configured.
// Every call reports the LLM as unavailable, which routes corrections
// to the keyword fallback.
type Disabled struct{}

// CorrectText always fails with ErrLLMUnavailable.
func (Disabled) CorrectText(ctx context.Context, ocrText string, logoTexts []string) (*domain.CorrectionResult, error) {
	return nil, domain.ErrLLMUnavailable
}
