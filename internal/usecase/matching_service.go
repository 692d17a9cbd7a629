package usecase

import (
	"log"
	"regexp"
	"strings"

	"github.com/handycook/foodscan/internal/domain"
	"github.com/handycook/foodscan/internal/infrastructure/usda"
)

// descSplitRegex splits a USDA description into tokens. Foundation
// descriptions are "PrimaryFood, modifier, modifier", so the first
// token is the food itself.
var descSplitRegex = regexp.MustCompile(`[,\s]+`)

// Match score ladder. Each candidate description gets the highest rung
// it clears, or is skipped entirely.
const (
	scoreExact       = 1.0  // description is exactly the word
	scoreLeading     = 0.95 // description starts with "word," or "word "
	scoreFirstToken  = 0.9  // first token equals the word
	scorePluralForm  = 0.85 // first token is a singular/plural variant
	scoreTokenPrefix = 0.7  // first token starts with the word
)

// prefixMinWordLength guards the prefix rung: "egg" must not match
// "eggplant", so short words never score on prefix alone.
const prefixMinWordLength = 4

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	MatchThreshold     float64
	MinWordLength      int
	EnableDebugLogging bool
}

// MatchingService decides whether a single word names a food by scoring
// it against USDA Foundation search results.
type MatchingService struct {
	matchThreshold     float64
	minWordLength      int
	enableDebugLogging bool
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(config MatchConfig) *MatchingService {
	threshold := config.MatchThreshold
	if threshold <= 0 {
		threshold = 0.6
	}

	minLen := config.MinWordLength
	if minLen <= 0 {
		minLen = 3
	}

	return &MatchingService{
		matchThreshold:     threshold,
		minWordLength:      minLen,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// MinWordLength exposes the too-short cutoff so callers can skip the
// USDA query entirely for words that would never be classified.
func (s *MatchingService) MinWordLength() int {
	return s.minWordLength
}

// ClassifyShortWord produces the verdict for words below the minimum
// length. They are never foods; no database query is needed.
func (s *MatchingService) ClassifyShortWord(word string) domain.WordClassification {
	return domain.WordClassification{
		Word:       word,
		IsFood:     false,
		Source:     domain.SourceUSDANoMatch,
		Confidence: 0.8,
	}
}

// ClassifyWord scores a normalized word against USDA candidates and
// produces a food or non-food verdict. An empty candidate list means
// the database has never heard of the word.
func (s *MatchingService) ClassifyWord(word string, foods []domain.USDAFood) domain.WordClassification {
	if len(word) < s.minWordLength {
		return s.ClassifyShortWord(word)
	}

	if len(foods) == 0 {
		return domain.WordClassification{
			Word:       word,
			IsFood:     false,
			Source:     domain.SourceUSDANoMatch,
			Confidence: 0.7,
		}
	}

	var bestFood *domain.USDAFood
	bestScore := 0.0

	for i := range foods {
		score := scoreCandidate(word, foods[i].Description)

		if s.enableDebugLogging {
			log.Printf("[MATCH] %q vs %q -> %.2f", word, foods[i].Description, score)
		}

		if score > bestScore {
			bestScore = score
			bestFood = &foods[i]
		}
	}

	if bestFood == nil || bestScore < s.matchThreshold {
		// Results came back but none of them is this word. The more
		// marginal the best score, the more confident the rejection.
		confidence := 0.7 + 0.2*(1-bestScore)
		if confidence > 0.9 {
			confidence = 0.9
		}
		return domain.WordClassification{
			Word:            word,
			IsFood:          false,
			Source:          domain.SourceUSDANoMatch,
			Confidence:      confidence,
			USDAResultCount: len(foods),
		}
	}

	if s.enableDebugLogging {
		log.Printf("[MATCH] Best for %q: %q (score %.2f)", word, bestFood.Description, bestScore)
	}

	return domain.WordClassification{
		Word:       word,
		IsFood:     true,
		Category:   usda.MapCategory(string(bestFood.FoodCategory)),
		Source:     domain.SourceUSDA,
		Confidence: bestScore,
		MatchScore: bestScore,
		USDA: &domain.USDAMatch{
			FdcID:        bestFood.FdcID,
			Description:  bestFood.Description,
			DataType:     bestFood.DataType,
			FoodCategory: string(bestFood.FoodCategory),
		},
		Nutrients: usda.ExtractNutrients(bestFood.Nutrients),
	}
}

// scoreCandidate runs a word down the match ladder against one USDA
// description. Returns 0 when the candidate should be skipped.
func scoreCandidate(word, description string) float64 {
	desc := strings.ToLower(strings.TrimSpace(description))
	if desc == "" {
		return 0
	}

	if desc == word {
		return scoreExact
	}

	if strings.HasPrefix(desc, word+",") || strings.HasPrefix(desc, word+" ") {
		return scoreLeading
	}

	first := firstToken(desc)
	if first == "" {
		return 0
	}

	if first == word {
		return scoreFirstToken
	}

	if isPluralVariant(word, first) {
		return scorePluralForm
	}

	// Prefix is the weakest signal. "tomat" finding "Tomatoes, red" is
	// useful; "brown" finding "Rice, brown" is not, and the first-token
	// rule above already rejected that case.
	if len(word) >= prefixMinWordLength && strings.HasPrefix(first, word) {
		return scoreTokenPrefix
	}

	return 0
}

// firstToken returns the leading token of a lowercased USDA description
func firstToken(desc string) string {
	tokens := descSplitRegex.Split(desc, 2)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}

// isPluralVariant reports whether a and b differ only by an s/es suffix,
// in either direction.
func isPluralVariant(a, b string) bool {
	return a+"s" == b || a+"es" == b || b+"s" == a || b+"es" == a
}
