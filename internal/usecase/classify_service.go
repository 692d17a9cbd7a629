package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/handycook/foodscan/internal/domain"
)

// MaxBatchSize caps how many words one classify request may carry.
const MaxBatchSize = 20

// ClassifyServiceConfig holds configuration for the classify service
type ClassifyServiceConfig struct {
	CacheTTL       time.Duration
	MatchThreshold float64
	MinWordLength  int
}

// ClassifyService classifies words as food or non-food. Lookup order is
// memory cache, then the word store, then a live USDA search scored by
// the matching service. Verdicts from USDA are persisted; transient
// errors are not, so the word gets retried on the next sighting.
type ClassifyService struct {
	cache           domain.ClassificationCache
	words           domain.WordRepository
	foodData        domain.FoodDataSource
	matchingService *MatchingService
	cacheTTL        time.Duration
}

// NewClassifyService creates a new classify service with dependencies
func NewClassifyService(
	cache domain.ClassificationCache,
	words domain.WordRepository,
	foodData domain.FoodDataSource,
	config ClassifyServiceConfig,
) *ClassifyService {
	matchingService := NewMatchingService(MatchConfig{
		MatchThreshold: config.MatchThreshold,
		MinWordLength:  config.MinWordLength,
	})

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 720 * time.Hour // 30 days
	}

	return &ClassifyService{
		cache:           cache,
		words:           words,
		foodData:        foodData,
		matchingService: matchingService,
		cacheTTL:        cacheTTL,
	}
}

// ClassifyWords classifies a batch of words. Input is normalized and
// deduplicated preserving first-seen order. A failure on one word does
// not abort the rest; that word simply carries an error verdict.
func (s *ClassifyService) ClassifyWords(ctx context.Context, words []string) ([]domain.WordClassification, error) {
	if len(words) == 0 {
		return nil, domain.ErrInvalidRequest
	}
	if len(words) > MaxBatchSize {
		words = words[:MaxBatchSize]
	}

	seen := make(map[string]bool, len(words))
	results := make([]domain.WordClassification, 0, len(words))

	for _, raw := range words {
		word := domain.NormalizeWord(raw)
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true

		results = append(results, s.classifyWord(ctx, word))
	}

	if len(results) == 0 {
		return nil, domain.ErrInvalidRequest
	}
	return results, nil
}

// classifyWord runs the full lookup chain for one normalized word.
func (s *ClassifyService) classifyWord(ctx context.Context, word string) domain.WordClassification {
	// Too-short words never reach the database
	if len(word) < s.matchingService.MinWordLength() {
		classification := s.matchingService.ClassifyShortWord(word)
		s.persist(ctx, &classification, false)
		return classification
	}

	if cached, err := s.cache.Get(ctx, word); err == nil {
		cached.Source = domain.SourceCached
		return *cached
	}

	record, err := s.words.GetWord(ctx, word)
	if err != nil {
		log.Printf("[CLASSIFY] Word store lookup failed for %q: %v", word, err)
	}
	if record != nil {
		classification := record.Classification()
		if err := s.cache.Set(ctx, word, &classification, s.cacheTTL); err != nil {
			log.Printf("[CLASSIFY] Failed to cache %q: %v", word, err)
		}
		return classification
	}

	searchResult, err := s.foodData.SearchFoods(ctx, word)
	if err != nil {
		// Rate limits and a missing API key are transient conditions.
		// The verdict is served but never stored, so the word is
		// retried once the condition clears.
		if errors.Is(err, domain.ErrRateLimited) {
			log.Printf("[CLASSIFY] Rate limited classifying %q", word)
		} else {
			log.Printf("[CLASSIFY] USDA search failed for %q: %v", word, err)
		}
		return domain.WordClassification{
			Word:   word,
			IsFood: false,
			Source: domain.SourceUSDAError,
		}
	}

	classification := s.matchingService.ClassifyWord(word, searchResult.Foods)
	s.persist(ctx, &classification, true)
	return classification
}

// persist writes a successful verdict to the word store and, optionally,
// the memory cache. Persistence failures are logged, not surfaced: the
// caller still gets the classification.
func (s *ClassifyService) persist(ctx context.Context, classification *domain.WordClassification, cacheIt bool) {
	record := &domain.WordRecord{
		Word:            classification.Word,
		IsFood:          classification.IsFood,
		Category:        classification.Category,
		Source:          classification.Source,
		Confidence:      classification.Confidence,
		MatchScore:      classification.MatchScore,
		USDA:            classification.USDA,
		Nutrients:       classification.Nutrients,
		USDAResultCount: classification.USDAResultCount,
	}
	if err := s.words.PutWord(ctx, record); err != nil {
		log.Printf("[CLASSIFY] Failed to persist %q: %v", classification.Word, err)
	}

	if cacheIt {
		if err := s.cache.Set(ctx, classification.Word, classification, s.cacheTTL); err != nil {
			log.Printf("[CLASSIFY] Failed to cache %q: %v", classification.Word, err)
		}
	}
}

// GetWordLists builds the bulk word-list payload served to scanner
// clients. Every persisted word lands in exactly one bucket: generic
// wins over the food/non-food split.
func (s *ClassifyService) GetWordLists(ctx context.Context) (*domain.WordLists, error) {
	records, err := s.words.ListWords(ctx)
	if err != nil {
		return nil, err
	}

	lists := &domain.WordLists{
		FoodWords:    make(map[string][]string),
		NonFoodWords: []string{},
		GenericWords: []string{},
		Version:      time.Now().UTC().Format("2006-01-02"),
	}

	for _, record := range records {
		switch {
		case record.IsGeneric:
			lists.GenericWords = append(lists.GenericWords, record.Word)
		case record.IsFood:
			category := record.Category
			if category == "" {
				category = domain.CategoryOther
			}
			lists.FoodWords[category] = append(lists.FoodWords[category], record.Word)
		default:
			lists.NonFoodWords = append(lists.NonFoodWords, record.Word)
		}
	}

	return lists, nil
}

// RecordFeedback stores a user's accept/reject signal for a word.
func (s *ClassifyService) RecordFeedback(ctx context.Context, word string, accepted bool) error {
	if domain.NormalizeWord(word) == "" {
		return domain.ErrInvalidRequest
	}
	return s.words.RecordFeedback(ctx, word, accepted)
}

// SeedWords loads the built-in word lists into the store. Words already
// classified keep their verdicts; seeding only fills gaps, so it is safe
// to run on every startup.
func (s *ClassifyService) SeedWords(ctx context.Context) error {
	seeded := 0
	for _, seed := range seedRecords() {
		existing, err := s.words.GetWord(ctx, seed.Word)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := s.words.PutWord(ctx, &seed); err != nil {
			return err
		}
		seeded++
	}
	if seeded > 0 {
		log.Printf("[CLASSIFY] Seeded %d words", seeded)
	}
	return nil
}
