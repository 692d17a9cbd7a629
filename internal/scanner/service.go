package scanner

import (
	"context"
	"log"
	"time"

	"github.com/handycook/foodscan/internal/domain"
	"golang.org/x/sync/singleflight"
)

// defaultSyncTTL is how long a synced word list stays fresh
const defaultSyncTTL = 24 * time.Hour

// defaultBatchMax matches the server's per-request word cap
const defaultBatchMax = 20

// ServiceConfig configures the scanner service
type ServiceConfig struct {
	SyncTTL  time.Duration
	BatchMax int
}

// Service coordinates the scanner's word knowledge: syncing the bulk
// lists, classifying unknown words in batches and reporting feedback.
type Service struct {
	api      WordAPI
	store    *WordStore
	syncTTL  time.Duration
	batchMax int
	group    singleflight.Group
}

// NewService creates a scanner service around an API client
func NewService(api WordAPI, store *WordStore, config ServiceConfig) *Service {
	syncTTL := config.SyncTTL
	if syncTTL <= 0 {
		syncTTL = defaultSyncTTL
	}
	batchMax := config.BatchMax
	if batchMax <= 0 {
		batchMax = defaultBatchMax
	}

	return &Service{
		api:      api,
		store:    store,
		syncTTL:  syncTTL,
		batchMax: batchMax,
	}
}

// Store returns the underlying word store.
func (s *Service) Store() *WordStore {
	return s.store
}

// Sync refreshes the word lists from the API. A fresh store is left
// alone unless force is set. Concurrent callers share one fetch.
func (s *Service) Sync(ctx context.Context, force bool) error {
	if !force && s.store.HasData() && time.Since(s.store.SyncedAt()) < s.syncTTL {
		return nil
	}

	_, err, _ := s.group.Do("sync", func() (interface{}, error) {
		lists, err := s.api.FetchWordLists(ctx)
		if err != nil {
			return nil, err
		}
		s.store.SetWordLists(lists)

		food, nonFood, generic := s.store.Counts()
		log.Printf("[SYNC] Word lists v%s: %d food, %d non-food, %d generic",
			s.store.Version(), food, nonFood, generic)
		return nil, nil
	})
	return err
}

// ClassifyUnknownWords resolves a set of words against local knowledge
// first and asks the API only about the rest, in server-sized batches.
// It never fails: a batch error leaves its words unknown for a later
// retry, and results from batches that already completed are kept.
func (s *Service) ClassifyUnknownWords(ctx context.Context, words []string) map[string]domain.WordClassification {
	results := make(map[string]domain.WordClassification)

	seen := make(map[string]bool, len(words))
	var unknown []string

	for _, raw := range words {
		word := domain.NormalizeWord(raw)
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true

		kind, category := s.store.Lookup(word)
		switch kind {
		case WordFood:
			results[word] = domain.WordClassification{
				Word: word, IsFood: true, Category: category,
				Source: domain.SourceCached, Confidence: 1,
			}
		case WordNonFood, WordGeneric:
			results[word] = domain.WordClassification{
				Word: word, IsFood: false,
				Source: domain.SourceCached, Confidence: 1,
			}
		default:
			unknown = append(unknown, word)
		}
	}

	for start := 0; start < len(unknown); start += s.batchMax {
		end := start + s.batchMax
		if end > len(unknown) {
			end = len(unknown)
		}
		batch := unknown[start:end]

		classifications, err := s.api.ClassifyWords(ctx, batch)
		if err != nil {
			// Earlier batches already landed in results; these words
			// just stay unknown until the next attempt.
			log.Printf("[SCANNER] Classify batch failed (%d words): %v", len(batch), err)
			break
		}

		for _, c := range classifications {
			results[domain.NormalizeWord(c.Word)] = c
			s.store.AddClassification(c)
		}
	}

	return results
}

// SendFeedback reports an accept/reject signal for a word.
func (s *Service) SendFeedback(ctx context.Context, word string, accepted bool) error {
	normalized := domain.NormalizeWord(word)
	if normalized == "" {
		return domain.ErrInvalidRequest
	}

	if err := s.api.SendFeedback(ctx, normalized, accepted); err != nil {
		log.Printf("[SCANNER] Feedback for %q failed: %v", normalized, err)
		return err
	}
	return nil
}
