package scanner

import (
	"sync"
	"time"

	"github.com/handycook/foodscan/internal/domain"
)

// WordKind is the local verdict for a detected word
type WordKind int

const (
	WordUnknown WordKind = iota
	WordFood
	WordNonFood
	WordGeneric
)

// WordStore is the scanner's local word knowledge: three buckets kept
// in memory. A sync replaces the buckets wholesale; incremental
// classify results merge in between syncs.
type WordStore struct {
	mu        sync.RWMutex
	food      map[string]string // word -> category
	nonFood   map[string]bool
	generic   map[string]bool
	version   string
	syncedAt  time.Time
	hasSynced bool
}

// NewWordStore creates an empty word store
func NewWordStore() *WordStore {
	return &WordStore{
		food:    make(map[string]string),
		nonFood: make(map[string]bool),
		generic: make(map[string]bool),
	}
}

// SetWordLists replaces all three buckets with a freshly fetched
// payload. Words the server dropped or reclassified disappear from
// their old bucket, so a word lives in at most one bucket afterwards.
func (s *WordStore) SetWordLists(lists *domain.WordLists) {
	food := make(map[string]string)
	nonFood := make(map[string]bool)
	generic := make(map[string]bool)

	for category, words := range lists.FoodWords {
		for _, word := range words {
			if normalized := domain.NormalizeWord(word); normalized != "" {
				food[normalized] = category
			}
		}
	}
	for _, word := range lists.NonFoodWords {
		if normalized := domain.NormalizeWord(word); normalized != "" {
			nonFood[normalized] = true
		}
	}
	for _, word := range lists.GenericWords {
		if normalized := domain.NormalizeWord(word); normalized != "" {
			generic[normalized] = true
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.food = food
	s.nonFood = nonFood
	s.generic = generic
	s.version = lists.Version
	s.syncedAt = time.Now()
	s.hasSynced = true
}

// Merge folds a word-list payload into the store. Existing entries are
// overwritten by bucket: a word moving between buckets on the server
// moves here too.
func (s *WordStore) Merge(lists *domain.WordLists) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for category, words := range lists.FoodWords {
		for _, word := range words {
			normalized := domain.NormalizeWord(word)
			if normalized == "" {
				continue
			}
			s.food[normalized] = category
			delete(s.nonFood, normalized)
		}
	}
	for _, word := range lists.NonFoodWords {
		normalized := domain.NormalizeWord(word)
		if normalized == "" {
			continue
		}
		s.nonFood[normalized] = true
		delete(s.food, normalized)
	}
	for _, word := range lists.GenericWords {
		normalized := domain.NormalizeWord(word)
		if normalized == "" {
			continue
		}
		s.generic[normalized] = true
	}

	if lists.Version != "" {
		s.version = lists.Version
	}
	s.syncedAt = time.Now()
	s.hasSynced = true
}

// AddClassification folds a single classify result into the store.
// Error verdicts are ignored: the word stays unknown and retries later.
func (s *WordStore) AddClassification(c domain.WordClassification) {
	word := domain.NormalizeWord(c.Word)
	if word == "" || c.Source == domain.SourceUSDAError {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c.IsFood {
		category := c.Category
		if category == "" {
			category = domain.CategoryOther
		}
		s.food[word] = category
		delete(s.nonFood, word)
	} else {
		s.nonFood[word] = true
		delete(s.food, word)
	}
}

// Lookup classifies a word against local knowledge. Generic wins over
// the food and non-food buckets.
func (s *WordStore) Lookup(word string) (WordKind, string) {
	normalized := domain.NormalizeWord(word)
	if normalized == "" {
		return WordUnknown, ""
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.generic[normalized] {
		return WordGeneric, ""
	}
	if category, ok := s.food[normalized]; ok {
		return WordFood, category
	}
	if s.nonFood[normalized] {
		return WordNonFood, ""
	}
	return WordUnknown, ""
}

// HasData reports whether the store has synced at least once.
func (s *WordStore) HasData() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasSynced
}

// SyncedAt returns the time of the last successful merge.
func (s *WordStore) SyncedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.syncedAt
}

// Version returns the word-list version from the last sync.
func (s *WordStore) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Counts returns the bucket sizes (for logging and debugging).
func (s *WordStore) Counts() (food, nonFood, generic int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.food), len(s.nonFood), len(s.generic)
}
