package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/handycook/foodscan/internal/domain"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	classification := &domain.WordClassification{
		Word:       "apple",
		IsFood:     true,
		Category:   "Fruits",
		Source:     domain.SourceUSDA,
		Confidence: 1.0,
	}

	if err := cache.Set(ctx, "apple", classification, 1*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := cache.Get(ctx, "apple")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.IsFood || got.Category != "Fruits" || got.Confidence != 1.0 {
		t.Errorf("Get() = %+v, want stored classification", got)
	}
}

func TestMemoryCache_NormalizesWords(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	classification := &domain.WordClassification{Word: "banana", IsFood: true, Category: "Fruits", Source: domain.SourceUSDA, Confidence: 0.95}
	if err := cache.Set(ctx, "Banana", classification, 1*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// "Banana" and " banana " must hit the same entry
	got, err := cache.Get(ctx, " banana ")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Word != "banana" {
		t.Errorf("Get() word = %q, want %q", got.Word, "banana")
	}
}

func TestMemoryCache_ReturnsCopy(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	classification := &domain.WordClassification{Word: "kale", IsFood: true, Category: "Vegetables", Source: domain.SourceUSDA, Confidence: 0.9}
	if err := cache.Set(ctx, "kale", classification, 1*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	first, err := cache.Get(ctx, "kale")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	first.Category = "mutated"

	second, err := cache.Get(ctx, "kale")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if second.Category != "Vegetables" {
		t.Errorf("cached entry mutated through returned pointer: %+v", second)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	classification := &domain.WordClassification{Word: "milk", IsFood: true, Category: "Dairy", Source: domain.SourceUSDA, Confidence: 1.0}
	if err := cache.Set(ctx, "milk", classification, 1*time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := cache.Get(ctx, "milk"); err != domain.ErrCacheMiss {
		t.Errorf("Get() after expiration error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache := NewMemoryCache()

	_, err := cache.Get(context.Background(), "non-existent-word")
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	classification := &domain.WordClassification{Word: "rice", IsFood: true, Category: "Pantry Staples", Source: domain.SourceUSDA, Confidence: 0.9}
	if err := cache.Set(ctx, "rice", classification, 1*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := cache.Delete(ctx, "rice"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}

	if _, err := cache.Get(ctx, "rice"); err != domain.ErrCacheMiss {
		t.Errorf("Get() after delete error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Exists(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	exists, err := cache.Exists(ctx, "tofu")
	if err != nil {
		t.Errorf("Exists() error = %v", err)
	}
	if exists {
		t.Errorf("Exists() = true, want false for non-existent word")
	}

	classification := &domain.WordClassification{Word: "tofu", IsFood: true, Category: "Pantry Staples", Source: domain.SourceUSDA, Confidence: 0.85}
	if err := cache.Set(ctx, "tofu", classification, 1*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	exists, err = cache.Exists(ctx, "tofu")
	if err != nil {
		t.Errorf("Exists() error = %v", err)
	}
	if !exists {
		t.Errorf("Exists() = false, want true after set")
	}

	if err := cache.Set(ctx, "short-lived", classification, 1*time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	exists, err = cache.Exists(ctx, "short-lived")
	if err != nil {
		t.Errorf("Exists() error = %v", err)
	}
	if exists {
		t.Errorf("Exists() = true, want false after expiration")
	}
}

func TestMemoryCache_SizeAndClear(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 for empty cache", size)
	}

	for i := 0; i < 5; i++ {
		word := fmt.Sprintf("word-%d", i)
		classification := &domain.WordClassification{Word: word, IsFood: false, Source: domain.SourceUSDANoMatch, Confidence: 0.7}
		if err := cache.Set(ctx, word, classification, 1*time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	if size := cache.Size(); size != 5 {
		t.Errorf("Size() = %d, want 5", size)
	}

	cache.Clear()

	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 after clear", size)
	}
	if _, err := cache.Get(ctx, "word-0"); err != domain.ErrCacheMiss {
		t.Errorf("Get() after clear error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			word := fmt.Sprintf("word-%d", id)
			classification := &domain.WordClassification{Word: word, IsFood: true, Category: "Other", Source: domain.SourceUSDA, Confidence: 0.8}
			if err := cache.Set(ctx, word, classification, 1*time.Minute); err != nil {
				t.Errorf("Concurrent Set() error = %v", err)
			}
			if _, err := cache.Get(ctx, word); err != nil {
				t.Errorf("Concurrent Get() error = %v", err)
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
