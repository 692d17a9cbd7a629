package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/handycook/foodscan/internal/domain"
	_ "modernc.org/sqlite"
)

// storedTextLimit caps how much raw OCR text is kept alongside a cached
// correction. The hash is the key; the text is only for auditing.
const storedTextLimit = 1000

// SQLiteStore persists word classifications and OCR corrections. It
// implements domain.WordRepository and domain.CorrectionRepository.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (and if needed creates) the store at dbPath.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) init() error {
	wordsQuery := `
	CREATE TABLE IF NOT EXISTS words (
		word TEXT PRIMARY KEY,
		is_food INTEGER NOT NULL,
		is_generic INTEGER NOT NULL DEFAULT 0,
		category TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL,
		confidence REAL NOT NULL,
		match_score REAL NOT NULL DEFAULT 0,
		usda_fdc_id INTEGER,
		usda_description TEXT,
		usda_data_type TEXT,
		usda_food_category TEXT,
		usda_result_count INTEGER NOT NULL DEFAULT 0,
		nutrients TEXT,
		detection_count INTEGER NOT NULL DEFAULT 1,
		acceptance_count INTEGER NOT NULL DEFAULT 0,
		rejection_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(wordsQuery); err != nil {
		return fmt.Errorf("failed to create words table: %w", err)
	}

	correctionsQuery := `
	CREATE TABLE IF NOT EXISTS ocr_corrections (
		hash TEXT PRIMARY KEY,
		ocr_text TEXT NOT NULL,
		food_terms TEXT NOT NULL,
		brand_name TEXT NOT NULL DEFAULT '',
		product_name TEXT NOT NULL DEFAULT '',
		llm_model TEXT NOT NULL DEFAULT '',
		tokens_used INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(correctionsQuery); err != nil {
		return fmt.Errorf("failed to create ocr_corrections table: %w", err)
	}

	return nil
}

// GetWord retrieves a classified word. Returns nil, nil when the word
// has never been classified.
func (s *SQLiteStore) GetWord(ctx context.Context, word string) (*domain.WordRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT word, is_food, is_generic, category, source, confidence, match_score,
		       usda_fdc_id, usda_description, usda_data_type, usda_food_category,
		       usda_result_count, nutrients, detection_count, acceptance_count,
		       rejection_count, created_at, updated_at
		FROM words WHERE word = ?`, domain.NormalizeWord(word))

	record, err := scanWordRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query word: %w", err)
	}
	return record, nil
}

// PutWord inserts or updates a word classification. Feedback counters
// and the creation timestamp survive re-classification.
func (s *SQLiteStore) PutWord(ctx context.Context, record *domain.WordRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fdcID sql.NullInt64
	var usdaDesc, usdaDataType, usdaFoodCategory sql.NullString
	if record.USDA != nil {
		fdcID = sql.NullInt64{Int64: record.USDA.FdcID, Valid: true}
		usdaDesc = sql.NullString{String: record.USDA.Description, Valid: true}
		usdaDataType = sql.NullString{String: record.USDA.DataType, Valid: true}
		usdaFoodCategory = sql.NullString{String: record.USDA.FoodCategory, Valid: true}
	}

	var nutrientsJSON sql.NullString
	if record.Nutrients != nil {
		data, err := json.Marshal(record.Nutrients)
		if err != nil {
			return fmt.Errorf("failed to marshal nutrients: %w", err)
		}
		nutrientsJSON = sql.NullString{String: string(data), Valid: true}
	}

	now := time.Now().UTC()
	detectionCount := record.DetectionCount
	if detectionCount <= 0 {
		detectionCount = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO words (
			word, is_food, is_generic, category, source, confidence, match_score,
			usda_fdc_id, usda_description, usda_data_type, usda_food_category,
			usda_result_count, nutrients, detection_count, acceptance_count,
			rejection_count, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?)
		ON CONFLICT(word) DO UPDATE SET
			is_food = excluded.is_food,
			is_generic = excluded.is_generic,
			category = excluded.category,
			source = excluded.source,
			confidence = excluded.confidence,
			match_score = excluded.match_score,
			usda_fdc_id = excluded.usda_fdc_id,
			usda_description = excluded.usda_description,
			usda_data_type = excluded.usda_data_type,
			usda_food_category = excluded.usda_food_category,
			usda_result_count = excluded.usda_result_count,
			nutrients = excluded.nutrients,
			detection_count = words.detection_count + 1,
			updated_at = excluded.updated_at
	`, domain.NormalizeWord(record.Word), boolToInt(record.IsFood), boolToInt(record.IsGeneric),
		record.Category, string(record.Source), record.Confidence, record.MatchScore,
		fdcID, usdaDesc, usdaDataType, usdaFoodCategory,
		record.USDAResultCount, nutrientsJSON, detectionCount, now, now)

	if err != nil {
		return fmt.Errorf("failed to save word: %w", err)
	}
	return nil
}

// ListWords returns every classified word in the store.
func (s *SQLiteStore) ListWords(ctx context.Context) ([]domain.WordRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT word, is_food, is_generic, category, source, confidence, match_score,
		       usda_fdc_id, usda_description, usda_data_type, usda_food_category,
		       usda_result_count, nutrients, detection_count, acceptance_count,
		       rejection_count, created_at, updated_at
		FROM words`)
	if err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}
	defer rows.Close()

	var records []domain.WordRecord
	for rows.Next() {
		record, err := scanWordRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan word row: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// RecordFeedback bumps the acceptance or rejection counter for a word.
// Feedback on a word that was never classified creates a bare counter
// row so the signal is not lost.
func (s *SQLiteStore) RecordFeedback(ctx context.Context, word string, accepted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	column := "rejection_count"
	if accepted {
		column = "acceptance_count"
	}

	normalized := domain.NormalizeWord(word)
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE words SET %s = %s + 1, updated_at = ? WHERE word = ?", column, column),
		now, normalized)
	if err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		acceptance, rejection := 0, 0
		if accepted {
			acceptance = 1
		} else {
			rejection = 1
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO words (word, is_food, source, confidence, detection_count,
				acceptance_count, rejection_count, created_at, updated_at)
			VALUES (?, 0, ?, 0, 0, ?, ?, ?, ?)
		`, normalized, string(domain.SourceCached), acceptance, rejection, now, now)
		if err != nil {
			return fmt.Errorf("failed to record feedback: %w", err)
		}
	}
	return nil
}

// GetCorrection retrieves a cached OCR correction by content hash.
// Returns nil, nil on a cache miss.
func (s *SQLiteStore) GetCorrection(ctx context.Context, hash string) (*domain.CorrectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var record domain.CorrectionRecord
	var foodTermsJSON string

	err := s.db.QueryRowContext(ctx, `
		SELECT hash, ocr_text, food_terms, brand_name, product_name, llm_model, tokens_used, created_at
		FROM ocr_corrections WHERE hash = ?`, hash).
		Scan(&record.Hash, &record.OCRText, &foodTermsJSON, &record.BrandName,
			&record.ProductName, &record.LLMModel, &record.TokensUsed, &record.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query correction: %w", err)
	}

	if err := json.Unmarshal([]byte(foodTermsJSON), &record.FoodTerms); err != nil {
		return nil, fmt.Errorf("failed to unmarshal food terms: %w", err)
	}
	return &record, nil
}

// PutCorrection stores an OCR correction result.
func (s *SQLiteStore) PutCorrection(ctx context.Context, record *domain.CorrectionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	terms := record.FoodTerms
	if terms == nil {
		terms = []domain.FoodTerm{}
	}
	foodTermsJSON, err := json.Marshal(terms)
	if err != nil {
		return fmt.Errorf("failed to marshal food terms: %w", err)
	}

	text := record.OCRText
	if len(text) > storedTextLimit {
		text = text[:storedTextLimit]
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ocr_corrections (hash, ocr_text, food_terms, brand_name, product_name, llm_model, tokens_used, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO UPDATE SET
			food_terms = excluded.food_terms,
			brand_name = excluded.brand_name,
			product_name = excluded.product_name,
			llm_model = excluded.llm_model,
			tokens_used = excluded.tokens_used
	`, record.Hash, text, string(foodTermsJSON), record.BrandName, record.ProductName,
		record.LLMModel, record.TokensUsed, time.Now().UTC())

	if err != nil {
		return fmt.Errorf("failed to save correction: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWordRow(row rowScanner) (*domain.WordRecord, error) {
	var record domain.WordRecord
	var isFood, isGeneric int
	var source string
	var fdcID sql.NullInt64
	var usdaDesc, usdaDataType, usdaFoodCategory, nutrientsJSON sql.NullString

	err := row.Scan(&record.Word, &isFood, &isGeneric, &record.Category, &source,
		&record.Confidence, &record.MatchScore, &fdcID, &usdaDesc, &usdaDataType,
		&usdaFoodCategory, &record.USDAResultCount, &nutrientsJSON,
		&record.DetectionCount, &record.AcceptanceCount, &record.RejectionCount,
		&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}

	record.IsFood = isFood != 0
	record.IsGeneric = isGeneric != 0
	record.Source = domain.ClassificationSource(source)

	if fdcID.Valid {
		record.USDA = &domain.USDAMatch{
			FdcID:        fdcID.Int64,
			Description:  usdaDesc.String,
			DataType:     usdaDataType.String,
			FoodCategory: usdaFoodCategory.String,
		}
	}

	if nutrientsJSON.Valid && nutrientsJSON.String != "" {
		var nutrients domain.Nutrients
		if err := json.Unmarshal([]byte(nutrientsJSON.String), &nutrients); err != nil {
			return nil, fmt.Errorf("failed to unmarshal nutrients: %w", err)
		}
		record.Nutrients = &nutrients
	}

	return &record, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
