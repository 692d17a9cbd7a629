package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/handycook/foodscan/internal/domain"
	"github.com/handycook/foodscan/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	classify *usecase.ClassifyService
	ocr      *usecase.OCRService
}

// NewHandler creates a new HTTP handler
func NewHandler(classify *usecase.ClassifyService, ocr *usecase.OCRService) *Handler {
	return &Handler{
		classify: classify,
		ocr:      ocr,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "foodscan-api",
		"version": "1.0.0",
	})
}

// GetWords serves the bulk word lists for scanner clients
func (h *Handler) GetWords(c *gin.Context) {
	lists, err := h.classify.GetWordLists(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load word lists",
		})
		return
	}

	c.JSON(http.StatusOK, lists)
}

// ClassifyRequest is the payload for batch word classification
type ClassifyRequest struct {
	Words []string `json:"words" binding:"required"`
}

// ClassifyResponse carries one classification per unique input word,
// keyed by the normalized word
type ClassifyResponse struct {
	Classifications map[string]domain.WordClassification `json:"classifications"`
}

// ClassifyWords classifies a batch of unknown words
func (h *Handler) ClassifyWords(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: words array is required",
		})
		return
	}

	if len(req.Words) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: words array is empty",
		})
		return
	}

	// Oversized batches are not an error; the service caps them to the
	// first MaxBatchSize words
	classifications, err := h.classify.ClassifyWords(c.Request.Context(), req.Words)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: no usable words",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Classification failed",
		})
		return
	}

	byWord := make(map[string]domain.WordClassification, len(classifications))
	for _, classification := range classifications {
		byWord[classification.Word] = classification
	}

	c.JSON(http.StatusOK, ClassifyResponse{Classifications: byWord})
}

// FeedbackRequest is a user's accept/reject signal for one word
type FeedbackRequest struct {
	Word     string `json:"word" binding:"required"`
	Accepted bool   `json:"accepted"`
}

// RecordFeedback stores user feedback on a classification
func (h *Handler) RecordFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: word is required",
		})
		return
	}

	if err := h.classify.RecordFeedback(c.Request.Context(), req.Word, req.Accepted); err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: word is required",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to record feedback",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CorrectOCRRequest is the payload for OCR text correction
type CorrectOCRRequest struct {
	OCRText   string   `json:"ocrText" binding:"required"`
	LogoTexts []string `json:"logoTexts"`
}

// CorrectOCRResponse is the corrected food-term result
type CorrectOCRResponse struct {
	FoodTerms      []domain.FoodTerm       `json:"foodTerms"`
	BrandName      string                  `json:"brandName,omitempty"`
	ProductName    string                  `json:"productName,omitempty"`
	Cached         bool                    `json:"cached"`
	Source         domain.CorrectionSource `json:"source"`
	ProcessingTime int64                   `json:"processingTime"`
}

// CorrectOCR corrects raw OCR text into food terms
func (h *Handler) CorrectOCR(c *gin.Context) {
	var req CorrectOCRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: ocrText is required",
		})
		return
	}

	start := time.Now()
	correction, err := h.ocr.CorrectOCR(c.Request.Context(), req.OCRText, req.LogoTexts)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: ocrText is empty",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "OCR correction failed",
		})
		return
	}

	terms := correction.FoodTerms
	if terms == nil {
		terms = []domain.FoodTerm{}
	}

	c.JSON(http.StatusOK, CorrectOCRResponse{
		FoodTerms:      terms,
		BrandName:      correction.BrandName,
		ProductName:    correction.ProductName,
		Cached:         correction.Cached,
		Source:         correction.Source,
		ProcessingTime: time.Since(start).Milliseconds(),
	})
}
