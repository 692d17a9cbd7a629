package scanner

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/handycook/foodscan/internal/domain"
)

// WordAPI is the classification service surface the scanner needs.
type WordAPI interface {
	FetchWordLists(ctx context.Context) (*domain.WordLists, error)
	ClassifyWords(ctx context.Context, words []string) ([]domain.WordClassification, error)
	SendFeedback(ctx context.Context, word string, accepted bool) error
	CorrectOCR(ctx context.Context, ocrText string, logoTexts []string) (*domain.OCRCorrection, error)
}

// ClientOpts configures the API client
type ClientOpts struct {
	BaseURL string
	Debug   bool
}

// Client talks to the classification API over HTTP.
type Client struct {
	httpClient *resty.Client
	baseURL    string
}

// NewClient creates a scanner API client
func NewClient(opts ClientOpts) *Client {
	c := Client{baseURL: opts.BaseURL}
	c.httpClient = resty.New().
		SetDebug(opts.Debug).
		SetBaseURL(c.baseURL).
		SetHeaders(map[string]string{
			"Accept":     "application/json",
			"User-Agent": "FoodScan-Scanner/1.0",
		})

	return &c
}

func (c *Client) req(ctx context.Context, result any) *resty.Request {
	request := c.httpClient.
		NewRequest().
		SetContext(ctx)

	if result != nil {
		request.SetResult(result)
	}

	return request
}

// FetchWordLists downloads the bulk word lists.
func (c *Client) FetchWordLists(ctx context.Context) (*domain.WordLists, error) {
	result := &domain.WordLists{}

	_, err := handleError(c.req(ctx, result).
		Get("/api/v1/words"))

	return result, err
}

type classifyRequest struct {
	Words []string `json:"words"`
}

type classifyResponse struct {
	Classifications map[string]domain.WordClassification `json:"classifications"`
}

// ClassifyWords sends a batch of unknown words for classification.
func (c *Client) ClassifyWords(ctx context.Context, words []string) ([]domain.WordClassification, error) {
	result := &classifyResponse{}

	_, err := handleError(c.req(ctx, result).
		SetBody(classifyRequest{Words: words}).
		Post("/api/v1/words/classify"))
	if err != nil {
		return nil, err
	}

	classifications := make([]domain.WordClassification, 0, len(result.Classifications))
	for word, classification := range result.Classifications {
		if classification.Word == "" {
			classification.Word = word
		}
		classifications = append(classifications, classification)
	}
	return classifications, nil
}

type feedbackRequest struct {
	Word     string `json:"word"`
	Accepted bool   `json:"accepted"`
}

// SendFeedback reports an accept/reject signal for a word.
func (c *Client) SendFeedback(ctx context.Context, word string, accepted bool) error {
	_, err := handleError(c.req(ctx, nil).
		SetBody(feedbackRequest{Word: word, Accepted: accepted}).
		Post("/api/v1/words/feedback"))

	return err
}

type correctOCRRequest struct {
	OCRText   string   `json:"ocrText"`
	LogoTexts []string `json:"logoTexts,omitempty"`
}

// CorrectOCR sends raw OCR text for correction.
func (c *Client) CorrectOCR(ctx context.Context, ocrText string, logoTexts []string) (*domain.OCRCorrection, error) {
	result := &domain.OCRCorrection{}

	_, err := handleError(c.req(ctx, result).
		SetBody(correctOCRRequest{OCRText: ocrText, LogoTexts: logoTexts}).
		Post("/api/v1/correct-ocr"))
	if err != nil {
		return nil, err
	}

	return result, nil
}

// handleError is a generic error handler for failing responses (>399
// status code). Without this, failing responses would have nil error.
func handleError(res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return res, err
	}
	if res.IsError() {
		return res, fmt.Errorf("request failed: %s %s (status: %d)", res.Request.Method, res.Request.URL, res.StatusCode())
	}

	return res, nil
}
