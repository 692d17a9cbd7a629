package usda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/handycook/foodscan/internal/domain"
	"golang.org/x/time/rate"
)

// Client handles communication with the USDA FoodData Central API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	pageSize    int
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new USDA API client
func NewClient(apiKey, baseURL string, pageSize int) *Client {
	// USDA allows 1000 requests per hour
	// rate.Limit is requests per second, so 1000/3600 ≈ 0.278 requests/sec
	limiter := rate.NewLimiter(rate.Limit(0.278), 10) // burst of 10 requests

	if pageSize <= 0 {
		pageSize = 15
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		pageSize:    pageSize,
		rateLimiter: limiter,
	}
}

// SetDebug enables verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "FoodScan/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUSDAAPIFailure, err)
	}

	return resp, nil
}

// SearchFoods searches the Foundation foods data tier for candidates.
// An empty Foods slice is a valid answer, not an error: the matching
// engine treats it as a non-food verdict.
func (c *Client) SearchFoods(ctx context.Context, query string) (*domain.USDASearchResponse, error) {
	if c.apiKey == "" {
		return nil, domain.ErrMissingAPIKey
	}

	if c.debug {
		log.Printf("[USDA] SearchFoods called with query: %q", query)
	}

	// Foundation foods only - the strictest tier, formatted as
	// "PrimaryFood, modifier, modifier" which the matcher relies on.
	endpoint := fmt.Sprintf("%s/v1/foods/search", c.baseURL)
	params := url.Values{}
	params.Add("query", query)
	params.Add("api_key", c.apiKey)
	params.Add("dataType", "Foundation")
	params.Add("pageSize", fmt.Sprintf("%d", c.pageSize))

	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	// Retry up to 3 times for transient failures
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			log.Printf("[USDA] Request error (attempt %d): %v", attempt, err)
			lastErr = err
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		// Rate limiting is surfaced distinctly and never retried here;
		// the classification layer must not cache it.
		if resp.StatusCode == http.StatusTooManyRequests {
			log.Printf("[USDA] Rate limited for query: %q", query)
			return nil, domain.ErrRateLimited
		}

		if resp.StatusCode != http.StatusOK {
			log.Printf("[USDA] API error (attempt %d) - Status: %d, Body: %s", attempt, resp.StatusCode, string(body))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrUSDAAPIFailure, resp.StatusCode)
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}

		var searchResp domain.USDASearchResponse
		if err := json.Unmarshal(body, &searchResp); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}

		if c.debug {
			log.Printf("[USDA] Response: totalHits=%d, returned=%d foods for %q",
				searchResp.TotalHits, len(searchResp.Foods), query)
		}
		return &searchResp, nil
	}

	log.Printf("[USDA] All retries failed for query: %q", query)
	return nil, lastErr
}
