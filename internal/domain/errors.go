package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrRateLimited is returned when the upstream food database rate
	// limits us. Results carrying this error must not be cached.
	ErrRateLimited = errors.New("usda rate limit exceeded")

	// ErrMissingAPIKey is returned when the USDA API key is not
	// configured. Like rate limiting, this is transient from the
	// cache's point of view and must not be persisted.
	ErrMissingAPIKey = errors.New("usda api key not configured")

	// ErrUSDAAPIFailure is returned when a USDA API request fails
	ErrUSDAAPIFailure = errors.New("usda api request failed")

	// ErrMalformedReply is returned when the LLM response cannot be
	// parsed into the expected structure. Callers fall back to the
	// deterministic keyword path.
	ErrMalformedReply = errors.New("malformed llm reply")

	// ErrLLMUnavailable is returned when the LLM backend is not configured
	ErrLLMUnavailable = errors.New("llm backend not configured")
)
