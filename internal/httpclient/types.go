package httpclient

import "time"

// RateLimitInfo is the rate-limit state reported back by a completions
// endpoint on its response headers.
type RateLimitInfo struct {
	RetryAfter            time.Duration
	ResetTime             int64
	RequestsRemaining     int
	TokensRemaining       int
	InputTokensRemaining  int
	OutputTokensRemaining int
}
