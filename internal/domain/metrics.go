package domain

// UsageSnapshot summarizes explanation usage for GET /api/metrics. Rates
// are fractions in [0, 1]; cost is a rough estimate from published
// per-token pricing.
type UsageSnapshot struct {
	TotalRequests       int64   `json:"total_requests"`
	ErrorRate           float64 `json:"error_rate"`
	FallbackRate        float64 `json:"fallback_rate"`
	AvgTokensPerRequest float64 `json:"avg_tokens_per_request"`
	EstimatedCostUSD    float64 `json:"estimated_cost_usd"`
	CacheHitRate        float64 `json:"cache_hit_rate"`
	Period              string  `json:"period"`
}
