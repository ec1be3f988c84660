package types

import "time"

// CaptionResult is the output record for one captioned image.
//
// Every submitted image yields exactly one CaptionResult, even when every
// retry attempt failed. A failed item carries an error-derived caption,
// confidence 0.0 and no token/cost data; a successful item defaults to
// confidence 1.0 since providers do not self-report uncertainty.
type CaptionResult struct {
	Caption        string   `json:"caption"`
	Confidence     float64  `json:"confidence"`
	ProcessingTime float64  `json:"processing_time"` // seconds, backoff waits included
	Provider       string   `json:"provider"`
	Model          string   `json:"model"`
	TokensUsed     *int     `json:"tokens_used,omitempty"`
	CostEstimate   *float64 `json:"cost_estimate,omitempty"` // currency-unit-agnostic, approximate
	OK             bool     `json:"ok"`
}

// NewFailedResult builds the error-flagged result for a terminally failed
// request. Token and cost stay absent.
func NewFailedResult(err error, provider, model string, elapsed time.Duration) CaptionResult {
	return CaptionResult{
		Caption:        "Error: " + err.Error(),
		Confidence:     0.0,
		ProcessingTime: elapsed.Seconds(),
		Provider:       provider,
		Model:          model,
		OK:             false,
	}
}
