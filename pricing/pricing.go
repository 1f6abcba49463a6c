// Package pricing estimates USD cost for model token usage.
package pricing

import "math"

// Rate holds per-million-token USD prices for one model.
type Rate struct {
	Input  float64
	Output float64
}

// DefaultModel is the fallback pricing row for unknown models.
const DefaultModel = "gpt-4.1"

// modelPricing lists prices per 1M tokens (USD).
var modelPricing = map[string]Rate{
	"gpt-4.1":      {Input: 2.00, Output: 8.00},
	"gpt-4.1-mini": {Input: 0.40, Output: 1.60},
	"gpt-4.1-nano": {Input: 0.10, Output: 0.40},
	"gpt-4o":       {Input: 2.50, Output: 10.00},
	"gpt-4o-mini":  {Input: 0.15, Output: 0.60},
}

// Estimate is the cost summary attached to a run's usage report. Cost is nil
// when no estimate could be produced; cost estimation never fails a run.
type Estimate struct {
	Model   string   `json:"model"`
	CostUSD *float64 `json:"total_estimated_usd_cost"`
}

// EstimateCost prices the given token counts against the model's rate.
// Unknown models are priced at the DefaultModel rate and reported as such;
// negative token counts yield a nil cost.
func EstimateCost(inputTokens, outputTokens int64, model string) Estimate {
	if inputTokens < 0 || outputTokens < 0 {
		return Estimate{Model: model}
	}
	rate, ok := modelPricing[model]
	if !ok {
		model = DefaultModel
		rate = modelPricing[DefaultModel]
	}
	cost := float64(inputTokens)/1_000_000*rate.Input + float64(outputTokens)/1_000_000*rate.Output
	cost = math.Round(cost*1e6) / 1e6
	return Estimate{Model: model, CostUSD: &cost}
}

// Models returns the model ids with a known pricing row.
func Models() []string {
	ids := make([]string, 0, len(modelPricing))
	for id := range modelPricing {
		ids = append(ids, id)
	}
	return ids
}
