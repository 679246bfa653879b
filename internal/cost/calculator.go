package cost

import "strings"

// Rates holds per-model token pricing configuration.
type Rates struct {
	// Models maps base model IDs to their token rates (per million tokens).
	Models map[string]ModelRate `yaml:"models" mapstructure:"models"`
	// OnlinePerRequest is the flat web-search surcharge applied when a
	// completion runs against a ":online" model variant.
	OnlinePerRequest float64 `yaml:"online_per_request" mapstructure:"online_per_request"`
}

// ModelRate holds per-model token pricing (per million tokens).
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// Calculator estimates USD spend for completion calls.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Completion estimates the cost of one completion call. The model may carry
// the ":online" suffix; pricing is looked up by the base ID and the online
// surcharge is added on top. Unknown models estimate to 0.
func (c *Calculator) Completion(model string, promptTokens, completionTokens int) float64 {
	base := strings.ReplaceAll(model, ":online", "")
	rate, ok := c.rates.Models[base]
	if !ok {
		return 0
	}

	total := (float64(promptTokens)/1e6)*rate.Input + (float64(completionTokens)/1e6)*rate.Output
	if base != model {
		total += c.rates.OnlinePerRequest
	}
	return total
}

// DefaultRates returns the default OpenRouter pricing rates.
func DefaultRates() Rates {
	return Rates{
		Models: map[string]ModelRate{
			"anthropic/claude-opus-4.1":  {Input: 15.00, Output: 75.00},
			"anthropic/claude-sonnet-4":  {Input: 3.00, Output: 15.00},
			"openai/gpt-4o":              {Input: 2.50, Output: 10.00},
			"google/gemini-2.5-pro":      {Input: 1.25, Output: 10.00},
			"perplexity/sonar-reasoning": {Input: 1.00, Output: 5.00},
		},
		OnlinePerRequest: 0.02,
	}
}
