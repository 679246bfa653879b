package model

// RunResult carries the three normalized stage outputs of one pipeline run.
// When the refresh stage is declined, Final equals Draft exactly.
type RunResult struct {
	ID               string  `json:"id"`
	Research         string  `json:"research"`
	Draft            string  `json:"draft"`
	Final            string  `json:"final"`
	Duration         int64   `json:"duration_ms"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	CostUSD          float64 `json:"cost_usd"`
}
