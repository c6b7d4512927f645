package models

// Report is the text comparison plus an optional chart. Chart and
// ChartError are never both set.
type Report struct {
	Message    string `json:"message"`
	Chart      []byte `json:"chart,omitempty"`
	ChartError string `json:"chart_error,omitempty"`
}

// InputCounts is the payload the acquisition collaborator posts.
type InputCounts struct {
	Ts     *int64         `json:"ts"`
	Counts map[string]int `json:"counts" validate:"required"`
}
