package domain

import "time"

// IndexingResult is the outcome of one engine for one notification attempt.
type IndexingResult struct {
	Success  bool   `json:"success"`
	Service  string `json:"service"`
	Error    string `json:"error,omitempty"`
	Response any    `json:"response,omitempty"`
}

// Succeeded builds a successful result.
func Succeeded(service string, response any) IndexingResult {
	return IndexingResult{Success: true, Service: service, Response: response}
}

// Failed builds a failed result carrying the error text.
func Failed(service string, err error) IndexingResult {
	res := IndexingResult{Service: service}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

// Report aggregates every engine result of a single article notification.
type Report struct {
	RunID            string           `json:"runId"`
	URL              string           `json:"url"`
	Results          []IndexingResult `json:"results"`
	Succeeded        int              `json:"succeeded"`
	PrimarySucceeded int              `json:"primarySucceeded"`
	Healthy          bool             `json:"healthy"`
	StartedAt        time.Time        `json:"startedAt"`
	Duration         time.Duration    `json:"duration"`
}

// Services lists the engine names in result order.
func (r Report) Services() []string {
	names := make([]string, len(r.Results))
	for i, res := range r.Results {
		names[i] = res.Service
	}
	return names
}
