package models

import "time"

// Attempt describes one HTTP call made on behalf of a logical call.
type Attempt struct {
	ID         string        `json:"id"`
	Candidate  string        `json:"candidate"`
	URL        string        `json:"url"`
	Number     int           `json:"number"`
	Timestamp  time.Time     `json:"timestamp"`
	HTTPStatus int           `json:"http_status,omitempty"`
	Outcome    string        `json:"outcome"`
	Latency    time.Duration `json:"latency"`
}

// CandidateStats is the advisory per-candidate tally kept by the catalog.
type CandidateStats struct {
	Candidate   string    `json:"candidate"`
	Successes   int64     `json:"successes"`
	Failures    int64     `json:"failures"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	LastFailure time.Time `json:"last_failure,omitempty"`
}
