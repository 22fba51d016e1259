package models

import "time"

// Platform identifies where a business page was discovered.
type Platform string

const (
	PlatformFacebook      Platform = "facebook"
	PlatformLinkedIn      Platform = "linkedin"
	PlatformGoogleSourced Platform = "google_sourced"
)

// Priority classifies a scored lead.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Candidate is the raw, provider-agnostic record a source produces during one
// discovery pass. It is ephemeral: it either becomes a Business at first insert
// or is dropped. PageURL is the sole identity anchor; two candidates with
// case-insensitively equal URLs are the same entity.
type Candidate struct {
	BusinessName    string            `json:"business_name"`
	Platform        Platform          `json:"platform"`
	PageURL         string            `json:"page_url"`
	Category        string            `json:"category"`
	Location        string            `json:"location"`
	Phone           string            `json:"phone"`
	Email           string            `json:"email"`
	Description     string            `json:"description"`
	PageCreatedDate string            `json:"page_created_date"`
	Metadata        map[string]string `json:"metadata,omitempty"` // provenance only, never read by the pipeline
}

// Business is a persisted, scored lead.
type Business struct {
	ID              int64             `json:"id"`
	BusinessName    string            `json:"business_name"`
	Platform        Platform          `json:"platform"`
	PageURL         string            `json:"page_url"`
	Category        string            `json:"category"`
	Location        string            `json:"location"`
	Phone           string            `json:"phone"`
	Email           string            `json:"email"`
	Description     string            `json:"description"`
	PageCreatedDate string            `json:"page_created_date"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	IdentityHash    string            `json:"identity_hash"`
	ConfidenceScore int               `json:"confidence_score"`
	Priority        Priority          `json:"priority"`
	ScoringSignals  []string          `json:"scoring_signals"`
	DiscoveredAt    time.Time         `json:"discovered_at"`
	LastUpdatedAt   time.Time         `json:"last_updated_at"`
	Notified        bool              `json:"notified"`
}

// SearchRecord is one append-only audit row describing a source query.
type SearchRecord struct {
	Platform    Platform  `json:"platform"`
	Query       string    `json:"query"`
	ExecutedAt  time.Time `json:"executed_at"`
	ResultCount int       `json:"result_count"`
}

// PassSummary aggregates the per-candidate outcomes of one discovery pass.
type PassSummary struct {
	PassID    string        `json:"pass_id"`
	Platform  Platform      `json:"platform"`
	Fetched   int           `json:"fetched"`
	Skipped   int           `json:"skipped"`   // already stored at the pre-check
	Scored    int           `json:"scored"`
	BelowMin  int           `json:"below_min"` // discarded by the confidence threshold
	Inserted  int           `json:"inserted"`
	Races     int           `json:"races"` // insert lost to a concurrent pass, silently dropped
	Errored   int           `json:"errored"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Statistics holds aggregate counts over the stored businesses.
type Statistics struct {
	Total      int            `json:"total"`
	ByPlatform map[string]int `json:"by_platform"`
	ByCategory map[string]int `json:"by_category"`
	Recent24h  int            `json:"recent_24h"`
}
