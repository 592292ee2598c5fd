package model

import "time"

// IncomeRecord is one normalized World Bank income-history observation.
type IncomeRecord struct {
	CountryCode string
	CountryName string
	Year        int
	IncomeClass string // H, UM, LM, L, or "" when unclassified that year
}

// GaviRecord is one normalized Gavi eligibility-history observation.
type GaviRecord struct {
	CountryCode string
	CountryName string
	Year        int
	Spec        string // raw eligibility label, "" when not in the Gavi list
}

// CoverageRecord is one row of the WHO HPV coverage extract.
type CoverageRecord struct {
	CountryCode  string
	CountryName  string
	Year         int
	Region       string
	TargetNumber string
	Doses        string
	Coverage     string // raw cell, percentage or blank
}

// HPVHistRecord is one row of the historical HPV first-dose extract kept for
// the redundancy comparison against the WHO coverage column.
type HPVHistRecord struct {
	CountryCode string
	Year        int
	OriCov      string
	OriAntigen  string
}

// MetadataRecord is static per-country HPV program metadata (one row per
// country code after deduplication).
type MetadataRecord struct {
	CountryCode      string
	NationalSchedule string
	IntroYear        string // raw cell
	DeliveryStrategy string
	AgeAdministered  string
	Sex              string
	IntDoses         string // dose-count label, "" when the extract lacks it
}

// CervicalRecord is the 2022 cervical-cancer crude rate, cross-sectional.
type CervicalRecord struct {
	CountryCode string
	CrudeRate   float64
}

// DTPRecord is one DTP comparator coverage observation (first or last dose).
type DTPRecord struct {
	CountryCode string
	Year        int
	Source      string
	Coverage    *float64
}

// Run tracks one pipeline execution in the store.
type Run struct {
	ID        string     `json:"id"`
	Status    RunStatus  `json:"status"`
	Error     string     `json:"error,omitempty"`
	Stages    []RunStage `json:"stages,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunStatus is the lifecycle state of a pipeline run.
type RunStatus string

const (
	RunStatusStarted   RunStatus = "started"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunStage is one recorded stage of a run, with its diagnostics serialized
// as JSON.
type RunStage struct {
	ID          string    `json:"id"`
	RunID       string    `json:"run_id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	DurationMS  int64     `json:"duration_ms"`
	Diagnostics string    `json:"diagnostics,omitempty"`
	StartedAt   time.Time `json:"started_at"`
}
