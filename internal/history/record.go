// Package history records research runs so past reports can be listed and reprinted.
package history

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status represents the outcome of a run
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// TaskRecord is the output of one crew task.
type TaskRecord struct {
	Name       string `json:"name"`
	Agent      string `json:"agent"`
	Raw        string `json:"raw"`
	OutputFile string `json:"output_file,omitempty"`
}

// Usage is the aggregated token usage of a run.
type Usage struct {
	Requests     uint64 `json:"requests"`
	InputTokens  uint64 `json:"input_tokens"`
	OutputTokens uint64 `json:"output_tokens"`
	TotalTokens  uint64 `json:"total_tokens"`
}

// Record is one kickoff of the crew.
type Record struct {
	ID          string       `json:"id"`
	Company     string       `json:"company"`
	Status      Status       `json:"status"`
	Raw         string       `json:"raw,omitempty"`
	Error       string       `json:"error,omitempty"`
	Tasks       []TaskRecord `json:"tasks,omitempty"`
	Usage       Usage        `json:"usage"`
	ReportFiles []string     `json:"report_files,omitempty"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  *time.Time   `json:"finished_at,omitempty"`
	LogPath     string       `json:"log_path,omitempty"`   // execution log of the run
	KickoffID   string       `json:"kickoff_id,omitempty"` // transcript session prefix
}

// NewRecord starts a record for the given company.
// The status is set when the run completes or fails.
func NewRecord(company string) *Record {
	return &Record{
		ID:        uuid.NewString(),
		Company:   company,
		StartedAt: time.Now(),
	}
}

// Complete marks the record as completed with the crew's raw result.
func (r *Record) Complete(raw string) {
	now := time.Now()
	r.Status = StatusCompleted
	r.Raw = raw
	r.Error = ""
	r.FinishedAt = &now
}

// Fail marks the record as failed.
func (r *Record) Fail(err error) {
	now := time.Now()
	r.Status = StatusFailed
	if err != nil {
		r.Error = err.Error()
	}
	r.FinishedAt = &now
}

// Duration returns how long the run took, or zero while it is unfinished.
func (r *Record) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Validate checks the record before it is persisted
func (r *Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("record ID is required")
	}
	if _, err := uuid.Parse(r.ID); err != nil {
		return fmt.Errorf("invalid record ID %q: %w", r.ID, err)
	}
	if !r.Status.IsValid() {
		return fmt.Errorf("invalid status: %q", r.Status)
	}
	return nil
}

// ToJSON converts the record to JSON
func (r *Record) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON creates a record from JSON
func FromJSON(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse record: %w", err)
	}
	return &r, nil
}
