package model

import (
	"time"
)

// Action is the outcome kind recorded for a processed template item.
type Action string

const (
	// ActionCreated indicates a remote resource was created.
	ActionCreated Action = "Created"
	// ActionUpdated indicates an existing remote resource was updated.
	ActionUpdated Action = "Updated"
	// ActionSkipped indicates no write was needed or the item was not supported.
	ActionSkipped Action = "Skipped"
	// ActionFailed marks a validation or remote-call failure for the item.
	ActionFailed Action = "Failed"
	// ActionDeleted indicates a remote resource was deleted.
	ActionDeleted Action = "Deleted"
	// ActionWouldCreate indicates dry-run would create a resource.
	ActionWouldCreate Action = "WouldCreate"
	// ActionWouldUpdate indicates dry-run would update a resource.
	ActionWouldUpdate Action = "WouldUpdate"
	// ActionWouldDelete indicates dry-run would delete a resource.
	ActionWouldDelete Action = "WouldDelete"
)

// ResultRecord captures the outcome of processing a single template item.
// Records are created once and never mutated afterwards.
type ResultRecord struct {
	Name      string    `json:"name"`
	Action    Action    `json:"action"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path,omitempty"`
	Type      string    `json:"type,omitempty"`
	ID        string    `json:"id,omitempty"`
	Platform  string    `json:"platform,omitempty"`
	State     string    `json:"state,omitempty"`
	Diff      string    `json:"diff,omitempty"`
}

// Summary tallies result records by action.
type Summary struct {
	Created     int `json:"created"`
	Updated     int `json:"updated"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
	Deleted     int `json:"deleted"`
	WouldCreate int `json:"wouldCreate"`
	WouldUpdate int `json:"wouldUpdate"`
	WouldDelete int `json:"wouldDelete"`
	Total       int `json:"total"`
}

// Summarize groups records by action. It is recomputed on demand and never stored.
func Summarize(records []ResultRecord) Summary {
	var s Summary
	for _, r := range records {
		s.Add(r)
	}
	return s
}

// Add counts a single record.
func (s *Summary) Add(r ResultRecord) {
	s.Total++
	switch r.Action {
	case ActionCreated:
		s.Created++
	case ActionUpdated:
		s.Updated++
	case ActionSkipped:
		s.Skipped++
	case ActionFailed:
		s.Failed++
	case ActionDeleted:
		s.Deleted++
	case ActionWouldCreate:
		s.WouldCreate++
	case ActionWouldUpdate:
		s.WouldUpdate++
	case ActionWouldDelete:
		s.WouldDelete++
	}
}

// Merge combines another summary into this one.
func (s *Summary) Merge(other Summary) {
	s.Created += other.Created
	s.Updated += other.Updated
	s.Skipped += other.Skipped
	s.Failed += other.Failed
	s.Deleted += other.Deleted
	s.WouldCreate += other.WouldCreate
	s.WouldUpdate += other.WouldUpdate
	s.WouldDelete += other.WouldDelete
	s.Total += other.Total
}

// Success is false if and only if at least one record failed.
func (s Summary) Success() bool {
	return s.Failed == 0
}

// Changed reports whether the run wrote (or would write) anything.
func (s Summary) Changed() bool {
	return s.Created+s.Updated+s.Deleted+s.WouldCreate+s.WouldUpdate+s.WouldDelete > 0
}
