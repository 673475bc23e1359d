package history

import (
	"encoding/json"
	"time"
)

// Run kinds.
const (
	KindContent = "content"
	KindDNS     = "dns"
)

// Run statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusDryRun  = "dry_run"
)

// Run is one invocation of a sync.
type Run struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	Kind       string     `gorm:"size:16;index" json:"kind"`
	Status     string     `gorm:"size:16" json:"status"`
	StartedAt  time.Time  `gorm:"index" json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	Summary    string     `gorm:"type:text" json:"summary"`
	Error      string     `gorm:"type:text" json:"error,omitempty"`
	Events     []RunEvent `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"events,omitempty"`
}

// RunEvent is one item handled during a run: an object imported or skipped,
// a record added or removed.
type RunEvent struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	RunID   string `gorm:"size:36;index" json:"run_id"`
	Subject string `gorm:"size:255" json:"subject"`
	Action  string `gorm:"size:32" json:"action"`
	Outcome string `gorm:"size:32" json:"outcome"`
	Detail  string `gorm:"type:text" json:"detail,omitempty"`
}

// NewRun starts a run of the given kind.
func NewRun(kind string) *Run {
	return &Run{Kind: kind, StartedAt: time.Now().UTC()}
}

// AddEvent appends an event to the run.
func (r *Run) AddEvent(subject, action, outcome, detail string) {
	r.Events = append(r.Events, RunEvent{
		Subject: subject,
		Action:  action,
		Outcome: outcome,
		Detail:  detail,
	})
}

// Finish stamps the run. The summary is stored as JSON; a non-nil err marks
// the run failed regardless of status.
func (r *Run) Finish(status string, summary any, err error) {
	r.FinishedAt = time.Now().UTC()
	r.Status = status
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
	}
	if summary != nil {
		if data, mErr := json.Marshal(summary); mErr == nil {
			r.Summary = string(data)
		}
	}
}
