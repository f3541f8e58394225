package storage

import (
	"database/sql"
	"errors"
	"time"

	"github.com/kalambet/teamfit/internal/disc"
	"github.com/kalambet/teamfit/internal/rules"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write would duplicate an existing record.
	ErrConflict = errors.New("conflict")
)

// Consultant is a staff member who can be placed on teams. Profile is nil
// until an assessment has been recorded.
type Consultant struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Email      string             `json:"email"`
	Title      string             `json:"title"`
	Profile    *disc.StyleProfile `json:"style_profile,omitempty"`
	AssessedAt *time.Time         `json:"assessed_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// Team is a persisted team. Its roster lives in team_members.
type Team struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Project    string    `json:"project"`
	TargetSize int       `json:"target_size"`
	CreatedAt  time.Time `json:"created_at"`
}

type Job struct {
	ID          string
	Type        string
	PayloadJSON string
	Status      string // "pending", "running", "completed", "failed"
	Attempts    int
	MaxAttempts int
	RunAfter    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastError   string
}

// Evaluation is a stored rule-engine report for one team.
type Evaluation struct {
	ID          string       `json:"id"`
	TeamID      string       `json:"team_id"`
	Source      string       `json:"source"` // "api" or "worker"
	EvaluatedAt time.Time    `json:"evaluated_at"`
	Report      rules.Report `json:"report"`
}

// Timestamps are stored UTC with fixed-width nanoseconds so that string
// comparison in SQL matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
