package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kalambet/teamfit/internal/rules"
)

// SaveEvaluation stores a report snapshot for a team.
func (s *Store) SaveEvaluation(e Evaluation) error {
	if e.EvaluatedAt.IsZero() {
		e.EvaluatedAt = time.Now().UTC()
	}
	findings := e.Report.Findings
	if findings == nil {
		findings = []rules.Finding{}
	}
	skipped := e.Report.Skipped
	if skipped == nil {
		skipped = []rules.Skipped{}
	}
	fj, err := json.Marshal(findings)
	if err != nil {
		return fmt.Errorf("marshaling findings: %w", err)
	}
	sj, err := json.Marshal(skipped)
	if err != nil {
		return fmt.Errorf("marshaling skipped rules: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO team_evaluations (id, team_id, source, evaluated_at, findings, skipped)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.TeamID, e.Source, formatTime(e.EvaluatedAt), string(fj), string(sj))
	if err != nil {
		return fmt.Errorf("inserting evaluation: %w", err)
	}
	return nil
}

// LatestEvaluation returns the most recent snapshot for a team.
func (s *Store) LatestEvaluation(teamID string) (Evaluation, error) {
	var e Evaluation
	var evaluatedAt, fj, sj string
	err := s.db.QueryRow(`SELECT id, team_id, source, evaluated_at, findings, skipped
		FROM team_evaluations WHERE team_id = ?
		ORDER BY evaluated_at DESC, rowid DESC LIMIT 1`, teamID,
	).Scan(&e.ID, &e.TeamID, &e.Source, &evaluatedAt, &fj, &sj)
	if err == sql.ErrNoRows {
		return Evaluation{}, ErrNotFound
	}
	if err != nil {
		return Evaluation{}, err
	}
	if e.EvaluatedAt, err = parseTime(evaluatedAt); err != nil {
		return Evaluation{}, fmt.Errorf("parsing evaluated_at: %w", err)
	}
	if err := json.Unmarshal([]byte(fj), &e.Report.Findings); err != nil {
		return Evaluation{}, fmt.Errorf("decoding findings: %w", err)
	}
	if err := json.Unmarshal([]byte(sj), &e.Report.Skipped); err != nil {
		return Evaluation{}, fmt.Errorf("decoding skipped rules: %w", err)
	}
	return e, nil
}
