package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/kalambet/teamfit/internal/rules"
)

const ruleColumns = `id, name, description, rule_type, severity, is_active, conditions_json`

func scanRule(row rowScanner) (rules.Rule, error) {
	var r rules.Rule
	var typ, sev, conditions string
	var active int
	if err := row.Scan(&r.ID, &r.Name, &r.Description, &typ, &sev, &active, &conditions); err != nil {
		return rules.Rule{}, err
	}
	r.Type = rules.Type(typ)
	r.Severity = rules.Severity(sev)
	r.Active = active != 0
	r.Conditions = json.RawMessage(conditions)
	return r, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// CreateRule stores r as-is. Callers validate before writing; rows that no
// longer decode are skipped at evaluation time.
func (s *Store) CreateRule(r rules.Rule) error {
	now := formatTime(time.Now().UTC())
	conditions := string(r.Conditions)
	if conditions == "" {
		conditions = "{}"
	}
	_, err := s.db.Exec(`INSERT INTO rules (`+ruleColumns+`, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.Description, string(r.Type), string(r.Severity), boolInt(r.Active), conditions, now, now,
	)
	return err
}

func (s *Store) GetRule(id string) (rules.Rule, error) {
	r, err := scanRule(s.db.QueryRow(`SELECT `+ruleColumns+` FROM rules WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return rules.Rule{}, ErrNotFound
	}
	return r, err
}

// ListRules returns all rules in creation order.
func (s *Store) ListRules() ([]rules.Rule, error) {
	return s.queryRules(`SELECT ` + ruleColumns + ` FROM rules ORDER BY created_at ASC, rowid ASC`)
}

// ActiveRules returns the rules the engine should evaluate, in creation order.
func (s *Store) ActiveRules() ([]rules.Rule, error) {
	return s.queryRules(`SELECT ` + ruleColumns + ` FROM rules WHERE is_active = 1 ORDER BY created_at ASC, rowid ASC`)
}

func (s *Store) queryRules(query string, args ...any) ([]rules.Rule, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []rules.Rule{}
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpdateRule replaces every column of an existing rule except its ID and
// creation time.
func (s *Store) UpdateRule(r rules.Rule) error {
	conditions := string(r.Conditions)
	if conditions == "" {
		conditions = "{}"
	}
	res, err := s.db.Exec(`UPDATE rules
		SET name = ?, description = ?, rule_type = ?, severity = ?, is_active = ?, conditions_json = ?, updated_at = ?
		WHERE id = ?`,
		r.Name, r.Description, string(r.Type), string(r.Severity), boolInt(r.Active), conditions,
		formatTime(time.Now().UTC()), r.ID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// SetRuleActive toggles a rule without touching its definition.
func (s *Store) SetRuleActive(id string, active bool) error {
	res, err := s.db.Exec(`UPDATE rules SET is_active = ?, updated_at = ? WHERE id = ?`,
		boolInt(active), formatTime(time.Now().UTC()), id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (s *Store) DeleteRule(id string) error {
	res, err := s.db.Exec(`DELETE FROM rules WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}
