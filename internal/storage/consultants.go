package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/kalambet/teamfit/internal/disc"
)

const consultantColumns = `id, name, email, title, primary_style, secondary_style, d_score, i_score, s_score, c_score, assessed_at, created_at`

// consultantColumnsPrefixed follows a "c." alias in joins.
const consultantColumnsPrefixed = `id, c.name, c.email, c.title, c.primary_style, c.secondary_style, c.d_score, c.i_score, c.s_score, c.c_score, c.assessed_at, c.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConsultant(row rowScanner) (Consultant, error) {
	var c Consultant
	var primary, secondary, assessedAt sql.NullString
	var d, i, s, cs sql.NullInt64
	var createdAt string
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Title, &primary, &secondary, &d, &i, &s, &cs, &assessedAt, &createdAt); err != nil {
		return Consultant{}, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return Consultant{}, fmt.Errorf("parsing created_at: %w", err)
	}
	c.CreatedAt = t

	if primary.Valid {
		p := &disc.StyleProfile{
			Primary: disc.Style(primary.String),
			D:       int(d.Int64),
			I:       int(i.Int64),
			S:       int(s.Int64),
			C:       int(cs.Int64),
		}
		if secondary.Valid {
			sec := disc.Style(secondary.String)
			p.Secondary = &sec
		}
		c.Profile = p
	}
	if assessedAt.Valid {
		at, err := parseTime(assessedAt.String)
		if err != nil {
			return Consultant{}, fmt.Errorf("parsing assessed_at: %w", err)
		}
		c.AssessedAt = &at
	}
	return c, nil
}

// CreateConsultant inserts c. A non-nil profile must already be validated.
func (s *Store) CreateConsultant(c Consultant) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	var primary, secondary, assessedAt any
	var d, i, st, cs any
	if c.Profile != nil {
		primary = string(c.Profile.Primary)
		if c.Profile.Secondary != nil {
			secondary = string(*c.Profile.Secondary)
		}
		d, i, st, cs = c.Profile.D, c.Profile.I, c.Profile.S, c.Profile.C
		at := c.CreatedAt
		if c.AssessedAt != nil {
			at = *c.AssessedAt
		}
		assessedAt = formatTime(at)
	}
	_, err := s.db.Exec(`INSERT INTO consultants (`+consultantColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, c.Title, primary, secondary, d, i, st, cs, assessedAt, formatTime(c.CreatedAt),
	)
	return err
}

func (s *Store) GetConsultant(id string) (Consultant, error) {
	c, err := scanConsultant(s.db.QueryRow(`SELECT `+consultantColumns+` FROM consultants WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return Consultant{}, ErrNotFound
	}
	return c, err
}

func (s *Store) ListConsultants(limit, offset int) ([]Consultant, error) {
	rows, err := s.db.Query(`SELECT `+consultantColumns+` FROM consultants ORDER BY name ASC, id ASC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Consultant
	for rows.Next() {
		c, err := scanConsultant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetConsultantProfile replaces the consultant's assessment.
func (s *Store) SetConsultantProfile(id string, p disc.StyleProfile, assessedAt time.Time) error {
	var secondary any
	if p.Secondary != nil {
		secondary = string(*p.Secondary)
	}
	res, err := s.db.Exec(`UPDATE consultants
		SET primary_style = ?, secondary_style = ?, d_score = ?, i_score = ?, s_score = ?, c_score = ?, assessed_at = ?
		WHERE id = ?`,
		string(p.Primary), secondary, p.D, p.I, p.S, p.C, formatTime(assessedAt), id,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (s *Store) DeleteConsultant(id string) error {
	res, err := s.db.Exec(`DELETE FROM consultants WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// ConsultantTeamIDs returns the teams the consultant belongs to.
func (s *Store) ConsultantTeamIDs(id string) ([]string, error) {
	rows, err := s.db.Query(`SELECT team_id FROM team_members WHERE consultant_id = ? ORDER BY team_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var tid string
		if err := rows.Scan(&tid); err != nil {
			return nil, err
		}
		ids = append(ids, tid)
	}
	return ids, rows.Err()
}
