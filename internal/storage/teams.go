package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/kalambet/teamfit/internal/team"
)

// CreateTeam inserts t and its initial members in one transaction.
func (s *Store) CreateTeam(t Team, memberIDs []string) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning team transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO teams (id, name, project, target_size, created_at) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Project, t.TargetSize, formatTime(t.CreatedAt)); err != nil {
		return fmt.Errorf("inserting team: %w", err)
	}
	for _, cid := range memberIDs {
		if err := addMember(tx, t.ID, cid); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func scanTeam(row rowScanner) (Team, error) {
	var t Team
	var createdAt string
	if err := row.Scan(&t.ID, &t.Name, &t.Project, &t.TargetSize, &createdAt); err != nil {
		return Team{}, err
	}
	ct, err := parseTime(createdAt)
	if err != nil {
		return Team{}, fmt.Errorf("parsing created_at: %w", err)
	}
	t.CreatedAt = ct
	return t, nil
}

func (s *Store) GetTeam(id string) (Team, error) {
	t, err := scanTeam(s.db.QueryRow(`SELECT id, name, project, target_size, created_at FROM teams WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return Team{}, ErrNotFound
	}
	return t, err
}

func (s *Store) ListTeams(limit, offset int) ([]Team, error) {
	rows, err := s.db.Query(`SELECT id, name, project, target_size, created_at FROM teams
		ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TeamIDs returns every team ID.
func (s *Store) TeamIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM teams ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) DeleteTeam(id string) error {
	res, err := s.db.Exec(`DELETE FROM teams WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// AddTeamMember appends a consultant to a team roster. It returns
// ErrNotFound if either side is missing and ErrConflict if the consultant
// is already a member.
func (s *Store) AddTeamMember(teamID, consultantID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning membership transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM teams WHERE id = ?`, teamID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}
	if err := addMember(tx, teamID, consultantID); err != nil {
		return err
	}
	return tx.Commit()
}

func addMember(tx *sql.Tx, teamID, consultantID string) error {
	var n int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM consultants WHERE id = ?`, consultantID).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("consultant %s: %w", consultantID, ErrNotFound)
	}
	if err := tx.QueryRow(`SELECT COUNT(*) FROM team_members WHERE team_id = ? AND consultant_id = ?`, teamID, consultantID).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("consultant %s already on team %s: %w", consultantID, teamID, ErrConflict)
	}

	_, err := tx.Exec(`INSERT INTO team_members (team_id, consultant_id, position, added_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM team_members WHERE team_id = ?), ?)`,
		teamID, consultantID, teamID, formatTime(time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("inserting member: %w", err)
	}
	return nil
}

func (s *Store) RemoveTeamMember(teamID, consultantID string) error {
	res, err := s.db.Exec(`DELETE FROM team_members WHERE team_id = ? AND consultant_id = ?`, teamID, consultantID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// TeamRoster reads a team's members and their profiles in a single query,
// in the order they were added.
func (s *Store) TeamRoster(teamID string) (team.Roster, error) {
	if _, err := s.GetTeam(teamID); err != nil {
		return team.Roster{}, err
	}
	rows, err := s.db.Query(`SELECT c.`+consultantColumnsPrefixed+`
		FROM team_members m JOIN consultants c ON c.id = m.consultant_id
		WHERE m.team_id = ?
		ORDER BY m.position ASC`, teamID)
	if err != nil {
		return team.Roster{}, err
	}
	defer rows.Close()

	var members []team.Member
	for rows.Next() {
		c, err := scanConsultant(rows)
		if err != nil {
			return team.Roster{}, err
		}
		members = append(members, team.Member{ID: c.ID, Name: c.Name, Profile: c.Profile})
	}
	if err := rows.Err(); err != nil {
		return team.Roster{}, err
	}
	return team.NewRoster(members...)
}

// RosterFor builds an ad-hoc roster from consultant IDs, in the given
// order. Unknown IDs return ErrNotFound; repeated IDs are rejected by the
// roster.
func (s *Store) RosterFor(consultantIDs []string) (team.Roster, error) {
	members := make([]team.Member, 0, len(consultantIDs))
	for _, id := range consultantIDs {
		c, err := s.GetConsultant(id)
		if err != nil {
			return team.Roster{}, fmt.Errorf("consultant %s: %w", id, err)
		}
		members = append(members, team.Member{ID: c.ID, Name: c.Name, Profile: c.Profile})
	}
	return team.NewRoster(members...)
}
