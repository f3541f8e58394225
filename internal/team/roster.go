// Package team models the working roster of a team under construction and
// the per-style distribution derived from it.
package team

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kalambet/teamfit/internal/disc"
)

var (
	// ErrDuplicateMember is returned when a member ID is already on the roster.
	ErrDuplicateMember = errors.New("member already on roster")
	// ErrMemberNotFound is returned when removing an ID that is not on the roster.
	ErrMemberNotFound = errors.New("member not on roster")
)

// Member is one roster entry. Profile is nil when the consultant has not
// taken an assessment.
type Member struct {
	ID      string             `json:"id"`
	Name    string             `json:"name,omitempty"`
	Profile *disc.StyleProfile `json:"style_profile,omitempty"`
}

// Roster is an ordered set of members keyed by ID. Order is kept for
// display only. A copied Roster value shares state with the original; use
// Clone before mutating a copy.
type Roster struct {
	members []Member
	index   map[string]int
}

// NewRoster builds a roster from members, rejecting duplicate IDs.
func NewRoster(members ...Member) (Roster, error) {
	var r Roster
	for _, m := range members {
		if err := r.Add(m); err != nil {
			return Roster{}, err
		}
	}
	return r, nil
}

// Add appends m to the roster.
func (r *Roster) Add(m Member) error {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if _, ok := r.index[m.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateMember, m.ID)
	}
	r.index[m.ID] = len(r.members)
	r.members = append(r.members, m)
	return nil
}

// Remove drops the member with the given ID.
func (r *Roster) Remove(id string) error {
	pos, ok := r.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMemberNotFound, id)
	}
	members := make([]Member, 0, len(r.members)-1)
	members = append(members, r.members[:pos]...)
	r.members = append(members, r.members[pos+1:]...)
	delete(r.index, id)
	for i := pos; i < len(r.members); i++ {
		r.index[r.members[i].ID] = i
	}
	return nil
}

// Clone returns a roster that can be mutated independently of r.
func (r Roster) Clone() Roster {
	out, _ := NewRoster(r.members...)
	return out
}

// Contains reports whether id is on the roster.
func (r Roster) Contains(id string) bool {
	_, ok := r.index[id]
	return ok
}

// Size is the raw member count, profiled or not.
func (r Roster) Size() int { return len(r.members) }

// Members returns a copy of the members in roster order.
func (r Roster) Members() []Member {
	out := make([]Member, len(r.members))
	copy(out, r.members)
	return out
}

// Profiled returns the members that carry a style profile, in roster order.
func (r Roster) Profiled() []Member {
	var out []Member
	for _, m := range r.members {
		if m.Profile != nil {
			out = append(out, m)
		}
	}
	return out
}

// Distribution counts profiled members by primary style.
func (r Roster) Distribution() Distribution {
	d := NewDistribution()
	for _, m := range r.members {
		if m.Profile == nil {
			continue
		}
		if m.Profile.Primary.Valid() {
			d[m.Profile.Primary]++
		}
	}
	return d
}

// MarshalJSON encodes the roster as its member list.
func (r Roster) MarshalJSON() ([]byte, error) {
	members := r.members
	if members == nil {
		members = []Member{}
	}
	return json.Marshal(members)
}

// UnmarshalJSON decodes a member list and enforces unique IDs.
func (r *Roster) UnmarshalJSON(data []byte) error {
	var members []Member
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}
	built, err := NewRoster(members...)
	if err != nil {
		return err
	}
	*r = built
	return nil
}
