package rules

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kalambet/teamfit/internal/disc"
	"github.com/kalambet/teamfit/internal/team"
)

// Condition is the decoded conditions payload of a rule. The set of
// implementations is closed: Composition, Pairing and SkillGap.
type Condition interface {
	Type() Type
	isCondition()
}

// Composition requires a minimum style spread and caps any single style.
// It applies only once the raw roster size reaches MinTeamSize.
type Composition struct {
	MinStyles     int         `json:"min_styles"`
	MaxSameStyle  int         `json:"max_same_style"`
	RequiredStyle *disc.Style `json:"required_style,omitempty"`
	MinTeamSize   int         `json:"min_team_size"`
}

// Pairing fires when both styles are present. Style order does not matter.
type Pairing struct {
	Style1 disc.Style `json:"style1"`
	Style2 disc.Style `json:"style2"`
}

// SkillGap fires once the raw roster size reaches MinTeamSize. It does not
// inspect skills; the size gate is the whole condition.
type SkillGap struct {
	MinTeamSize int `json:"min_team_size"`
}

func (Composition) Type() Type { return TypeComposition }
func (Pairing) Type() Type     { return TypePairing }
func (SkillGap) Type() Type    { return TypeSkillGap }

func (Composition) isCondition() {}
func (Pairing) isCondition()     {}
func (SkillGap) isCondition()    {}

// Violation names one composition requirement a roster failed.
type Violation string

const (
	ViolationMinStyles     Violation = "min_styles"
	ViolationMaxSameStyle  Violation = "max_same_style"
	ViolationRequiredStyle Violation = "required_style"
)

// Violations lists every requirement r fails, in a fixed order. It returns
// nil when the roster is below MinTeamSize.
func (c Composition) Violations(r team.Roster) []Violation {
	if r.Size() < c.MinTeamSize {
		return nil
	}
	d := r.Distribution()
	var out []Violation
	if d.Distinct() < c.MinStyles {
		out = append(out, ViolationMinStyles)
	}
	if d.Max() > c.MaxSameStyle {
		out = append(out, ViolationMaxSameStyle)
	}
	if c.RequiredStyle != nil && !d.Present(*c.RequiredStyle) {
		out = append(out, ViolationRequiredStyle)
	}
	return out
}

// Triggered reports whether cond fires for roster r.
func Triggered(cond Condition, r team.Roster) bool {
	switch c := cond.(type) {
	case Composition:
		return len(c.Violations(r)) > 0
	case Pairing:
		d := r.Distribution()
		return d.Present(c.Style1) && d.Present(c.Style2)
	case SkillGap:
		return r.Size() >= c.MinTeamSize
	}
	return false
}

// Wire shapes. Pointers distinguish a missing field from an explicit zero.
type compositionPayload struct {
	MinStyles     *int        `json:"min_styles"`
	MaxSameStyle  *int        `json:"max_same_style"`
	RequiredStyle *disc.Style `json:"required_style"`
	MinTeamSize   *int        `json:"min_team_size"`
}

type pairingPayload struct {
	Style1 *disc.Style `json:"style1"`
	Style2 *disc.Style `json:"style2"`
}

type skillGapPayload struct {
	MinTeamSize *int `json:"min_team_size"`
}

// DecodeConditions validates raw against the shape required by t. Unknown
// fields, missing required fields, negative counts and unknown styles are
// all malformed.
func DecodeConditions(t Type, raw json.RawMessage) (Condition, error) {
	switch t {
	case TypeComposition:
		var p compositionPayload
		if err := decodeStrict(raw, &p); err != nil {
			return nil, err
		}
		if err := requireInts(map[string]*int{
			"min_styles":     p.MinStyles,
			"max_same_style": p.MaxSameStyle,
			"min_team_size":  p.MinTeamSize,
		}); err != nil {
			return nil, err
		}
		if *p.MinStyles > len(disc.Styles) {
			return nil, fmt.Errorf("%w: min_styles %d exceeds %d styles", ErrMalformedConditions, *p.MinStyles, len(disc.Styles))
		}
		return Composition{
			MinStyles:     *p.MinStyles,
			MaxSameStyle:  *p.MaxSameStyle,
			RequiredStyle: p.RequiredStyle,
			MinTeamSize:   *p.MinTeamSize,
		}, nil

	case TypePairing:
		var p pairingPayload
		if err := decodeStrict(raw, &p); err != nil {
			return nil, err
		}
		if p.Style1 == nil || p.Style2 == nil {
			return nil, fmt.Errorf("%w: style1 and style2 are required", ErrMalformedConditions)
		}
		return Pairing{Style1: *p.Style1, Style2: *p.Style2}, nil

	case TypeSkillGap:
		var p skillGapPayload
		if err := decodeStrict(raw, &p); err != nil {
			return nil, err
		}
		if err := requireInts(map[string]*int{"min_team_size": p.MinTeamSize}); err != nil {
			return nil, err
		}
		return SkillGap{MinTeamSize: *p.MinTeamSize}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
}

func decodeStrict(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("%w: empty payload", ErrMalformedConditions)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedConditions, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", ErrMalformedConditions)
	}
	return nil
}

func requireInts(fields map[string]*int) error {
	for _, name := range []string{"min_styles", "max_same_style", "min_team_size"} {
		v, ok := fields[name]
		if !ok {
			continue
		}
		if v == nil {
			return fmt.Errorf("%w: %s is required", ErrMalformedConditions, name)
		}
		if *v < 0 {
			return fmt.Errorf("%w: %s must be non-negative", ErrMalformedConditions, name)
		}
	}
	return nil
}

// EncodeConditions marshals a typed condition into the stored JSON form.
func EncodeConditions(c Condition) (json.RawMessage, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding %s conditions: %w", c.Type(), err)
	}
	return b, nil
}
