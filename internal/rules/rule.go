// Package rules evaluates administrator-authored team rules against a roster
// and reports severity-tagged findings.
//
// A rule's conditions are stored as raw JSON whose shape depends on the rule
// type. They are decoded into the Condition union (Composition, Pairing or
// SkillGap) at validation and evaluation time.
package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownType is returned for a rule type outside the known set.
	ErrUnknownType = errors.New("unknown rule type")
	// ErrUnknownSeverity is returned for a severity outside the known set.
	ErrUnknownSeverity = errors.New("unknown severity")
	// ErrMalformedConditions is returned when a conditions payload does not
	// match the shape its rule type requires.
	ErrMalformedConditions = errors.New("malformed conditions")
)

// Type selects the condition shape of a rule.
type Type string

const (
	TypeComposition Type = "composition"
	TypePairing     Type = "pairing"
	TypeSkillGap    Type = "skill_gap"
)

// ParseType validates a rule type string.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeComposition, TypePairing, TypeSkillGap:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Severity is the level attached to a finding.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeveritySuccess  Severity = "success"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// ParseSeverity validates a severity string.
func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case SeverityInfo, SeveritySuccess, SeverityWarning, SeverityCritical:
		return sev, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSeverity, s)
}

// Rank orders severities for display, highest first: critical, warning,
// info, success. Unknown severities rank lowest.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityWarning:
		return 3
	case SeverityInfo:
		return 2
	case SeveritySuccess:
		return 1
	}
	return 0
}

// Rule is a snapshot of one administrator-defined rule. Evaluation never
// modifies it.
type Rule struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Type        Type            `json:"rule_type"`
	Severity    Severity        `json:"severity"`
	Active      bool            `json:"is_active"`
	Conditions  json.RawMessage `json:"conditions"`
}

// Condition decodes the rule's conditions according to its type.
func (r Rule) Condition() (Condition, error) {
	return DecodeConditions(r.Type, r.Conditions)
}

// Validate checks a rule before it is stored. Evaluation tolerates rules
// that fail validation by skipping them.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if _, err := ParseType(string(r.Type)); err != nil {
		return err
	}
	if _, err := ParseSeverity(string(r.Severity)); err != nil {
		return err
	}
	if _, err := r.Condition(); err != nil {
		return err
	}
	return nil
}
