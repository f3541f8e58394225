// Package disc holds the DiSC behavioral-style vocabulary: styles, assessment
// profiles and the compatibility matrix used to score style pairs.
package disc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStyle is returned when a value is not one of D, I, S or C.
var ErrUnknownStyle = errors.New("unknown DiSC style")

// Style is one of the four DiSC behavioral styles.
type Style string

const (
	Dominance         Style = "D"
	Influence         Style = "I"
	Steadiness        Style = "S"
	Conscientiousness Style = "C"
)

// Styles lists the four styles in canonical order. Anything that reports
// styles to a user iterates this slice, never a map.
var Styles = [4]Style{Dominance, Influence, Steadiness, Conscientiousness}

// ParseStyle converts s to a Style. Matching is case-insensitive because
// DiSC material conventionally writes Influence as a lowercase "i".
func ParseStyle(s string) (Style, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "D":
		return Dominance, nil
	case "I":
		return Influence, nil
	case "S":
		return Steadiness, nil
	case "C":
		return Conscientiousness, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStyle, s)
}

// Index returns the canonical position of the style, or -1 if it is unknown.
func (s Style) Index() int {
	switch s {
	case Dominance:
		return 0
	case Influence:
		return 1
	case Steadiness:
		return 2
	case Conscientiousness:
		return 3
	}
	return -1
}

// Valid reports whether s is one of the four styles.
func (s Style) Valid() bool { return s.Index() >= 0 }

// Name returns the long name of the style, e.g. "Dominance".
func (s Style) Name() string { return Info(s).Name }

func (s Style) String() string { return string(s) }

// UnmarshalJSON rejects anything outside the four styles so bad values are
// caught where payloads enter the system.
func (s *Style) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("style must be a string: %w", err)
	}
	parsed, err := ParseStyle(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// StyleInfo is the display metadata for a style.
type StyleInfo struct {
	Style Style  `json:"style"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

var styleInfo = [4]StyleInfo{
	{Style: Dominance, Name: "Dominance", Color: "#E53E3E"},
	{Style: Influence, Name: "Influence", Color: "#D69E2E"},
	{Style: Steadiness, Name: "Steadiness", Color: "#38A169"},
	{Style: Conscientiousness, Name: "Conscientiousness", Color: "#3182CE"},
}

// Info returns display metadata for s. Unknown styles get a zero StyleInfo
// carrying only the raw value.
func Info(s Style) StyleInfo {
	if i := s.Index(); i >= 0 {
		return styleInfo[i]
	}
	return StyleInfo{Style: s, Name: string(s)}
}
