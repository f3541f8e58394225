package disc

import "fmt"

// StyleProfile is the result of one DiSC assessment. The four scores are
// independent and need not sum to 100, and the primary style is taken as
// reported even when another dimension scores higher.
type StyleProfile struct {
	Primary   Style  `json:"primary_style"`
	Secondary *Style `json:"secondary_style,omitempty"`
	D         int    `json:"d_score"`
	I         int    `json:"i_score"`
	S         int    `json:"s_score"`
	C         int    `json:"c_score"`
}

// Score returns the dimension score for the given style.
func (p StyleProfile) Score(s Style) int {
	switch s {
	case Dominance:
		return p.D
	case Influence:
		return p.I
	case Steadiness:
		return p.S
	case Conscientiousness:
		return p.C
	}
	return 0
}

// Validate checks the profile at the boundary where it is produced.
// Analysis code trusts validated profiles and does not re-check them.
func (p StyleProfile) Validate() error {
	if !p.Primary.Valid() {
		return fmt.Errorf("primary style: %w: %q", ErrUnknownStyle, p.Primary)
	}
	if p.Secondary != nil && !p.Secondary.Valid() {
		return fmt.Errorf("secondary style: %w: %q", ErrUnknownStyle, *p.Secondary)
	}
	for _, s := range Styles {
		if v := p.Score(s); v < 0 || v > 100 {
			return fmt.Errorf("%s score %d out of range [0,100]", s, v)
		}
	}
	return nil
}

// Clone returns a copy that shares no pointers with p.
func (p StyleProfile) Clone() StyleProfile {
	if p.Secondary != nil {
		sec := *p.Secondary
		p.Secondary = &sec
	}
	return p
}
