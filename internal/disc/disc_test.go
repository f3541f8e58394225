package disc

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseStyle(t *testing.T) {
	tests := []struct {
		in      string
		want    Style
		wantErr bool
	}{
		{"D", Dominance, false},
		{"i", Influence, false},
		{"I", Influence, false},
		{" s ", Steadiness, false},
		{"c", Conscientiousness, false},
		{"X", "", true},
		{"", "", true},
		{"DI", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStyle(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownStyle) {
				t.Errorf("ParseStyle(%q) error = %v, want ErrUnknownStyle", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseStyle(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStyle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStyleUnmarshalJSON(t *testing.T) {
	var s Style
	if err := json.Unmarshal([]byte(`"i"`), &s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != Influence {
		t.Errorf("style = %q, want I", s)
	}

	if err := json.Unmarshal([]byte(`"Q"`), &s); !errors.Is(err, ErrUnknownStyle) {
		t.Errorf("error = %v, want ErrUnknownStyle", err)
	}
	if err := json.Unmarshal([]byte(`3`), &s); err == nil {
		t.Error("expected error for non-string style")
	}
}

func TestMatrixIsTotal(t *testing.T) {
	for _, a := range Styles {
		for _, b := range Styles {
			v := DefaultMatrix.Score(a, b)
			if v < 0 || v > 100 {
				t.Errorf("Score(%s,%s) = %d, outside [0,100]", a, b, v)
			}
		}
	}
}

func TestMatrixReferenceValues(t *testing.T) {
	if got := DefaultMatrix.Score(Dominance, Steadiness); got != 60 {
		t.Errorf("Score(D,S) = %d, want 60", got)
	}
	if got := DefaultMatrix.Score(Influence, Steadiness); got != 90 {
		t.Errorf("Score(I,S) = %d, want 90", got)
	}
	for _, a := range Styles {
		for _, b := range Styles {
			if DefaultMatrix.Score(a, b) != DefaultMatrix.Score(b, a) {
				t.Errorf("reference table not symmetric at (%s,%s)", a, b)
			}
		}
	}
}

func TestMatrixAsymmetricEntriesAreRespected(t *testing.T) {
	m := DefaultMatrix
	m[0][3] = 10
	if got := m.Score(Dominance, Conscientiousness); got != 10 {
		t.Errorf("Score(D,C) = %d, want 10", got)
	}
	if got := m.Score(Conscientiousness, Dominance); got != 85 {
		t.Errorf("Score(C,D) = %d, want 85", got)
	}
}

func TestProfileValidate(t *testing.T) {
	sec := Influence
	bad := Style("Z")
	tests := []struct {
		name    string
		p       StyleProfile
		wantErr bool
	}{
		{"valid", StyleProfile{Primary: Dominance, Secondary: &sec, D: 80, I: 60, S: 10, C: 40}, false},
		{"primary not highest is fine", StyleProfile{Primary: Steadiness, D: 90, S: 20}, false},
		{"unknown primary", StyleProfile{Primary: "X"}, true},
		{"unknown secondary", StyleProfile{Primary: Dominance, Secondary: &bad}, true},
		{"score too high", StyleProfile{Primary: Dominance, D: 101}, true},
		{"negative score", StyleProfile{Primary: Dominance, C: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProfileClone(t *testing.T) {
	sec := Conscientiousness
	p := StyleProfile{Primary: Dominance, Secondary: &sec}
	c := p.Clone()
	*c.Secondary = Influence
	if *p.Secondary != Conscientiousness {
		t.Error("Clone shares the secondary style pointer")
	}
}

func TestInfo(t *testing.T) {
	if got := Info(Steadiness).Name; got != "Steadiness" {
		t.Errorf("Info(S).Name = %q", got)
	}
	if got := Info("Q"); got.Color != "" || got.Name != "Q" {
		t.Errorf("Info(Q) = %+v", got)
	}
}
