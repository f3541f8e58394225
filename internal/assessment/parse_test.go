package assessment

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kalambet/teamfit/internal/disc"
)

func TestParseTextWithStatedStyles(t *testing.T) {
	report := `DiSC Profile Report
Consultant: Jordan Lee

Dominance: 82
Influence: 64
Steadiness: 25
Conscientiousness: 47

Primary Style: D
Secondary Style: i`

	p, err := ParseText(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Primary != disc.Dominance {
		t.Errorf("Primary = %q, want D", p.Primary)
	}
	if p.Secondary == nil || *p.Secondary != disc.Influence {
		t.Errorf("Secondary = %v, want I", p.Secondary)
	}
	if p.D != 82 || p.I != 64 || p.S != 25 || p.C != 47 {
		t.Errorf("scores = %d/%d/%d/%d", p.D, p.I, p.S, p.C)
	}
}

func TestParseTextKeepsStatedPrimary(t *testing.T) {
	p, err := ParseText("D: 90\nI: 10\nS: 30\nC: 20\nPrimary: Steadiness")
	if err != nil {
		t.Fatal(err)
	}
	if p.Primary != disc.Steadiness {
		t.Errorf("Primary = %q, want S even though D scores higher", p.Primary)
	}
}

func TestParseTextDerivesPrimary(t *testing.T) {
	tests := []struct {
		text string
		want disc.Style
	}{
		{"D: 10 I: 20 S: 70 C: 40", disc.Steadiness},
		{"D: 50 I: 50 S: 50 C: 50", disc.Dominance},
		{"D: 10 I: 60 S: 20 C: 60", disc.Influence},
	}
	for _, tt := range tests {
		p, err := ParseText(tt.text)
		if err != nil {
			t.Errorf("%q: %v", tt.text, err)
			continue
		}
		if p.Primary != tt.want {
			t.Errorf("%q: Primary = %q, want %q", tt.text, p.Primary, tt.want)
		}
		if p.Secondary != nil {
			t.Errorf("%q: Secondary = %v, want nil", tt.text, *p.Secondary)
		}
	}
}

func TestParseTextIncomplete(t *testing.T) {
	_, err := ParseText("Dominance: 40\nInfluence: 30")
	if !errors.Is(err, ErrIncomplete) {
		t.Fatalf("error = %v, want ErrIncomplete", err)
	}
}

func TestParseTextOutOfRange(t *testing.T) {
	if _, err := ParseText("D: 140 I: 20 S: 30 C: 10"); err == nil {
		t.Fatal("expected validation error for score above 100")
	}
}

func TestParseFileText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	if err := os.WriteFile(path, []byte("D score: 20\nI score: 30\nS score: 80\nC score: 75\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if p.Primary != disc.Steadiness || p.C != 75 {
		t.Errorf("profile = %+v", p)
	}
}

func TestParseFileMissingPDF(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Fatal("expected error for missing pdf")
	}
}
