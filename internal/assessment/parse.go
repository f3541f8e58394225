// Package assessment turns DiSC assessment reports into validated style
// profiles. Reports may be plain text or PDF.
package assessment

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kalambet/teamfit/internal/disc"
)

// ErrIncomplete is returned when a report does not carry all four scores.
var ErrIncomplete = errors.New("assessment report incomplete")

const stylePattern = `dominance|influence|steadiness|conscientiousness|[disc]`

var (
	scoreRe     = regexp.MustCompile(`(?i)\b(` + stylePattern + `)\s*(?:score)?\s*:\s*(\d{1,3})\b`)
	primaryRe   = regexp.MustCompile(`(?i)\bprimary(?:\s+style)?\s*:\s*(` + stylePattern + `)\b`)
	secondaryRe = regexp.MustCompile(`(?i)\bsecondary(?:\s+style)?\s*:\s*(` + stylePattern + `)\b`)
)

// ParseText extracts a profile from report text. When the report does not
// state a primary style, the highest score wins, ties going to the earlier
// style in D, I, S, C order. A stated primary is kept as reported.
func ParseText(text string) (disc.StyleProfile, error) {
	var p disc.StyleProfile
	seen := map[disc.Style]bool{}

	for _, m := range scoreRe.FindAllStringSubmatch(text, -1) {
		s, err := styleFromWord(m[1])
		if err != nil {
			continue
		}
		if seen[s] {
			continue
		}
		v, err := strconv.Atoi(m[2])
		if err != nil {
			return disc.StyleProfile{}, fmt.Errorf("parsing %s score: %w", s, err)
		}
		setScore(&p, s, v)
		seen[s] = true
	}

	var missing []string
	for _, s := range disc.Styles {
		if !seen[s] {
			missing = append(missing, string(s))
		}
	}
	if len(missing) > 0 {
		return disc.StyleProfile{}, fmt.Errorf("%w: missing %s scores", ErrIncomplete, strings.Join(missing, ", "))
	}

	if m := primaryRe.FindStringSubmatch(text); m != nil {
		s, err := styleFromWord(m[1])
		if err != nil {
			return disc.StyleProfile{}, err
		}
		p.Primary = s
	} else {
		p.Primary = highest(p)
	}

	if m := secondaryRe.FindStringSubmatch(text); m != nil {
		s, err := styleFromWord(m[1])
		if err != nil {
			return disc.StyleProfile{}, err
		}
		p.Secondary = &s
	}

	if err := p.Validate(); err != nil {
		return disc.StyleProfile{}, fmt.Errorf("invalid assessment: %w", err)
	}
	return p, nil
}

// ParseFile reads a report from path. Files ending in .pdf go through PDF
// text extraction; anything else is read as text.
func ParseFile(path string) (disc.StyleProfile, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err := pdfText(path)
		if err != nil {
			return disc.StyleProfile{}, err
		}
		return ParseText(text)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return disc.StyleProfile{}, fmt.Errorf("reading assessment: %w", err)
	}
	return ParseText(string(data))
}

func pdfText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	rd, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rd); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return buf.String(), nil
}

func styleFromWord(w string) (disc.Style, error) {
	switch strings.ToLower(w) {
	case "dominance":
		return disc.Dominance, nil
	case "influence":
		return disc.Influence, nil
	case "steadiness":
		return disc.Steadiness, nil
	case "conscientiousness":
		return disc.Conscientiousness, nil
	}
	return disc.ParseStyle(w)
}

func setScore(p *disc.StyleProfile, s disc.Style, v int) {
	switch s {
	case disc.Dominance:
		p.D = v
	case disc.Influence:
		p.I = v
	case disc.Steadiness:
		p.S = v
	case disc.Conscientiousness:
		p.C = v
	}
}

func highest(p disc.StyleProfile) disc.Style {
	best := disc.Styles[0]
	for _, s := range disc.Styles[1:] {
		if p.Score(s) > p.Score(best) {
			best = s
		}
	}
	return best
}
