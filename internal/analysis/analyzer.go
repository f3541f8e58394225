// Package analysis computes live team compatibility from the DiSC profiles on
// a roster: the average pairwise score, the style distribution and a fixed set
// of qualitative strengths and warnings.
package analysis

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kalambet/teamfit/internal/disc"
	"github.com/kalambet/teamfit/internal/team"
)

// Scorer returns the compatibility of two primary styles. disc.Matrix
// satisfies it.
type Scorer interface {
	Score(a, b disc.Style) int
}

// Result is the analysis of one roster snapshot.
type Result struct {
	AverageScore        int               `json:"average_score"`
	Distribution        team.Distribution `json:"distribution"`
	Strengths           []string          `json:"strengths"`
	Warnings            []string          `json:"warnings"`
	ProfiledMemberCount int               `json:"profiled_member_count"`
	MemberCount         int               `json:"member_count"`
	PairCount           int               `json:"pair_count"`
}

func (r Result) clone() Result {
	r.Distribution = r.Distribution.Clone()
	r.Strengths = append([]string{}, r.Strengths...)
	r.Warnings = append([]string{}, r.Warnings...)
	return r
}

// Analyze scores every unordered pair of profiled members exactly once.
// It returns nil when fewer than two members carry a profile, since an
// average over zero pairs is not a score.
func Analyze(r team.Roster, scorer Scorer) *Result {
	profiled := r.Profiled()
	n := len(profiled)
	if r.Size() < 2 || n < 2 {
		return nil
	}

	dist := r.Distribution()

	sum, pairs := 0, 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sum += scorePair(scorer, profiled[i].Profile.Primary, profiled[j].Profile.Primary)
			pairs++
		}
	}

	return &Result{
		AverageScore:        roundHalfUp(sum, pairs),
		Distribution:        dist,
		Strengths:           strengths(dist),
		Warnings:            warnings(dist, n),
		ProfiledMemberCount: n,
		MemberCount:         r.Size(),
		PairCount:           pairs,
	}
}

// scorePair looks a pair up in canonical style order so that the result does
// not depend on which member was added first, even for a matrix whose
// entries are not symmetric.
func scorePair(scorer Scorer, a, b disc.Style) int {
	if b.Index() < a.Index() {
		a, b = b, a
	}
	return scorer.Score(a, b)
}

// roundHalfUp returns sum/count rounded to the nearest integer, with exact
// halves rounded up. Inputs are non-negative.
func roundHalfUp(sum, count int) int {
	return (2*sum + count) / (2 * count)
}

func warnings(d team.Distribution, profiled int) []string {
	out := []string{}
	for _, s := range disc.Styles {
		// count/profiled > 0.4, kept in integers.
		if c := d[s]; c >= 2 && c*5 > profiled*2 {
			out = append(out, fmt.Sprintf("High %s concentration may cause power struggles", s))
		}
	}
	if missing := d.Missing(); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, s := range missing {
			names[i] = string(s)
		}
		out = append(out, fmt.Sprintf("Missing %s style perspectives", strings.Join(names, ", ")))
	}
	if d.Present(disc.Dominance) && d.Present(disc.Steadiness) {
		out = append(out, "D-S pairing may need extra communication support")
	}
	return out
}

func strengths(d team.Distribution) []string {
	out := []string{}
	if d.Present(disc.Dominance) && d.Present(disc.Conscientiousness) {
		out = append(out, "Strong D-C pairing for decisive quality execution")
	}
	if d.Present(disc.Influence) && d.Present(disc.Steadiness) {
		out = append(out, "i-S combo creates excellent team cohesion")
	}
	if d.Distinct() == len(disc.Styles) {
		out = append(out, "All four styles represented - balanced perspective")
	}
	if d[disc.Influence] >= 2 {
		out = append(out, "Strong influence presence for stakeholder engagement")
	}
	return out
}

// Analyzer memoizes Analyze results per roster fingerprint. Results do not
// depend on member order, so permutations of a roster share one entry.
type Analyzer struct {
	scorer Scorer
	cache  *lru.Cache[string, *Result]
	logger *slog.Logger
}

// NewAnalyzer creates an Analyzer. A cacheSize of 0 disables memoization.
func NewAnalyzer(scorer Scorer, cacheSize int) (*Analyzer, error) {
	a := &Analyzer{scorer: scorer, logger: slog.Default()}
	if cacheSize > 0 {
		c, err := lru.New[string, *Result](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating analysis cache: %w", err)
		}
		a.cache = c
	}
	return a, nil
}

// Analyze returns the analysis for r, or nil when there is not enough
// profile data. The returned value is never shared with the cache.
func (a *Analyzer) Analyze(r team.Roster) *Result {
	if a.cache == nil {
		return Analyze(r, a.scorer)
	}

	key := fingerprint(r)
	if cached, ok := a.cache.Get(key); ok {
		a.logger.Debug("analysis cache hit", "members", r.Size())
		return copyResult(cached)
	}

	res := Analyze(r, a.scorer)
	a.cache.Add(key, copyResult(res))
	return res
}

func copyResult(r *Result) *Result {
	if r == nil {
		return nil
	}
	c := r.clone()
	return &c
}

// fingerprint identifies a roster by its members' IDs and primary styles,
// independent of order.
func fingerprint(r team.Roster) string {
	members := r.Members()
	parts := make([]string, len(members))
	for i, m := range members {
		primary := "-"
		if m.Profile != nil {
			primary = string(m.Profile.Primary)
		}
		parts[i] = m.ID + "=" + primary
	}
	sort.Strings(parts)
	return strings.Join(parts, "\x00")
}
