package analysis

import (
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/kalambet/teamfit/internal/disc"
	"github.com/kalambet/teamfit/internal/team"
)

func member(id string, s disc.Style) team.Member {
	return team.Member{ID: id, Profile: &disc.StyleProfile{Primary: s}}
}

func roster(t *testing.T, members ...team.Member) team.Roster {
	t.Helper()
	r, err := team.NewRoster(members...)
	if err != nil {
		t.Fatalf("NewRoster: %v", err)
	}
	return r
}

type countingScorer struct {
	inner disc.Matrix
	calls int
}

func (c *countingScorer) Score(a, b disc.Style) int {
	c.calls++
	return c.inner.Score(a, b)
}

func TestAnalyzeInsufficientData(t *testing.T) {
	tests := []struct {
		name    string
		members []team.Member
	}{
		{"empty", nil},
		{"single profiled", []team.Member{member("a", disc.Dominance)}},
		{"one profiled one not", []team.Member{member("a", disc.Dominance), {ID: "b"}}},
		{"none profiled", []team.Member{{ID: "a"}, {ID: "b"}, {ID: "c"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Analyze(roster(t, tt.members...), disc.DefaultMatrix); got != nil {
				t.Errorf("Analyze = %+v, want nil", got)
			}
		})
	}
}

func TestAnalyzeDSPair(t *testing.T) {
	got := Analyze(roster(t, member("a", disc.Dominance), member("b", disc.Steadiness)), disc.DefaultMatrix)
	if got == nil {
		t.Fatal("Analyze returned nil")
	}
	want := &Result{
		AverageScore: 60,
		Distribution: team.Distribution{disc.Dominance: 1, disc.Influence: 0, disc.Steadiness: 1, disc.Conscientiousness: 0},
		Strengths:    []string{},
		Warnings: []string{
			"Missing I, C style perspectives",
			"D-S pairing may need extra communication support",
		},
		ProfiledMemberCount: 2,
		MemberCount:         2,
		PairCount:           1,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Analyze =\n  %+v\nwant\n  %+v", got, want)
	}
}

func TestAnalyzeAllFourStyles(t *testing.T) {
	got := Analyze(roster(t,
		member("d", disc.Dominance),
		member("i", disc.Influence),
		member("s", disc.Steadiness),
		member("c", disc.Conscientiousness),
	), disc.DefaultMatrix)
	if got == nil {
		t.Fatal("Analyze returned nil")
	}
	// 75 + 60 + 85 + 90 + 55 + 85 = 450 over 6 pairs.
	if got.AverageScore != 75 {
		t.Errorf("AverageScore = %d, want 75", got.AverageScore)
	}
	if got.PairCount != 6 {
		t.Errorf("PairCount = %d, want 6", got.PairCount)
	}
	wantStrengths := []string{
		"Strong D-C pairing for decisive quality execution",
		"i-S combo creates excellent team cohesion",
		"All four styles represented - balanced perspective",
	}
	if !reflect.DeepEqual(got.Strengths, wantStrengths) {
		t.Errorf("Strengths = %v, want %v", got.Strengths, wantStrengths)
	}
	if !reflect.DeepEqual(got.Warnings, []string{"D-S pairing may need extra communication support"}) {
		t.Errorf("Warnings = %v", got.Warnings)
	}
}

func TestAnalyzeConcentrationWarnings(t *testing.T) {
	// 3 of 5 are D (0.6), 2 of 5 are I (exactly 0.4, not above).
	got := Analyze(roster(t,
		member("1", disc.Dominance),
		member("2", disc.Dominance),
		member("3", disc.Dominance),
		member("4", disc.Influence),
		member("5", disc.Influence),
	), disc.DefaultMatrix)
	want := []string{
		"High D concentration may cause power struggles",
		"Missing S, C style perspectives",
	}
	if !reflect.DeepEqual(got.Warnings, want) {
		t.Errorf("Warnings = %v, want %v", got.Warnings, want)
	}
	if !reflect.DeepEqual(got.Strengths, []string{"Strong influence presence for stakeholder engagement"}) {
		t.Errorf("Strengths = %v", got.Strengths)
	}
}

func TestAnalyzeConcentrationNeedsTwoMembers(t *testing.T) {
	// With two profiled members each style is 0.5, but a count of 1 never
	// counts as a concentration.
	got := Analyze(roster(t, member("a", disc.Influence), member("b", disc.Conscientiousness)), disc.DefaultMatrix)
	for _, w := range got.Warnings {
		if w == "High I concentration may cause power struggles" || w == "High C concentration may cause power struggles" {
			t.Errorf("unexpected warning %q", w)
		}
	}
}

func TestAnalyzeUnprofiledMembersExcluded(t *testing.T) {
	got := Analyze(roster(t,
		member("a", disc.Influence),
		team.Member{ID: "x"},
		member("b", disc.Steadiness),
		team.Member{ID: "y"},
	), disc.DefaultMatrix)
	if got == nil {
		t.Fatal("Analyze returned nil")
	}
	if got.ProfiledMemberCount != 2 || got.MemberCount != 4 {
		t.Errorf("counts = %d profiled / %d total, want 2 / 4", got.ProfiledMemberCount, got.MemberCount)
	}
	if got.AverageScore != 90 {
		t.Errorf("AverageScore = %d, want 90", got.AverageScore)
	}
}

func TestAnalyzeRoundsHalfUp(t *testing.T) {
	tests := []struct {
		di   int
		want int
	}{
		{0, 0},
		{1, 0},  // 1/6
		{3, 1},  // 0.5
		{9, 2},  // 1.5
		{15, 3}, // 2.5
		{4, 1},  // 0.67
	}
	for _, tt := range tests {
		var m disc.Matrix
		m[0][1] = tt.di
		got := Analyze(roster(t,
			member("d", disc.Dominance),
			member("i", disc.Influence),
			member("s", disc.Steadiness),
			member("c", disc.Conscientiousness),
		), m)
		if got.AverageScore != tt.want {
			t.Errorf("D-I=%d: AverageScore = %d, want %d", tt.di, got.AverageScore, tt.want)
		}
	}
}

func TestAnalyzeScoresEachPairOnce(t *testing.T) {
	for n := 2; n <= 12; n++ {
		members := make([]team.Member, n)
		for i := range members {
			members[i] = member(string(rune('a'+i)), disc.Styles[i%4])
		}
		s := &countingScorer{inner: disc.DefaultMatrix}
		Analyze(roster(t, members...), s)
		if want := n * (n - 1) / 2; s.calls != want {
			t.Errorf("n=%d: Score called %d times, want %d", n, s.calls, want)
		}
	}
}

func TestAnalyzePermutationInvariant(t *testing.T) {
	asym := disc.DefaultMatrix
	asym[0][2], asym[2][0] = 10, 95

	rng := rand.New(rand.NewPCG(1, 2))
	for trial := 0; trial < 50; trial++ {
		n := 2 + rng.IntN(15)
		members := make([]team.Member, n)
		for i := range members {
			if rng.IntN(5) == 0 {
				members[i] = team.Member{ID: string(rune('A' + i))}
				continue
			}
			members[i] = member(string(rune('A'+i)), disc.Styles[rng.IntN(4)])
		}
		shuffled := append([]team.Member{}, members...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		for _, m := range []disc.Matrix{disc.DefaultMatrix, asym} {
			a := Analyze(roster(t, members...), m)
			b := Analyze(roster(t, shuffled...), m)
			if !reflect.DeepEqual(a, b) {
				t.Fatalf("trial %d: results differ under permutation:\n  %+v\n  %+v", trial, a, b)
			}
			if a != nil && (a.AverageScore < 0 || a.AverageScore > 100) {
				t.Fatalf("trial %d: AverageScore %d outside [0,100]", trial, a.AverageScore)
			}
		}
	}
}

func TestAnalyzeMissingStylesCanonicalOrder(t *testing.T) {
	got := Analyze(roster(t, member("a", disc.Steadiness), member("b", disc.Influence)), disc.DefaultMatrix)
	if got.Warnings[0] != "Missing D, C style perspectives" {
		t.Errorf("Warnings[0] = %q", got.Warnings[0])
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	r := roster(t, member("a", disc.Dominance), member("b", disc.Conscientiousness), member("c", disc.Influence))
	if !reflect.DeepEqual(Analyze(r, disc.DefaultMatrix), Analyze(r, disc.DefaultMatrix)) {
		t.Error("repeated Analyze calls differ")
	}
}

func TestAnalyzerCache(t *testing.T) {
	s := &countingScorer{inner: disc.DefaultMatrix}
	a, err := NewAnalyzer(s, 8)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}

	r1 := roster(t, member("a", disc.Dominance), member("b", disc.Steadiness), member("c", disc.Influence))
	r2 := roster(t, member("c", disc.Influence), member("a", disc.Dominance), member("b", disc.Steadiness))

	first := a.Analyze(r1)
	if s.calls != 3 {
		t.Fatalf("calls after first Analyze = %d, want 3", s.calls)
	}
	second := a.Analyze(r2)
	if s.calls != 3 {
		t.Errorf("permuted roster missed the cache: calls = %d", s.calls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached result differs: %+v vs %+v", first, second)
	}

	// Mutating a returned result must not leak into the cache.
	second.Warnings[0] = "tampered"
	second.Distribution[disc.Dominance] = 99
	third := a.Analyze(r1)
	if third.Warnings[0] == "tampered" || third.Distribution[disc.Dominance] == 99 {
		t.Error("cache entry was mutated through a returned result")
	}
}

func TestAnalyzerCachesInsufficientData(t *testing.T) {
	a, err := NewAnalyzer(disc.DefaultMatrix, 4)
	if err != nil {
		t.Fatal(err)
	}
	r := roster(t, member("a", disc.Dominance))
	if a.Analyze(r) != nil || a.Analyze(r) != nil {
		t.Error("expected nil for a single-member roster")
	}
}

func TestAnalyzerWithoutCache(t *testing.T) {
	a, err := NewAnalyzer(disc.DefaultMatrix, 0)
	if err != nil {
		t.Fatal(err)
	}
	got := a.Analyze(roster(t, member("a", disc.Dominance), member("b", disc.Conscientiousness)))
	if got == nil || got.AverageScore != 85 {
		t.Errorf("Analyze = %+v, want average 85", got)
	}
}
