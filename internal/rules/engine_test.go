package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"reflect"
	"strings"
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

func rule(id string, typ Type, sev Severity, conditions string) Rule {
	return Rule{
		ID:          id,
		Name:        "rule " + id,
		Description: "description " + id,
		Type:        typ,
		Severity:    sev,
		Active:      true,
		Conditions:  json.RawMessage(conditions),
	}
}

func quietEngine() *Engine {
	return NewEngine(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

func TestCompositionTriggersOnceForMultipleViolations(t *testing.T) {
	r := roster(t, member("a", disc.Dominance), member("b", disc.Dominance), member("c", disc.Dominance))
	rl := rule("comp", TypeComposition, SeverityWarning, `{"min_styles":2,"max_same_style":1,"min_team_size":2}`)

	rep := quietEngine().Evaluate(r, []Rule{rl})
	want := []Finding{{RuleID: "comp", RuleName: "rule comp", Severity: SeverityWarning, Message: "description comp"}}
	if !reflect.DeepEqual(rep.Findings, want) {
		t.Errorf("Findings = %+v, want %+v", rep.Findings, want)
	}

	cond, err := rl.Condition()
	if err != nil {
		t.Fatal(err)
	}
	got := cond.(Composition).Violations(r)
	if !reflect.DeepEqual(got, []Violation{ViolationMinStyles, ViolationMaxSameStyle}) {
		t.Errorf("Violations = %v", got)
	}
}

func TestCompositionGatesOnRawRosterSize(t *testing.T) {
	rl := rule("comp", TypeComposition, SeverityCritical, `{"min_styles":3,"max_same_style":5,"min_team_size":3}`)

	small := roster(t, member("a", disc.Dominance), member("b", disc.Influence))
	if rep := quietEngine().Evaluate(small, []Rule{rl}); len(rep.Findings) != 0 {
		t.Errorf("rule below min_team_size triggered: %+v", rep.Findings)
	}

	// Unprofiled members count toward the size gate.
	padded := roster(t, member("a", disc.Dominance), member("b", disc.Influence), team.Member{ID: "x"})
	if rep := quietEngine().Evaluate(padded, []Rule{rl}); len(rep.Findings) != 1 {
		t.Errorf("expected one finding once the gate is met, got %+v", rep.Findings)
	}
}

func TestCompositionRequiredStyle(t *testing.T) {
	rl := rule("req", TypeComposition, SeverityInfo, `{"min_styles":0,"max_same_style":10,"required_style":"C","min_team_size":0}`)
	withoutC := roster(t, member("a", disc.Dominance), member("b", disc.Influence))
	withC := roster(t, member("a", disc.Dominance), member("b", disc.Conscientiousness))

	if rep := quietEngine().Evaluate(withoutC, []Rule{rl}); len(rep.Findings) != 1 {
		t.Errorf("missing required style did not trigger: %+v", rep)
	}
	if rep := quietEngine().Evaluate(withC, []Rule{rl}); len(rep.Findings) != 0 {
		t.Errorf("satisfied rule triggered: %+v", rep)
	}
}

func TestCompositionSatisfied(t *testing.T) {
	rl := rule("ok", TypeComposition, SeverityWarning, `{"min_styles":2,"max_same_style":2,"min_team_size":2}`)
	r := roster(t, member("a", disc.Dominance), member("b", disc.Influence), member("c", disc.Dominance))
	if rep := quietEngine().Evaluate(r, []Rule{rl}); len(rep.Findings) != 0 {
		t.Errorf("unexpected findings: %+v", rep.Findings)
	}
}

func TestPairing(t *testing.T) {
	dc := rule("dc", TypePairing, SeverityWarning, `{"style1":"D","style2":"C"}`)
	cd := rule("cd", TypePairing, SeverityWarning, `{"style1":"c","style2":"d"}`)

	onlyIS := roster(t, member("a", disc.Influence), member("b", disc.Steadiness))
	if rep := quietEngine().Evaluate(onlyIS, []Rule{dc, cd}); len(rep.Findings) != 0 {
		t.Errorf("pairing triggered without either style: %+v", rep.Findings)
	}

	both := roster(t, member("a", disc.Conscientiousness), member("b", disc.Dominance))
	rep := quietEngine().Evaluate(both, []Rule{dc, cd})
	if len(rep.Findings) != 2 || rep.Findings[0].RuleID != "dc" || rep.Findings[1].RuleID != "cd" {
		t.Errorf("Findings = %+v, want dc then cd", rep.Findings)
	}

	oneSide := roster(t, member("a", disc.Dominance), member("b", disc.Dominance))
	if rep := quietEngine().Evaluate(oneSide, []Rule{dc}); len(rep.Findings) != 0 {
		t.Errorf("pairing triggered with only one style: %+v", rep.Findings)
	}
}

func TestPairingSameStyle(t *testing.T) {
	dd := rule("dd", TypePairing, SeverityInfo, `{"style1":"D","style2":"D"}`)
	r := roster(t, member("a", disc.Dominance), member("b", disc.Influence))
	if rep := quietEngine().Evaluate(r, []Rule{dd}); len(rep.Findings) != 1 {
		t.Errorf("same-style pairing with one D = %+v, want 1 finding", rep.Findings)
	}
}

func TestSkillGapSizeGate(t *testing.T) {
	rl := rule("gap", TypeSkillGap, SeverityInfo, `{"min_team_size":3}`)
	two := roster(t, team.Member{ID: "a"}, team.Member{ID: "b"})
	three := roster(t, team.Member{ID: "a"}, team.Member{ID: "b"}, team.Member{ID: "c"})

	if rep := quietEngine().Evaluate(two, []Rule{rl}); len(rep.Findings) != 0 {
		t.Errorf("skill gap fired below size: %+v", rep.Findings)
	}
	if rep := quietEngine().Evaluate(three, []Rule{rl}); len(rep.Findings) != 1 {
		t.Errorf("skill gap did not fire at size: %+v", rep.Findings)
	}
}

func TestInactiveRulesSkippedSilently(t *testing.T) {
	rl := rule("off", TypeSkillGap, SeverityInfo, `{"min_team_size":0}`)
	rl.Active = false
	broken := rule("off-broken", TypePairing, SeverityInfo, `not json`)
	broken.Active = false

	rep := quietEngine().Evaluate(roster(t, team.Member{ID: "a"}), []Rule{rl, broken})
	if len(rep.Findings) != 0 || len(rep.Skipped) != 0 {
		t.Errorf("inactive rules affected report: %+v", rep)
	}
}

func TestMalformedRulesDoNotBlockOthers(t *testing.T) {
	var logs bytes.Buffer
	e := NewEngine(slog.New(slog.NewTextHandler(&logs, nil)))

	rs := []Rule{
		rule("bad-json", TypePairing, SeverityWarning, `{"style1":`),
		rule("bad-style", TypePairing, SeverityWarning, `{"style1":"X","style2":"D"}`),
		rule("wrong-shape", TypeComposition, SeverityWarning, `{"style1":"D","style2":"C"}`),
		rule("unknown-type", Type("headcount"), SeverityWarning, `{}`),
		rule("good", TypeSkillGap, SeverityCritical, `{"min_team_size":1}`),
	}
	rep := e.Evaluate(roster(t, member("a", disc.Dominance)), rs)

	if len(rep.Findings) != 1 || rep.Findings[0].RuleID != "good" {
		t.Errorf("Findings = %+v, want only the good rule", rep.Findings)
	}
	var skipped []string
	for _, s := range rep.Skipped {
		skipped = append(skipped, s.RuleID)
		if s.Reason == "" {
			t.Errorf("skipped rule %s has no reason", s.RuleID)
		}
	}
	want := []string{"bad-json", "bad-style", "wrong-shape", "unknown-type"}
	if !reflect.DeepEqual(skipped, want) {
		t.Errorf("Skipped = %v, want %v", skipped, want)
	}
	if !strings.Contains(logs.String(), "rule_id=unknown-type") {
		t.Errorf("expected anomaly log for unknown-type, got:\n%s", logs.String())
	}
}

func TestEvaluatePreservesRuleOrder(t *testing.T) {
	rs := []Rule{
		rule("1", TypeSkillGap, SeveritySuccess, `{"min_team_size":0}`),
		rule("2", TypeSkillGap, SeverityCritical, `{"min_team_size":0}`),
		rule("3", TypeSkillGap, SeverityInfo, `{"min_team_size":0}`),
	}
	rep := quietEngine().Evaluate(roster(t), rs)
	var ids []string
	for _, f := range rep.Findings {
		ids = append(ids, f.RuleID)
	}
	if !reflect.DeepEqual(ids, []string{"1", "2", "3"}) {
		t.Errorf("finding order = %v", ids)
	}

	SortBySeverity(rep.Findings)
	ids = ids[:0]
	for _, f := range rep.Findings {
		ids = append(ids, f.RuleID)
	}
	if !reflect.DeepEqual(ids, []string{"2", "3", "1"}) {
		t.Errorf("sorted order = %v, want critical, info, success", ids)
	}
}

func TestEvaluateIdempotentAndDoesNotMutateRules(t *testing.T) {
	rs := []Rule{
		rule("comp", TypeComposition, SeverityWarning, `{"min_styles":4,"max_same_style":1,"min_team_size":1}`),
		rule("pair", TypePairing, SeverityInfo, `{"style1":"D","style2":"S"}`),
	}
	before := make([]Rule, len(rs))
	for i, r := range rs {
		before[i] = r
		before[i].Conditions = append(json.RawMessage{}, r.Conditions...)
	}
	r := roster(t, member("a", disc.Dominance), member("b", disc.Steadiness))

	e := quietEngine()
	first := e.Evaluate(r, rs)
	second := e.Evaluate(r, rs)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated evaluation differs:\n  %+v\n  %+v", first, second)
	}
	if !reflect.DeepEqual(before, rs) {
		t.Error("Evaluate modified the rule slice")
	}
}

func TestDecodeConditions(t *testing.T) {
	tests := []struct {
		name    string
		typ     Type
		raw     string
		want    Condition
		wantErr error
	}{
		{"composition", TypeComposition, `{"min_styles":2,"max_same_style":3,"min_team_size":4}`,
			Composition{MinStyles: 2, MaxSameStyle: 3, MinTeamSize: 4}, nil},
		{"composition missing field", TypeComposition, `{"min_styles":2,"min_team_size":4}`, nil, ErrMalformedConditions},
		{"composition negative", TypeComposition, `{"min_styles":-1,"max_same_style":3,"min_team_size":4}`, nil, ErrMalformedConditions},
		{"composition too many styles", TypeComposition, `{"min_styles":5,"max_same_style":3,"min_team_size":4}`, nil, ErrMalformedConditions},
		{"composition string count", TypeComposition, `{"min_styles":"2","max_same_style":3,"min_team_size":4}`, nil, ErrMalformedConditions},
		{"pairing", TypePairing, `{"style1":"i","style2":"S"}`, Pairing{Style1: disc.Influence, Style2: disc.Steadiness}, nil},
		{"pairing missing style", TypePairing, `{"style1":"D"}`, nil, ErrMalformedConditions},
		{"pairing extra field", TypePairing, `{"style1":"D","style2":"C","weight":2}`, nil, ErrMalformedConditions},
		{"skill gap", TypeSkillGap, `{"min_team_size":5}`, SkillGap{MinTeamSize: 5}, nil},
		{"skill gap empty", TypeSkillGap, ``, nil, ErrMalformedConditions},
		{"skill gap null", TypeSkillGap, `null`, nil, ErrMalformedConditions},
		{"unknown type", Type("nope"), `{}`, nil, ErrUnknownType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeConditions(tt.typ, json.RawMessage(tt.raw))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRuleValidate(t *testing.T) {
	ok := rule("a", TypePairing, SeverityWarning, `{"style1":"D","style2":"S"}`)
	if err := ok.Validate(); err != nil {
		t.Errorf("valid rule: %v", err)
	}

	noName := ok
	noName.Name = " "
	if err := noName.Validate(); err == nil {
		t.Error("expected error for missing name")
	}

	badSev := ok
	badSev.Severity = "urgent"
	if err := badSev.Validate(); !errors.Is(err, ErrUnknownSeverity) {
		t.Errorf("error = %v, want ErrUnknownSeverity", err)
	}

	badCond := ok
	badCond.Conditions = json.RawMessage(`{"style1":"D"}`)
	if err := badCond.Validate(); !errors.Is(err, ErrMalformedConditions) {
		t.Errorf("error = %v, want ErrMalformedConditions", err)
	}
}

func TestEncodeConditionsRoundTrip(t *testing.T) {
	req := disc.Steadiness
	c := Composition{MinStyles: 3, MaxSameStyle: 2, RequiredStyle: &req, MinTeamSize: 4}
	raw, err := EncodeConditions(c)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeConditions(TypeComposition, raw)
	if err != nil {
		t.Fatalf("decode: %v (raw %s)", err, raw)
	}
	if !reflect.DeepEqual(got, c) {
		t.Errorf("got %+v, want %+v", got, c)
	}
}

func TestParseRuleFile(t *testing.T) {
	src := `rules:
  - name: Balanced team
    description: Teams of four or more need three styles
    rule_type: composition
    severity: warning
    conditions:
      min_styles: 3
      max_same_style: 2
      min_team_size: 4
  - name: D-S friction
    description: Watch D-S communication
    rule_type: pairing
    severity: info
    is_active: false
    conditions:
      style1: D
      style2: S
`
	rs, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rs) != 2 {
		t.Fatalf("len = %d, want 2", len(rs))
	}
	if !rs[0].Active || rs[1].Active {
		t.Errorf("active flags = %v, %v", rs[0].Active, rs[1].Active)
	}
	cond, err := rs[0].Condition()
	if err != nil {
		t.Fatal(err)
	}
	if cond != (Composition{MinStyles: 3, MaxSameStyle: 2, MinTeamSize: 4}) {
		t.Errorf("condition = %+v", cond)
	}

	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := WriteFile(path, rs); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	again, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	for i := range rs {
		a, _ := rs[i].Condition()
		b, _ := again[i].Condition()
		if !reflect.DeepEqual(a, b) || rs[i].Name != again[i].Name || rs[i].Active != again[i].Active {
			t.Errorf("rule %d changed across write/load: %+v vs %+v", i, rs[i], again[i])
		}
	}
}

func TestParseRuleFileRejectsInvalid(t *testing.T) {
	src := `rules:
  - name: Bad
    rule_type: pairing
    severity: warning
    conditions:
      style1: Q
      style2: D
`
	if _, err := Parse(strings.NewReader(src)); !errors.Is(err, ErrMalformedConditions) {
		t.Errorf("error = %v, want ErrMalformedConditions", err)
	}
}
