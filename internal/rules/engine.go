package rules

import (
	"log/slog"
	"slices"

	"github.com/kalambet/teamfit/internal/team"
)

// Finding is one triggered rule. Findings are not persisted here.
type Finding struct {
	RuleID   string   `json:"rule_id"`
	RuleName string   `json:"rule_name"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Skipped records an active rule that could not be evaluated.
type Skipped struct {
	RuleID string `json:"rule_id"`
	Reason string `json:"reason"`
}

// Report is the result of evaluating a rule set against one roster.
type Report struct {
	Findings []Finding `json:"findings"`
	Skipped  []Skipped `json:"skipped"`
}

// Engine evaluates rules. It holds no state between calls.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an Engine that logs skipped rules to logger. A nil
// logger uses slog.Default().
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Evaluate runs every active rule against r. Findings keep the order of
// rules; a rule whose conditions cannot be decoded is reported in Skipped
// and does not stop the others.
func (e *Engine) Evaluate(r team.Roster, rules []Rule) Report {
	rep := Report{Findings: []Finding{}, Skipped: []Skipped{}}
	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		cond, err := rule.Condition()
		if err != nil {
			e.logger.Warn("skipping rule", "rule_id", rule.ID, "rule_type", rule.Type, "reason", err)
			rep.Skipped = append(rep.Skipped, Skipped{RuleID: rule.ID, Reason: err.Error()})
			continue
		}
		if !Triggered(cond, r) {
			continue
		}
		rep.Findings = append(rep.Findings, Finding{
			RuleID:   rule.ID,
			RuleName: rule.Name,
			Severity: rule.Severity,
			Message:  rule.Description,
		})
	}
	return rep
}

// SortBySeverity orders findings highest severity first, keeping rule order
// within a severity.
func SortBySeverity(findings []Finding) {
	slices.SortStableFunc(findings, func(a, b Finding) int {
		return b.Severity.Rank() - a.Severity.Rank()
	})
}
