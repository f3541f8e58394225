package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/teamfit/internal/analysis"
	"github.com/kalambet/teamfit/internal/assessment"
	"github.com/kalambet/teamfit/internal/config"
	"github.com/kalambet/teamfit/internal/disc"
	"github.com/kalambet/teamfit/internal/rules"
	"github.com/kalambet/teamfit/internal/storage"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// withClient adapts a client-taking command body to cobra's RunE.
func withClient(fn func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		return fn(cmd.Context(), client, cmd, args)
	}
}

// --- consultants ---

var consultantsCmd = &cobra.Command{
	Use:     "consultants",
	Aliases: []string{"consultant"},
	Short:   "Manage consultants and their DiSC profiles",
}

var consultantsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List consultants",
	RunE: withClient(func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return listConsultants(ctx, c, os.Stdout, limit)
	}),
}

func listConsultants(ctx context.Context, c *apiClient, w io.Writer, limit int) error {
	resp, err := c.get(ctx, fmt.Sprintf("/consultants?limit=%d", limit))
	if err != nil {
		return err
	}
	var consultants []storage.Consultant
	if err := decodeJSON(resp, &consultants); err != nil {
		return err
	}
	if len(consultants) == 0 {
		fmt.Fprintln(w, "No consultants found.")
		return nil
	}
	for _, con := range consultants {
		style := "-"
		if con.Profile != nil {
			style = string(con.Profile.Primary)
			if con.Profile.Secondary != nil {
				style += "/" + string(*con.Profile.Secondary)
			}
		}
		fmt.Fprintf(w, "%s  %-4s %s\n", colorize(colorCyan, con.ID), style, con.Name)
	}
	return nil
}

var consultantsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a consultant",
	Long: `Add a consultant, optionally with a DiSC profile read from an
assessment report (plain text or PDF).

Examples:
  teamfit consultants add "Ada Byron" --email ada@example.com
  teamfit consultants add "Ada Byron" --assessment ./ada-disc.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		title, _ := cmd.Flags().GetString("title")
		report, _ := cmd.Flags().GetString("assessment")

		req := map[string]any{"name": args[0], "email": email, "title": title}
		if report != "" {
			p, err := assessment.ParseFile(report)
			if err != nil {
				return err
			}
			req["style_profile"] = p
		}

		resp, err := c.post(ctx, "/consultants", req)
		if err != nil {
			return err
		}
		var con storage.Consultant
		if err := decodeJSON(resp, &con); err != nil {
			return err
		}
		printSuccess("Added consultant %s (%s)", con.Name, con.ID)
		return nil
	}),
}

var consultantsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a consultant as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error {
		resp, err := c.get(ctx, "/consultants/"+args[0])
		if err != nil {
			return err
		}
		var con storage.Consultant
		if err := decodeJSON(resp, &con); err != nil {
			return err
		}
		return printJSON(os.Stdout, con)
	}),
}

var consultantsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a consultant and remove them from every team",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error {
		resp, err := c.delete(ctx, "/consultants/"+args[0])
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, nil); err != nil {
			return err
		}
		printSuccess("Deleted consultant %s", args[0])
		return nil
	}),
}

var consultantsSetProfileCmd = &cobra.Command{
	Use:   "set-profile <id>",
	Short: "Record a DiSC profile for a consultant",
	Long: `Record a DiSC profile for a consultant.

Examples:
  teamfit consultants set-profile c-123 --primary D --secondary C --d 82 --i 40 --s 25 --c 70`,
	Args: cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error {
		p, err := profileFromFlags(cmd)
		if err != nil {
			return err
		}
		return setProfile(ctx, c, args[0], p)
	}),
}

var consultantsImportCmd = &cobra.Command{
	Use:   "import-assessment <id> <file>",
	Short: "Read a DiSC assessment report and record it as the consultant's profile",
	Args:  cobra.ExactArgs(2),
	RunE: withClient(func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error {
		p, err := assessment.ParseFile(args[1])
		if err != nil {
			return err
		}
		return setProfile(ctx, c, args[0], p)
	}),
}

func profileFromFlags(cmd *cobra.Command) (disc.StyleProfile, error) {
	primary, _ := cmd.Flags().GetString("primary")
	secondary, _ := cmd.Flags().GetString("secondary")

	var p disc.StyleProfile
	s, err := disc.ParseStyle(primary)
	if err != nil {
		return p, fmt.Errorf("--primary: %w", err)
	}
	p.Primary = s
	if secondary != "" {
		sec, err := disc.ParseStyle(secondary)
		if err != nil {
			return p, fmt.Errorf("--secondary: %w", err)
		}
		p.Secondary = &sec
	}
	p.D, _ = cmd.Flags().GetInt("d")
	p.I, _ = cmd.Flags().GetInt("i")
	p.S, _ = cmd.Flags().GetInt("s")
	p.C, _ = cmd.Flags().GetInt("c")
	return p, p.Validate()
}

func setProfile(ctx context.Context, c *apiClient, id string, p disc.StyleProfile) error {
	resp, err := c.put(ctx, "/consultants/"+id+"/profile", p)
	if err != nil {
		return err
	}
	var con storage.Consultant
	if err := decodeJSON(resp, &con); err != nil {
		return err
	}
	printSuccess("Profile for %s set to %s (%s)", con.Name, p.Primary, p.Primary.Name())
	return nil
}

func init() {
	consultantsListCmd.Flags().Int("limit", 50, "maximum number of consultants to list")

	consultantsAddCmd.Flags().String("email", "", "email address")
	consultantsAddCmd.Flags().String("title", "", "job title")
	consultantsAddCmd.Flags().String("assessment", "", "assessment report to read the profile from")

	consultantsSetProfileCmd.Flags().String("primary", "", "primary style (D, I, S or C)")
	consultantsSetProfileCmd.Flags().String("secondary", "", "secondary style")
	for _, dim := range []string{"d", "i", "s", "c"} {
		consultantsSetProfileCmd.Flags().Int(dim, 0, strings.ToUpper(dim)+" score (0-100)")
	}
	consultantsSetProfileCmd.MarkFlagRequired("primary")

	consultantsCmd.AddCommand(consultantsListCmd)
	consultantsCmd.AddCommand(consultantsAddCmd)
	consultantsCmd.AddCommand(consultantsShowCmd)
	consultantsCmd.AddCommand(consultantsDeleteCmd)
	consultantsCmd.AddCommand(consultantsSetProfileCmd)
	consultantsCmd.AddCommand(consultantsImportCmd)
}

// --- teams ---

var teamsCmd = &cobra.Command{
	Use:     "teams",
	Aliases: []string{"team"},
	Short:   "Build teams and analyze their compatibility",
}

type teamView struct {
	storage.Team
	Members []struct {
		ID      string             `json:"id"`
		Name    string             `json:"name"`
		Profile *disc.StyleProfile `json:"style_profile"`
	} `json:"members"`
}

type analysisView struct {
	Status string `json:"status"`
	analysis.Result
}

var teamsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List teams, newest first",
	RunE: withClient(func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		resp, err := c.get(ctx, fmt.Sprintf("/teams?limit=%d", limit))
		if err != nil {
			return err
		}
		var teams []storage.Team
		if err := decodeJSON(resp, &teams); err != nil {
			return err
		}
		if len(teams) == 0 {
			fmt.Println("No teams found.")
			return nil
		}
		for _, t := range teams {
			fmt.Printf("%s  %s  %s\n", colorize(colorCyan, t.ID), t.Name, t.Project)
		}
		return nil
	}),
}

var teamsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a team",
	Long: `Create a team, optionally with an initial roster.

Examples:
  teamfit teams create Apollo --project "Data platform" --target-size 5 --members c-1,c-2`,
	Args: cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		size, _ := cmd.Flags().GetInt("target-size")
		members, _ := cmd.Flags().GetString("members")

		req := map[string]any{
			"name":        args[0],
			"project":     project,
			"target_size": size,
			"member_ids":  splitList(members),
		}
		resp, err := c.post(ctx, "/teams", req)
		if err != nil {
			return err
		}
		var t teamView
		if err := decodeJSON(resp, &t); err != nil {
			return err
		}
		printSuccess("Created team %s (%s) with %d members", t.Name, t.ID, len(t.Members))
		return nil
	}),
}

var teamsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a team and its roster",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error {
		resp, err := c.get(ctx, "/teams/"+args[0])
		if err != nil {
			return err
		}
		var t teamView
		if err := decodeJSON(resp, &t); err != nil {
			return err
		}
		printTeam(os.Stdout, t)
		return nil
	}),
}

func printTeam(w io.Writer, t teamView) {
	fmt.Fprintf(w, "%s  %s\n", colorize(colorBold, t.Name), t.ID)
	if t.Project != "" {
		fmt.Fprintf(w, "  Project: %s\n", t.Project)
	}
	if t.TargetSize > 0 {
		fmt.Fprintf(w, "  Size: %d/%d\n", len(t.Members), t.TargetSize)
	}
	for _, m := range t.Members {
		style := "-"
		if m.Profile != nil {
			style = string(m.Profile.Primary)
		}
		fmt.Fprintf(w, "  %-2s %s (%s)\n", style, m.Name, m.ID)
	}
}

var teamsAddMemberCmd = &cobra.Command{
	Use:   "add-member <team-id> <consultant-id>",
	Short: "Add a consultant to a team",
	Args:  cobra.ExactArgs(2),
	RunE: withClient(func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error {
		resp, err := c.post(ctx, "/teams/"+args[0]+"/members", map[string]string{"consultant_id": args[1]})
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, nil); err != nil {
			return err
		}
		printSuccess("Added %s to team %s", args[1], args[0])
		return nil
	}),
}

var teamsRemoveMemberCmd = &cobra.Command{
	Use:   "remove-member <team-id> <consultant-id>",
	Short: "Remove a consultant from a team",
	Args:  cobra.ExactArgs(2),
	RunE: withClient(func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error {
		resp, err := c.delete(ctx, "/teams/"+args[0]+"/members/"+args[1])
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, nil); err != nil {
			return err
		}
		printSuccess("Removed %s from team %s", args[1], args[0])
		return nil
	}),
}

var teamsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a team",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error {
		resp, err := c.delete(ctx, "/teams/"+args[0])
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, nil); err != nil {
			return err
		}
		printSuccess("Deleted team %s", args[0])
		return nil
	}),
}

var teamsAnalyzeCmd = &cobra.Command{
	Use:   "analyze [team-id]",
	Short: "Show the compatibility analysis of a team or an ad-hoc roster",
	Long: `Show the compatibility analysis of a stored team, or of a set of
consultants that has not been saved as a team.

Examples:
  teamfit teams analyze t-123
  teamfit teams analyze --consultants c-1,c-2,c-3`,
	Args: cobra.MaximumNArgs(1),
	RunE: withClient(func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error {
		ids, _ := cmd.Flags().GetString("consultants")
		teamID := ""
		if len(args) == 1 {
			teamID = args[0]
		}
		return analyze(ctx, c, os.Stdout, teamID, splitList(ids))
	}),
}

func analyze(ctx context.Context, c *apiClient, w io.Writer, teamID string, consultantIDs []string) error {
	var (
		resp *http.Response
		err  error
	)
	switch {
	case teamID != "":
		resp, err = c.get(ctx, "/teams/"+teamID+"/analysis")
	case len(consultantIDs) > 0:
		resp, err = c.post(ctx, "/analysis", map[string]any{"consultant_ids": consultantIDs})
	default:
		return fmt.Errorf("a team ID or --consultants is required")
	}
	if err != nil {
		return err
	}
	var a analysisView
	if err := decodeJSON(resp, &a); err != nil {
		return err
	}
	printAnalysis(w, a)
	return nil
}

func printAnalysis(w io.Writer, a analysisView) {
	if a.Status != "ok" {
		fmt.Fprintf(w, "Not enough profile data: %d of %d members assessed.\n", a.ProfiledMemberCount, a.MemberCount)
		return
	}
	fmt.Fprintf(w, "%s %d/100 over %d pairs\n", colorize(colorBold, "Compatibility:"), a.AverageScore, a.PairCount)

	parts := make([]string, 0, len(disc.Styles))
	for _, s := range disc.Styles {
		parts = append(parts, fmt.Sprintf("%s=%d", s, a.Distribution[s]))
	}
	fmt.Fprintf(w, "%s %s\n", colorize(colorBold, "Distribution:"), strings.Join(parts, " "))

	for _, s := range a.Strengths {
		fmt.Fprintln(w, colorize(colorGreen, "  + "+s))
	}
	for _, s := range a.Warnings {
		fmt.Fprintln(w, colorize(colorYellow, "  ! "+s))
	}
}

var teamsEvaluateCmd = &cobra.Command{
	Use:   "evaluate <team-id>",
	Short: "Check a team against the active rules",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error {
		latest, _ := cmd.Flags().GetBool("latest")
		return evaluate(ctx, c, os.Stdout, args[0], latest)
	}),
}

func evaluate(ctx context.Context, c *apiClient, w io.Writer, teamID string, latest bool) error {
	var (
		resp *http.Response
		err  error
	)
	if latest {
		resp, err = c.get(ctx, "/teams/"+teamID+"/evaluations/latest?sort=severity")
	} else {
		resp, err = c.post(ctx, "/teams/"+teamID+"/evaluations?sort=severity", nil)
	}
	if err != nil {
		return err
	}
	var eval storage.Evaluation
	if err := decodeJSON(resp, &eval); err != nil {
		return err
	}

	fmt.Fprintf(w, "Evaluated %s (%s)\n", eval.EvaluatedAt.Local().Format("2006-01-02 15:04:05"), eval.Source)
	if len(eval.Report.Findings) == 0 {
		fmt.Fprintln(w, colorize(colorGreen, "  No rule findings."))
	}
	for _, f := range eval.Report.Findings {
		sev := colorize(severityColor(string(f.Severity)), fmt.Sprintf("%-8s", f.Severity))
		fmt.Fprintf(w, "  %s %s: %s\n", sev, f.RuleName, f.Message)
	}
	for _, s := range eval.Report.Skipped {
		fmt.Fprintf(w, "  skipped rule %s: %s\n", s.RuleID, s.Reason)
	}
	return nil
}

func init() {
	teamsListCmd.Flags().Int("limit", 50, "maximum number of teams to list")

	teamsCreateCmd.Flags().String("project", "", "project the team is staffed for")
	teamsCreateCmd.Flags().Int("target-size", 0, "intended number of members")
	teamsCreateCmd.Flags().String("members", "", "comma-separated consultant IDs")

	teamsAnalyzeCmd.Flags().String("consultants", "", "comma-separated consultant IDs for an ad-hoc roster")
	teamsEvaluateCmd.Flags().Bool("latest", false, "show the most recent stored evaluation instead of running a new one")

	teamsCmd.AddCommand(teamsListCmd)
	teamsCmd.AddCommand(teamsCreateCmd)
	teamsCmd.AddCommand(teamsShowCmd)
	teamsCmd.AddCommand(teamsDeleteCmd)
	teamsCmd.AddCommand(teamsAddMemberCmd)
	teamsCmd.AddCommand(teamsRemoveMemberCmd)
	teamsCmd.AddCommand(teamsAnalyzeCmd)
	teamsCmd.AddCommand(teamsEvaluateCmd)
}

// --- rules ---

var rulesCmd = &cobra.Command{
	Use:     "rules",
	Aliases: []string{"rule"},
	Short:   "Manage staffing rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules in evaluation order",
	RunE: withClient(func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error {
		active, _ := cmd.Flags().GetBool("active")
		rs, err := fetchRules(ctx, c, active)
		if err != nil {
			return err
		}
		if len(rs) == 0 {
			fmt.Println("No rules found.")
			return nil
		}
		for _, r := range rs {
			state := "on "
			if !r.Active {
				state = "off"
			}
			sev := colorize(severityColor(string(r.Severity)), fmt.Sprintf("%-8s", r.Severity))
			fmt.Printf("%s  %s %s %-11s %s\n", colorize(colorCyan, r.ID), state, sev, r.Type, r.Name)
		}
		return nil
	}),
}

func fetchRules(ctx context.Context, c *apiClient, activeOnly bool) ([]rules.Rule, error) {
	path := "/rules"
	if activeOnly {
		path += "?active=true"
	}
	resp, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	var rs []rules.Rule
	if err := decodeJSON(resp, &rs); err != nil {
		return nil, err
	}
	return rs, nil
}

var rulesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a rule",
	Long: `Add a rule. Conditions are given as JSON and depend on the rule type.

Examples:
  teamfit rules add "Diverse team" --type composition --severity warning \
    --conditions '{"min_styles":3,"max_same_style":2,"min_team_size":4}'
  teamfit rules add "Pair D with S" --type pairing --severity info \
    --description "Coach D-S communication" --conditions '{"style1":"D","style2":"S"}'`,
	Args: cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error {
		typ, _ := cmd.Flags().GetString("type")
		sev, _ := cmd.Flags().GetString("severity")
		desc, _ := cmd.Flags().GetString("description")
		conds, _ := cmd.Flags().GetString("conditions")
		inactive, _ := cmd.Flags().GetBool("inactive")

		if !json.Valid([]byte(conds)) {
			return fmt.Errorf("--conditions must be valid JSON")
		}
		active := !inactive
		rule, err := createRule(ctx, c, rules.Rule{
			Name:        args[0],
			Description: desc,
			Type:        rules.Type(typ),
			Severity:    rules.Severity(sev),
			Active:      active,
			Conditions:  json.RawMessage(conds),
		})
		if err != nil {
			return err
		}
		printSuccess("Added rule %s (%s)", rule.Name, rule.ID)
		return nil
	}),
}

func ruleBody(r rules.Rule) map[string]any {
	return map[string]any{
		"name":        r.Name,
		"description": r.Description,
		"rule_type":   r.Type,
		"severity":    r.Severity,
		"is_active":   r.Active,
		"conditions":  r.Conditions,
	}
}

func createRule(ctx context.Context, c *apiClient, r rules.Rule) (rules.Rule, error) {
	resp, err := c.post(ctx, "/rules", ruleBody(r))
	if err != nil {
		return rules.Rule{}, err
	}
	var created rules.Rule
	if err := decodeJSON(resp, &created); err != nil {
		return rules.Rule{}, err
	}
	return created, nil
}

// setRuleActive toggles a rule by replacing it with the flag flipped.
func setRuleActive(ctx context.Context, c *apiClient, id string, active bool) error {
	resp, err := c.get(ctx, "/rules/"+id)
	if err != nil {
		return err
	}
	var r rules.Rule
	if err := decodeJSON(resp, &r); err != nil {
		return err
	}
	r.Active = active
	resp, err = c.put(ctx, "/rules/"+id, ruleBody(r))
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil)
}

var rulesEnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Activate a rule",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error {
		if err := setRuleActive(ctx, c, args[0], true); err != nil {
			return err
		}
		printSuccess("Enabled rule %s", args[0])
		return nil
	}),
}

var rulesDisableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Deactivate a rule",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error {
		if err := setRuleActive(ctx, c, args[0], false); err != nil {
			return err
		}
		printSuccess("Disabled rule %s", args[0])
		return nil
	}),
}

var rulesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a rule",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error {
		resp, err := c.delete(ctx, "/rules/"+args[0])
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, nil); err != nil {
			return err
		}
		printSuccess("Deleted rule %s", args[0])
		return nil
	}),
}

var rulesImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Create every rule in a YAML rule file",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error {
		rs, err := rules.LoadFile(args[0])
		if err != nil {
			return err
		}
		n, err := importRules(ctx, c, rs)
		if err != nil {
			return fmt.Errorf("imported %d of %d rules: %w", n, len(rs), err)
		}
		printSuccess("Imported %d rules", n)
		return nil
	}),
}

// importRules creates rs in file order so that stored order matches the
// file. IDs in the file are ignored; the server assigns new ones.
func importRules(ctx context.Context, c *apiClient, rs []rules.Rule) (int, error) {
	for i, r := range rs {
		if _, err := createRule(ctx, c, r); err != nil {
			return i, fmt.Errorf("rule %q: %w", r.Name, err)
		}
	}
	return len(rs), nil
}

var rulesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all rules as a YAML rule file",
	RunE: withClient(func(ctx context.Context, c *apiClient, cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		rs, err := fetchRules(ctx, c, false)
		if err != nil {
			return err
		}
		if output == "" {
			return rules.Encode(os.Stdout, rs)
		}
		if err := rules.WriteFile(output, rs); err != nil {
			return err
		}
		printSuccess("Exported %d rules to %s", len(rs), output)
		return nil
	}),
}

func init() {
	rulesListCmd.Flags().Bool("active", false, "only list active rules")

	rulesAddCmd.Flags().String("type", "", "rule type: composition, pairing or skill_gap")
	rulesAddCmd.Flags().String("severity", "info", "severity: info, warning or critical")
	rulesAddCmd.Flags().String("description", "", "message reported when the rule triggers")
	rulesAddCmd.Flags().String("conditions", "{}", "rule conditions as JSON")
	rulesAddCmd.Flags().Bool("inactive", false, "create the rule deactivated")
	rulesAddCmd.MarkFlagRequired("type")

	rulesExportCmd.Flags().String("output", "", "output file path (default: stdout)")

	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesAddCmd)
	rulesCmd.AddCommand(rulesEnableCmd)
	rulesCmd.AddCommand(rulesDisableCmd)
	rulesCmd.AddCommand(rulesDeleteCmd)
	rulesCmd.AddCommand(rulesImportCmd)
	rulesCmd.AddCommand(rulesExportCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s  (%s)\n", colorize(colorBold, k.Key), k.Value, k.EnvVar)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:       "set <key> <value>",
	Short:     "Set a configuration value",
	Args:      cobra.ExactArgs(2),
	ValidArgs: config.ValidKeys(),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
