package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/teamfit/internal/analysis"
	"github.com/kalambet/teamfit/internal/compliance"
	"github.com/kalambet/teamfit/internal/metrics"
	"github.com/kalambet/teamfit/internal/rules"
	"github.com/kalambet/teamfit/internal/storage"
	"github.com/kalambet/teamfit/internal/team"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store     *storage.Store
	Analyzer  *analysis.Analyzer
	Evaluator *compliance.Evaluator
	Metrics   *metrics.Metrics // optional
}

const activeRulesURI = "teamfit://rules/active"

// NewMCPServer creates an MCP server exposing team analysis, evaluation and
// the active rule set.
func NewMCPServer(deps MCPDeps, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"teamfit",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("teamfit scores DiSC compatibility of consulting teams and checks them against staffing rules."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("analyze_team",
			mcp.WithDescription("Compute the DiSC compatibility analysis of a stored team, or of an ad-hoc set of consultants."),
			mcp.WithString("team_id", mcp.Description("ID of a stored team")),
			mcp.WithArray("consultant_ids", mcp.Description("Consultant IDs for an ad-hoc roster; used when team_id is empty"),
				mcp.WithStringItems()),
		),
		mcpAnalyzeTeam(deps),
	)

	s.AddTool(
		mcp.NewTool("evaluate_team",
			mcp.WithDescription("Evaluate a stored team against the active rules and store the report."),
			mcp.WithString("team_id", mcp.Description("ID of a stored team"), mcp.Required()),
		),
		mcpEvaluateTeam(deps),
	)

	s.AddTool(
		mcp.NewTool("list_rules",
			mcp.WithDescription("List staffing rules."),
			mcp.WithBoolean("active_only", mcp.Description("Only return active rules (default false)")),
		),
		mcpListRules(deps),
	)

	s.AddResource(
		mcp.NewResource(
			activeRulesURI,
			"Active Rules",
			mcp.WithResourceDescription("Active staffing rules in evaluation order, as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceActiveRules(deps),
	)

	return s
}

func mcpAnalyzeTeam(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		teamID := req.GetString("team_id", "")
		ids := req.GetStringSlice("consultant_ids", nil)

		var roster team.Roster
		var err error
		switch {
		case teamID != "":
			roster, err = deps.Store.TeamRoster(teamID)
		case len(ids) > 0:
			roster, err = deps.Store.RosterFor(ids)
		default:
			return mcpError("team_id or consultant_ids is required"), nil
		}
		if errors.Is(err, storage.ErrNotFound) {
			return mcpError(fmt.Sprintf("not found: %v", err)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("loading roster: %v", err)), nil
		}

		res := deps.Analyzer.Analyze(roster)
		deps.Metrics.ObserveAnalysis(res != nil)
		return mcpJSON(newAnalysisResponse(roster, res))
	}
}

func mcpEvaluateTeam(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		teamID, err := req.RequireString("team_id")
		if err != nil || teamID == "" {
			return mcpError("team_id is required"), nil
		}
		eval, err := deps.Evaluator.EvaluateTeam(ctx, teamID, compliance.SourceAPI)
		if errors.Is(err, storage.ErrNotFound) {
			return mcpError(fmt.Sprintf("team %s not found", teamID)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("evaluation failed: %v", err)), nil
		}
		findings := append([]rules.Finding{}, eval.Report.Findings...)
		rules.SortBySeverity(findings)
		eval.Report.Findings = findings
		return mcpJSON(eval)
	}
}

func mcpListRules(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list := deps.Store.ListRules
		if req.GetBool("active_only", false) {
			list = deps.Store.ActiveRules
		}
		rs, err := list()
		if err != nil {
			return mcpError(fmt.Sprintf("listing rules: %v", err)), nil
		}
		return mcpJSON(rs)
	}
}

func mcpResourceActiveRules(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		rs, err := deps.Store.ActiveRules()
		if err != nil {
			return nil, fmt.Errorf("failed to load active rules: %w", err)
		}
		b, err := json.Marshal(rs)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal rules: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpJSON(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcpText(string(b)), nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
