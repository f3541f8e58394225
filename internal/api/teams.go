package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kalambet/teamfit/internal/analysis"
	"github.com/kalambet/teamfit/internal/compliance"
	"github.com/kalambet/teamfit/internal/rules"
	"github.com/kalambet/teamfit/internal/storage"
	"github.com/kalambet/teamfit/internal/team"
)

type createTeamRequest struct {
	Name       string   `json:"name"`
	Project    string   `json:"project"`
	TargetSize int      `json:"target_size"`
	MemberIDs  []string `json:"member_ids"`
}

type addMemberRequest struct {
	ConsultantID string `json:"consultant_id"`
}

type rosterRequest struct {
	ConsultantIDs []string `json:"consultant_ids"`
}

type teamResponse struct {
	storage.Team
	Members team.Roster `json:"members"`
}

// analysisResponse flattens an analysis result. With too little profile data
// Result is nil and only the status and counts are written.
type analysisResponse struct {
	Status string `json:"status"`
	*analysis.Result
	MemberCount         int `json:"member_count"`
	ProfiledMemberCount int `json:"profiled_member_count"`
}

const (
	statusScored           = "ok"
	statusInsufficientData = "insufficient_data"
)

func newAnalysisResponse(r team.Roster, res *analysis.Result) analysisResponse {
	resp := analysisResponse{
		Status:              statusScored,
		Result:              res,
		MemberCount:         r.Size(),
		ProfiledMemberCount: len(r.Profiled()),
	}
	if res == nil {
		resp.Status = statusInsufficientData
	}
	return resp
}

func analyzeRoster(deps AppDeps, r team.Roster) analysisResponse {
	res := deps.Analyzer.Analyze(r)
	deps.Metrics.ObserveAnalysis(res != nil)
	return newAnalysisResponse(r, res)
}

func handleListTeams(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 50, 500)
		offset := parseIntParam(r, "offset", 0, 0)

		teams, err := deps.Store.ListTeams(limit, offset)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list teams: %v", err)
			return
		}
		if teams == nil {
			teams = []storage.Team{}
		}
		writeJSON(w, http.StatusOK, teams)
	}
}

func handleCreateTeam(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTeamRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "name is required")
			return
		}
		if req.TargetSize < 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "target_size must not be negative")
			return
		}

		t := storage.Team{
			ID:         uuid.New().String(),
			Name:       strings.TrimSpace(req.Name),
			Project:    req.Project,
			TargetSize: req.TargetSize,
			CreatedAt:  time.Now().UTC(),
		}
		if err := deps.Store.CreateTeam(t, req.MemberIDs); err != nil {
			storeError(w, err, "team")
			return
		}
		scheduleEvaluations(deps, t.ID)
		writeTeam(w, deps, t.ID, http.StatusCreated)
	}
}

func writeTeam(w http.ResponseWriter, deps AppDeps, id string, code int) {
	t, err := deps.Store.GetTeam(id)
	if err != nil {
		storeError(w, err, "team")
		return
	}
	roster, err := deps.Store.TeamRoster(id)
	if err != nil {
		storeError(w, err, "team")
		return
	}
	writeJSON(w, code, teamResponse{Team: t, Members: roster})
}

func handleGetTeam(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeTeam(w, deps, chi.URLParam(r, "id"), http.StatusOK)
	}
}

func handleDeleteTeam(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Store.DeleteTeam(chi.URLParam(r, "id")); err != nil {
			storeError(w, err, "team")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func handleAddMember(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req addMemberRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.ConsultantID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "consultant_id is required")
			return
		}
		if err := deps.Store.AddTeamMember(id, req.ConsultantID); err != nil {
			storeError(w, err, "team")
			return
		}
		scheduleEvaluations(deps, id)
		writeTeam(w, deps, id, http.StatusOK)
	}
}

func handleRemoveMember(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := deps.Store.RemoveTeamMember(id, chi.URLParam(r, "consultantID")); err != nil {
			storeError(w, err, "team member")
			return
		}
		scheduleEvaluations(deps, id)
		writeTeam(w, deps, id, http.StatusOK)
	}
}

func handleTeamAnalysis(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roster, err := deps.Store.TeamRoster(chi.URLParam(r, "id"))
		if err != nil {
			storeError(w, err, "team")
			return
		}
		writeJSON(w, http.StatusOK, analyzeRoster(deps, roster))
	}
}

func handleAdHocAnalysis(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rosterRequest
		if !decodeBody(w, r, &req) {
			return
		}
		roster, err := deps.Store.RosterFor(req.ConsultantIDs)
		if err != nil {
			storeError(w, err, "consultant")
			return
		}
		writeJSON(w, http.StatusOK, analyzeRoster(deps, roster))
	}
}

func handleEvaluateTeam(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eval, err := deps.Evaluator.EvaluateTeam(r.Context(), chi.URLParam(r, "id"), compliance.SourceAPI)
		if err != nil {
			storeError(w, err, "team")
			return
		}
		writeEvaluation(w, r, eval, http.StatusCreated)
	}
}

func handleLatestEvaluation(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := deps.Store.GetTeam(id); err != nil {
			storeError(w, err, "team")
			return
		}
		eval, err := deps.Store.LatestEvaluation(id)
		if err != nil {
			storeError(w, err, "evaluation")
			return
		}
		writeEvaluation(w, r, eval, http.StatusOK)
	}
}

// writeEvaluation writes eval, ordering findings by severity when the
// request asks for ?sort=severity. Stored rule order is the default.
func writeEvaluation(w http.ResponseWriter, r *http.Request, eval storage.Evaluation, code int) {
	if r.URL.Query().Get("sort") == "severity" {
		findings := append([]rules.Finding{}, eval.Report.Findings...)
		rules.SortBySeverity(findings)
		eval.Report.Findings = findings
	}
	writeJSON(w, code, eval)
}
