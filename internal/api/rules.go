package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kalambet/teamfit/internal/rules"
)

type ruleRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Type        string          `json:"rule_type"`
	Severity    string          `json:"severity"`
	Active      *bool           `json:"is_active"`
	Conditions  json.RawMessage `json:"conditions"`
}

// toRule normalizes the request and validates the result. Rules are active
// unless is_active is false.
func (req ruleRequest) toRule(id string) (rules.Rule, error) {
	typ, err := rules.ParseType(req.Type)
	if err != nil {
		return rules.Rule{}, err
	}
	sev, err := rules.ParseSeverity(req.Severity)
	if err != nil {
		return rules.Rule{}, err
	}
	rule := rules.Rule{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Type:        typ,
		Severity:    sev,
		Active:      req.Active == nil || *req.Active,
		Conditions:  req.Conditions,
	}
	if err := rule.Validate(); err != nil {
		return rules.Rule{}, err
	}
	return rule, nil
}

func handleListRules(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := deps.Store.ListRules
		if r.URL.Query().Get("active") == "true" {
			list = deps.Store.ActiveRules
		}
		rs, err := list()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list rules: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, rs)
	}
}

func handleCreateRule(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ruleRequest
		if !decodeBody(w, r, &req) {
			return
		}
		rule, err := req.toRule(uuid.New().String())
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid rule: %v", err)
			return
		}
		if err := deps.Store.CreateRule(rule); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save rule: %v", err)
			return
		}
		if rule.Active {
			scheduleAllEvaluations(deps)
		}
		writeJSON(w, http.StatusCreated, rule)
	}
}

func handleGetRule(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rule, err := deps.Store.GetRule(chi.URLParam(r, "id"))
		if err != nil {
			storeError(w, err, "rule")
			return
		}
		writeJSON(w, http.StatusOK, rule)
	}
}

func handleReplaceRule(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ruleRequest
		if !decodeBody(w, r, &req) {
			return
		}
		rule, err := req.toRule(chi.URLParam(r, "id"))
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid rule: %v", err)
			return
		}
		if err := deps.Store.UpdateRule(rule); err != nil {
			storeError(w, err, "rule")
			return
		}
		scheduleAllEvaluations(deps)
		writeJSON(w, http.StatusOK, rule)
	}
}

func handleDeleteRule(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Store.DeleteRule(chi.URLParam(r, "id")); err != nil {
			storeError(w, err, "rule")
			return
		}
		scheduleAllEvaluations(deps)
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
