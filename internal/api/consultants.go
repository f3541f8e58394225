package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kalambet/teamfit/internal/disc"
	"github.com/kalambet/teamfit/internal/storage"
)

type createConsultantRequest struct {
	Name         string             `json:"name"`
	Email        string             `json:"email"`
	Title        string             `json:"title"`
	StyleProfile *disc.StyleProfile `json:"style_profile"`
}

func handleListConsultants(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 50, 500)
		offset := parseIntParam(r, "offset", 0, 0)

		consultants, err := deps.Store.ListConsultants(limit, offset)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list consultants: %v", err)
			return
		}
		if consultants == nil {
			consultants = []storage.Consultant{}
		}
		writeJSON(w, http.StatusOK, consultants)
	}
}

func handleCreateConsultant(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createConsultantRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "name is required")
			return
		}
		if req.StyleProfile != nil {
			if err := req.StyleProfile.Validate(); err != nil {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid style_profile: %v", err)
				return
			}
		}

		c := storage.Consultant{
			ID:        uuid.New().String(),
			Name:      strings.TrimSpace(req.Name),
			Email:     req.Email,
			Title:     req.Title,
			Profile:   req.StyleProfile,
			CreatedAt: time.Now().UTC(),
		}
		if c.Profile != nil {
			at := c.CreatedAt
			c.AssessedAt = &at
		}
		if err := deps.Store.CreateConsultant(c); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save consultant: %v", err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func handleGetConsultant(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := deps.Store.GetConsultant(chi.URLParam(r, "id"))
		if err != nil {
			storeError(w, err, "consultant")
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func handleDeleteConsultant(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		// Read memberships first; they cascade away with the consultant.
		teamIDs, err := deps.Store.ConsultantTeamIDs(id)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to read memberships: %v", err)
			return
		}
		if err := deps.Store.DeleteConsultant(id); err != nil {
			storeError(w, err, "consultant")
			return
		}
		scheduleEvaluations(deps, teamIDs...)
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func handleSetProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var p disc.StyleProfile
		if !decodeBody(w, r, &p) {
			return
		}
		if err := p.Validate(); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid style_profile: %v", err)
			return
		}
		if err := deps.Store.SetConsultantProfile(id, p, time.Now().UTC()); err != nil {
			storeError(w, err, "consultant")
			return
		}

		teamIDs, err := deps.Store.ConsultantTeamIDs(id)
		if err != nil {
			deps.logger().Warn("could not read memberships after profile update", "consultant_id", id, "error", err)
		}
		scheduleEvaluations(deps, teamIDs...)

		c, err := deps.Store.GetConsultant(id)
		if err != nil {
			storeError(w, err, "consultant")
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}
