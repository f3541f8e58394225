// Package api serves the team composition and rule store over HTTP and MCP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kalambet/teamfit/internal/analysis"
	"github.com/kalambet/teamfit/internal/compliance"
	"github.com/kalambet/teamfit/internal/metrics"
	"github.com/kalambet/teamfit/internal/storage"
)

type AppDeps struct {
	Store     *storage.Store
	Analyzer  *analysis.Analyzer
	Evaluator *compliance.Evaluator
	Metrics   *metrics.Metrics    // optional
	Gatherer  prometheus.Gatherer // optional; defaults to prometheus.DefaultGatherer
	Token     string
	Logger    *slog.Logger // optional
}

func (d AppDeps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// NewAppHandler returns the REST API. /health and /metrics are open; every
// other route requires the bearer token.
func NewAppHandler(deps AppDeps) http.Handler {
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(deps.logger()))

	r.Get("/health", handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Get("/consultants", handleListConsultants(deps))
		r.Post("/consultants", handleCreateConsultant(deps))
		r.Get("/consultants/{id}", handleGetConsultant(deps))
		r.Delete("/consultants/{id}", handleDeleteConsultant(deps))
		r.Put("/consultants/{id}/profile", handleSetProfile(deps))

		r.Get("/teams", handleListTeams(deps))
		r.Post("/teams", handleCreateTeam(deps))
		r.Get("/teams/{id}", handleGetTeam(deps))
		r.Delete("/teams/{id}", handleDeleteTeam(deps))
		r.Post("/teams/{id}/members", handleAddMember(deps))
		r.Delete("/teams/{id}/members/{consultantID}", handleRemoveMember(deps))
		r.Get("/teams/{id}/analysis", handleTeamAnalysis(deps))
		r.Post("/teams/{id}/evaluations", handleEvaluateTeam(deps))
		r.Get("/teams/{id}/evaluations/latest", handleLatestEvaluation(deps))

		r.Post("/analysis", handleAdHocAnalysis(deps))

		r.Get("/rules", handleListRules(deps))
		r.Post("/rules", handleCreateRule(deps))
		r.Get("/rules/{id}", handleGetRule(deps))
		r.Put("/rules/{id}", handleReplaceRule(deps))
		r.Delete("/rules/{id}", handleDeleteRule(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// scheduleEvaluations queues background evaluations after a write. The
// write has already succeeded, so failures are logged rather than returned.
func scheduleEvaluations(deps AppDeps, teamIDs ...string) {
	if err := compliance.EnqueueAll(deps.Store, teamIDs); err != nil {
		deps.logger().Warn("could not schedule team evaluation", "teams", len(teamIDs), "error", err)
	}
}

// scheduleAllEvaluations queues an evaluation for every team, after a rule
// change.
func scheduleAllEvaluations(deps AppDeps) {
	ids, err := deps.Store.TeamIDs()
	if err != nil {
		deps.logger().Warn("could not list teams for re-evaluation", "error", err)
		return
	}
	scheduleEvaluations(deps, ids...)
}
