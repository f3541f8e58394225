// Package compliance evaluates persisted teams against the active rule set
// and stores the resulting reports, either synchronously or from the job
// queue.
package compliance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/teamfit/internal/metrics"
	"github.com/kalambet/teamfit/internal/rules"
	"github.com/kalambet/teamfit/internal/storage"
	"github.com/kalambet/teamfit/internal/team"
)

// Evaluation sources.
const (
	SourceAPI    = "api"
	SourceWorker = "worker"
)

// JobType is the queue type for a pending team evaluation.
const JobType = "team_evaluate"

// TeamStore reads the inputs of an evaluation and stores its result.
type TeamStore interface {
	TeamRoster(teamID string) (team.Roster, error)
	ActiveRules() ([]rules.Rule, error)
	SaveEvaluation(e storage.Evaluation) error
}

// Evaluator runs the rule engine against stored teams.
type Evaluator struct {
	store   TeamStore
	engine  *rules.Engine
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewEvaluator creates an Evaluator. m may be nil.
func NewEvaluator(store TeamStore, engine *rules.Engine, m *metrics.Metrics) *Evaluator {
	if engine == nil {
		engine = rules.NewEngine(nil)
	}
	return &Evaluator{
		store:   store,
		engine:  engine,
		metrics: m,
		logger:  slog.Default(),
	}
}

// EvaluateTeam reads the team's roster and the active rules once, evaluates
// them and stores the snapshot. A missing team returns storage.ErrNotFound.
func (e *Evaluator) EvaluateTeam(ctx context.Context, teamID, source string) (storage.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return storage.Evaluation{}, err
	}
	start := time.Now()

	roster, err := e.store.TeamRoster(teamID)
	if err != nil {
		return storage.Evaluation{}, fmt.Errorf("loading roster for team %s: %w", teamID, err)
	}
	active, err := e.store.ActiveRules()
	if err != nil {
		return storage.Evaluation{}, fmt.Errorf("loading active rules: %w", err)
	}

	report := e.engine.Evaluate(roster, active)
	eval := storage.Evaluation{
		ID:          uuid.New().String(),
		TeamID:      teamID,
		Source:      source,
		EvaluatedAt: time.Now().UTC(),
		Report:      report,
	}
	if err := e.store.SaveEvaluation(eval); err != nil {
		return storage.Evaluation{}, fmt.Errorf("saving evaluation for team %s: %w", teamID, err)
	}

	severities := make([]string, len(report.Findings))
	for i, f := range report.Findings {
		severities[i] = string(f.Severity)
	}
	e.metrics.ObserveEvaluation(source, severities, len(report.Skipped), time.Since(start))
	e.logger.Debug("team evaluated", "team_id", teamID, "source", source,
		"findings", len(report.Findings), "skipped", len(report.Skipped))
	return eval, nil
}

// EvaluateAll evaluates teams concurrently, at most four at a time. Results
// are returned in the order of teamIDs. The first error cancels the rest.
func (e *Evaluator) EvaluateAll(ctx context.Context, teamIDs []string, source string) ([]storage.Evaluation, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}
	results := make([]storage.Evaluation, len(teamIDs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, id := range teamIDs {
		g.Go(func() error {
			eval, err := e.EvaluateTeam(gCtx, id, source)
			if err != nil {
				return err
			}
			results[i] = eval
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// JobEnqueuer adds jobs to the queue.
type JobEnqueuer interface {
	EnqueueJob(job storage.Job) (bool, error)
}

type evaluatePayload struct {
	TeamID string `json:"team_id"`
}

// Enqueue schedules a background evaluation of one team. An evaluation
// already pending for the team absorbs the request.
func Enqueue(q JobEnqueuer, teamID string) error {
	payload, err := json.Marshal(evaluatePayload{TeamID: teamID})
	if err != nil {
		return err
	}
	if _, err := q.EnqueueJob(storage.Job{
		ID:          uuid.New().String(),
		Type:        JobType,
		PayloadJSON: string(payload),
	}); err != nil {
		return fmt.Errorf("enqueueing evaluation for team %s: %w", teamID, err)
	}
	return nil
}

// EnqueueAll schedules an evaluation for every team, used after rule changes.
func EnqueueAll(q JobEnqueuer, teamIDs []string) error {
	for _, id := range teamIDs {
		if err := Enqueue(q, id); err != nil {
			return err
		}
	}
	return nil
}
