package planner

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Denosadchiy/travel-buddy-ai/internal/critic"
	"github.com/Denosadchiy/travel-buddy-ai/internal/database"
	"github.com/Denosadchiy/travel-buddy-ai/internal/lock"
	"github.com/Denosadchiy/travel-buddy-ai/internal/macro"
	"github.com/Denosadchiy/travel-buddy-ai/internal/observability"
	"github.com/Denosadchiy/travel-buddy-ai/internal/poi"
	"github.com/Denosadchiy/travel-buddy-ai/internal/route"
	"github.com/Denosadchiy/travel-buddy-ai/internal/trip"
	"github.com/Denosadchiy/travel-buddy-ai/internal/types"
)

// Config tunes the orchestrator.
type Config struct {
	// HorizonDays bounds trip length at spec load.
	HorizonDays int

	// StageAttempts bounds retries of a stage on transient failures.
	StageAttempts int

	// LockTTL is the planning lease duration. A crashed run's lease expires
	// on its own; the next run acquires normally.
	LockTTL time.Duration

	// DayConcurrency caps the per-day fan-out inside a stage. Zero means
	// unbounded.
	DayConcurrency int
}

// DefaultConfig returns the orchestrator defaults.
func DefaultConfig() Config {
	return Config{
		HorizonDays:    14,
		StageAttempts:  3,
		LockTTL:        5 * time.Minute,
		DayConcurrency: 4,
	}
}

// Result is the outcome of a planning run. On failure, Stage names the
// pipeline stage that failed and Reason carries the terminal error.
type Result struct {
	TripID     types.ID             `json:"trip_id"`
	Status     types.RunStatus      `json:"status"`
	Stage      types.PlanStage      `json:"stage"`
	Reason     string               `json:"reason,omitempty"`
	Days       []trip.ItineraryDay  `json:"days,omitempty"`
	Issues     []trip.CritiqueIssue `json:"issues,omitempty"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
}

// Orchestrator drives the planning pipeline: load spec, macro plan, select
// places, resolve times, critique, persist. Stages are strictly linear;
// a failed stage never leaves partially new state visible, because all
// writes happen in the final persist stage.
type Orchestrator struct {
	trips       database.TripDAO
	itineraries database.ItineraryDAO
	macro       *macro.Planner
	pois        *poi.Planner
	optimizer   *route.Optimizer
	critic      *critic.Critic
	locker      lock.Locker
	cfg         Config
	logger      *slog.Logger
}

// New creates an orchestrator.
func New(
	trips database.TripDAO,
	itineraries database.ItineraryDAO,
	macroPlanner *macro.Planner,
	poiPlanner *poi.Planner,
	optimizer *route.Optimizer,
	tripCritic *critic.Critic,
	locker lock.Locker,
	cfg Config,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.StageAttempts <= 0 {
		cfg.StageAttempts = DefaultConfig().StageAttempts
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultConfig().LockTTL
	}
	return &Orchestrator{
		trips:       trips,
		itineraries: itineraries,
		macro:       macroPlanner,
		pois:        poiPlanner,
		optimizer:   optimizer,
		critic:      tripCritic,
		locker:      locker,
		cfg:         cfg,
		logger:      logger.With("component", "orchestrator"),
	}
}

// Plan runs the full pipeline for a trip and returns the committed result.
// A second Plan for the same trip while one is running fails immediately
// with PLAN_IN_PROGRESS; runs for different trips proceed independently.
func (o *Orchestrator) Plan(ctx context.Context, tripID types.ID) (*Result, error) {
	lease, err := o.locker.Acquire(ctx, tripID, o.cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	defer o.locker.Release(context.WithoutCancel(ctx), lease)

	run := &Result{TripID: tripID, StartedAt: time.Now().UTC()}
	o.logger.Info("planning run started", "trip_id", tripID)

	days, issues, err := o.runPipeline(ctx, tripID, run)
	run.FinishedAt = time.Now().UTC()

	if err != nil {
		if ctx.Err() != nil || types.CodeOf(err) == types.PLAN_CANCELLED {
			run.Status = types.RunStatusCancelled
		} else {
			run.Status = types.RunStatusFailed
		}
		run.Reason = err.Error()
		o.recordOutcome(ctx, run)
		o.logger.Error("planning run ended", "trip_id", tripID,
			"status", run.Status, "stage", run.Stage, "error", err)
		return run, err
	}

	run.Status = types.RunStatusCompleted
	run.Stage = types.StageDone
	run.Days = days
	run.Issues = issues
	o.recordOutcome(ctx, run)
	o.logger.Info("planning run completed", "trip_id", tripID,
		"days", len(days), "issues", len(issues))
	return run, nil
}

// runPipeline advances through the stages, leaving the failing stage in
// run.Stage on error.
func (o *Orchestrator) runPipeline(ctx context.Context, tripID types.ID, run *Result) ([]trip.ItineraryDay, []trip.CritiqueIssue, error) {
	// LOADING_SPEC
	var spec *trip.TripSpec
	err := o.stage(ctx, tripID, run, types.StageLoadingSpec, func(ctx context.Context) error {
		record, err := o.trips.GetByID(ctx, tripID)
		if err != nil {
			return err
		}
		if err := record.Spec.Validate(o.cfg.HorizonDays); err != nil {
			return err
		}
		spec = &record.Spec
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	// MACRO_PLANNING
	var skeletons []trip.DaySkeleton
	err = o.stage(ctx, tripID, run, types.StageMacroPlanning, func(ctx context.Context) error {
		var err error
		skeletons, err = o.macro.BuildSkeleton(ctx, spec)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	// POI_SELECTION: fan out per day; each day's blocks stay sequential so
	// the anchor chain is deterministic.
	candidates := make([][][]trip.POICandidate, len(skeletons))
	err = o.stage(ctx, tripID, run, types.StagePOISelection, func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		if o.cfg.DayConcurrency > 0 {
			g.SetLimit(o.cfg.DayConcurrency)
		}
		for i := range skeletons {
			i := i
			g.Go(func() error {
				lists, err := o.selectDay(gctx, skeletons[i], spec)
				if err != nil {
					return err
				}
				candidates[i] = lists
				return nil
			})
		}
		return g.Wait()
	})
	if err != nil {
		return nil, nil, err
	}

	// ROUTE_OPTIMIZATION
	days := make([]trip.ItineraryDay, len(skeletons))
	err = o.stage(ctx, tripID, run, types.StageRouteOptimization, func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		if o.cfg.DayConcurrency > 0 {
			g.SetLimit(o.cfg.DayConcurrency)
		}
		for i := range skeletons {
			i := i
			g.Go(func() error {
				day, err := o.optimizer.ResolveDay(gctx, skeletons[i], candidates[i], spec)
				if err != nil {
					return err
				}
				days[i] = day
				return nil
			})
		}
		return g.Wait()
	})
	if err != nil {
		return nil, nil, err
	}

	// CRITIQUING
	var issues []trip.CritiqueIssue
	err = o.stage(ctx, tripID, run, types.StageCritiquing, func(context.Context) error {
		issues = o.critic.Critique(days, spec)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	// PERSISTING: a failure here is fatal for the run, but the previous
	// committed plan stays intact because the replace is transactional.
	err = o.stage(ctx, tripID, run, types.StagePersisting, func(ctx context.Context) error {
		return o.itineraries.ReplaceItinerary(ctx, tripID, days, issues)
	})
	if err != nil {
		return nil, nil, err
	}
	return days, issues, nil
}

// PlanDay re-plans a single day in place, leaving the other days untouched.
// It holds the same planning lease as a full run.
func (o *Orchestrator) PlanDay(ctx context.Context, tripID types.ID, dayIndex int) (*Result, error) {
	lease, err := o.locker.Acquire(ctx, tripID, o.cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	defer o.locker.Release(context.WithoutCancel(ctx), lease)

	run := &Result{TripID: tripID, StartedAt: time.Now().UTC()}
	o.logger.Info("single-day replan started", "trip_id", tripID, "day", dayIndex)

	var spec *trip.TripSpec
	err = o.stage(ctx, tripID, run, types.StageLoadingSpec, func(ctx context.Context) error {
		record, err := o.trips.GetByID(ctx, tripID)
		if err != nil {
			return err
		}
		if err := record.Spec.Validate(o.cfg.HorizonDays); err != nil {
			return err
		}
		spec = &record.Spec
		return nil
	})
	if err != nil {
		return o.finishFailed(ctx, run, err)
	}

	var skeleton trip.DaySkeleton
	err = o.stage(ctx, tripID, run, types.StageMacroPlanning, func(ctx context.Context) error {
		var err error
		skeleton, err = o.macro.BuildDay(ctx, spec, dayIndex)
		return err
	})
	if err != nil {
		return o.finishFailed(ctx, run, err)
	}

	var lists [][]trip.POICandidate
	err = o.stage(ctx, tripID, run, types.StagePOISelection, func(ctx context.Context) error {
		var err error
		lists, err = o.selectDay(ctx, skeleton, spec)
		return err
	})
	if err != nil {
		return o.finishFailed(ctx, run, err)
	}

	var day trip.ItineraryDay
	err = o.stage(ctx, tripID, run, types.StageRouteOptimization, func(ctx context.Context) error {
		var err error
		day, err = o.optimizer.ResolveDay(ctx, skeleton, lists, spec)
		return err
	})
	if err != nil {
		return o.finishFailed(ctx, run, err)
	}

	var issues []trip.CritiqueIssue
	err = o.stage(ctx, tripID, run, types.StageCritiquing, func(context.Context) error {
		issues = dayScoped(o.critic.Critique([]trip.ItineraryDay{day}, spec), dayIndex)
		return nil
	})
	if err != nil {
		return o.finishFailed(ctx, run, err)
	}

	err = o.stage(ctx, tripID, run, types.StagePersisting, func(ctx context.Context) error {
		return o.itineraries.ReplaceDay(ctx, tripID, day, issues)
	})
	if err != nil {
		return o.finishFailed(ctx, run, err)
	}

	run.Status = types.RunStatusCompleted
	run.Stage = types.StageDone
	run.Days = []trip.ItineraryDay{day}
	run.Issues = issues
	run.FinishedAt = time.Now().UTC()
	o.recordOutcome(ctx, run)
	o.logger.Info("single-day replan completed", "trip_id", tripID, "day", dayIndex)
	return run, nil
}

// selectDay builds one candidate list per block. The selection anchor
// follows the top-ranked candidate of the previous place-backed block,
// starting from the hotel.
func (o *Orchestrator) selectDay(ctx context.Context, skeleton trip.DaySkeleton, spec *trip.TripSpec) ([][]trip.POICandidate, error) {
	lists := make([][]trip.POICandidate, len(skeleton.Blocks))
	anchor := spec.HotelLocation

	for i, block := range skeleton.Blocks {
		cands, err := o.pois.SelectCandidates(ctx, block, anchor, spec)
		if err != nil {
			return nil, err
		}
		lists[i] = cands
		if len(cands) > 0 {
			loc := cands[0].Location
			anchor = &loc
		}
	}
	return lists, nil
}

// stage runs one pipeline stage with tracing and transient-failure retry.
func (o *Orchestrator) stage(ctx context.Context, tripID types.ID, run *Result, stage types.PlanStage, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		run.Stage = stage
		return types.WrapError(types.PLAN_CANCELLED, "planning run cancelled", err)
	}
	run.Stage = stage

	ctx, span := observability.StartStage(ctx, tripID, stage)
	err := o.withRetry(ctx, fn)
	observability.EndStage(span, err)

	if err != nil {
		return types.WrapError(types.PLAN_STAGE_FAILED,
			"stage "+string(stage)+" failed", err)
	}
	return nil
}

// withRetry retries fn on retryable errors with bounded exponential
// backoff. Non-retryable errors and context cancellation return at once.
func (o *Orchestrator) withRetry(ctx context.Context, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < o.cfg.StageAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<attempt)) * time.Millisecond
			select {
			case <-ctx.Done():
				return types.WrapError(types.PLAN_CANCELLED, "planning run cancelled", ctx.Err())
			case <-time.After(backoff):
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return types.WrapError(types.PLAN_CANCELLED, "planning run cancelled", ctx.Err())
		}
		if !types.IsRetryable(lastErr) {
			return lastErr
		}
		observability.WithTrace(ctx, o.logger).Warn("transient stage failure, retrying",
			"attempt", attempt+1, "error", lastErr)
	}
	return lastErr
}

func (o *Orchestrator) finishFailed(ctx context.Context, run *Result, err error) (*Result, error) {
	run.FinishedAt = time.Now().UTC()
	if ctx.Err() != nil || types.CodeOf(err) == types.PLAN_CANCELLED {
		run.Status = types.RunStatusCancelled
	} else {
		run.Status = types.RunStatusFailed
	}
	run.Reason = err.Error()
	o.recordOutcome(ctx, run)
	return run, err
}

// recordOutcome writes the run outcome onto the trip row and the audit
// trail. Best effort: a bookkeeping failure must not mask the run result.
func (o *Orchestrator) recordOutcome(ctx context.Context, run *Result) {
	ctx = context.WithoutCancel(ctx)
	if err := o.trips.UpdatePlanState(ctx, run.TripID, run.Status, run.Stage, run.Reason); err != nil {
		o.logger.Warn("failed to record plan state", "trip_id", run.TripID, "error", err)
	}
	finished := run.FinishedAt
	if err := o.itineraries.RecordRun(ctx, &database.PlanRun{
		TripID:        run.TripID,
		Status:        run.Status,
		Stage:         run.Stage,
		FailureReason: run.Reason,
		StartedAt:     run.StartedAt,
		FinishedAt:    &finished,
	}); err != nil {
		o.logger.Warn("failed to record plan run", "trip_id", run.TripID, "error", err)
	}
}

// dayScoped keeps only issues for the given day (or trip-wide ones), and
// rewrites their index to the replanned day.
func dayScoped(issues []trip.CritiqueIssue, dayIndex int) []trip.CritiqueIssue {
	out := make([]trip.CritiqueIssue, 0, len(issues))
	for _, issue := range issues {
		if issue.Scope != trip.ScopeTrip {
			issue.DayIndex = dayIndex
		}
		out = append(out, issue)
	}
	return out
}
