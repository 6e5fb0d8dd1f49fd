package macro

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Denosadchiy/travel-buddy-ai/internal/llm"
	"github.com/Denosadchiy/travel-buddy-ai/internal/schema"
	"github.com/Denosadchiy/travel-buddy-ai/internal/trip"
	"github.com/Denosadchiy/travel-buddy-ai/internal/types"
)

// Config tunes the macro planner.
type Config struct {
	// BatchDays is how many days each structured-generation request covers.
	BatchDays int

	// MalformedRetries is how many stricter-instruction retries are spent
	// on a malformed payload before falling back to the heuristic skeleton.
	MalformedRetries int
}

// DefaultConfig returns the planner defaults.
func DefaultConfig() Config {
	return Config{BatchDays: 3, MalformedRetries: 1}
}

// Planner builds the day-by-day skeleton for a trip. It is a pure function
// of the spec plus gateway responses: the only side effect is the gateway
// call itself.
type Planner struct {
	gateway llm.Gateway
	cfg     Config
	logger  *slog.Logger
}

// New creates a macro planner.
func New(gateway llm.Gateway, cfg Config, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchDays <= 0 {
		cfg.BatchDays = DefaultConfig().BatchDays
	}
	if cfg.MalformedRetries < 0 {
		cfg.MalformedRetries = 0
	}
	return &Planner{
		gateway: gateway,
		cfg:     cfg,
		logger:  logger.With("component", "macro-planner"),
	}
}

// BuildSkeleton produces one validated DaySkeleton per trip day. Batches
// whose generative payload stays malformed after the stricter retry fall
// back to the deterministic heuristic skeleton; transport failures
// propagate to the caller for stage-level retry.
func (p *Planner) BuildSkeleton(ctx context.Context, spec *trip.TripSpec) ([]trip.DaySkeleton, error) {
	days := spec.Days()
	if days <= 0 {
		return nil, types.NewError(types.TRIP_SPEC_INVALID, "date range is empty")
	}
	themes := allocateThemes(spec)

	out := make([]trip.DaySkeleton, 0, days)
	for from := 0; from < days; from += p.cfg.BatchDays {
		to := from + p.cfg.BatchDays - 1
		if to >= days {
			to = days - 1
		}

		batch, err := p.generateBatch(ctx, spec, themes, from, to)
		if err != nil {
			if !llm.IsMalformed(err) {
				return nil, err
			}
			p.logger.Warn("skeleton generation stayed malformed, using heuristic fallback",
				"from_day", from, "to_day", to, "error", err)
			batch = batch[:0]
			for d := from; d <= to; d++ {
				batch = append(batch, heuristicDay(spec, d, themes[d]))
			}
		}
		out = append(out, batch...)
	}
	return out, nil
}

// BuildDay produces a validated skeleton for a single day, with the same
// malformed-output fallback as BuildSkeleton. Used for single-day replans.
func (p *Planner) BuildDay(ctx context.Context, spec *trip.TripSpec, dayIndex int) (trip.DaySkeleton, error) {
	days := spec.Days()
	if dayIndex < 0 || dayIndex >= days {
		return trip.DaySkeleton{}, types.NewError(types.TRIP_SPEC_INVALID,
			fmt.Sprintf("day %d is outside the trip's %d-day range", dayIndex, days))
	}
	themes := allocateThemes(spec)

	batch, err := p.generateBatch(ctx, spec, themes, dayIndex, dayIndex)
	if err != nil {
		if !llm.IsMalformed(err) {
			return trip.DaySkeleton{}, err
		}
		p.logger.Warn("skeleton generation stayed malformed, using heuristic fallback",
			"day", dayIndex, "error", err)
		return heuristicDay(spec, dayIndex, themes[dayIndex]), nil
	}
	return batch[0], nil
}

// generateBatch requests days [from, to] from the gateway, retrying with
// stricter instructions on malformed output up to the configured bound.
func (p *Planner) generateBatch(ctx context.Context, spec *trip.TripSpec, themes []string, from, to int) ([]trip.DaySkeleton, error) {
	var lastErr error
	for attempt := 0; attempt <= p.cfg.MalformedRetries; attempt++ {
		strict := attempt > 0
		raw, err := p.gateway.GenerateSkeleton(ctx, spec, from, to, strict)
		if err != nil {
			if llm.IsMalformed(err) {
				lastErr = err
				continue
			}
			return nil, err
		}

		batch, err := p.decodeBatch(raw, spec, themes, from, to)
		if err == nil {
			return batch, nil
		}
		lastErr = err
		p.logger.Debug("skeleton payload rejected",
			"from_day", from, "to_day", to, "attempt", attempt, "error", err)
	}
	return nil, lastErr
}

// decodeBatch schema-validates and decodes a raw payload into the
// requested day range. Any mismatch is a malformed-output error.
func (p *Planner) decodeBatch(raw json.RawMessage, spec *trip.TripSpec, themes []string, from, to int) ([]trip.DaySkeleton, error) {
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, types.WrapError(types.LLM_MALFORMED_OUTPUT, "skeleton payload is not a JSON object", err)
	}
	if errs := schema.Validate(skeletonSchema, generic); len(errs) > 0 {
		return nil, types.WrapError(types.LLM_MALFORMED_OUTPUT,
			"skeleton payload failed schema validation", schema.Join(errs))
	}

	var payload skeletonPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, types.WrapError(types.LLM_MALFORMED_OUTPUT, "skeleton payload decode failed", err)
	}

	byIndex := make(map[int]payloadDay, len(payload.Days))
	for _, d := range payload.Days {
		byIndex[d.DayIndex] = d
	}

	out := make([]trip.DaySkeleton, 0, to-from+1)
	for d := from; d <= to; d++ {
		pd, ok := byIndex[d]
		if !ok {
			return nil, types.NewError(types.LLM_MALFORMED_OUTPUT,
				fmt.Sprintf("skeleton payload is missing day %d", d))
		}
		day := p.convertDay(pd, spec, themes[d])
		if err := day.Validate(spec.Routine); err != nil {
			return nil, types.WrapError(types.LLM_MALFORMED_OUTPUT,
				fmt.Sprintf("generated day %d violates skeleton invariants", d), err)
		}
		out = append(out, day)
	}
	return out, nil
}

// convertDay maps a payload day onto the domain skeleton. Blocks are
// sorted into non-decreasing soft-start order; the model's ordering is
// advisory anyway.
func (p *Planner) convertDay(pd payloadDay, spec *trip.TripSpec, theme string) trip.DaySkeleton {
	blocks := make([]trip.SkeletonBlock, 0, len(pd.Blocks))
	for _, pb := range pd.Blocks {
		blockType := trip.BlockType(pb.Type)
		duration := pb.Duration
		if duration <= 0 {
			duration = trip.DefaultDurationMin(blockType)
		}
		blocks = append(blocks, trip.SkeletonBlock{
			Type:        blockType,
			Theme:       pb.Theme,
			Categories:  pb.Categories,
			Window:      trip.TimeWindow{Start: trip.Minute(pb.Window.Start), End: trip.Minute(pb.Window.End)},
			DurationMin: duration,
		})
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Window.Start < blocks[j].Window.Start
	})

	if pd.Theme != "" {
		theme = pd.Theme
	}
	return trip.DaySkeleton{
		DayIndex: pd.DayIndex,
		Date:     spec.DateOfDay(pd.DayIndex),
		Theme:    theme,
		Blocks:   blocks,
	}
}
