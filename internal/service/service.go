package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/Denosadchiy/travel-buddy-ai/internal/cache"
	"github.com/Denosadchiy/travel-buddy-ai/internal/database"
	"github.com/Denosadchiy/travel-buddy-ai/internal/llm"
	"github.com/Denosadchiy/travel-buddy-ai/internal/planner"
	"github.com/Denosadchiy/travel-buddy-ai/internal/trip"
	"github.com/Denosadchiy/travel-buddy-ai/internal/types"
)

// Config tunes the trip service.
type Config struct {
	// HorizonDays bounds trip length on create and update.
	HorizonDays int

	// ChatCacheTTL is how long interpreted chat replies are reused for
	// identical messages. Zero disables the cache.
	ChatCacheTTL time.Duration
}

// Itinerary is the read model handed to clients: the committed days plus
// the latest critique.
type Itinerary struct {
	TripID types.ID             `json:"trip_id"`
	Days   []trip.ItineraryDay  `json:"days"`
	Issues []trip.CritiqueIssue `json:"issues,omitempty"`
}

// TripService is the outer surface of the planner: trip lifecycle, spec
// mutation via forms and chat, and planning runs.
type TripService struct {
	trips       database.TripDAO
	itineraries database.ItineraryDAO
	gateway     llm.Gateway
	chatCache   cache.Cache
	planner     *planner.Orchestrator
	cfg         Config
	logger      *slog.Logger
}

// New creates a TripService. chatCache may be nil to disable reply caching.
func New(
	trips database.TripDAO,
	itineraries database.ItineraryDAO,
	gateway llm.Gateway,
	chatCache cache.Cache,
	orchestrator *planner.Orchestrator,
	cfg Config,
	logger *slog.Logger,
) *TripService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TripService{
		trips:       trips,
		itineraries: itineraries,
		gateway:     gateway,
		chatCache:   chatCache,
		planner:     orchestrator,
		cfg:         cfg,
		logger:      logger.With("component", "trip-service"),
	}
}

// CreateTrip validates and persists a new trip spec. Missing routine fields
// get the default daily rhythm; pace and budget default to medium.
func (s *TripService) CreateTrip(ctx context.Context, spec *trip.TripSpec) (*trip.TripSpec, error) {
	applySpecDefaults(spec)
	if err := spec.Validate(s.cfg.HorizonDays); err != nil {
		return nil, err
	}
	if err := s.trips.Create(ctx, spec); err != nil {
		return nil, err
	}
	s.logger.Info("trip created", "trip_id", spec.ID, "city", spec.City, "days", spec.Days())
	return spec, nil
}

// GetTrip returns the stored trip record.
func (s *TripService) GetTrip(ctx context.Context, tripID types.ID) (*database.TripRecord, error) {
	return s.trips.GetByID(ctx, tripID)
}

// ListTrips returns all trips, newest first.
func (s *TripService) ListTrips(ctx context.Context) ([]*database.TripRecord, error) {
	return s.trips.List(ctx)
}

// DeleteTrip removes a trip. Its itinerary, critique, and run history go
// with it via foreign-key cascade.
func (s *TripService) DeleteTrip(ctx context.Context, tripID types.ID) error {
	if err := s.trips.Delete(ctx, tripID); err != nil {
		return err
	}
	s.logger.Info("trip deleted", "trip_id", tripID)
	return nil
}

// UpdateSpec merges a form-edit patch into the trip spec and persists it.
// The merged spec must still validate; an invalid merge leaves the stored
// spec untouched.
func (s *TripService) UpdateSpec(ctx context.Context, tripID types.ID, patch *trip.SpecPatch) (*trip.TripSpec, error) {
	record, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	merged := record.Spec
	patch.Apply(&merged)
	if err := merged.Validate(s.cfg.HorizonDays); err != nil {
		return nil, err
	}
	if err := s.trips.UpdateSpec(ctx, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Chat interprets a free-text message against the trip spec: the reply goes
// back to the user, and any extracted patch is merged and persisted. A patch
// that would make the spec invalid is discarded with a note in the reply;
// the conversation continues either way.
func (s *TripService) Chat(ctx context.Context, tripID types.ID, message string) (llm.ChatReply, error) {
	record, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return llm.ChatReply{}, err
	}

	key := cache.ChatKey(tripID, message)
	if reply, ok := s.cachedReply(ctx, key); ok {
		return reply, nil
	}

	reply, err := s.gateway.Interpret(ctx, message, &record.Spec)
	if err != nil {
		return llm.ChatReply{}, err
	}

	if !reply.Patch.IsEmpty() {
		merged := record.Spec
		reply.Patch.Apply(&merged)
		if err := merged.Validate(s.cfg.HorizonDays); err != nil {
			s.logger.Warn("chat patch rejected", "trip_id", tripID, "error", err)
			reply.Patch = nil
			reply.Text += "\n\n(I could not apply that change: " + userFacingReason(err) + ")"
		} else if err := s.trips.UpdateSpec(ctx, &merged); err != nil {
			return llm.ChatReply{}, err
		}
	}

	s.storeReply(ctx, key, reply)
	return reply, nil
}

// Plan runs the full planning pipeline for a trip.
func (s *TripService) Plan(ctx context.Context, tripID types.ID) (*planner.Result, error) {
	return s.planner.Plan(ctx, tripID)
}

// PlanDay re-plans a single day of the trip.
func (s *TripService) PlanDay(ctx context.Context, tripID types.ID, dayIndex int) (*planner.Result, error) {
	return s.planner.PlanDay(ctx, tripID, dayIndex)
}

// GetItinerary returns the committed plan and its critique.
func (s *TripService) GetItinerary(ctx context.Context, tripID types.ID) (*Itinerary, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return nil, err
	}
	days, err := s.itineraries.GetItinerary(ctx, tripID)
	if err != nil {
		return nil, err
	}
	issues, err := s.itineraries.GetCritique(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return &Itinerary{TripID: tripID, Days: days, Issues: issues}, nil
}

func (s *TripService) cachedReply(ctx context.Context, key string) (llm.ChatReply, bool) {
	if s.chatCache == nil || s.cfg.ChatCacheTTL <= 0 {
		return llm.ChatReply{}, false
	}
	raw, ok, err := s.chatCache.Get(ctx, key)
	if err != nil {
		s.logger.Debug("chat cache read failed", "error", err)
		return llm.ChatReply{}, false
	}
	if !ok {
		return llm.ChatReply{}, false
	}
	var reply llm.ChatReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return llm.ChatReply{}, false
	}
	// Cached replies never re-apply their patch; the first interpretation
	// already merged it.
	reply.Patch = nil
	return reply, true
}

func (s *TripService) storeReply(ctx context.Context, key string, reply llm.ChatReply) {
	if s.chatCache == nil || s.cfg.ChatCacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(reply)
	if err != nil {
		return
	}
	if err := s.chatCache.Set(ctx, key, string(raw), s.cfg.ChatCacheTTL); err != nil {
		s.logger.Debug("chat cache write failed", "error", err)
	}
}

func applySpecDefaults(spec *trip.TripSpec) {
	if spec.Travelers == 0 {
		spec.Travelers = 1
	}
	if spec.Pace == "" {
		spec.Pace = trip.PaceMedium
	}
	if spec.Budget == "" {
		spec.Budget = trip.BudgetMedium
	}
	var zero trip.DailyRoutine
	if spec.Routine == zero {
		spec.Routine = trip.DefaultDailyRoutine()
	}
}

// userFacingReason strips the error-code prefix for chat display.
func userFacingReason(err error) string {
	var te *types.TripError
	if errors.As(err, &te) {
		return te.Message
	}
	return err.Error()
}
