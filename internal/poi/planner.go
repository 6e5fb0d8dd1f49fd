package poi

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Denosadchiy/travel-buddy-ai/internal/trip"
	"github.com/Denosadchiy/travel-buddy-ai/internal/types"
)

// Ranking weights. Scores are advisory ordering only; they never feed
// scheduling arithmetic.
const (
	distancePenaltyPerKm = 0.3
	interestBonusMax     = 1.0
	pricePenaltyPerTier  = 0.75
)

// Config tunes candidate selection.
type Config struct {
	// MaxCandidates is K: the most candidates returned per block.
	MaxCandidates int

	// SearchRadiusMeters bounds the catalog query around the anchor.
	SearchRadiusMeters int

	// Timeout bounds each catalog query.
	Timeout time.Duration
}

// DefaultConfig returns the selection defaults.
func DefaultConfig() Config {
	return Config{
		MaxCandidates:      6,
		SearchRadiusMeters: 5000,
		Timeout:            10 * time.Second,
	}
}

// Planner selects ranked POI candidates for skeleton blocks. Ranking is
// fully deterministic: identical inputs always yield identical ordering.
type Planner struct {
	catalog Catalog
	cfg     Config
	logger  *slog.Logger
}

// New creates a POI planner.
func New(catalog Catalog, cfg Config, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = DefaultConfig().MaxCandidates
	}
	if cfg.SearchRadiusMeters <= 0 {
		cfg.SearchRadiusMeters = DefaultConfig().SearchRadiusMeters
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Planner{catalog: catalog, cfg: cfg, logger: logger.With("component", "poi-planner")}
}

// SelectCandidates returns at most K ranked candidates for one block.
// anchor is the day's current anchor point: the previous block's location,
// or the hotel for the first block of the day; nil disables the distance
// penalty. An empty result is valid and tolerated downstream.
func (p *Planner) SelectCandidates(ctx context.Context, block trip.SkeletonBlock, anchor *trip.Coordinate, spec *trip.TripSpec) ([]trip.POICandidate, error) {
	if !block.Type.NeedsPOI() {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	matches, err := p.catalog.Search(ctx, Query{
		City:         spec.City,
		Categories:   block.Categories,
		Near:         anchor,
		RadiusMeters: p.cfg.SearchRadiusMeters,
		MaxPrice:     spec.Budget,
		Limit:        p.cfg.MaxCandidates * 4,
	})
	if err != nil {
		return nil, types.WrapRetryableError(types.CATALOG_QUERY_FAILED,
			"place catalog query failed", err)
	}

	ranked := Rank(matches, anchor, spec)
	if len(ranked) > p.cfg.MaxCandidates {
		ranked = ranked[:p.cfg.MaxCandidates]
	}
	return ranked, nil
}

// Rank scores and orders candidates: base rating, minus a distance penalty
// from the anchor, plus an interest-tag bonus weighted by tag insertion
// order, minus a penalty per price tier above the trip's budget. Ties break
// by higher rating, then catalog-stable identifier.
func Rank(candidates []trip.POICandidate, anchor *trip.Coordinate, spec *trip.TripSpec) []trip.POICandidate {
	ranked := make([]trip.POICandidate, len(candidates))
	copy(ranked, candidates)

	for i := range ranked {
		ranked[i].RankScore = score(&ranked[i], anchor, spec)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.RankScore != b.RankScore {
			return a.RankScore > b.RankScore
		}
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		return a.ID < b.ID
	})
	return ranked
}

func score(c *trip.POICandidate, anchor *trip.Coordinate, spec *trip.TripSpec) float64 {
	s := c.Rating

	if anchor != nil {
		s -= distancePenaltyPerKm * trip.DistanceMeters(*anchor, c.Location) / 1000.0
	}

	if pos, ok := matchInterest(c.Category, spec.Interests); ok {
		// Earlier interests weigh more: position 0 gets the full bonus.
		weight := float64(len(spec.Interests)-pos) / float64(len(spec.Interests))
		s += interestBonusMax * weight
	}

	if over := c.Price.Rank() - spec.Budget.Rank(); over > 0 {
		s -= pricePenaltyPerTier * float64(over)
	}
	return s
}

// matchInterest finds the first interest tag the category matches, by
// case-insensitive containment either way.
func matchInterest(category string, interests []string) (int, bool) {
	cat := strings.ToLower(category)
	for i, tag := range interests {
		t := strings.ToLower(tag)
		if strings.Contains(cat, t) || strings.Contains(t, cat) {
			return i, true
		}
	}
	return 0, false
}
