package poi

import (
	"context"

	"github.com/Denosadchiy/travel-buddy-ai/internal/trip"
)

// Query is a category+location+price search against the place catalog.
type Query struct {
	City string

	// Categories are the skeleton block's category hints; a place matches
	// when its category matches any of them.
	Categories []string

	// Near and RadiusMeters bound the search area when set.
	Near         *trip.Coordinate
	RadiusMeters int

	// MaxPrice is the highest acceptable price tier. Places above it are
	// still returned by ranking with a penalty, so the catalog may include
	// them; providers that can filter server-side should.
	MaxPrice trip.BudgetTier

	// Limit caps the raw result count. Zero means provider default.
	Limit int
}

// Catalog is the Place Catalog Provider contract. Result ordering is
// unspecified; the planner re-ranks.
type Catalog interface {
	Search(ctx context.Context, q Query) ([]trip.POICandidate, error)
}
