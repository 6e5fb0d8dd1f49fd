package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Denosadchiy/travel-buddy-ai/internal/poi"
	"github.com/Denosadchiy/travel-buddy-ai/internal/trip"
	"github.com/Denosadchiy/travel-buddy-ai/internal/types"
)

// POIDAO is the local place catalog. It satisfies the planner's Catalog
// contract, so a deployment can run fully offline against seeded places.
type POIDAO interface {
	poi.Catalog

	// Insert adds or replaces a place in the catalog.
	Insert(ctx context.Context, city string, candidate *trip.POICandidate) error

	// SeedFromYAML loads places from seed data, replacing existing rows
	// with the same ID. Returns the number of places loaded.
	SeedFromYAML(ctx context.Context, data []byte) (int, error)

	// CountByCity returns the number of seeded places for a city.
	CountByCity(ctx context.Context, city string) (int, error)
}

type poiDAO struct {
	db *DB
}

// NewPOIDAO creates a new place catalog DAO.
func NewPOIDAO(db *DB) POIDAO {
	return &poiDAO{db: db}
}

// Search implements poi.Catalog. Category and city match in SQL; the radius
// bound is applied in Go since SQLite has no geo distance.
func (d *poiDAO) Search(ctx context.Context, q poi.Query) ([]trip.POICandidate, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT id, name, category, lat, lng, rating, price, hours
		FROM pois
		WHERE city = ? COLLATE NOCASE
	`)
	args := []interface{}{q.City}

	if len(q.Categories) > 0 {
		placeholders := make([]string, len(q.Categories))
		for i, c := range q.Categories {
			placeholders[i] = "?"
			args = append(args, c)
		}
		query.WriteString(" AND category COLLATE NOCASE IN (" + strings.Join(placeholders, ", ") + ")")
	}
	query.WriteString(" ORDER BY rating DESC, id")

	rows, err := d.db.conn.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, types.WrapError(types.CATALOG_QUERY_FAILED, "catalog query failed", err)
	}
	defer rows.Close()

	var results []trip.POICandidate
	for rows.Next() {
		candidate, err := scanPOI(rows)
		if err != nil {
			return nil, types.WrapError(types.CATALOG_QUERY_FAILED, "failed to scan place", err)
		}
		if q.Near != nil && q.RadiusMeters > 0 {
			if trip.DistanceMeters(*q.Near, candidate.Location) > float64(q.RadiusMeters) {
				continue
			}
		}
		results = append(results, *candidate)
		if q.Limit > 0 && len(results) >= q.Limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.CATALOG_QUERY_FAILED, "failed to iterate places", err)
	}
	return results, nil
}

// Insert adds or replaces a place in the catalog.
func (d *poiDAO) Insert(ctx context.Context, city string, candidate *trip.POICandidate) error {
	var hoursJSON string
	if candidate.Hours != nil {
		data, err := json.Marshal(candidate.Hours)
		if err != nil {
			return types.WrapError(types.DB_QUERY_FAILED, "failed to marshal opening hours", err)
		}
		hoursJSON = string(data)
	}

	query := `
		INSERT OR REPLACE INTO pois (id, city, name, category, lat, lng, rating, price, hours)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := d.db.conn.ExecContext(ctx, query,
		candidate.ID, city, candidate.Name, candidate.Category,
		candidate.Location.Lat, candidate.Location.Lng,
		candidate.Rating, string(candidate.Price), hoursJSON)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to insert place", err)
	}
	return nil
}

// CountByCity returns the number of seeded places for a city.
func (d *poiDAO) CountByCity(ctx context.Context, city string) (int, error) {
	var count int
	err := d.db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pois WHERE city = ? COLLATE NOCASE", city).Scan(&count)
	if err != nil {
		return 0, types.WrapError(types.DB_QUERY_FAILED, "failed to count places", err)
	}
	return count, nil
}

// seedPOI is one entry of the YAML seed format. Opening hours are given as
// weekday-name keys with "HH:MM-HH:MM" interval strings; omitted hours mean
// always open.
type seedPOI struct {
	ID       string              `yaml:"id"`
	City     string              `yaml:"city"`
	Name     string              `yaml:"name"`
	Category string              `yaml:"category"`
	Lat      float64             `yaml:"lat"`
	Lng      float64             `yaml:"lng"`
	Rating   float64             `yaml:"rating"`
	Price    string              `yaml:"price"`
	Hours    map[string][]string `yaml:"hours,omitempty"`
}

type seedFile struct {
	POIs []seedPOI `yaml:"pois"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// SeedFromYAML loads places from seed data, replacing existing rows with
// the same ID.
func (d *poiDAO) SeedFromYAML(ctx context.Context, data []byte) (int, error) {
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, types.WrapError(types.DB_QUERY_FAILED, "failed to parse seed data", err)
	}

	loaded := 0
	for i := range file.POIs {
		entry := &file.POIs[i]
		if entry.ID == "" || entry.City == "" || entry.Name == "" {
			return loaded, types.NewError(types.DB_QUERY_FAILED,
				fmt.Sprintf("seed entry %d missing id, city, or name", i))
		}
		hours, err := parseSeedHours(entry.Hours)
		if err != nil {
			return loaded, types.WrapError(types.DB_QUERY_FAILED,
				fmt.Sprintf("seed entry %q has invalid hours", entry.ID), err)
		}
		price := trip.BudgetTier(entry.Price)
		if entry.Price == "" {
			price = trip.BudgetMedium
		}
		if !price.Valid() {
			return loaded, types.NewError(types.DB_QUERY_FAILED,
				fmt.Sprintf("seed entry %q has unknown price tier %q", entry.ID, entry.Price))
		}
		candidate := &trip.POICandidate{
			ID:       entry.ID,
			Name:     entry.Name,
			Category: entry.Category,
			Location: trip.Coordinate{Lat: entry.Lat, Lng: entry.Lng},
			Rating:   entry.Rating,
			Price:    price,
			Hours:    hours,
		}
		if err := d.Insert(ctx, entry.City, candidate); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}

func parseSeedHours(raw map[string][]string) (trip.OpeningHours, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	hours := make(trip.OpeningHours, len(raw))
	for name, intervals := range raw {
		day, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		for _, interval := range intervals {
			parts := strings.SplitN(interval, "-", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("interval %q is not HH:MM-HH:MM", interval)
			}
			start, err := trip.ParseClock(strings.TrimSpace(parts[0]))
			if err != nil {
				return nil, err
			}
			end, err := trip.ParseClock(strings.TrimSpace(parts[1]))
			if err != nil {
				return nil, err
			}
			w := trip.TimeWindow{Start: start, End: end}
			if !w.Valid() {
				return nil, fmt.Errorf("interval %q is empty or reversed", interval)
			}
			hours[day] = append(hours[day], w)
		}
	}
	return hours, nil
}

func scanPOI(rows *sql.Rows) (*trip.POICandidate, error) {
	var candidate trip.POICandidate
	var price, hoursJSON string
	err := rows.Scan(
		&candidate.ID,
		&candidate.Name,
		&candidate.Category,
		&candidate.Location.Lat,
		&candidate.Location.Lng,
		&candidate.Rating,
		&price,
		&hoursJSON,
	)
	if err != nil {
		return nil, err
	}
	candidate.Price = trip.BudgetTier(price)
	if hoursJSON != "" {
		if err := json.Unmarshal([]byte(hoursJSON), &candidate.Hours); err != nil {
			return nil, fmt.Errorf("failed to unmarshal opening hours: %w", err)
		}
	}
	return &candidate, nil
}
