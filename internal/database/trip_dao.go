package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Denosadchiy/travel-buddy-ai/internal/trip"
	"github.com/Denosadchiy/travel-buddy-ai/internal/types"
)

// TripRecord is a persisted trip: the consolidated spec plus the outcome of
// the most recent planning run.
type TripRecord struct {
	ID            types.ID        `json:"id"`
	City          string          `json:"city"`
	Spec          trip.TripSpec   `json:"spec"`
	PlanStatus    types.RunStatus `json:"plan_status,omitempty"`
	PlanStage     types.PlanStage `json:"plan_stage,omitempty"`
	FailureReason string          `json:"failure_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TripDAO provides database operations for trips.
type TripDAO interface {
	// Create persists a new trip from its initial spec.
	Create(ctx context.Context, spec *trip.TripSpec) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id types.ID) (*TripRecord, error)

	// List lists all trips, newest first.
	List(ctx context.Context) ([]*TripRecord, error)

	// UpdateSpec replaces the stored spec for an existing trip.
	UpdateSpec(ctx context.Context, spec *trip.TripSpec) error

	// UpdatePlanState records the outcome of a planning run on the trip.
	UpdatePlanState(ctx context.Context, id types.ID, status types.RunStatus, stage types.PlanStage, reason string) error

	// Delete deletes a trip and, via cascade, its itinerary and critique.
	Delete(ctx context.Context, id types.ID) error
}

type tripDAO struct {
	db *DB
}

// NewTripDAO creates a new trip DAO.
func NewTripDAO(db *DB) TripDAO {
	return &tripDAO{db: db}
}

// Create persists a new trip from its initial spec.
func (d *tripDAO) Create(ctx context.Context, spec *trip.TripSpec) error {
	if spec.ID.IsZero() {
		spec.ID = types.NewID()
	}
	now := time.Now().UTC()
	if spec.CreatedAt.IsZero() {
		spec.CreatedAt = now
	}
	spec.UpdatedAt = now

	specJSON, err := json.Marshal(spec)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to marshal trip spec", err)
	}

	query := `
		INSERT INTO trips (id, city, spec, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err = d.db.conn.ExecContext(ctx, query,
		spec.ID, spec.City, string(specJSON), spec.CreatedAt, spec.UpdatedAt)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to create trip", err)
	}
	return nil
}

// GetByID retrieves a trip by ID.
func (d *tripDAO) GetByID(ctx context.Context, id types.ID) (*TripRecord, error) {
	query := `
		SELECT id, city, spec, plan_status, plan_stage, failure_reason,
		       created_at, updated_at
		FROM trips
		WHERE id = ?
	`
	record, err := scanTrip(d.db.conn.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, types.NewError(types.TRIP_NOT_FOUND, fmt.Sprintf("trip not found: %s", id))
	}
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to get trip", err)
	}
	return record, nil
}

// List lists all trips, newest first.
func (d *tripDAO) List(ctx context.Context) ([]*TripRecord, error) {
	query := `
		SELECT id, city, spec, plan_status, plan_stage, failure_reason,
		       created_at, updated_at
		FROM trips
		ORDER BY created_at DESC
	`
	rows, err := d.db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to list trips", err)
	}
	defer rows.Close()

	var records []*TripRecord
	for rows.Next() {
		record, err := scanTrip(rows)
		if err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to scan trip", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to iterate trips", err)
	}
	return records, nil
}

// UpdateSpec replaces the stored spec for an existing trip.
func (d *tripDAO) UpdateSpec(ctx context.Context, spec *trip.TripSpec) error {
	spec.UpdatedAt = time.Now().UTC()

	specJSON, err := json.Marshal(spec)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to marshal trip spec", err)
	}

	query := `UPDATE trips SET city = ?, spec = ?, updated_at = ? WHERE id = ?`
	result, err := d.db.conn.ExecContext(ctx, query,
		spec.City, string(specJSON), spec.UpdatedAt, spec.ID)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to update trip spec", err)
	}
	return requireRow(result, spec.ID)
}

// UpdatePlanState records the outcome of a planning run on the trip.
func (d *tripDAO) UpdatePlanState(ctx context.Context, id types.ID, status types.RunStatus, stage types.PlanStage, reason string) error {
	query := `
		UPDATE trips
		SET plan_status = ?, plan_stage = ?, failure_reason = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := d.db.conn.ExecContext(ctx, query,
		string(status), string(stage), reason, time.Now().UTC(), id)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to update plan state", err)
	}
	return requireRow(result, id)
}

// Delete deletes a trip and, via cascade, its itinerary and critique.
func (d *tripDAO) Delete(ctx context.Context, id types.ID) error {
	result, err := d.db.conn.ExecContext(ctx, "DELETE FROM trips WHERE id = ?", id)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to delete trip", err)
	}
	return requireRow(result, id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrip(row rowScanner) (*TripRecord, error) {
	var record TripRecord
	var specJSON string
	var planStatus, planStage, failureReason sql.NullString

	err := row.Scan(
		&record.ID,
		&record.City,
		&specJSON,
		&planStatus,
		&planStage,
		&failureReason,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(specJSON), &record.Spec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trip spec: %w", err)
	}
	if planStatus.Valid {
		record.PlanStatus = types.RunStatus(planStatus.String)
	}
	if planStage.Valid {
		record.PlanStage = types.PlanStage(planStage.String)
	}
	if failureReason.Valid {
		record.FailureReason = failureReason.String
	}
	return &record, nil
}

func requireRow(result sql.Result, id types.ID) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to check rows affected", err)
	}
	if affected == 0 {
		return types.NewError(types.TRIP_NOT_FOUND, fmt.Sprintf("trip not found: %s", id))
	}
	return nil
}
