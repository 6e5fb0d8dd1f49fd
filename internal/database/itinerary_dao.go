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

// PlanRun is one row of the planning-run audit trail.
type PlanRun struct {
	ID            types.ID        `json:"id"`
	TripID        types.ID        `json:"trip_id"`
	Status        types.RunStatus `json:"status"`
	Stage         types.PlanStage `json:"stage"`
	FailureReason string          `json:"failure_reason,omitempty"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    *time.Time      `json:"finished_at,omitempty"`
}

// ItineraryDAO persists committed plans. Days are superseded, never patched:
// a full replan replaces every day and every critique issue for the trip in
// one transaction, so readers observe either the old plan or the new one.
type ItineraryDAO interface {
	// ReplaceItinerary atomically replaces all itinerary days and critique
	// issues for a trip.
	ReplaceItinerary(ctx context.Context, tripID types.ID, days []trip.ItineraryDay, issues []trip.CritiqueIssue) error

	// ReplaceDay atomically replaces a single day and its day-scoped
	// critique issues, leaving other days untouched.
	ReplaceDay(ctx context.Context, tripID types.ID, day trip.ItineraryDay, issues []trip.CritiqueIssue) error

	// GetItinerary returns the committed days for a trip in day order.
	GetItinerary(ctx context.Context, tripID types.ID) ([]trip.ItineraryDay, error)

	// GetCritique returns the critique issues for a trip.
	GetCritique(ctx context.Context, tripID types.ID) ([]trip.CritiqueIssue, error)

	// RecordRun appends a planning run to the audit trail.
	RecordRun(ctx context.Context, run *PlanRun) error

	// ListRuns returns the planning runs for a trip, newest first.
	ListRuns(ctx context.Context, tripID types.ID) ([]*PlanRun, error)
}

// dayPayload is the JSON-serialized portion of an itinerary day row.
type dayPayload struct {
	Blocks []trip.ItineraryBlock `json:"blocks"`
	Notes  []string              `json:"notes,omitempty"`
}

type itineraryDAO struct {
	db *DB
}

// NewItineraryDAO creates a new itinerary DAO.
func NewItineraryDAO(db *DB) ItineraryDAO {
	return &itineraryDAO{db: db}
}

// ReplaceItinerary atomically replaces all itinerary days and critique
// issues for a trip.
func (d *itineraryDAO) ReplaceItinerary(ctx context.Context, tripID types.ID, days []trip.ItineraryDay, issues []trip.CritiqueIssue) error {
	err := d.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM itinerary_days WHERE trip_id = ?", tripID); err != nil {
			return fmt.Errorf("failed to clear itinerary: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM critique_issues WHERE trip_id = ?", tripID); err != nil {
			return fmt.Errorf("failed to clear critique: %w", err)
		}
		for i := range days {
			if err := insertDay(ctx, tx, tripID, &days[i]); err != nil {
				return err
			}
		}
		return insertIssues(ctx, tx, tripID, issues)
	})
	if err != nil {
		return types.WrapError(types.PERSIST_FAILED, "failed to persist itinerary", err)
	}
	return nil
}

// ReplaceDay atomically replaces a single day and its day-scoped critique
// issues, leaving other days untouched.
func (d *itineraryDAO) ReplaceDay(ctx context.Context, tripID types.ID, day trip.ItineraryDay, issues []trip.CritiqueIssue) error {
	err := d.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM itinerary_days WHERE trip_id = ? AND day_index = ?",
			tripID, day.DayIndex); err != nil {
			return fmt.Errorf("failed to clear day: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM critique_issues WHERE trip_id = ? AND scope != ? AND day_index = ?",
			tripID, string(trip.ScopeTrip), day.DayIndex); err != nil {
			return fmt.Errorf("failed to clear day critique: %w", err)
		}
		if err := insertDay(ctx, tx, tripID, &day); err != nil {
			return err
		}
		return insertIssues(ctx, tx, tripID, issues)
	})
	if err != nil {
		return types.WrapError(types.PERSIST_FAILED, "failed to persist day", err)
	}
	return nil
}

// GetItinerary returns the committed days for a trip in day order.
func (d *itineraryDAO) GetItinerary(ctx context.Context, tripID types.ID) ([]trip.ItineraryDay, error) {
	query := `
		SELECT day_index, date, theme, truncated, payload
		FROM itinerary_days
		WHERE trip_id = ?
		ORDER BY day_index
	`
	rows, err := d.db.conn.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to query itinerary", err)
	}
	defer rows.Close()

	var days []trip.ItineraryDay
	for rows.Next() {
		var day trip.ItineraryDay
		var truncated int
		var payloadJSON string
		if err := rows.Scan(&day.DayIndex, &day.Date, &day.Theme, &truncated, &payloadJSON); err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to scan day", err)
		}
		var payload dayPayload
		if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to unmarshal day payload", err)
		}
		day.Truncated = truncated != 0
		day.Blocks = payload.Blocks
		day.Notes = payload.Notes
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to iterate days", err)
	}
	return days, nil
}

// GetCritique returns the critique issues for a trip.
func (d *itineraryDAO) GetCritique(ctx context.Context, tripID types.ID) ([]trip.CritiqueIssue, error) {
	query := `
		SELECT severity, scope, kind, message, day_index, block_index
		FROM critique_issues
		WHERE trip_id = ?
		ORDER BY day_index, block_index, id
	`
	rows, err := d.db.conn.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to query critique", err)
	}
	defer rows.Close()

	var issues []trip.CritiqueIssue
	for rows.Next() {
		var issue trip.CritiqueIssue
		if err := rows.Scan(&issue.Severity, &issue.Scope, &issue.Kind,
			&issue.Message, &issue.DayIndex, &issue.BlockIndex); err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to scan issue", err)
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to iterate issues", err)
	}
	return issues, nil
}

// RecordRun appends a planning run to the audit trail.
func (d *itineraryDAO) RecordRun(ctx context.Context, run *PlanRun) error {
	if run.ID.IsZero() {
		run.ID = types.NewID()
	}
	query := `
		INSERT INTO plan_runs (id, trip_id, status, stage, failure_reason, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	var finished interface{}
	if run.FinishedAt != nil {
		finished = *run.FinishedAt
	}
	_, err := d.db.conn.ExecContext(ctx, query,
		run.ID, run.TripID, string(run.Status), string(run.Stage),
		run.FailureReason, run.StartedAt, finished)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to record plan run", err)
	}
	return nil
}

// ListRuns returns the planning runs for a trip, newest first.
func (d *itineraryDAO) ListRuns(ctx context.Context, tripID types.ID) ([]*PlanRun, error) {
	query := `
		SELECT id, trip_id, status, stage, failure_reason, started_at, finished_at
		FROM plan_runs
		WHERE trip_id = ?
		ORDER BY started_at DESC
	`
	rows, err := d.db.conn.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to query plan runs", err)
	}
	defer rows.Close()

	var runs []*PlanRun
	for rows.Next() {
		var run PlanRun
		var finished sql.NullTime
		if err := rows.Scan(&run.ID, &run.TripID, &run.Status, &run.Stage,
			&run.FailureReason, &run.StartedAt, &finished); err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to scan plan run", err)
		}
		if finished.Valid {
			run.FinishedAt = &finished.Time
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to iterate plan runs", err)
	}
	return runs, nil
}

func insertDay(ctx context.Context, tx *sql.Tx, tripID types.ID, day *trip.ItineraryDay) error {
	payload, err := json.Marshal(dayPayload{Blocks: day.Blocks, Notes: day.Notes})
	if err != nil {
		return fmt.Errorf("failed to marshal day %d: %w", day.DayIndex, err)
	}
	truncated := 0
	if day.Truncated {
		truncated = 1
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO itinerary_days (trip_id, day_index, date, theme, truncated, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`, tripID, day.DayIndex, day.Date, day.Theme, truncated, string(payload))
	if err != nil {
		return fmt.Errorf("failed to insert day %d: %w", day.DayIndex, err)
	}
	return nil
}

func insertIssues(ctx context.Context, tx *sql.Tx, tripID types.ID, issues []trip.CritiqueIssue) error {
	for _, issue := range issues {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO critique_issues (trip_id, severity, scope, kind, message, day_index, block_index)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, tripID, string(issue.Severity), string(issue.Scope), string(issue.Kind),
			issue.Message, issue.DayIndex, issue.BlockIndex)
		if err != nil {
			return fmt.Errorf("failed to insert critique issue: %w", err)
		}
	}
	return nil
}
