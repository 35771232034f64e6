package tracker

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/janis-commerce/app-tracking-shift-sub000/internal/models"

	"go.uber.org/zap"
)

// TimeTracker is the append-only event log of activity boundaries for one device
type TimeTracker struct {
	db       *sql.DB
	deviceID string
	logger   *zap.Logger
}

// NewTimeTracker creates an event log backed by the time_tracker_events table
func NewTimeTracker(db *sql.DB, deviceID string, logger *zap.Logger) *TimeTracker {
	return &TimeTracker{
		db:       db,
		deviceID: deviceID,
		logger:   logger,
	}
}

// AddEvent appends an event
func (tt *TimeTracker) AddEvent(ctx context.Context, event models.TimeTrackerEvent) error {
	if event.Type != models.EventTypeStart && event.Type != models.EventTypeFinish {
		return fmt.Errorf("invalid event type %q", event.Type)
	}
	if event.Time.IsZero() {
		event.Time = time.Now()
	}

	var payload sql.NullString
	if len(event.Payload) > 0 {
		b, err := json.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		payload = sql.NullString{String: string(b), Valid: true}
	}

	_, err := tt.db.ExecContext(ctx, `
		INSERT INTO time_tracker_events (device_id, event_id, event_type, event_time_unixms, payload_json)
		VALUES (?, ?, ?, ?, ?)
	`, tt.deviceID, event.ID, string(event.Type), event.Time.UnixMilli(), payload)
	if err != nil {
		return fmt.Errorf("failed to add event: %w", err)
	}

	tt.logger.Debug("Event tracked",
		zap.String("id", event.ID),
		zap.String("type", string(event.Type)),
		zap.Time("time", event.Time),
	)
	return nil
}

// SearchEvents returns the events matching q in chronological order
func (tt *TimeTracker) SearchEvents(ctx context.Context, q models.EventQuery) ([]models.TimeTrackerEvent, error) {
	query := `
		SELECT event_id, event_type, event_time_unixms, payload_json
		FROM time_tracker_events
		WHERE device_id = ?`
	args := []interface{}{tt.deviceID}
	if q.ID != "" {
		query += " AND event_id = ?"
		args = append(args, q.ID)
	}
	if q.Type != "" {
		query += " AND event_type = ?"
		args = append(args, string(q.Type))
	}
	query += " ORDER BY event_time_unixms ASC, seq ASC"

	rows, err := tt.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.TimeTrackerEvent
	for rows.Next() {
		var (
			event   models.TimeTrackerEvent
			typ     string
			unixMs  int64
			payload sql.NullString
		)
		if err := rows.Scan(&event.ID, &typ, &unixMs, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.Type = models.EventType(typ)
		event.Time = time.UnixMilli(unixMs)
		if payload.Valid && payload.String != "" {
			if err := json.Unmarshal([]byte(payload.String), &event.Payload); err != nil {
				tt.logger.Warn("Failed to unmarshal event payload",
					zap.String("id", event.ID),
					zap.Error(err),
				)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

// DeleteAll wipes every event recorded for the device
func (tt *TimeTracker) DeleteAll(ctx context.Context) error {
	result, err := tt.db.ExecContext(ctx, `DELETE FROM time_tracker_events WHERE device_id = ?`, tt.deviceID)
	if err != nil {
		return fmt.Errorf("failed to delete events: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	tt.logger.Info("Time tracker events deleted",
		zap.String("device_id", tt.deviceID),
		zap.Int64("count", rowsAffected),
	)
	return nil
}
