package service

import (
	"context"
	"time"

	"github.com/janis-commerce/app-tracking-shift-sub000/internal/models"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/storage"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/telemetry"

	"go.uber.org/zap"
)

// ReportService rebuilds the time report of the current shift from the event
// log and the locally stored shift boundaries
type ReportService struct {
	events   EventLog
	kv       storage.KeyValueStore
	reporter telemetry.Reporter
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportService creates a new report service. A nil reporter discards
// errors.
func NewReportService(events EventLog, kv storage.KeyValueStore, reporter telemetry.Reporter, logger *zap.Logger) *ReportService {
	if reporter == nil {
		reporter = telemetry.Nop{}
	}
	return &ReportService{
		events:   events,
		kv:       kv,
		reporter: reporter,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock replaces the time source
func (r *ReportService) SetClock(now func() time.Time) {
	r.now = now
}

// GetStartDateByID returns the time of the first start event recorded for id
func (r *ReportService) GetStartDateByID(ctx context.Context, id string) (*time.Time, error) {
	t, err := r.startDateByID(ctx, id)
	if err != nil {
		return nil, r.fail("report.start_date", err)
	}
	return t, nil
}

func (r *ReportService) startDateByID(ctx context.Context, id string) (*time.Time, error) {
	events, err := r.events.SearchEvents(ctx, models.EventQuery{ID: id, Type: models.EventTypeStart})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return models.Ptr(events[0].Time), nil
}

// GetEndDateByID returns the time of the last finish event recorded for id
func (r *ReportService) GetEndDateByID(ctx context.Context, id string) (*time.Time, error) {
	t, err := r.endDateByID(ctx, id)
	if err != nil {
		return nil, r.fail("report.end_date", err)
	}
	return t, nil
}

func (r *ReportService) endDateByID(ctx context.Context, id string) (*time.Time, error) {
	events, err := r.events.SearchEvents(ctx, models.EventQuery{ID: id, Type: models.EventTypeFinish})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return models.Ptr(events[len(events)-1].Time), nil
}

// GetReport computes elapsed, work and pause time for the current shift.
//
// Every tracked activity counts towards pause time whatever its type, so
// work time is elapsed time minus the time spent in any activity.
func (r *ReportService) GetReport(ctx context.Context) (*models.Report, error) {
	report, err := r.getReport(ctx)
	if err != nil {
		return nil, r.fail("report.get", err)
	}
	return report, nil
}

func (r *ReportService) getReport(ctx context.Context) (*models.Report, error) {
	shiftID, err := storage.GetString(r.kv, storage.KeyShiftID)
	if err != nil {
		return nil, err
	}
	if shiftID == "" {
		return nil, ErrShiftIDRequired
	}

	var shift models.Shift
	if _, err := storage.GetJSON(r.kv, storage.KeyShiftData, &shift); err != nil {
		return nil, err
	}
	status, err := storage.GetString(r.kv, storage.KeyShiftStatus)
	if err != nil {
		return nil, err
	}
	closed := models.ShiftStatus(status) == models.ShiftStatusClosed

	startDate, err := r.startDateByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if startDate == nil {
		startDate = shift.StartDate
	}

	endDate := r.now()
	if closed {
		end, err := r.endDateByID(ctx, shiftID)
		if err != nil {
			return nil, err
		}
		switch {
		case end != nil:
			endDate = *end
		case shift.EndDate != nil:
			endDate = *shift.EndDate
		}
	}
	if startDate == nil {
		startDate = models.Ptr(endDate)
	}

	activities, err := r.activities(ctx, shiftID, endDate)
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		ShiftID:     shiftID,
		StartDate:   startDate,
		ElapsedTime: nonNegative(endDate.Sub(*startDate)),
		Activities:  activities,
		IsComplete:  closed,
	}
	if closed {
		report.EndDate = models.Ptr(endDate)
	}
	for _, a := range activities {
		report.PauseTime += a.Duration
	}
	report.WorkTime = report.ElapsedTime - report.PauseTime

	r.logger.Debug("Time report computed",
		zap.String("shift_id", shiftID),
		zap.Int("activities", len(activities)),
		zap.Duration("elapsed", report.ElapsedTime),
	)
	return report, nil
}

// activities groups the worklog events of a shift by worklog id. Unfinished
// activities run until reportEnd.
func (r *ReportService) activities(ctx context.Context, shiftID string, reportEnd time.Time) ([]models.Activity, error) {
	starts, err := r.events.SearchEvents(ctx, models.EventQuery{Type: models.EventTypeStart})
	if err != nil {
		return nil, err
	}
	finishes, err := r.events.SearchEvents(ctx, models.EventQuery{Type: models.EventTypeFinish})
	if err != nil {
		return nil, err
	}

	lastFinish := make(map[string]time.Time, len(finishes))
	for _, e := range finishes {
		lastFinish[e.ID] = e.Time
	}

	activities := make([]models.Activity, 0)
	seen := make(map[string]bool)
	for _, e := range starts {
		if payloadString(e.Payload, "shiftId") != shiftID || seen[e.ID] {
			continue
		}
		seen[e.ID] = true

		start := e.Time
		end := reportEnd
		finished := false
		if t, ok := lastFinish[e.ID]; ok {
			end = t
			finished = true
		}

		activity := models.Activity{
			ID:          e.ID,
			ReferenceID: payloadString(e.Payload, "referenceId"),
			Name:        payloadString(e.Payload, "name"),
			Type:        payloadString(e.Payload, "type"),
			StartTime:   models.Ptr(start),
			Duration:    nonNegative(end.Sub(start)),
		}
		if finished {
			activity.EndTime = models.Ptr(end)
		}
		activities = append(activities, activity)
	}
	return activities, nil
}

func (r *ReportService) fail(op string, err error) error {
	r.reporter.RecordError(op, err)
	return err
}

func payloadString(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
