package service

import (
	"context"
	"fmt"
	"time"

	"github.com/janis-commerce/app-tracking-shift-sub000/internal/models"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/telemetry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// internalActivities maps the reserved reference ids to their id prefix
var internalActivities = map[string]string{
	models.ReferenceDefaultPicking:  "picking",
	models.ReferenceDefaultDelivery: "delivery",
}

// IsExcludedActivity reports whether the activity is a reserved internal one
// that never pauses the shift
func IsExcludedActivity(referenceID string) bool {
	_, ok := internalActivities[referenceID]
	return ok
}

// WorkLogService synchronises worklogs with the staff service
type WorkLogService struct {
	api      StaffAPI
	reporter telemetry.Reporter
	newToken func() string
	logger   *zap.Logger
}

// NewWorkLogService creates a new worklog service. A nil reporter discards
// errors.
func NewWorkLogService(api StaffAPI, reporter telemetry.Reporter, logger *zap.Logger) *WorkLogService {
	if reporter == nil {
		reporter = telemetry.Nop{}
	}
	return &WorkLogService{
		api:      api,
		reporter: reporter,
		newToken: uuid.NewString,
		logger:   logger,
	}
}

// Open posts the start of an activity and returns the id of the remote worklog
func (s *WorkLogService) Open(ctx context.Context, referenceID string, startDate time.Time) (string, error) {
	res, err := s.api.PostWorkLog(ctx, models.WorkLogDelta{WorkLogTypeRefID: referenceID, StartDate: &startDate})
	if err != nil {
		return "", s.fail("worklog.post_open", err)
	}
	return resultID(res), nil
}

// Finish posts the end of an activity and returns the id of the remote worklog
func (s *WorkLogService) Finish(ctx context.Context, referenceID string, endDate time.Time) (string, error) {
	res, err := s.api.PostWorkLog(ctx, models.WorkLogDelta{WorkLogTypeRefID: referenceID, EndDate: &endDate})
	if err != nil {
		return "", s.fail("worklog.post_finish", err)
	}
	return resultID(res), nil
}

// GetList lists the in progress and finished worklogs of a shift
func (s *WorkLogService) GetList(ctx context.Context, shiftID string) ([]models.WorkLog, error) {
	if shiftID == "" {
		return nil, s.fail("worklog.list", ErrShiftIDRequired)
	}
	worklogs, err := s.api.ListWorkLogs(ctx, models.WorkLogFilter{
		ShiftID:  shiftID,
		Statuses: []models.WorkLogStatus{models.WorkLogStatusInProgress, models.WorkLogStatusFinished},
	})
	if err != nil {
		return nil, s.fail("worklog.list", err)
	}
	return worklogs, nil
}

// Batch posts several worklog deltas at once. It is a no-op for an empty batch.
func (s *WorkLogService) Batch(ctx context.Context, deltas []models.WorkLogDelta) (*models.WorkLogResult, error) {
	res, err := s.batch(ctx, deltas)
	if err != nil {
		return nil, s.fail("worklog.batch", err)
	}
	return res, nil
}

// batch is Batch without reporting, for callers that report on their own
func (s *WorkLogService) batch(ctx context.Context, deltas []models.WorkLogDelta) (*models.WorkLogResult, error) {
	if len(deltas) == 0 {
		return nil, nil
	}

	res, err := s.api.PostWorkLogs(ctx, deltas)
	if err != nil {
		return nil, fmt.Errorf("failed to send worklog batch: %w", err)
	}

	s.logger.Info("Worklog batch synced",
		zap.Int("sent", len(deltas)),
		zap.Int("created", len(res.ItemsCreated)),
		zap.Int("updated", len(res.ItemsUpdated)),
	)
	return res, nil
}

// CreateID returns the local id for a new worklog. Reserved activities get a
// fixed prefix so they can be recognised later.
func (s *WorkLogService) CreateID(referenceID string) string {
	token := s.newToken()
	if prefix, ok := internalActivities[referenceID]; ok {
		return prefix + "-" + token
	}
	return token
}

// FormatForJanis converts queued fragments to the work-log wire shape,
// dropping fragments without a reference id
func FormatForJanis(fragments []*models.WorkLogFragment) []models.WorkLogDelta {
	deltas := make([]models.WorkLogDelta, 0, len(fragments))
	for _, f := range fragments {
		if f == nil || f.ReferenceID == nil || *f.ReferenceID == "" {
			continue
		}
		deltas = append(deltas, models.WorkLogDelta{
			WorkLogTypeRefID: *f.ReferenceID,
			StartDate:        f.StartDate,
			EndDate:          f.EndDate,
		})
	}
	return deltas
}

func (s *WorkLogService) fail(op string, err error) error {
	s.reporter.RecordError(op, err)
	return err
}

func resultID(res *models.WorkLogResult) string {
	if res == nil {
		return ""
	}
	if len(res.ItemsCreated) > 0 {
		return res.ItemsCreated[0].ID
	}
	if len(res.ItemsUpdated) > 0 {
		return res.ItemsUpdated[0].ID
	}
	return ""
}
