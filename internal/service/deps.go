package service

import (
	"context"
	"time"

	"github.com/janis-commerce/app-tracking-shift-sub000/internal/models"
)

// StaffAPI is the remote authority for shifts and worklogs
type StaffAPI interface {
	OpenShift(ctx context.Context, params *models.ShiftParams) (string, error)
	CloseShift(ctx context.Context, params *models.ShiftParams) (string, error)
	ListShifts(ctx context.Context, filter models.ShiftFilter) ([]models.Shift, error)
	PostWorkLog(ctx context.Context, delta models.WorkLogDelta) (*models.WorkLogResult, error)
	PostWorkLogs(ctx context.Context, deltas []models.WorkLogDelta) (*models.WorkLogResult, error)
	ListWorkLogs(ctx context.Context, filter models.WorkLogFilter) ([]models.WorkLog, error)
	ListWorkLogTypes(ctx context.Context, filter models.WorkLogTypeFilter) ([]models.WorkLogType, error)
	GetGlobalSetting(ctx context.Context) (*models.GlobalSetting, error)
}

// EventLog is the append-only record of activity boundaries
type EventLog interface {
	AddEvent(ctx context.Context, event models.TimeTrackerEvent) error
	SearchEvents(ctx context.Context, q models.EventQuery) ([]models.TimeTrackerEvent, error)
	DeleteAll(ctx context.Context) error
}

// Identity resolves the user the device is currently signed in as
type Identity interface {
	CurrentUserID(ctx context.Context) (string, error)
}

// CacheTTL holds the expiry windows of locally cached remote data
type CacheTTL struct {
	WorkLogTypes  time.Duration
	Authorization time.Duration
}

// DefaultCacheTTL matches the staff service refresh policy
var DefaultCacheTTL = CacheTTL{
	WorkLogTypes:  4 * time.Hour,
	Authorization: 24 * time.Hour,
}
