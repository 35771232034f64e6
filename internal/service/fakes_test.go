package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/janis-commerce/app-tracking-shift-sub000/internal/models"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/queue"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/storage"

	"go.uber.org/zap"
)

type fakeStaffAPI struct {
	mu sync.Mutex

	shiftID    string
	shift      models.Shift
	enabled    *bool
	types      []models.WorkLogType
	batchErr   error
	openErr    error
	batches    [][]models.WorkLogDelta
	calls      map[string]int
	lastFilter models.ShiftFilter
}

func newFakeStaffAPI() *fakeStaffAPI {
	return &fakeStaffAPI{
		shiftID: "shift-1",
		enabled: models.Ptr(true),
		calls:   make(map[string]int),
	}
}

func (f *fakeStaffAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeStaffAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeStaffAPI) OpenShift(_ context.Context, _ *models.ShiftParams) (string, error) {
	f.record("OpenShift")
	if f.openErr != nil {
		return "", f.openErr
	}
	return f.shiftID, nil
}

func (f *fakeStaffAPI) CloseShift(_ context.Context, _ *models.ShiftParams) (string, error) {
	f.record("CloseShift")
	return f.shiftID, nil
}

func (f *fakeStaffAPI) ListShifts(_ context.Context, filter models.ShiftFilter) ([]models.Shift, error) {
	f.record("ListShifts")
	f.lastFilter = filter
	if f.shift.ID == "" {
		return nil, nil
	}
	return []models.Shift{f.shift}, nil
}

func (f *fakeStaffAPI) PostWorkLog(_ context.Context, delta models.WorkLogDelta) (*models.WorkLogResult, error) {
	f.record("PostWorkLog")
	return &models.WorkLogResult{ItemsCreated: []models.WorkLog{{ID: "wl-" + delta.WorkLogTypeRefID}}}, nil
}

func (f *fakeStaffAPI) PostWorkLogs(_ context.Context, deltas []models.WorkLogDelta) (*models.WorkLogResult, error) {
	f.record("PostWorkLogs")
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	f.batches = append(f.batches, deltas)
	return &models.WorkLogResult{}, nil
}

func (f *fakeStaffAPI) ListWorkLogs(_ context.Context, _ models.WorkLogFilter) ([]models.WorkLog, error) {
	f.record("ListWorkLogs")
	return nil, nil
}

func (f *fakeStaffAPI) ListWorkLogTypes(_ context.Context, _ models.WorkLogTypeFilter) ([]models.WorkLogType, error) {
	f.record("ListWorkLogTypes")
	return f.types, nil
}

func (f *fakeStaffAPI) GetGlobalSetting(_ context.Context) (*models.GlobalSetting, error) {
	f.record("GetGlobalSetting")
	return &models.GlobalSetting{EnabledShiftAndWorkLog: f.enabled}, nil
}

type fakeEventLog struct {
	mu        sync.Mutex
	events    []models.TimeTrackerEvent
	err       error
	searchErr error
}

func (f *fakeEventLog) AddEvent(_ context.Context, event models.TimeTrackerEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEventLog) SearchEvents(_ context.Context, q models.EventQuery) ([]models.TimeTrackerEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var out []models.TimeTrackerEvent
	for _, e := range f.events {
		if q.ID != "" && e.ID != q.ID {
			continue
		}
		if q.Type != "" && e.Type != q.Type {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEventLog) DeleteAll(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = nil
	return nil
}

func (f *fakeEventLog) countByID(id string, typ models.EventType) int {
	events, _ := f.SearchEvents(context.Background(), models.EventQuery{ID: id, Type: typ})
	return len(events)
}

type fakeIdentity struct{ userID string }

func (f fakeIdentity) CurrentUserID(context.Context) (string, error) {
	return f.userID, nil
}

type recordingReporter struct {
	mu   sync.Mutex
	ops  []string
	errs []error
}

func (r *recordingReporter) RecordError(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
	r.errs = append(r.errs, err)
}

func (r *recordingReporter) recorded() ([]string, []error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ops...), append([]error(nil), r.errs...)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type harness struct {
	api      *fakeStaffAPI
	events   *fakeEventLog
	kv       *storage.MemoryStore
	queue    *queue.OfflineQueue
	clock    *clock
	reporter *recordingReporter
	shifts   *ShiftService
	reports  *ReportService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := zap.NewNop()
	h := &harness{
		api:    newFakeStaffAPI(),
		events: &fakeEventLog{},
		kv:     storage.NewMemoryStore(),
		clock:  &clock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	h.reporter = &recordingReporter{}
	h.queue = queue.NewOfflineQueue(h.kv, logger)

	worklogs := NewWorkLogService(h.api, h.reporter, logger)
	worklogs.newToken = func() string { return "token" }

	h.shifts = NewShiftService(h.api, worklogs, h.queue, h.events, h.kv, fakeIdentity{userID: "user-1"}, h.reporter, DefaultCacheTTL, logger)
	h.shifts.SetClock(h.clock.Now)

	h.reports = NewReportService(h.events, h.kv, h.reporter, logger)
	h.reports.SetClock(h.clock.Now)
	return h
}

// openShift opens a shift whose deadlines lie well in the future
func (h *harness) openShift(t *testing.T) string {
	t.Helper()

	now := h.clock.Now()
	h.api.shift = models.Shift{
		ID:                     h.api.shiftID,
		StartDate:              models.Ptr(now),
		DateToClose:            models.Ptr(now.Add(8 * time.Hour)),
		DateMaxToClose:         models.Ptr(now.Add(10 * time.Hour)),
		ReopeningExtensionTime: 30,
	}
	id, err := h.shifts.Open(context.Background(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return id
}

func (h *harness) status(t *testing.T) models.ShiftStatus {
	t.Helper()

	status, err := storage.GetString(h.kv, storage.KeyShiftStatus)
	if err != nil {
		t.Fatalf("GetString: %v", err)
	}
	return models.ShiftStatus(status)
}
