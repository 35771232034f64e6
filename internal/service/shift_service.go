package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/janis-commerce/app-tracking-shift-sub000/internal/models"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/queue"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/storage"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/telemetry"

	"go.uber.org/zap"
)

// ShiftService drives the shift lifecycle: it opens, pauses, resumes, closes
// and reopens the current shift and tracks the worklogs performed within it.
//
// Remote state is owned by the staff service. Local state lives in the key
// value store (current shift and worklog), the offline queue (worklogs still
// to be synced) and the event log (boundaries used for reporting).
type ShiftService struct {
	api      StaffAPI
	worklogs *WorkLogService
	queue    *queue.OfflineQueue
	events   EventLog
	kv       storage.KeyValueStore
	identity Identity
	reporter telemetry.Reporter
	ttl      CacheTTL
	logger   *zap.Logger
	now      func() time.Time

	mu sync.Mutex
}

// NewShiftService creates a new shift service. identity may be nil, in which
// case EnsureCurrentUser is a no-op.
func NewShiftService(
	api StaffAPI,
	worklogs *WorkLogService,
	offlineQueue *queue.OfflineQueue,
	events EventLog,
	kv storage.KeyValueStore,
	identity Identity,
	reporter telemetry.Reporter,
	ttl CacheTTL,
	logger *zap.Logger,
) *ShiftService {
	if reporter == nil {
		reporter = telemetry.Nop{}
	}
	return &ShiftService{
		api:      api,
		worklogs: worklogs,
		queue:    offlineQueue,
		events:   events,
		kv:       kv,
		identity: identity,
		reporter: reporter,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock replaces the time source
func (s *ShiftService) SetClock(now func() time.Time) {
	s.now = now
}

// Snapshot is the locally known state of the current shift
type Snapshot struct {
	Shift           models.Shift       `json:"shift"`
	Status          models.ShiftStatus `json:"status,omitempty"`
	CurrentWorkLog  *models.WorkLog    `json:"currentWorkLog,omitempty"`
	PendingWorkLogs int                `json:"pendingWorkLogs"`
}

// Open opens a new shift and makes it the current one. It returns the shift
// id, or "" when the staff service answered without one.
func (s *ShiftService) Open(ctx context.Context, params *models.ShiftParams) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.open(ctx, params)
	if err != nil {
		return "", s.fail("shift.open", err)
	}
	return id, nil
}

func (s *ShiftService) open(ctx context.Context, params *models.ShiftParams) (string, error) {
	if err := s.authorize(ctx); err != nil {
		return "", err
	}

	id, err := s.api.OpenShift(ctx, params)
	if err != nil {
		return "", err
	}
	if id == "" {
		s.logger.Warn("Shift open response carried no id")
		return "", nil
	}

	shift, err := s.getUserOpenShift(ctx, models.ShiftFilter{ID: id})
	if err != nil {
		return "", err
	}
	shift.ID = id
	shift.Status = models.ShiftStatusOpened
	if shift.StartDate == nil {
		if params != nil && params.StartDate != nil {
			shift.StartDate = models.Ptr(*params.StartDate)
		} else {
			shift.StartDate = models.Ptr(s.now())
		}
	}

	if err := s.trackEvent(ctx, id, models.EventTypeStart, *shift.StartDate, map[string]any{"kind": "shift"}); err != nil {
		s.logger.Warn("Failed to track shift start", zap.String("shift_id", id), zap.Error(err))
	}

	if err := s.saveShift(shift); err != nil {
		return "", err
	}

	s.logger.Info("Shift opened", zap.String("shift_id", id))
	return id, nil
}

// Finish closes the current shift. Pending offline worklogs are flushed first
// and an expired soft deadline is extended through an implicit reopen.
func (s *ShiftService) Finish(ctx context.Context, params *models.ShiftParams) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.finish(ctx, params)
	if err != nil {
		return "", s.fail("shift.finish", err)
	}
	return id, nil
}

func (s *ShiftService) finish(ctx context.Context, params *models.ShiftParams) (string, error) {
	if err := s.authorize(ctx); err != nil {
		return "", err
	}

	if s.isDateToCloseExceeded() {
		if s.isDateMaxToCloseExceeded() {
			s.logger.Info("Shift max close date exceeded, closing without reopening")
		} else if err := s.reOpen(ctx); err != nil {
			return "", err
		}
	}

	hasData, err := s.queue.HasData()
	if err != nil {
		return "", err
	}
	if hasData {
		if _, err := s.sendPendingWorkLogs(ctx); err != nil {
			return "", err
		}
	}

	id, err := s.api.CloseShift(ctx, params)
	if err != nil {
		return "", err
	}

	shift, err := s.loadShift()
	if err != nil {
		return "", err
	}
	if shift.ID == "" {
		shift.ID = id
	}
	endDate := s.now()
	if params != nil && params.EndDate != nil {
		endDate = *params.EndDate
	}
	shift.EndDate = &endDate
	shift.Status = models.ShiftStatusClosed

	if err := s.saveShift(shift); err != nil {
		return "", err
	}
	if err := storage.DeleteKeys(s.kv, storage.KeyCurrentWorkLogID, storage.KeyCurrentWorkLogData); err != nil {
		return "", err
	}

	if err := s.trackEvent(ctx, shift.ID, models.EventTypeFinish, endDate, nil); err != nil {
		s.logger.Warn("Failed to track shift finish", zap.String("shift_id", shift.ID), zap.Error(err))
	}

	s.logger.Info("Shift closed", zap.String("shift_id", shift.ID))
	return id, nil
}

// OpenWorkLog starts an activity and makes it the current worklog. Non
// reserved activities pause an opened shift. Empty params are a no-op and a
// missing or closed shift fails with ErrShiftNotOpened.
func (s *ShiftService) OpenWorkLog(ctx context.Context, params *models.WorkLogParams) (string, error) {
	if params.IsEmpty() {
		return "", nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.openWorkLog(ctx, params)
	if err != nil {
		return "", s.fail("worklog.open", err)
	}
	return id, nil
}

func (s *ShiftService) openWorkLog(ctx context.Context, params *models.WorkLogParams) (string, error) {
	if err := s.authorize(ctx); err != nil {
		return "", err
	}

	shift, err := s.loadShift()
	if err != nil {
		return "", err
	}
	if shift.ID == "" || shift.Status == models.ShiftStatusClosed {
		return "", ErrShiftNotOpened
	}
	shiftID := shift.ID

	id := s.worklogs.CreateID(params.ReferenceID)
	startDate := s.now()
	worklog := models.WorkLog{
		ID:          id,
		ReferenceID: params.ReferenceID,
		ShiftID:     shiftID,
		Type:        params.Type,
		Name:        params.Name,
		StartDate:   &startDate,
		Status:      models.WorkLogStatusInProgress,
	}

	if err := s.queue.Save(id, models.WorkLogFragment{
		ID:          models.Ptr(id),
		ReferenceID: models.Ptr(params.ReferenceID),
		ShiftID:     models.Ptr(shiftID),
		Type:        models.Ptr(params.Type),
		Name:        models.Ptr(params.Name),
		StartDate:   &startDate,
		Status:      models.Ptr(models.WorkLogStatusInProgress),
	}); err != nil {
		return "", err
	}

	payload := map[string]any{
		"kind":        "worklog",
		"shiftId":     shiftID,
		"referenceId": params.ReferenceID,
		"name":        params.Name,
		"type":        params.Type,
	}
	if err := s.trackEvent(ctx, id, models.EventTypeStart, startDate, payload); err != nil {
		s.logger.Warn("Failed to track worklog start", zap.String("worklog_id", id), zap.Error(err))
	}

	if err := storage.SetString(s.kv, storage.KeyCurrentWorkLogID, id); err != nil {
		return "", err
	}
	if err := storage.SetJSON(s.kv, storage.KeyCurrentWorkLogData, worklog); err != nil {
		return "", err
	}

	if !IsExcludedActivity(params.ReferenceID) {
		if err := s.transition(models.ShiftStatusOpened, models.ShiftStatusPaused); err != nil {
			return "", err
		}
	}

	s.logger.Info("Worklog opened",
		zap.String("worklog_id", id),
		zap.String("reference_id", params.ReferenceID),
	)
	return id, nil
}

// FinishWorkLog ends the current worklog and resumes a paused shift. Empty
// params are a no-op. Without a current worklog the finish is still recorded
// under an empty id.
func (s *ShiftService) FinishWorkLog(ctx context.Context, params *models.WorkLogParams) (string, error) {
	if params.IsEmpty() {
		return "", nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.finishWorkLog(ctx, params)
	if err != nil {
		return "", s.fail("worklog.finish", err)
	}
	return id, nil
}

// FinishCurrentWorkLog finishes the worklog in progress, whatever its
// reference id. It fails with ErrNoCurrentWorkLog when none is in progress.
func (s *ShiftService) FinishCurrentWorkLog(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current models.WorkLog
	found, err := storage.GetJSON(s.kv, storage.KeyCurrentWorkLogData, &current)
	if err == nil && (!found || current.ReferenceID == "") {
		err = ErrNoCurrentWorkLog
	}
	if err != nil {
		return "", s.fail("worklog.finish", err)
	}

	id, err := s.finishWorkLog(ctx, &models.WorkLogParams{ReferenceID: current.ReferenceID})
	if err != nil {
		return "", s.fail("worklog.finish", err)
	}
	return id, nil
}

func (s *ShiftService) finishWorkLog(ctx context.Context, params *models.WorkLogParams) (string, error) {
	if err := s.authorize(ctx); err != nil {
		return "", err
	}

	id, err := storage.GetString(s.kv, storage.KeyCurrentWorkLogID)
	if err != nil {
		return "", err
	}
	if id == "" {
		s.logger.Warn("Finishing worklog without a current worklog id")
	}

	var current models.WorkLog
	if _, err := storage.GetJSON(s.kv, storage.KeyCurrentWorkLogData, &current); err != nil {
		return "", err
	}
	referenceID := params.ReferenceID
	if referenceID == "" {
		referenceID = current.ReferenceID
	}

	endDate := s.now()
	if err := s.queue.Save(id, models.WorkLogFragment{
		ReferenceID: models.Ptr(referenceID),
		EndDate:     &endDate,
		Status:      models.Ptr(models.WorkLogStatusFinished),
	}); err != nil {
		return "", err
	}

	if err := s.trackEvent(ctx, id, models.EventTypeFinish, endDate, map[string]any{"referenceId": referenceID}); err != nil {
		s.logger.Warn("Failed to track worklog finish", zap.String("worklog_id", id), zap.Error(err))
	}

	if err := storage.DeleteKeys(s.kv, storage.KeyCurrentWorkLogID, storage.KeyCurrentWorkLogData); err != nil {
		return "", err
	}

	if !IsExcludedActivity(referenceID) {
		if err := s.transition(models.ShiftStatusPaused, models.ShiftStatusOpened); err != nil {
			return "", err
		}
	}

	s.logger.Info("Worklog finished",
		zap.String("worklog_id", id),
		zap.String("reference_id", referenceID),
	)
	return id, nil
}

// GetUserOpenShift returns the first opened shift matching filter, or an
// empty shift when there is none
func (s *ShiftService) GetUserOpenShift(ctx context.Context, filter models.ShiftFilter) (models.Shift, error) {
	shift, err := s.getUserOpenShift(ctx, filter)
	if err != nil {
		return models.Shift{}, s.fail("shift.get_open", err)
	}
	return shift, nil
}

func (s *ShiftService) getUserOpenShift(ctx context.Context, filter models.ShiftFilter) (models.Shift, error) {
	filter.Status = models.ShiftStatusOpened
	shifts, err := s.api.ListShifts(ctx, filter)
	if err != nil {
		return models.Shift{}, err
	}
	if len(shifts) == 0 {
		return models.Shift{}, nil
	}
	return shifts[0], nil
}

// FetchWorklogTypes lists the active, non internal work, pause and problem
// activity kinds
func (s *ShiftService) FetchWorklogTypes(ctx context.Context) ([]models.WorkLogType, error) {
	types, err := s.fetchWorklogTypes(ctx)
	if err != nil {
		return nil, s.fail("worklog_types.fetch", err)
	}
	return types, nil
}

func (s *ShiftService) fetchWorklogTypes(ctx context.Context) ([]models.WorkLogType, error) {
	remote, err := s.api.ListWorkLogTypes(ctx, models.WorkLogTypeFilter{
		Status:     "active",
		Types:      []string{"work", "pause", "problem"},
		IsInternal: models.Ptr(false),
	})
	if err != nil {
		return nil, err
	}

	types := make([]models.WorkLogType, 0, len(remote))
	for _, t := range remote {
		if t.ID == "" && t.ReferenceID == "" {
			continue
		}
		types = append(types, models.WorkLogType{
			ID:            t.ID,
			ReferenceID:   t.ReferenceID,
			Name:          t.Name,
			Type:          t.Type,
			Description:   t.Description,
			SuggestedTime: t.SuggestedTime,
		})
	}
	return types, nil
}

// GetWorkLogTypes returns the cached activity kinds, refreshing them from the
// staff service once the cache has expired
func (s *ShiftService) GetWorkLogTypes(ctx context.Context) ([]models.WorkLogType, error) {
	var cached []models.WorkLogType
	found, err := storage.GetExpiring(s.kv, storage.KeyWorkLogTypes, &cached, s.now())
	if err != nil {
		return nil, s.fail("worklog_types.get", err)
	}
	if found {
		return cached, nil
	}

	types, err := s.fetchWorklogTypes(ctx)
	if err != nil {
		return nil, s.fail("worklog_types.get", err)
	}
	if err := storage.SetExpiring(s.kv, storage.KeyWorkLogTypes, types, s.ttl.WorkLogTypes, s.now()); err != nil {
		return nil, s.fail("worklog_types.get", err)
	}
	return types, nil
}

// DeleteShiftRegisters wipes every locally stored trace of the shift session
func (s *ShiftService) DeleteShiftRegisters(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.deleteShiftRegisters(ctx); err != nil {
		return s.fail("shift.delete_registers", err)
	}
	return nil
}

func (s *ShiftService) deleteShiftRegisters(ctx context.Context) error {
	if err := storage.DeleteKeys(s.kv, storage.ShiftScopedKeys...); err != nil {
		return err
	}
	if err := s.events.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to wipe time tracker events: %w", err)
	}
	s.logger.Info("Shift registers deleted")
	return nil
}

// EnsureCurrentUser compares the signed in user with the one the local state
// belongs to and wipes the shift registers when they differ. It reports
// whether a wipe happened.
func (s *ShiftService) EnsureCurrentUser(ctx context.Context) (bool, error) {
	if s.identity == nil {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userID, err := s.identity.CurrentUserID(ctx)
	if err != nil {
		return false, s.fail("shift.ensure_user", err)
	}
	stored, err := storage.GetString(s.kv, storage.KeyUserID)
	if err != nil {
		return false, s.fail("shift.ensure_user", err)
	}

	wiped := false
	if stored != "" && stored != userID {
		s.logger.Info("Signed in user changed, deleting shift registers",
			zap.String("previous_user_id", stored),
			zap.String("user_id", userID),
		)
		if err := s.deleteShiftRegisters(ctx); err != nil {
			return false, s.fail("shift.ensure_user", err)
		}
		wiped = true
	}
	if stored != userID {
		if err := storage.SetString(s.kv, storage.KeyUserID, userID); err != nil {
			return wiped, s.fail("shift.ensure_user", err)
		}
	}
	return wiped, nil
}

// SendPendingWorkLogs flushes the offline queue to the staff service. The
// queue is cleared only when the batch is accepted. It returns nil when there
// is nothing to send.
func (s *ShiftService) SendPendingWorkLogs(ctx context.Context) (*models.WorkLogResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.sendPendingWorkLogs(ctx)
	if err != nil {
		return nil, s.fail("worklog.send_pending", err)
	}
	return res, nil
}

func (s *ShiftService) sendPendingWorkLogs(ctx context.Context) (*models.WorkLogResult, error) {
	fragments, err := s.queue.Get()
	if err != nil {
		return nil, err
	}
	if len(fragments) == 0 {
		return nil, nil
	}

	status, err := s.loadStatus()
	if err != nil {
		return nil, err
	}
	if status != models.ShiftStatusClosed && s.isDateToCloseExceeded() && !s.isDateMaxToCloseExceeded() {
		if err := s.reOpen(ctx); err != nil {
			return nil, err
		}
	}

	deltas := FormatForJanis(fragments)
	if len(deltas) == 0 {
		s.logger.Warn("Offline worklogs have no reference id, nothing to send",
			zap.Int("pending", len(fragments)),
		)
		return nil, nil
	}

	res, err := s.worklogs.batch(ctx, deltas)
	if err != nil {
		return nil, err
	}
	if err := s.queue.DeleteAll(); err != nil {
		return nil, err
	}
	return res, nil
}

// ReOpen reopens the current shift and extends its deadlines by the shift's
// reopening extension time. It fails with ErrDeadlineExceeded once the hard
// deadline has passed and with ErrShiftIDRequired when there is no shift.
func (s *ShiftService) ReOpen(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reOpen(ctx); err != nil {
		return s.fail("shift.reopen", err)
	}
	return nil
}

func (s *ShiftService) reOpen(ctx context.Context) error {
	if s.isDateMaxToCloseExceeded() {
		return ErrDeadlineExceeded
	}
	shift, err := s.loadShift()
	if err != nil {
		return err
	}
	if shift.ID == "" {
		return ErrShiftIDRequired
	}
	if err := s.authorize(ctx); err != nil {
		return err
	}

	if _, err := s.api.OpenShift(ctx, nil); err != nil {
		return err
	}

	now := s.now()
	extension := shift.ReopeningExtension()
	shift.DateToClose = models.Ptr(now.Add(extension))
	if shift.DateMaxToClose != nil {
		shift.DateMaxToClose = models.Ptr(shift.DateMaxToClose.Add(extension))
	}
	if shift.Status != models.ShiftStatusPaused {
		shift.Status = models.ShiftStatusOpened
	}
	shift.EndDate = nil

	if err := s.saveShift(shift); err != nil {
		return err
	}

	s.logger.Info("Shift reopened",
		zap.String("shift_id", shift.ID),
		zap.Duration("extension", extension),
	)
	return nil
}

// IsDateToCloseExceeded reports whether the soft deadline has been reached
func (s *ShiftService) IsDateToCloseExceeded() bool {
	return s.isDateToCloseExceeded()
}

// IsDateMaxToCloseExceeded reports whether the hard deadline has been reached
func (s *ShiftService) IsDateMaxToCloseExceeded() bool {
	return s.isDateMaxToCloseExceeded()
}

func (s *ShiftService) isDateToCloseExceeded() bool {
	shift, err := s.loadShift()
	if err != nil {
		s.logger.Warn("Failed to read shift data", zap.Error(err))
		return false
	}
	return deadlineReached(s.now(), shift.DateToClose)
}

func (s *ShiftService) isDateMaxToCloseExceeded() bool {
	shift, err := s.loadShift()
	if err != nil {
		s.logger.Warn("Failed to read shift data", zap.Error(err))
		return false
	}
	return deadlineReached(s.now(), shift.DateMaxToClose)
}

func deadlineReached(now time.Time, deadline *time.Time) bool {
	if deadline == nil || deadline.IsZero() {
		return false
	}
	return !now.Before(*deadline)
}

// Current returns the locally stored state of the shift session
func (s *ShiftService) Current() (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shift, err := s.loadShift()
	if err != nil {
		return nil, err
	}
	snapshot := &Snapshot{Shift: shift, Status: shift.Status}

	var current models.WorkLog
	found, err := storage.GetJSON(s.kv, storage.KeyCurrentWorkLogData, &current)
	if err != nil {
		return nil, err
	}
	if found {
		snapshot.CurrentWorkLog = &current
	}

	snapshot.PendingWorkLogs, err = s.queue.PendingCount()
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// PendingWorkLogs returns the number of worklogs waiting in the offline queue
func (s *ShiftService) PendingWorkLogs() (int, error) {
	return s.queue.PendingCount()
}

func (s *ShiftService) loadShift() (models.Shift, error) {
	var shift models.Shift
	if _, err := storage.GetJSON(s.kv, storage.KeyShiftData, &shift); err != nil {
		return models.Shift{}, err
	}
	id, err := storage.GetString(s.kv, storage.KeyShiftID)
	if err != nil {
		return models.Shift{}, err
	}
	if id != "" {
		shift.ID = id
	}
	status, err := s.loadStatus()
	if err != nil {
		return models.Shift{}, err
	}
	if status != "" {
		shift.Status = status
	}
	return shift, nil
}

func (s *ShiftService) loadStatus() (models.ShiftStatus, error) {
	status, err := storage.GetString(s.kv, storage.KeyShiftStatus)
	return models.ShiftStatus(status), err
}

func (s *ShiftService) saveShift(shift models.Shift) error {
	if err := storage.SetString(s.kv, storage.KeyShiftID, shift.ID); err != nil {
		return err
	}
	if err := storage.SetString(s.kv, storage.KeyShiftStatus, string(shift.Status)); err != nil {
		return err
	}
	return storage.SetJSON(s.kv, storage.KeyShiftData, shift)
}

// transition moves the shift to `to` when it currently is in `from`
func (s *ShiftService) transition(from, to models.ShiftStatus) error {
	shift, err := s.loadShift()
	if err != nil {
		return err
	}
	if shift.Status != from || !models.CanTransition(from, to) {
		return nil
	}
	shift.Status = to
	if err := s.saveShift(shift); err != nil {
		return err
	}

	s.logger.Debug("Shift status changed",
		zap.String("shift_id", shift.ID),
		zap.String("old_status", string(from)),
		zap.String("new_status", string(to)),
	)
	return nil
}

// trackEvent appends to the event log. Callers treat a failure as non fatal.
func (s *ShiftService) trackEvent(ctx context.Context, id string, typ models.EventType, at time.Time, payload map[string]any) error {
	return s.events.AddEvent(ctx, models.TimeTrackerEvent{
		ID:      id,
		Type:    typ,
		Time:    at,
		Payload: payload,
	})
}

// fail reports err to telemetry before it is returned to the caller
func (s *ShiftService) fail(op string, err error) error {
	s.reporter.RecordError(op, err)
	return err
}
