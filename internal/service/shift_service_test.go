package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/janis-commerce/app-tracking-shift-sub000/internal/models"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/storage"
)

func TestShiftService_OpenPersistsShift(t *testing.T) {
	h := newHarness(t)

	id := h.openShift(t)
	if id != "shift-1" {
		t.Fatalf("expected shift-1, got %q", id)
	}
	if got := h.status(t); got != models.ShiftStatusOpened {
		t.Fatalf("expected opened, got %q", got)
	}
	if h.api.lastFilter.ID != "shift-1" || h.api.lastFilter.Status != models.ShiftStatusOpened {
		t.Fatalf("unexpected shift filter: %+v", h.api.lastFilter)
	}

	var shift models.Shift
	if _, err := storage.GetJSON(h.kv, storage.KeyShiftData, &shift); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if shift.DateToClose == nil || shift.ReopeningExtensionTime != 30 {
		t.Fatalf("shift data not stored: %+v", shift)
	}
	if n := h.events.countByID("shift-1", models.EventTypeStart); n != 1 {
		t.Fatalf("expected 1 start event, got %d", n)
	}
}

func TestShiftService_OpenWithoutRemoteID(t *testing.T) {
	h := newHarness(t)
	h.api.shiftID = ""

	id, err := h.shifts.Open(context.Background(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}
	if _, ok, _ := h.kv.Get(storage.KeyShiftID); ok {
		t.Fatalf("shift id should not be stored")
	}
}

func TestShiftService_OpenFallsBackToRequestedStartDate(t *testing.T) {
	h := newHarness(t)
	start := h.clock.Now().Add(-15 * time.Minute)

	if _, err := h.shifts.Open(context.Background(), &models.ShiftParams{StartDate: &start}); err != nil {
		t.Fatalf("Open: %v", err)
	}

	var shift models.Shift
	if _, err := storage.GetJSON(h.kv, storage.KeyShiftData, &shift); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if shift.StartDate == nil || !shift.StartDate.Equal(start) {
		t.Fatalf("expected start date %v, got %v", start, shift.StartDate)
	}
}

func TestShiftService_OpenPropagatesRemoteError(t *testing.T) {
	h := newHarness(t)
	h.api.openErr = errors.New("shift already opened")

	_, err := h.shifts.Open(context.Background(), nil)
	if err == nil || err.Error() != "shift already opened" {
		t.Fatalf("expected remote error, got %v", err)
	}
}

func TestShiftService_EventLogFailureIsNotFatal(t *testing.T) {
	h := newHarness(t)
	h.events.err = errors.New("disk full")

	if id := h.openShift(t); id != "shift-1" {
		t.Fatalf("expected shift-1, got %q", id)
	}
	if _, err := h.shifts.OpenWorkLog(context.Background(), &models.WorkLogParams{ReferenceID: "ref-1"}); err != nil {
		t.Fatalf("OpenWorkLog: %v", err)
	}
}

func TestShiftService_WorkLogPausesAndResumesShift(t *testing.T) {
	h := newHarness(t)
	h.openShift(t)
	ctx := context.Background()

	id, err := h.shifts.OpenWorkLog(ctx, &models.WorkLogParams{ReferenceID: "ref-1", Name: "Lunch", Type: "pause"})
	if err != nil {
		t.Fatalf("OpenWorkLog: %v", err)
	}
	if id != "token" {
		t.Fatalf("expected unprefixed token, got %q", id)
	}
	if got := h.status(t); got != models.ShiftStatusPaused {
		t.Fatalf("expected paused, got %q", got)
	}

	if _, err := h.shifts.FinishWorkLog(ctx, &models.WorkLogParams{ReferenceID: "ref-1"}); err != nil {
		t.Fatalf("FinishWorkLog: %v", err)
	}
	if got := h.status(t); got != models.ShiftStatusOpened {
		t.Fatalf("expected opened, got %q", got)
	}
}

func TestShiftService_ExcludedWorkLogKeepsShiftOpened(t *testing.T) {
	h := newHarness(t)
	h.openShift(t)
	ctx := context.Background()

	for _, ref := range []string{models.ReferenceDefaultPicking, models.ReferenceDefaultDelivery} {
		id, err := h.shifts.OpenWorkLog(ctx, &models.WorkLogParams{ReferenceID: ref})
		if err != nil {
			t.Fatalf("OpenWorkLog(%s): %v", ref, err)
		}
		if got := h.status(t); got != models.ShiftStatusOpened {
			t.Fatalf("%s: expected opened, got %q", ref, got)
		}
		if _, err := h.shifts.FinishWorkLog(ctx, &models.WorkLogParams{ReferenceID: ref}); err != nil {
			t.Fatalf("FinishWorkLog(%s): %v", ref, err)
		}
		if got := h.status(t); got != models.ShiftStatusOpened {
			t.Fatalf("%s: expected opened after finish, got %q", ref, got)
		}
		if id != "picking-token" && id != "delivery-token" {
			t.Fatalf("unexpected id %q", id)
		}
	}
}

func TestShiftService_EmptyWorkLogParamsAreNoop(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for _, params := range []*models.WorkLogParams{nil, {}} {
		if id, err := h.shifts.OpenWorkLog(ctx, params); err != nil || id != "" {
			t.Fatalf("OpenWorkLog(%v) = %q, %v", params, id, err)
		}
		if id, err := h.shifts.FinishWorkLog(ctx, params); err != nil || id != "" {
			t.Fatalf("FinishWorkLog(%v) = %q, %v", params, id, err)
		}
	}
	if h.api.count("GetGlobalSetting") != 0 {
		t.Fatalf("no-op calls should not reach the staff service")
	}
}

func TestShiftService_OpenWorkLogRequiresOpenedShift(t *testing.T) {
	t.Run("no shift", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.shifts.OpenWorkLog(context.Background(), &models.WorkLogParams{ReferenceID: "ref-1"})
		if !errors.Is(err, ErrShiftNotOpened) {
			t.Fatalf("expected ErrShiftNotOpened, got %v", err)
		}
		if has, _ := h.queue.HasData(); has {
			t.Fatalf("nothing should be queued")
		}
		if ops, _ := h.reporter.recorded(); len(ops) != 1 || ops[0] != "worklog.open" {
			t.Fatalf("expected worklog.open to be reported, got %v", ops)
		}
	})

	t.Run("closed shift", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()
		h.openShift(t)
		if _, err := h.shifts.Finish(ctx, nil); err != nil {
			t.Fatalf("Finish: %v", err)
		}

		_, err := h.shifts.OpenWorkLog(ctx, &models.WorkLogParams{ReferenceID: "ref-1"})
		if !errors.Is(err, ErrShiftNotOpened) {
			t.Fatalf("expected ErrShiftNotOpened, got %v", err)
		}
		if has, _ := h.queue.HasData(); has {
			t.Fatalf("nothing should be queued against a closed shift")
		}
		if _, ok, _ := h.kv.Get(storage.KeyCurrentWorkLogID); ok {
			t.Fatalf("current worklog should not be set")
		}
		if n := h.events.countByID("token", models.EventTypeStart); n != 0 {
			t.Fatalf("expected no worklog start event, got %d", n)
		}
		if got := h.status(t); got != models.ShiftStatusClosed {
			t.Fatalf("expected closed, got %q", got)
		}
	})
}

func TestShiftService_FinishCurrentWorkLog(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.openShift(t)

	if _, err := h.shifts.FinishCurrentWorkLog(ctx); !errors.Is(err, ErrNoCurrentWorkLog) {
		t.Fatalf("expected ErrNoCurrentWorkLog, got %v", err)
	}

	if _, err := h.shifts.OpenWorkLog(ctx, &models.WorkLogParams{ReferenceID: "ref-1"}); err != nil {
		t.Fatalf("OpenWorkLog: %v", err)
	}
	id, err := h.shifts.FinishCurrentWorkLog(ctx)
	if err != nil {
		t.Fatalf("FinishCurrentWorkLog: %v", err)
	}
	if id != "token" {
		t.Fatalf("expected token, got %q", id)
	}
	if got := h.status(t); got != models.ShiftStatusOpened {
		t.Fatalf("expected opened, got %q", got)
	}
	fragments, err := h.queue.Get("token")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if f := fragments[0]; f == nil || *f.ReferenceID != "ref-1" || f.EndDate == nil {
		t.Fatalf("unexpected fragment: %+v", f)
	}
}

func TestShiftService_FinishWorkLogWithoutCurrentID(t *testing.T) {
	h := newHarness(t)
	h.openShift(t)

	id, err := h.shifts.FinishWorkLog(context.Background(), &models.WorkLogParams{ReferenceID: "ref-1"})
	if err != nil {
		t.Fatalf("FinishWorkLog: %v", err)
	}
	if id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}
	fragments, err := h.queue.Get("")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if fragments[0] == nil || *fragments[0].Status != models.WorkLogStatusFinished {
		t.Fatalf("expected a finished fragment under the empty id, got %+v", fragments[0])
	}
}

func TestShiftService_FullShiftScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.openShift(t)

	h.clock.Advance(time.Hour)
	wlID, err := h.shifts.OpenWorkLog(ctx, &models.WorkLogParams{ReferenceID: "ref-1", Name: "Break"})
	if err != nil {
		t.Fatalf("OpenWorkLog: %v", err)
	}
	h.clock.Advance(15 * time.Minute)
	if _, err := h.shifts.FinishWorkLog(ctx, &models.WorkLogParams{ReferenceID: "ref-1"}); err != nil {
		t.Fatalf("FinishWorkLog: %v", err)
	}
	h.clock.Advance(time.Hour)

	if _, err := h.shifts.Finish(ctx, nil); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if got := h.status(t); got != models.ShiftStatusClosed {
		t.Fatalf("expected closed, got %q", got)
	}
	for _, key := range []string{storage.KeyCurrentWorkLogID, storage.KeyCurrentWorkLogData} {
		if _, ok, _ := h.kv.Get(key); ok {
			t.Fatalf("%s should be deleted", key)
		}
	}
	for _, id := range []string{"shift-1", wlID} {
		if n := h.events.countByID(id, models.EventTypeStart); n != 1 {
			t.Fatalf("%s: expected 1 start event, got %d", id, n)
		}
		if n := h.events.countByID(id, models.EventTypeFinish); n != 1 {
			t.Fatalf("%s: expected 1 finish event, got %d", id, n)
		}
	}

	if len(h.api.batches) != 1 || len(h.api.batches[0]) != 1 {
		t.Fatalf("expected one batch with one worklog, got %+v", h.api.batches)
	}
	delta := h.api.batches[0][0]
	if delta.WorkLogTypeRefID != "ref-1" || delta.StartDate == nil || delta.EndDate == nil {
		t.Fatalf("unexpected delta: %+v", delta)
	}
	if has, _ := h.queue.HasData(); has {
		t.Fatalf("queue should be empty after finish")
	}
}

func TestShiftService_FinishAfterSoftDeadlineReopensAndFlushes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.openShift(t)

	if _, err := h.shifts.OpenWorkLog(ctx, &models.WorkLogParams{ReferenceID: "ref-1"}); err != nil {
		t.Fatalf("OpenWorkLog: %v", err)
	}

	h.clock.Advance(8*time.Hour + 30*time.Minute)
	if !h.shifts.IsDateToCloseExceeded() || h.shifts.IsDateMaxToCloseExceeded() {
		t.Fatalf("expected only the soft deadline to be exceeded")
	}

	if _, err := h.shifts.Finish(ctx, nil); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if n := h.api.count("OpenShift"); n != 2 {
		t.Fatalf("expected open and implicit reopen, got %d open calls", n)
	}
	if n := h.api.count("PostWorkLogs"); n != 1 {
		t.Fatalf("expected pending worklogs to be flushed, got %d batches", n)
	}
	if n := h.api.count("CloseShift"); n != 1 {
		t.Fatalf("expected one close, got %d", n)
	}
	if got := h.status(t); got != models.ShiftStatusClosed {
		t.Fatalf("expected closed, got %q", got)
	}
}

func TestShiftService_FinishAfterHardDeadlineStillCloses(t *testing.T) {
	h := newHarness(t)
	h.openShift(t)
	h.clock.Advance(11 * time.Hour)

	if _, err := h.shifts.Finish(context.Background(), nil); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if n := h.api.count("OpenShift"); n != 1 {
		t.Fatalf("expected no reopen, got %d open calls", n)
	}
	if got := h.status(t); got != models.ShiftStatusClosed {
		t.Fatalf("expected closed, got %q", got)
	}
}

func TestShiftService_ReOpenPastHardDeadline(t *testing.T) {
	h := newHarness(t)
	h.openShift(t)
	h.clock.Advance(11 * time.Hour)

	if !h.shifts.IsDateMaxToCloseExceeded() {
		t.Fatalf("expected the hard deadline to be exceeded")
	}
	err := h.shifts.ReOpen(context.Background())
	if !errors.Is(err, ErrDeadlineExceeded) {
		t.Fatalf("expected ErrDeadlineExceeded, got %v", err)
	}
	if n := h.api.count("OpenShift"); n != 1 {
		t.Fatalf("reopen must not reach the staff service, got %d open calls", n)
	}
}

func TestShiftService_ReOpenWithoutShift(t *testing.T) {
	h := newHarness(t)

	err := h.shifts.ReOpen(context.Background())
	if !errors.Is(err, ErrShiftIDRequired) {
		t.Fatalf("expected ErrShiftIDRequired, got %v", err)
	}
	if n := h.api.count("OpenShift"); n != 0 {
		t.Fatalf("reopen must not reach the staff service, got %d open calls", n)
	}
	if _, ok, _ := h.kv.Get(storage.KeyShiftStatus); ok {
		t.Fatalf("no shift status should be stored")
	}
}

func TestShiftService_ReOpenExtendsDeadlines(t *testing.T) {
	h := newHarness(t)
	h.openShift(t)
	h.clock.Advance(9 * time.Hour)

	if err := h.shifts.ReOpen(context.Background()); err != nil {
		t.Fatalf("ReOpen: %v", err)
	}

	var shift models.Shift
	if _, err := storage.GetJSON(h.kv, storage.KeyShiftData, &shift); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	if want := start.Add(10*time.Hour + 30*time.Minute); !shift.DateMaxToClose.Equal(want) {
		t.Fatalf("expected dateMaxToClose %v, got %v", want, shift.DateMaxToClose)
	}
	if want := h.clock.Now().Add(30 * time.Minute); !shift.DateToClose.Equal(want) {
		t.Fatalf("expected dateToClose %v, got %v", want, shift.DateToClose)
	}
	if h.shifts.IsDateToCloseExceeded() {
		t.Fatalf("soft deadline should no longer be exceeded")
	}
}

func TestShiftService_DeadlineBoundaries(t *testing.T) {
	h := newHarness(t)
	now := h.clock.Now()

	cases := []struct {
		name     string
		deadline time.Time
		want     bool
	}{
		{"equal", now, true},
		{"one second before now", now.Add(-time.Second), true},
		{"one second after now", now.Add(time.Second), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			shift := models.Shift{ID: "s", DateToClose: models.Ptr(tc.deadline), DateMaxToClose: models.Ptr(tc.deadline)}
			if err := storage.SetJSON(h.kv, storage.KeyShiftData, shift); err != nil {
				t.Fatalf("SetJSON: %v", err)
			}
			if got := h.shifts.IsDateToCloseExceeded(); got != tc.want {
				t.Fatalf("IsDateToCloseExceeded = %v, want %v", got, tc.want)
			}
			if got := h.shifts.IsDateMaxToCloseExceeded(); got != tc.want {
				t.Fatalf("IsDateMaxToCloseExceeded = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestShiftService_DeadlinesWithoutShift(t *testing.T) {
	h := newHarness(t)
	if h.shifts.IsDateToCloseExceeded() || h.shifts.IsDateMaxToCloseExceeded() {
		t.Fatalf("missing deadlines should never be exceeded")
	}
}

func TestShiftService_GetUserOpenShiftEmpty(t *testing.T) {
	h := newHarness(t)

	shift, err := h.shifts.GetUserOpenShift(context.Background(), models.ShiftFilter{UserID: "user-1"})
	if err != nil {
		t.Fatalf("GetUserOpenShift: %v", err)
	}
	if !shift.IsEmpty() {
		t.Fatalf("expected an empty shift, got %+v", shift)
	}
	if h.api.lastFilter.UserID != "user-1" || h.api.lastFilter.Status != models.ShiftStatusOpened {
		t.Fatalf("unexpected filter: %+v", h.api.lastFilter)
	}
}

func TestShiftService_FetchWorklogTypesNormalizes(t *testing.T) {
	h := newHarness(t)
	h.api.types = []models.WorkLogType{
		{ID: "1", ReferenceID: "lunch", Name: "Lunch", Type: "pause", SuggestedTime: 30, Status: "active"},
		{Name: "orphan"},
		{ReferenceID: "bathroom"},
	}

	types, err := h.shifts.FetchWorklogTypes(context.Background())
	if err != nil {
		t.Fatalf("FetchWorklogTypes: %v", err)
	}
	if len(types) != 2 {
		t.Fatalf("expected 2 types, got %+v", types)
	}
	if types[0].Status != "" || types[0].SuggestedTime != 30 {
		t.Fatalf("unexpected normalized type: %+v", types[0])
	}
	if types[1].ReferenceID != "bathroom" || types[1].ID != "" {
		t.Fatalf("unexpected normalized type: %+v", types[1])
	}
}

func TestShiftService_GetWorkLogTypesUsesCache(t *testing.T) {
	h := newHarness(t)
	h.api.types = []models.WorkLogType{{ID: "1", ReferenceID: "lunch"}}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		types, err := h.shifts.GetWorkLogTypes(ctx)
		if err != nil {
			t.Fatalf("GetWorkLogTypes: %v", err)
		}
		if len(types) != 1 {
			t.Fatalf("expected 1 type, got %d", len(types))
		}
	}
	if n := h.api.count("ListWorkLogTypes"); n != 1 {
		t.Fatalf("expected a cache hit, got %d remote calls", n)
	}

	h.clock.Advance(4 * time.Hour)
	if _, err := h.shifts.GetWorkLogTypes(ctx); err != nil {
		t.Fatalf("GetWorkLogTypes: %v", err)
	}
	if n := h.api.count("ListWorkLogTypes"); n != 2 {
		t.Fatalf("expected a refresh after expiry, got %d remote calls", n)
	}
}

func TestShiftService_SendPendingWorkLogs(t *testing.T) {
	t.Run("empty queue", func(t *testing.T) {
		h := newHarness(t)
		res, err := h.shifts.SendPendingWorkLogs(context.Background())
		if err != nil || res != nil {
			t.Fatalf("expected nil, nil got %+v, %v", res, err)
		}
		if h.api.count("PostWorkLogs") != 0 {
			t.Fatalf("nothing should be sent")
		}
	})

	t.Run("batch failure keeps queue", func(t *testing.T) {
		h := newHarness(t)
		h.openShift(t)
		if _, err := h.shifts.OpenWorkLog(context.Background(), &models.WorkLogParams{ReferenceID: "ref-1"}); err != nil {
			t.Fatalf("OpenWorkLog: %v", err)
		}
		h.api.batchErr = errors.New("service unavailable")

		if _, err := h.shifts.SendPendingWorkLogs(context.Background()); err == nil {
			t.Fatalf("expected an error")
		}
		if ops, _ := h.reporter.recorded(); len(ops) != 1 || ops[0] != "worklog.send_pending" {
			t.Fatalf("expected the failure to be reported once, got %v", ops)
		}
		if has, _ := h.queue.HasData(); !has {
			t.Fatalf("queue should be kept after a failed batch")
		}

		h.api.batchErr = nil
		if _, err := h.shifts.SendPendingWorkLogs(context.Background()); err != nil {
			t.Fatalf("SendPendingWorkLogs: %v", err)
		}
		if has, _ := h.queue.HasData(); has {
			t.Fatalf("queue should be cleared after a successful batch")
		}
	})

	t.Run("fragments without reference id", func(t *testing.T) {
		h := newHarness(t)
		if err := h.queue.Save("x", models.WorkLogFragment{Status: models.Ptr(models.WorkLogStatusFinished)}); err != nil {
			t.Fatalf("Save: %v", err)
		}
		res, err := h.shifts.SendPendingWorkLogs(context.Background())
		if err != nil || res != nil {
			t.Fatalf("expected nil, nil got %+v, %v", res, err)
		}
		if h.api.count("PostWorkLogs") != 0 {
			t.Fatalf("nothing should be sent")
		}
	})
}

func TestShiftService_DeleteShiftRegisters(t *testing.T) {
	h := newHarness(t)
	h.openShift(t)
	if _, err := h.shifts.OpenWorkLog(context.Background(), &models.WorkLogParams{ReferenceID: "ref-1"}); err != nil {
		t.Fatalf("OpenWorkLog: %v", err)
	}

	if err := h.shifts.DeleteShiftRegisters(context.Background()); err != nil {
		t.Fatalf("DeleteShiftRegisters: %v", err)
	}
	for _, key := range storage.ShiftScopedKeys {
		if _, ok, _ := h.kv.Get(key); ok {
			t.Fatalf("%s should be deleted", key)
		}
	}
	if len(h.events.events) != 0 {
		t.Fatalf("expected the event log to be wiped")
	}
}

func TestShiftService_EnsureCurrentUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	wiped, err := h.shifts.EnsureCurrentUser(ctx)
	if err != nil || wiped {
		t.Fatalf("first run: wiped=%v err=%v", wiped, err)
	}
	h.openShift(t)

	if wiped, err := h.shifts.EnsureCurrentUser(ctx); err != nil || wiped {
		t.Fatalf("same user: wiped=%v err=%v", wiped, err)
	}

	if err := storage.SetString(h.kv, storage.KeyUserID, "someone-else"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	wiped, err = h.shifts.EnsureCurrentUser(ctx)
	if err != nil || !wiped {
		t.Fatalf("user changed: wiped=%v err=%v", wiped, err)
	}
	if _, ok, _ := h.kv.Get(storage.KeyShiftID); ok {
		t.Fatalf("shift id should be deleted")
	}
	if got, _ := storage.GetString(h.kv, storage.KeyUserID); got != "user-1" {
		t.Fatalf("expected user-1, got %q", got)
	}
}

func TestShiftService_Current(t *testing.T) {
	h := newHarness(t)
	h.openShift(t)
	if _, err := h.shifts.OpenWorkLog(context.Background(), &models.WorkLogParams{ReferenceID: "ref-1", Name: "Break"}); err != nil {
		t.Fatalf("OpenWorkLog: %v", err)
	}

	snapshot, err := h.shifts.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if snapshot.Shift.ID != "shift-1" || snapshot.Status != models.ShiftStatusPaused {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if snapshot.CurrentWorkLog == nil || snapshot.CurrentWorkLog.Name != "Break" {
		t.Fatalf("expected current worklog, got %+v", snapshot.CurrentWorkLog)
	}
	if snapshot.PendingWorkLogs != 1 {
		t.Fatalf("expected 1 pending worklog, got %d", snapshot.PendingWorkLogs)
	}
}
