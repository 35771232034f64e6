package service

import (
	"context"
	"sync"
	"time"

	"github.com/janis-commerce/app-tracking-shift-sub000/internal/storage"

	"go.uber.org/zap"
)

// minNudgeGap throttles flushes triggered by queue changes
const minNudgeGap = 5 * time.Second

// SyncWorker periodically drains the offline worklog queue
type SyncWorker struct {
	shifts   *ShiftService
	kv       storage.KeyValueStore
	interval time.Duration
	logger   *zap.Logger

	mu          sync.Mutex
	stopChan    chan struct{}
	nudge       chan struct{}
	unsubscribe func()
	wg          sync.WaitGroup
	lastAttempt time.Time
	lastSync    time.Time
	lastErr     error
}

// SyncStatus describes the outcome of the latest flush attempts
type SyncStatus struct {
	LastAttempt time.Time `json:"lastAttempt"`
	LastSync    time.Time `json:"lastSync"`
	LastError   string    `json:"lastError,omitempty"`
}

// NewSyncWorker creates a new sync worker. kv may be nil, in which case the
// worker only flushes on its interval.
func NewSyncWorker(shifts *ShiftService, kv storage.KeyValueStore, interval time.Duration, logger *zap.Logger) *SyncWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SyncWorker{
		shifts:   shifts,
		kv:       kv,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
		nudge:    make(chan struct{}, 1),
	}
}

// Start begins flushing in the background
func (w *SyncWorker) Start() {
	w.logger.Info("Starting sync worker", zap.Duration("interval", w.interval))

	// Flush early when a worklog lands in the queue
	if w.kv != nil {
		w.unsubscribe = w.kv.Subscribe(func(key string) {
			if key != storage.KeyOfflineWorkLogs {
				return
			}
			select {
			case w.nudge <- struct{}{}:
			default:
			}
		})
	}

	w.wg.Add(1)
	go w.run()
}

// Stop stops the worker after one last flush
func (w *SyncWorker) Stop() {
	w.mu.Lock()
	select {
	case <-w.stopChan:
		w.mu.Unlock()
		return
	default:
		close(w.stopChan)
	}
	w.mu.Unlock()

	if w.unsubscribe != nil {
		w.unsubscribe()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		w.logger.Warn("Sync worker did not stop within timeout")
	}

	w.logger.Info("Sync worker stopped")
}

func (w *SyncWorker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.processQueue()
		case <-w.nudge:
			if time.Since(w.Status().LastAttempt) >= minNudgeGap {
				w.processQueue()
			}
		case <-w.stopChan:
			// Process queue one more time before stopping
			w.processQueue()
			return
		}
	}
}

// processQueue attempts to send the queued worklogs
func (w *SyncWorker) processQueue() {
	pending, err := w.shifts.PendingWorkLogs()
	if err != nil {
		w.logger.Error("Failed to get pending count", zap.Error(err))
		return
	}
	if pending == 0 {
		return
	}

	w.logger.Debug("Processing offline worklogs", zap.Int("pending_count", pending))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err = w.Flush(ctx)
	if err != nil {
		w.logger.Warn("Failed to send offline worklogs",
			zap.Error(err),
			zap.Int("pending_count", pending),
		)
		return
	}
	w.logger.Info("Successfully sent offline worklogs", zap.Int("pending_count", pending))
}

// Flush sends the offline queue now and records the outcome
func (w *SyncWorker) Flush(ctx context.Context) (int, error) {
	pending, err := w.shifts.PendingWorkLogs()
	if err != nil {
		return 0, err
	}

	_, err = w.shifts.SendPendingWorkLogs(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastAttempt = time.Now()
	w.lastErr = err
	if err != nil {
		return 0, err
	}
	w.lastSync = w.lastAttempt
	return pending, nil
}

// Status returns the outcome of the latest flush attempts
func (w *SyncWorker) Status() SyncStatus {
	w.mu.Lock()
	defer w.mu.Unlock()

	status := SyncStatus{LastAttempt: w.lastAttempt, LastSync: w.lastSync}
	if w.lastErr != nil {
		status.LastError = w.lastErr.Error()
	}
	return status
}
