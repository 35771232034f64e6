package queue

import (
	"fmt"
	"sort"

	"github.com/janis-commerce/app-tracking-shift-sub000/internal/models"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/storage"

	"go.uber.org/zap"
)

// OfflineQueue buffers worklog fragments that still have to reach the staff
// service. Fragments are keyed by worklog id and the whole map is persisted
// under a single key.
type OfflineQueue struct {
	kv     storage.KeyValueStore
	logger *zap.Logger
}

// NewOfflineQueue creates a queue on top of kv
func NewOfflineQueue(kv storage.KeyValueStore, logger *zap.Logger) *OfflineQueue {
	return &OfflineQueue{
		kv:     kv,
		logger: logger,
	}
}

// MergeFragment returns a new fragment with every non-nil field of next
// written over prev
func MergeFragment(prev, next models.WorkLogFragment) models.WorkLogFragment {
	merged := prev
	if next.ID != nil {
		merged.ID = next.ID
	}
	if next.ReferenceID != nil {
		merged.ReferenceID = next.ReferenceID
	}
	if next.ShiftID != nil {
		merged.ShiftID = next.ShiftID
	}
	if next.Type != nil {
		merged.Type = next.Type
	}
	if next.Name != nil {
		merged.Name = next.Name
	}
	if next.StartDate != nil {
		merged.StartDate = next.StartDate
	}
	if next.EndDate != nil {
		merged.EndDate = next.EndDate
	}
	if next.Status != nil {
		merged.Status = next.Status
	}
	return merged
}

func (q *OfflineQueue) load() (map[string]models.WorkLogFragment, error) {
	entries := make(map[string]models.WorkLogFragment)
	if _, err := storage.GetJSON(q.kv, storage.KeyOfflineWorkLogs, &entries); err != nil {
		return nil, fmt.Errorf("failed to read offline queue: %w", err)
	}
	if entries == nil {
		entries = make(map[string]models.WorkLogFragment)
	}
	return entries, nil
}

func (q *OfflineQueue) store(entries map[string]models.WorkLogFragment) error {
	if len(entries) == 0 {
		if err := q.kv.Delete(storage.KeyOfflineWorkLogs); err != nil {
			return fmt.Errorf("failed to write offline queue: %w", err)
		}
		return nil
	}
	if err := storage.SetJSON(q.kv, storage.KeyOfflineWorkLogs, entries); err != nil {
		return fmt.Errorf("failed to write offline queue: %w", err)
	}
	return nil
}

// Save merges fragment into the entry stored for id
func (q *OfflineQueue) Save(id string, fragment models.WorkLogFragment) error {
	entries, err := q.load()
	if err != nil {
		return err
	}

	entries[id] = MergeFragment(entries[id], fragment)
	if err := q.store(entries); err != nil {
		return err
	}

	q.logger.Debug("Worklog fragment queued",
		zap.String("id", id),
		zap.Int("pending", len(entries)),
	)
	return nil
}

// Get returns every queued fragment when called without ids. With ids it
// returns one element per id, nil for ids that are not queued.
func (q *OfflineQueue) Get(ids ...string) ([]*models.WorkLogFragment, error) {
	entries, err := q.load()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		keys := make([]string, 0, len(entries))
		for id := range entries {
			keys = append(keys, id)
		}
		sort.Strings(keys)

		all := make([]*models.WorkLogFragment, 0, len(keys))
		for _, id := range keys {
			fragment := entries[id]
			all = append(all, &fragment)
		}
		return all, nil
	}

	found := make([]*models.WorkLogFragment, len(ids))
	for i, id := range ids {
		if fragment, ok := entries[id]; ok {
			found[i] = &fragment
		}
	}
	return found, nil
}

// Delete removes the given ids from the queue
func (q *OfflineQueue) Delete(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	entries, err := q.load()
	if err != nil {
		return err
	}
	for _, id := range ids {
		delete(entries, id)
	}
	if err := q.store(entries); err != nil {
		return err
	}

	q.logger.Debug("Worklog fragments removed from queue",
		zap.Strings("ids", ids),
		zap.Int("pending", len(entries)),
	)
	return nil
}

// DeleteAll empties the queue
func (q *OfflineQueue) DeleteAll() error {
	if err := q.kv.Delete(storage.KeyOfflineWorkLogs); err != nil {
		return fmt.Errorf("failed to clear offline queue: %w", err)
	}
	q.logger.Debug("Offline queue cleared")
	return nil
}

// HasData reports whether at least one fragment is queued
func (q *OfflineQueue) HasData() (bool, error) {
	count, err := q.PendingCount()
	return count > 0, err
}

// PendingCount returns the number of queued fragments
func (q *OfflineQueue) PendingCount() (int, error) {
	entries, err := q.load()
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}
