package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Keys persisted by the shift tracker
const (
	KeyShiftID            = "shift.id"
	KeyShiftStatus        = "shift.status"
	KeyShiftData          = "shift.data"
	KeyWorkLogTypes       = "worklog.types"
	KeyCurrentWorkLogID   = "worklog.current.id"
	KeyCurrentWorkLogData = "worklog.current.data"
	KeyStaffAuthorization = "staff.authorization"
	KeyOfflineWorkLogs    = "offline.worklogs"
	KeyUserID             = "user.id"
	KeyDeviceID           = "device.id"
)

// ShiftScopedKeys lists every key that belongs to the current shift session
var ShiftScopedKeys = []string{
	KeyShiftID,
	KeyShiftStatus,
	KeyShiftData,
	KeyWorkLogTypes,
	KeyCurrentWorkLogID,
	KeyCurrentWorkLogData,
	KeyStaffAuthorization,
	KeyOfflineWorkLogs,
}

// KeyValueStore is a synchronous string store with change notifications
type KeyValueStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(keys ...string) error
	Clear() error
	// Subscribe registers fn for every changed key and returns a function
	// that removes the subscription
	Subscribe(fn func(key string)) func()
}

// StorageError wraps a failure of the underlying store
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err was raised by a store
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

func wrap(op, key string, err error) error {
	if err == nil {
		return nil
	}
	if IsStorageError(err) {
		return err
	}
	return &StorageError{Op: op, Key: key, Err: err}
}

// GetJSON decodes the value stored under key into v. It returns false when
// the key is absent.
func GetJSON(kv KeyValueStore, key string, v any) (bool, error) {
	raw, ok, err := kv.Get(key)
	if err != nil {
		return false, wrap("get", key, err)
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, wrap("decode", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key
func SetJSON(kv KeyValueStore, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return wrap("encode", key, err)
	}
	return wrap("set", key, kv.Set(key, string(b)))
}

// GetString returns the value stored under key or "" when absent
func GetString(kv KeyValueStore, key string) (string, error) {
	v, _, err := kv.Get(key)
	if err != nil {
		return "", wrap("get", key, err)
	}
	return v, nil
}

type expiring struct {
	Value          json.RawMessage `json:"value"`
	ExpirationTime time.Time       `json:"expirationTime"`
}

// SetExpiring stores v under key together with an expiration of now+ttl
func SetExpiring(kv KeyValueStore, key string, v any, ttl time.Duration, now time.Time) error {
	b, err := json.Marshal(v)
	if err != nil {
		return wrap("encode", key, err)
	}
	return SetJSON(kv, key, expiring{Value: b, ExpirationTime: now.Add(ttl)})
}

// GetExpiring decodes a value stored with SetExpiring. found is false when the
// key is absent or the stored value has expired at now.
func GetExpiring(kv KeyValueStore, key string, v any, now time.Time) (found bool, err error) {
	var e expiring
	ok, err := GetJSON(kv, key, &e)
	if err != nil || !ok {
		return false, err
	}
	if !now.Before(e.ExpirationTime) {
		return false, nil
	}
	if err := json.Unmarshal(e.Value, v); err != nil {
		return false, wrap("decode", key, err)
	}
	return true, nil
}

// subscribers fans change notifications out to registered listeners
type subscribers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(string)
}

func (s *subscribers) add(fn func(string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = make(map[int]func(string))
	}
	id := s.next
	s.next++
	s.fns[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.fns, id)
		s.mu.Unlock()
	}
}

func (s *subscribers) notify(keys ...string) {
	s.mu.Lock()
	fns := make([]func(string), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, key := range keys {
		for _, fn := range fns {
			fn(key)
		}
	}
}

// SetString stores value under key
func SetString(kv KeyValueStore, key, value string) error {
	return wrap("set", key, kv.Set(key, value))
}

// DeleteKeys removes keys from kv
func DeleteKeys(kv KeyValueStore, keys ...string) error {
	return wrap("delete", strings.Join(keys, ","), kv.Delete(keys...))
}
