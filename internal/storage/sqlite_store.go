package storage

import (
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// SQLiteStore persists key-value pairs in the kv_store table
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
	subs   subscribers
}

// NewSQLiteStore creates a store on top of an already migrated database
func NewSQLiteStore(db *sql.DB, logger *zap.Logger) *SQLiteStore {
	return &SQLiteStore{
		db:     db,
		logger: logger,
	}
}

func (s *SQLiteStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrap("get", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return wrap("set", key, err)
	}
	s.subs.notify(key)
	return nil
}

func (s *SQLiteStore) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]interface{}, len(keys))
	for i, key := range keys {
		args[i] = key
	}

	result, err := s.db.Exec("DELETE FROM kv_store WHERE key IN ("+placeholders+")", args...)
	if err != nil {
		return wrap("delete", strings.Join(keys, ","), err)
	}

	rowsAffected, _ := result.RowsAffected()
	s.logger.Debug("Keys removed from store",
		zap.Strings("keys", keys),
		zap.Int64("count", rowsAffected),
	)
	s.subs.notify(keys...)
	return nil
}

func (s *SQLiteStore) Clear() error {
	rows, err := s.db.Query(`SELECT key FROM kv_store`)
	if err != nil {
		return wrap("clear", "", err)
	}
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			rows.Close()
			return wrap("clear", "", err)
		}
		keys = append(keys, key)
	}
	rows.Close()

	if _, err := s.db.Exec(`DELETE FROM kv_store`); err != nil {
		return wrap("clear", "", err)
	}
	s.subs.notify(keys...)
	return nil
}

func (s *SQLiteStore) Subscribe(fn func(key string)) func() {
	return s.subs.add(fn)
}
