package models

import (
	"encoding/json"
	"time"
)

// Activity is one tracked worklog inside a time report
type Activity struct {
	ID          string        `json:"id"`
	ReferenceID string        `json:"referenceId,omitempty"`
	Name        string        `json:"name,omitempty"`
	Type        string        `json:"type,omitempty"`
	StartTime   *time.Time    `json:"startTime,omitempty"`
	EndTime     *time.Time    `json:"endTime,omitempty"`
	Duration    time.Duration `json:"-"`
}

// MarshalJSON renders the duration in milliseconds
func (a Activity) MarshalJSON() ([]byte, error) {
	type alias Activity
	return json.Marshal(struct {
		alias
		Duration int64 `json:"duration"`
	}{alias(a), a.Duration.Milliseconds()})
}

// Report aggregates the elapsed, work and pause time of a shift
type Report struct {
	ShiftID     string        `json:"shiftId"`
	StartDate   *time.Time    `json:"startDate,omitempty"`
	EndDate     *time.Time    `json:"endDate,omitempty"`
	ElapsedTime time.Duration `json:"-"`
	WorkTime    time.Duration `json:"-"`
	PauseTime   time.Duration `json:"-"`
	Activities  []Activity    `json:"activities"`
	IsComplete  bool          `json:"isComplete"`
}

// MarshalJSON renders durations in milliseconds
func (r Report) MarshalJSON() ([]byte, error) {
	type alias Report
	return json.Marshal(struct {
		alias
		ElapsedTime int64 `json:"elapsedTime"`
		WorkTime    int64 `json:"workTime"`
		PauseTime   int64 `json:"pauseTime"`
	}{alias(r), r.ElapsedTime.Milliseconds(), r.WorkTime.Milliseconds(), r.PauseTime.Milliseconds()})
}

// GlobalSetting is the subset of the staff global settings the tracker reads
type GlobalSetting struct {
	EnabledShiftAndWorkLog *bool `json:"enabledShiftAndWorkLog,omitempty"`
}
