package models

import "time"

// WorkLogStatus represents the state of a single activity
type WorkLogStatus string

const (
	WorkLogStatusInProgress WorkLogStatus = "inProgress"
	WorkLogStatusFinished   WorkLogStatus = "finished"
)

// Reserved reference ids for the default picking and delivery activities.
// They never pause the enclosing shift.
const (
	ReferenceDefaultPicking  = "default-picking-work"
	ReferenceDefaultDelivery = "default-delivery-work"
)

// WorkLog is an activity performed within a shift
type WorkLog struct {
	ID          string        `json:"id"`
	ReferenceID string        `json:"referenceId"`
	ShiftID     string        `json:"shiftId,omitempty"`
	Type        string        `json:"type,omitempty"`
	Name        string        `json:"name,omitempty"`
	StartDate   *time.Time    `json:"startDate,omitempty"`
	EndDate     *time.Time    `json:"endDate,omitempty"`
	Status      WorkLogStatus `json:"status,omitempty"`
}

// WorkLogParams describes the activity a caller wants to open or finish
type WorkLogParams struct {
	ReferenceID string `json:"referenceId"`
	Name        string `json:"name,omitempty"`
	Type        string `json:"type,omitempty"`
}

// IsEmpty reports whether no activity was described
func (p *WorkLogParams) IsEmpty() bool {
	return p == nil || *p == WorkLogParams{}
}

// WorkLogFragment is a partially built worklog kept in the offline queue.
// Every field is optional so that start and finish writes can be merged.
type WorkLogFragment struct {
	ID          *string        `json:"id,omitempty"`
	ReferenceID *string        `json:"referenceId,omitempty"`
	ShiftID     *string        `json:"shiftId,omitempty"`
	Type        *string        `json:"type,omitempty"`
	Name        *string        `json:"name,omitempty"`
	StartDate   *time.Time     `json:"startDate,omitempty"`
	EndDate     *time.Time     `json:"endDate,omitempty"`
	Status      *WorkLogStatus `json:"status,omitempty"`
}

// WorkLogDelta is the wire shape accepted by the work-log endpoint
type WorkLogDelta struct {
	WorkLogTypeRefID string     `json:"workLogTypeRefId"`
	StartDate        *time.Time `json:"startDate,omitempty"`
	EndDate          *time.Time `json:"endDate,omitempty"`
}

// WorkLogResult is the response of the work-log endpoint
type WorkLogResult struct {
	ItemsCreated []WorkLog `json:"itemsCreated"`
	ItemsUpdated []WorkLog `json:"itemsUpdated"`
}

// WorkLogFilter narrows the remote worklog list
type WorkLogFilter struct {
	ShiftID  string
	Statuses []WorkLogStatus
}

// WorkLogType is an activity kind selectable by the worker
type WorkLogType struct {
	ID            string `json:"id"`
	ReferenceID   string `json:"referenceId"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Description   string `json:"description"`
	SuggestedTime int    `json:"suggestedTime"`
	Status        string `json:"status,omitempty"`
	IsInternal    bool   `json:"isInternal,omitempty"`
}

// WorkLogTypeFilter narrows the remote worklog type list
type WorkLogTypeFilter struct {
	Status     string
	Types      []string
	IsInternal *bool
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}
