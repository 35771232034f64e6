package models

import "time"

// ShiftStatus represents the lifecycle state of a shift
type ShiftStatus string

const (
	ShiftStatusOpened ShiftStatus = "opened"
	ShiftStatusPaused ShiftStatus = "paused"
	ShiftStatusClosed ShiftStatus = "closed"
)

// Shift is the bounded on-duty period of a worker as reported by the staff service
// and cached locally
type Shift struct {
	ID                     string      `json:"id,omitempty"`
	UserID                 string      `json:"userId,omitempty"`
	Status                 ShiftStatus `json:"status,omitempty"`
	StartDate              *time.Time  `json:"startDate,omitempty"`
	EndDate                *time.Time  `json:"endDate,omitempty"`
	DateToClose            *time.Time  `json:"dateToClose,omitempty"`
	DateMaxToClose         *time.Time  `json:"dateMaxToClose,omitempty"`
	ReopeningExtensionTime int         `json:"reopeningExtensionTime,omitempty"` // minutes
}

// IsEmpty reports whether the shift carries no data at all
func (s Shift) IsEmpty() bool {
	return s.ID == ""
}

// ReopeningExtension returns the configured extension as a duration
func (s Shift) ReopeningExtension() time.Duration {
	return time.Duration(s.ReopeningExtensionTime) * time.Minute
}

// ShiftParams is the optional body for opening or closing a shift
type ShiftParams struct {
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// ShiftFilter narrows the remote shift list
type ShiftFilter struct {
	ID     string
	UserID string
	Status ShiftStatus
}

// CanTransition reports whether a shift may move from one status to another
func CanTransition(from, to ShiftStatus) bool {
	switch from {
	case ShiftStatusOpened:
		return to == ShiftStatusPaused || to == ShiftStatusClosed
	case ShiftStatusPaused:
		return to == ShiftStatusOpened || to == ShiftStatusClosed
	case ShiftStatusClosed:
		return to == ShiftStatusOpened
	default:
		return to == ShiftStatusOpened
	}
}
