package models

import "time"

// EventType is the kind of a time tracker event
type EventType string

const (
	EventTypeStart  EventType = "start"
	EventTypeFinish EventType = "finish"
)

// TimeTrackerEvent is an append-only record of an activity boundary
type TimeTrackerEvent struct {
	ID      string         `json:"id"`
	Time    time.Time      `json:"time"`
	Type    EventType      `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// EventQuery selects events from the event log. Empty fields match everything.
type EventQuery struct {
	ID   string
	Type EventType
}
