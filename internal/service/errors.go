package service

import "errors"

var (
	// ErrStaffAuthorizationRequired is returned when shifts and worklogs are
	// disabled for the staff account
	ErrStaffAuthorizationRequired = errors.New("staff authorization is required to track shifts")
	// ErrDeadlineExceeded is returned when a shift can no longer be reopened
	ErrDeadlineExceeded = errors.New("shift max close date exceeded, it can not be reopened")
	// ErrShiftIDRequired is returned when an operation needs the current shift and none is stored
	ErrShiftIDRequired = errors.New("shift id is required")
	// ErrShiftNotOpened is returned when a worklog is opened without an opened
	// or paused shift
	ErrShiftNotOpened = errors.New("there is no opened shift")
	// ErrNoCurrentWorkLog is returned when the current worklog is finished but
	// none is in progress
	ErrNoCurrentWorkLog = errors.New("no worklog in progress")
)
