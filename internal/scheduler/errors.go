package scheduler

import "errors"

// Validation errors are reported before any network call.
var (
	ErrInvalidHour         = errors.New("hour must be between 0 and 23")
	ErrInvalidWeekday      = errors.New("weekday must be between 0 (Sunday) and 6 (Saturday)")
	ErrInvalidMode         = errors.New("mode must be single or range")
	ErrNoDate              = errors.New("select a date")
	ErrNoEndDate           = errors.New("select an end date for a range booking")
	ErrEndNotAfterStart    = errors.New("end date must be after start date")
	ErrRangeModeOff        = errors.New("end date requires range mode")
	ErrNoSelection         = errors.New("select at least one slot")
	ErrUnknownShortcut     = errors.New("unknown shortcut")
	ErrUnknownPeriod       = errors.New("unknown period")
	ErrUnknownStep         = errors.New("unknown wizard step")
	ErrSlotOccupied        = errors.New("slot is occupied")
	ErrNoAvailableHours    = errors.New("no available hours for this selection")
	ErrAvailabilityLoading = errors.New("availability is still loading")
	ErrAvailabilityUnknown = errors.New("availability has not been loaded")
)

// Submission errors.
var (
	ErrSubmitInProgress    = errors.New("a reservation is already being submitted")
	ErrNoPendingSubmission = errors.New("no submission is waiting for login")
)

// Errors a ReservationGateway returns so the submitter can tell outcomes apart.
var (
	ErrReservationConflict = errors.New("slot was taken by another reservation")
	ErrUnauthorized        = errors.New("authentication required")
)

// errSuperseded marks an availability result discarded because a newer query was issued.
var errSuperseded = errors.New("availability query superseded")
