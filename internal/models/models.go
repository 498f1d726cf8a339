package models

import "time"

type AttemptOutcome string

const (
	OUTCOME_SUCCEEDED      AttemptOutcome = "succeeded"
	OUTCOME_CONFLICT       AttemptOutcome = "conflict"
	OUTCOME_FAILED         AttemptOutcome = "failed"
	OUTCOME_LOGIN_REQUIRED AttemptOutcome = "login_required"
)

// ReservationAttempt is one submission the session made against the backend.
type ReservationAttempt struct {
	ID            int64          `db:"id"`
	SessionID     string         `db:"session_id"`
	SubScenarioID int64          `db:"sub_scenario_id"`
	Hours         []int64        `db:"hours"`
	InitialDate   time.Time      `db:"initial_date"`
	FinalDate     *time.Time     `db:"final_date"`
	Weekdays      []int64        `db:"weekdays"`
	Outcome       AttemptOutcome `db:"outcome"`
	LostHours     []int64        `db:"lost_hours"`
	Message       string         `db:"message"`
	CreatedAt     time.Time      `db:"created_at"`
}
