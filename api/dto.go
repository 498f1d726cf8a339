package api

import "time"

type CreateSessionRequest struct {
	SubScenarioID int64 `json:"sub_scenario_id"`
	// Query is the browser search string to restore, e.g. "date=2024-07-01&mode=single".
	Query string `json:"query,omitempty"`
}

type DatesRequest struct {
	Mode     string  `json:"mode"`
	Date     string  `json:"date"`
	EndDate  *string `json:"end_date,omitempty"`
	Weekdays []int   `json:"weekdays,omitempty"`
}

type BulkRequest struct {
	Shortcut string `json:"shortcut,omitempty"`
	Period   string `json:"period,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type OnboardingRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

type Slot struct {
	Hour     int    `json:"hour"`
	Label    string `json:"label"`
	Status   string `json:"status"`
	Period   string `json:"period"`
	Selected bool   `json:"selected"`
}

type Shortcut struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Hours []int  `json:"hours"`
}

type Outcome struct {
	State     string   `json:"state"`
	Message   string   `json:"message"`
	LostHours []int    `json:"lost_hours,omitempty"`
	Path      []string `json:"path,omitempty"`
}

type BulkResult struct {
	Applied []int `json:"applied"`
	Skipped []int `json:"skipped,omitempty"`
	Partial bool  `json:"partial"`
}

type Session struct {
	ID                string     `json:"id"`
	SubScenarioID     int64      `json:"sub_scenario_id"`
	Mode              string     `json:"mode"`
	Date              string     `json:"date"`
	EndDate           *string    `json:"end_date,omitempty"`
	WeekdayMode       bool       `json:"weekday_mode"`
	Weekdays          []int      `json:"weekdays"`
	DatesError        string     `json:"dates_error,omitempty"`
	Slots             []Slot     `json:"slots"`
	SelectedHours     []int      `json:"selected_hours"`
	Loading           bool       `json:"loading"`
	AvailabilityError string     `json:"availability_error,omitempty"`
	SubmitState       string     `json:"submit_state"`
	LoginPending      bool       `json:"login_pending"`
	LastOutcome       *Outcome   `json:"last_outcome,omitempty"`
	Step              string     `json:"step"`
	AdvancePending    bool       `json:"advance_pending"`
	ShowOnboarding    bool       `json:"show_onboarding"`
	URLQuery          string     `json:"url_query"`
	SearchDebounceMS  int64      `json:"search_debounce_ms"`
	Shortcuts         []Shortcut `json:"shortcuts"`
	CreatedAt         time.Time  `json:"created_at"`
}

type SubmitResult struct {
	Outcome Outcome `json:"outcome"`
	Session Session `json:"session"`
}

type LoginResult struct {
	AccessToken string   `json:"access_token"`
	Outcome     *Outcome `json:"outcome,omitempty"`
	Session     Session  `json:"session"`
}

type Attempt struct {
	ID            int64     `json:"id"`
	SubScenarioID int64     `json:"sub_scenario_id"`
	Hours         []int64   `json:"hours"`
	InitialDate   string    `json:"initial_date"`
	FinalDate     *string   `json:"final_date,omitempty"`
	Weekdays      []int64   `json:"weekdays,omitempty"`
	Outcome       string    `json:"outcome"`
	LostHours     []int64   `json:"lost_hours,omitempty"`
	Message       string    `json:"message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
