package service

import (
	"inderbu-scheduler/api"
	"inderbu-scheduler/internal/scheduler"
)

func (s *Service) view(sess *scheduler.Session) *api.Session {
	snap := sess.Snapshot()

	selected := make(map[int]bool, len(snap.SelectedHours))
	for _, h := range snap.SelectedHours {
		selected[h] = true
	}

	slots := make([]api.Slot, len(snap.Slots))
	for i, ts := range snap.Slots {
		slots[i] = api.Slot{
			Hour:     ts.Hour,
			Label:    ts.Label(),
			Status:   string(ts.Status),
			Period:   string(scheduler.PeriodOf(ts.Hour)),
			Selected: selected[ts.Hour],
		}
	}

	v := &api.Session{
		ID:                snap.ID,
		SubScenarioID:     snap.SubScenarioID,
		Mode:              string(snap.Mode),
		Date:              scheduler.FormatDate(snap.StartDate),
		WeekdayMode:       snap.WeekdayMode,
		Weekdays:          nonNilInts(snap.Weekdays),
		Slots:             slots,
		SelectedHours:     nonNilInts(snap.SelectedHours),
		Loading:           snap.Loading,
		AvailabilityError: snap.AvailabilityErr,
		SubmitState:       string(snap.SubmitState),
		LoginPending:      snap.LoginPending,
		Step:              string(snap.Step),
		AdvancePending:    snap.AdvancePending,
		ShowOnboarding:    snap.ShowOnboarding,
		URLQuery:          snap.URLQuery,
		SearchDebounceMS:  s.opts.SearchDebounce.Milliseconds(),
		Shortcuts:         shortcuts(),
		CreatedAt:         sess.CreatedAt,
	}

	if snap.EndDate != nil {
		end := scheduler.FormatDate(*snap.EndDate)
		v.EndDate = &end
	}
	if snap.DatesError != nil {
		v.DatesError = snap.DatesError.Error()
	}
	if snap.LastOutcome != nil {
		o := outcomeView(snap.LastOutcome)
		v.LastOutcome = &o
	}

	return v
}

func outcomeView(out *scheduler.Outcome) api.Outcome {
	path := make([]string, len(out.Path))
	for i, st := range out.Path {
		path[i] = string(st)
	}

	return api.Outcome{
		State:     string(out.State),
		Message:   out.Message,
		LostHours: out.LostHours,
		Path:      path,
	}
}

func shortcuts() []api.Shortcut {
	all := scheduler.Shortcuts()

	out := make([]api.Shortcut, len(all))
	for i, sc := range all {
		out[i] = api.Shortcut{Name: sc.Name, Label: sc.Label, Hours: sc.Hours}
	}

	return out
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}

	return v
}
