package ics

import (
	"sort"
	"time"

	"daygrid/internal/dayview"
	"daygrid/internal/model"
)

// DayEvents picks the timed occurrences that intersect the local day of
// day and converts them to grid events, sorted by start then end minute.
// Each event's Handle is its model.Occurrence.
//
// Minutes are wall-clock minutes in day's location, so the grid always
// has 24 hours even on daylight saving switches. Parts of an event that
// fall on the previous or next day are clipped.
func DayEvents(occs []model.Occurrence, day time.Time) []dayview.Event {
	loc := day.Location()
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	events := make([]dayview.Event, 0, len(occs))
	for _, occ := range occs {
		if occ.AllDay || !occ.End.After(occ.Start) {
			continue
		}
		if !occ.Start.Before(dayEnd) || !occ.End.After(dayStart) {
			continue
		}

		start := 0
		if occ.Start.After(dayStart) {
			start = wallMinute(occ.Start.In(loc))
		}
		end := dayview.MinutesPerDay
		if occ.End.Before(dayEnd) {
			end = wallMinute(occ.End.In(loc))
		}

		events = append(events, dayview.Event{
			Handle: occ,
			Range:  dayview.NewTimeRange(start, end),
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i].Range, events[j].Range
		if a.StartMinute != b.StartMinute {
			return a.StartMinute < b.StartMinute
		}
		return a.EndMinute < b.EndMinute
	})
	return events
}

func wallMinute(t time.Time) int {
	return t.Hour()*dayview.MinutesPerHour + t.Minute()
}
