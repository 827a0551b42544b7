package dayview

const (
	// MinutesPerHour is the number of minutes in one hour of the grid.
	MinutesPerHour = 60

	// HoursPerDay is fixed. Days that are longer or shorter because of a
	// daylight saving switch are still drawn on a 24 hour grid; hosts adjust
	// the affected events instead.
	HoursPerDay = 24

	// MinutesPerDay is the total number of usable minutes in a day.
	MinutesPerDay = HoursPerDay * MinutesPerHour
)

// TimeRange is the half-open interval [StartMinute, EndMinute) of an event,
// in minutes since the start of the day.
type TimeRange struct {
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
}

// NewTimeRange returns the range [startMinute, endMinute). The values are
// not validated.
func NewTimeRange(startMinute, endMinute int) TimeRange {
	return TimeRange{StartMinute: startMinute, EndMinute: endMinute}
}

// Duration returns the length of the range in minutes.
func (r TimeRange) Duration() int {
	return r.EndMinute - r.StartMinute
}

// Conflicts reports whether r and o overlap in any way. Ranges that only
// touch at a boundary do not conflict.
func (r TimeRange) Conflicts(o TimeRange) bool {
	return r.StartMinute >= o.StartMinute && r.StartMinute < o.EndMinute ||
		r.EndMinute > o.StartMinute && r.EndMinute <= o.EndMinute ||
		o.StartMinute >= r.StartMinute && o.StartMinute < r.EndMinute ||
		o.EndMinute > r.StartMinute && o.EndMinute <= r.EndMinute
}
