package dayview

// Scroll targets for hosts that embed the grid in a scrolling container.

func (l *Layout) checkHour(hour int) error {
	if hour < l.StartHour || hour > l.EndHour {
		return configErrorf("hour %d must be between %d and %d", hour, l.StartHour, l.EndHour)
	}
	return nil
}

// HourTop returns the y offset where the given hour starts, just below its
// divider.
func (l *Layout) HourTop(hour int) (int, error) {
	if err := l.checkHour(hour); err != nil {
		return 0, err
	}
	return l.HourDividers[hour-l.StartHour].Bottom, nil
}

// HourBottom returns the y offset where the given hour ends, at the top of
// the next hour's divider. The last hour has no successor, so its bottom is
// the bottom of its own divider.
func (l *Layout) HourBottom(hour int) (int, error) {
	if err := l.checkHour(hour); err != nil {
		return 0, err
	}
	if hour == l.EndHour {
		return l.HourDividers[hour-l.StartHour].Bottom, nil
	}
	return l.HourDividers[hour-l.StartHour+1].Top, nil
}

// FirstEventTop is the top of the first visible event, or 0.
func (l *Layout) FirstEventTop() int {
	if len(l.Events) == 0 {
		return 0
	}
	return l.Events[0].Rect.Top
}

// FirstEventBottom is the bottom of the first visible event, or 0.
func (l *Layout) FirstEventBottom() int {
	if len(l.Events) == 0 {
		return 0
	}
	return l.Events[0].Rect.Bottom
}

// LastEventTop is the top of the last visible event, or 0.
func (l *Layout) LastEventTop() int {
	if len(l.Events) == 0 {
		return 0
	}
	return l.Events[len(l.Events)-1].Rect.Top
}

// LastEventBottom is the bottom of the last visible event, or 0.
func (l *Layout) LastEventBottom() int {
	if len(l.Events) == 0 {
		return 0
	}
	return l.Events[len(l.Events)-1].Rect.Bottom
}
