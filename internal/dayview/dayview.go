package dayview

import (
	appLog "daygrid/internal/log"
)

// DayView lays out hour labels, dividers and events for a single day.
//
// The view is either unmeasured or measured. Any content change drops the
// current Layout; Measure must run again before geometry is trusted. A
// DayView is not safe for concurrent use.
type DayView struct {
	cfg Config

	labels []HourLabel

	events    []Event
	handles   []any
	eventsErr error

	// Recomputed whenever the events change.
	visible     []visibleEvent
	spans       []ColumnSpan
	columnCount int

	layout *Layout
}

// New returns an unmeasured DayView for cfg.
func New(cfg Config) (*DayView, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &DayView{cfg: cfg}, nil
}

// Config returns the configuration the view was created with.
func (d *DayView) Config() Config {
	return d.cfg
}

// SetHourLabels replaces the hour labels. Measure fails unless exactly
// Config.HourLabelCount labels are set, first label for StartHour.
func (d *DayView) SetHourLabels(labels []HourLabel) {
	d.labels = append([]HourLabel(nil), labels...)
	d.layout = nil
}

// SetEvents replaces the events. Order matters: it is the column placement
// order, so events should be sorted by start time.
func (d *DayView) SetEvents(events []Event) {
	d.events = append([]Event(nil), events...)
	d.handles = make([]any, len(d.events))
	for i, ev := range d.events {
		d.handles[i] = ev.Handle
	}
	d.eventsErr = nil
	d.resolve()
}

// SetEventViews is SetEvents for hosts that keep handles and ranges in
// separate slices. Both must have the same length, or both be empty;
// otherwise the next Measure reports a configuration error.
func (d *DayView) SetEventViews(handles []any, ranges []TimeRange) {
	if len(handles) != len(ranges) {
		d.events = nil
		d.handles = append([]any(nil), handles...)
		d.eventsErr = configErrorf("inconsistent number of event views (%d) and event time ranges (%d)",
			len(handles), len(ranges))
		d.resolve()
		return
	}

	events := make([]Event, len(handles))
	for i := range handles {
		events[i] = Event{Handle: handles[i], Range: ranges[i]}
	}
	d.SetEvents(events)
}

// RemoveEvents clears all events and returns the handles that were set so
// the host can reuse them.
func (d *DayView) RemoveEvents() []any {
	handles := d.handles
	d.SetEventViews(nil, nil)
	return handles
}

// Events returns a copy of the current events in input order.
func (d *DayView) Events() []Event {
	return append([]Event(nil), d.events...)
}

// ColumnCount is the number of event columns for the current events.
func (d *DayView) ColumnCount() int {
	return d.columnCount
}

func (d *DayView) resolve() {
	d.layout = nil
	d.visible = filterVisible(d.events, d.cfg.VisibleRange())

	ranges := make([]TimeRange, len(d.visible))
	for i, ev := range d.visible {
		ranges[i] = ev.clamped
	}
	d.spans, d.columnCount = ResolveColumnSpans(ranges)

	if hidden := len(d.events) - len(d.visible); hidden > 0 {
		appLog.Debug("dayview events outside visible hours", "hidden", hidden,
			"start_hour", d.cfg.StartHour, "end_hour", d.cfg.EndHour)
	}
}

// Invalidate drops the current layout, for example after the container
// was resized.
func (d *DayView) Invalidate() {
	d.layout = nil
}

// Measured reports whether the current Layout matches the view contents.
func (d *DayView) Measured() bool {
	return d.layout != nil
}

// Measure validates the view contents and computes a new Layout for b.
func (d *DayView) Measure(b Bounds) (*Layout, error) {
	d.layout = nil
	if err := d.validate(); err != nil {
		return nil, err
	}

	d.layout = measure(d.cfg, b, d.labels, d.visible, d.spans, d.columnCount)

	appLog.Debug("dayview measured",
		"width", b.Width,
		"height", d.layout.Height,
		"rtl", b.RTL,
		"events", len(d.layout.Events),
		"columns", d.columnCount,
	)
	return d.layout, nil
}

func (d *DayView) validate() error {
	switch {
	case len(d.labels) == 0:
		return configErrorf("no hour labels, SetHourLabels must be called before measuring")
	case len(d.labels) != d.cfg.HourLabelCount():
		return configErrorf("inconsistent number of hour labels, there should be %d but %d were found",
			d.cfg.HourLabelCount(), len(d.labels))
	case d.eventsErr != nil:
		return d.eventsErr
	}
	return nil
}

// Layout returns the last measured layout.
func (d *DayView) Layout() (*Layout, error) {
	if d.layout == nil {
		return nil, ErrNotMeasured
	}
	return d.layout, nil
}

// HourTop is Layout.HourTop on the current layout, or ErrNotMeasured.
func (d *DayView) HourTop(hour int) (int, error) {
	l, err := d.Layout()
	if err != nil {
		return 0, err
	}
	return l.HourTop(hour)
}

// HourBottom is Layout.HourBottom on the current layout, or ErrNotMeasured.
func (d *DayView) HourBottom(hour int) (int, error) {
	l, err := d.Layout()
	if err != nil {
		return 0, err
	}
	return l.HourBottom(hour)
}

// FirstEventTop is Layout.FirstEventTop, or 0 while unmeasured.
func (d *DayView) FirstEventTop() int {
	if d.layout == nil {
		return 0
	}
	return d.layout.FirstEventTop()
}

// FirstEventBottom is Layout.FirstEventBottom, or 0 while unmeasured.
func (d *DayView) FirstEventBottom() int {
	if d.layout == nil {
		return 0
	}
	return d.layout.FirstEventBottom()
}

// LastEventTop is Layout.LastEventTop, or 0 while unmeasured.
func (d *DayView) LastEventTop() int {
	if d.layout == nil {
		return 0
	}
	return d.layout.LastEventTop()
}

// LastEventBottom is Layout.LastEventBottom, or 0 while unmeasured.
func (d *DayView) LastEventBottom() int {
	if d.layout == nil {
		return 0
	}
	return d.layout.LastEventBottom()
}
