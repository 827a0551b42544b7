package dayview

// Padding is the inner padding of the grid container, in absolute
// left/right terms.
type Padding struct {
	Left   int `yaml:"left" json:"left"`
	Top    int `yaml:"top" json:"top"`
	Right  int `yaml:"right" json:"right"`
	Bottom int `yaml:"bottom" json:"bottom"`
}

// Bounds describes the container a layout pass runs against.
type Bounds struct {
	Width   int     `json:"width"`
	RTL     bool    `json:"rtl"`
	Padding Padding `json:"padding"`
}

func (b Bounds) paddingStart() int {
	if b.RTL {
		return b.Padding.Right
	}
	return b.Padding.Left
}

func (b Bounds) paddingEnd() int {
	if b.RTL {
		return b.Padding.Left
	}
	return b.Padding.Right
}

// HourLabel is an opaque label handle plus its natural height. Labels are
// vertically centered on their hour divider.
type HourLabel struct {
	Handle any `json:"-"`
	Height int `json:"height"`
}

// PlacedLabel is an hour label with its computed rect.
type PlacedLabel struct {
	HourLabel
	Hour int  `json:"hour"`
	Rect Rect `json:"rect"`
}

// Event is one calendar event handed to the grid. Handle is never
// interpreted; it is returned with the placed event.
type Event struct {
	Handle any       `json:"-"`
	Range  TimeRange `json:"range"`
}

// PlacedEvent is a visible event with its column span and rect. Index points
// back into the slice passed to SetEvents.
type PlacedEvent struct {
	Event
	Index int        `json:"index"`
	Span  ColumnSpan `json:"span"`
	Rect  Rect       `json:"rect"`
}

// Layout is the result of one measurement pass. Every rect in it belongs to
// the same pass.
type Layout struct {
	Bounds Bounds `json:"bounds"`

	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`

	// Height is the total measured height of the grid.
	Height int `json:"height"`
	// UsableHeight covers the half-hour slots only, without label overhang
	// and padding.
	UsableHeight int     `json:"usable_height"`
	MinuteHeight float64 `json:"minute_height"`

	FirstDividerTop int `json:"first_divider_top"`
	LabelStart      int `json:"label_start"`
	LabelEnd        int `json:"label_end"`
	DividerStart    int `json:"divider_start"`
	DividerEnd      int `json:"divider_end"`

	HourLabels       []PlacedLabel `json:"hour_labels"`
	HourDividers     []Rect        `json:"hour_dividers"`
	HalfHourDividers []Rect        `json:"half_hour_dividers"`

	Events      []PlacedEvent `json:"events"`
	ColumnCount int           `json:"column_count"`
}

// visibleEvent is an event that survived filtering, with its range clamped
// to the visible window.
type visibleEvent struct {
	Event
	index   int
	clamped TimeRange
}

// filterVisible drops events that do not intersect the visible window and
// clamps the rest to it.
func filterVisible(events []Event, window TimeRange) []visibleEvent {
	out := make([]visibleEvent, 0, len(events))
	for i, ev := range events {
		if !ev.Range.Conflicts(window) {
			continue
		}
		out = append(out, visibleEvent{
			Event: ev,
			index: i,
			clamped: TimeRange{
				StartMinute: max(ev.Range.StartMinute, window.StartMinute),
				EndMinute:   min(ev.Range.EndMinute, window.EndMinute),
			},
		})
	}
	return out
}

// grid converts logical start/end geometry to rects for one pass.
type grid struct {
	cfg                  Config
	rtl                  bool
	parentWidth          int
	usableHalfHourHeight int
}

func newGrid(cfg Config, b Bounds) grid {
	return grid{
		cfg:                  cfg,
		rtl:                  b.RTL,
		parentWidth:          b.Width,
		usableHalfHourHeight: cfg.UsableHalfHourHeight(),
	}
}

func (g grid) rect(start, top, end, bottom int) Rect {
	return NewDirectionalRect(g.rtl, g.parentWidth, start, top, end, bottom)
}

func (g grid) hourLabelRects(labels []HourLabel, labelStart, labelEnd, firstDividerTop int) []PlacedLabel {
	out := make([]PlacedLabel, len(labels))
	for i, label := range labels {
		top := firstDividerTop + g.usableHalfHourHeight*i*2 - label.Height/2
		bottom := top + label.Height

		out[i] = PlacedLabel{
			HourLabel: label,
			Hour:      g.cfg.StartHour + i,
			Rect:      g.rect(labelStart, top, labelEnd, bottom),
		}
	}
	return out
}

func (g grid) dividerRects(firstDividerTop, dividerStart, dividerEnd int) (hours, halfHours []Rect) {
	hours = make([]Rect, g.cfg.hourDividerCount())
	for i := range hours {
		top := firstDividerTop + i*2*g.usableHalfHourHeight
		hours[i] = g.rect(dividerStart, top, dividerEnd, top+g.cfg.DividerHeight)
	}

	halfHours = make([]Rect, g.cfg.halfHourDividerCount())
	for i := range halfHours {
		top := firstDividerTop + (i*2+1)*g.usableHalfHourHeight
		halfHours[i] = g.rect(dividerStart, top, dividerEnd, top+g.cfg.DividerHeight)
	}
	return hours, halfHours
}

func (g grid) eventRects(events []visibleEvent, spans []ColumnSpan, columnCount, firstDividerTop int,
	minuteHeight float64, dividerStart, dividerEnd int) []PlacedEvent {
	columnWidth := 0
	if columnCount > 0 {
		columnWidth = (dividerEnd - dividerStart) / columnCount
	}

	windowStart := g.cfg.StartHour * MinutesPerHour
	margin := g.cfg.EventMargin

	out := make([]PlacedEvent, len(events))
	for i, ev := range events {
		span := spans[i]

		start := span.StartColumn*columnWidth + dividerStart + margin
		end := start + span.Width()*columnWidth - margin*2

		topOffset := int(float64(ev.clamped.StartMinute-windowStart) * minuteHeight)
		top := firstDividerTop + topOffset + g.cfg.DividerHeight + margin
		bottom := top + int(float64(ev.clamped.Duration())*minuteHeight) - margin*2 - g.cfg.DividerHeight

		out[i] = PlacedEvent{
			Event: ev.Event,
			Index: ev.index,
			Span:  span,
			Rect:  g.rect(start, top, end, bottom),
		}
	}
	return out
}

// measure runs a full pass. Inputs must already be validated.
func measure(cfg Config, b Bounds, labels []HourLabel, events []visibleEvent, spans []ColumnSpan, columnCount int) *Layout {
	g := newGrid(cfg, b)

	labelStart := b.paddingStart()
	labelEnd := labelStart + cfg.HourLabelWidth

	firstDividerTop := labels[0].Height / 2
	lastDividerMarginBottom := labels[len(labels)-1].Height / 2

	usableHeight := (cfg.hourDividerCount() + cfg.halfHourDividerCount() - 1) * g.usableHalfHourHeight
	visibleMinutes := (cfg.EndHour - cfg.StartHour) * MinutesPerHour
	minuteHeight := float64(usableHeight) / float64(visibleMinutes)

	firstDividerTop += b.Padding.Top
	verticalPadding := firstDividerTop + lastDividerMarginBottom + b.Padding.Bottom + cfg.DividerHeight

	dividerStart := labelEnd + cfg.HourLabelMarginEnd
	dividerEnd := b.Width - b.paddingEnd()

	hours, halfHours := g.dividerRects(firstDividerTop, dividerStart, dividerEnd)

	return &Layout{
		Bounds:           b,
		StartHour:        cfg.StartHour,
		EndHour:          cfg.EndHour,
		Height:           usableHeight + verticalPadding,
		UsableHeight:     usableHeight,
		MinuteHeight:     minuteHeight,
		FirstDividerTop:  firstDividerTop,
		LabelStart:       labelStart,
		LabelEnd:         labelEnd,
		DividerStart:     dividerStart,
		DividerEnd:       dividerEnd,
		HourLabels:       g.hourLabelRects(labels, labelStart, labelEnd, firstDividerTop),
		HourDividers:     hours,
		HalfHourDividers: halfHours,
		Events:           g.eventRects(events, spans, columnCount, firstDividerTop, minuteHeight, dividerStart, dividerEnd),
		ColumnCount:      columnCount,
	}
}
