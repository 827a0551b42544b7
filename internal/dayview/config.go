package dayview

// Config holds the fixed dimensions of a day grid, in pixels unless noted.
type Config struct {
	// DividerHeight is the thickness of every hour and half-hour divider.
	DividerHeight int `yaml:"divider_height" json:"divider_height"`

	// HalfHourHeight is the drawable height of one half-hour slot, not
	// counting its divider.
	HalfHourHeight int `yaml:"half_hour_height" json:"half_hour_height"`

	// HourLabelWidth is the width of the label column.
	HourLabelWidth int `yaml:"hour_label_width" json:"hour_label_width"`

	// HourLabelMarginEnd separates the label column from the grid.
	HourLabelMarginEnd int `yaml:"hour_label_margin_end" json:"hour_label_margin_end"`

	// EventMargin insets every event block on all sides.
	EventMargin int `yaml:"event_margin" json:"event_margin"`

	// StartHour and EndHour bound the visible hours, both inclusive.
	// EndHour 24 is midnight of the next day.
	StartHour int `yaml:"start_hour" json:"start_hour"`
	EndHour   int `yaml:"end_hour" json:"end_hour"`
}

// DefaultConfig shows the whole day with zero sized dimensions; hosts are
// expected to set the pixel values.
func DefaultConfig() Config {
	return Config{
		StartHour: 0,
		EndHour:   HoursPerDay,
	}
}

// Validate reports a configuration error for impossible hour bounds,
// negative dimensions or zero height half-hour slots.
func (c Config) Validate() error {
	switch {
	case c.StartHour < 0:
		return configErrorf("start hour %d must not be negative", c.StartHour)
	case c.EndHour > HoursPerDay:
		return configErrorf("end hour %d must not be after %d", c.EndHour, HoursPerDay)
	case c.StartHour >= c.EndHour:
		return configErrorf("start hour %d must be before end hour %d", c.StartHour, c.EndHour)
	case c.DividerHeight < 0, c.HalfHourHeight < 0, c.HourLabelWidth < 0,
		c.HourLabelMarginEnd < 0, c.EventMargin < 0:
		return configErrorf("dimensions must not be negative")
	case c.UsableHalfHourHeight() == 0:
		return configErrorf("half-hour slots must have a height")
	}
	return nil
}

// HourLabelCount is the number of hour labels the grid expects.
func (c Config) HourLabelCount() int {
	return c.EndHour - c.StartHour + 1
}

// UsableHalfHourHeight is the height of one half-hour slot including its
// divider.
func (c Config) UsableHalfHourHeight() int {
	return c.DividerHeight + c.HalfHourHeight
}

// VisibleRange is the time range covered by the grid.
func (c Config) VisibleRange() TimeRange {
	return TimeRange{StartMinute: c.StartHour * MinutesPerHour, EndMinute: c.EndHour * MinutesPerHour}
}

func (c Config) hourDividerCount() int {
	return c.EndHour - c.StartHour + 1
}

func (c Config) halfHourDividerCount() int {
	return c.EndHour - c.StartHour
}
