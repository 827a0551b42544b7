package model

import "time"

// Occurrence is a single concrete calendar event in the display timezone.
// It is the handle the day grid carries for every event block.
type Occurrence struct {
	SourceID string `json:"source_id"` // calendar source ID
	UID      string `json:"uid"`       // iCalendar UID

	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`

	AllDay bool `json:"all_day"`

	// Color is a CSS color used for the event block, taken from the source
	// configuration.
	Color string `json:"color,omitempty"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
