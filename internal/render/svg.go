package render

import (
	"fmt"
	"strings"

	"daygrid/internal/config"
	"daygrid/internal/dayview"
	"daygrid/internal/model"
)

// Style holds the colors and font used for drawing a day grid.
type Style struct {
	Background      string
	HourDivider     string
	HalfHourDivider string
	LabelText       string
	EventFill       string
	EventText       string

	FontFamily string
	FontSize   int
}

// DefaultStyle returns a light theme using the configured label font.
func DefaultStyle(labels config.LabelConfig) Style {
	return Style{
		Background:      "#ffffff",
		HourDivider:     "#c8c8c8",
		HalfHourDivider: "#ececec",
		LabelText:       "#5f6368",
		EventFill:       "#4285f4",
		EventText:       "#ffffff",
		FontFamily:      labels.FontFamily,
		FontSize:        labels.FontSize,
	}
}

// labelLineGap is added to the font size to get a label's natural height.
const labelLineGap = 4

// HourLabels builds one label per visible hour, StartHour through EndHour.
// The handle of each label is its text.
func HourLabels(grid dayview.Config, labels config.LabelConfig) []dayview.HourLabel {
	out := make([]dayview.HourLabel, 0, grid.HourLabelCount())
	for h := grid.StartHour; h <= grid.EndHour; h++ {
		out = append(out, dayview.HourLabel{
			Handle: LabelText(h, labels.Format),
			Height: labels.FontSize + labelLineGap,
		})
	}
	return out
}

// LabelText formats an hour as "09:00" or, for the 12h format, "9 AM".
// Hour 24 is shown as the following midnight.
func LabelText(hour int, format string) string {
	hour %= dayview.HoursPerDay
	if format != "12h" {
		return fmt.Sprintf("%02d:00", hour)
	}
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d %s", h, suffix)
}

// SVG draws a measured layout as a standalone SVG document.
func SVG(l *dayview.Layout, style Style) string {
	width, height := l.Bounds.Width, l.Height

	var svg strings.Builder
	svg.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
<defs>
<style>
.hour-label { font-family: %s; font-size: %dpx; fill: %s; }
.event-title { font-family: %s; font-size: %dpx; font-weight: bold; fill: %s; }
.event-location { font-family: %s; font-size: %dpx; fill: %s; }
</style>
</defs>
`, width, height, width, height, style.Background,
		style.FontFamily, style.FontSize, style.LabelText,
		style.FontFamily, style.FontSize, style.EventText,
		style.FontFamily, max(style.FontSize-2, 1), style.EventText))

	for _, r := range l.HalfHourDividers {
		writeRect(&svg, r, style.HalfHourDivider)
	}
	for _, r := range l.HourDividers {
		writeRect(&svg, r, style.HourDivider)
	}
	for _, label := range l.HourLabels {
		drawHourLabel(&svg, label)
	}
	for i, ev := range l.Events {
		drawEvent(&svg, ev, i, style)
	}

	svg.WriteString("</svg>\n")
	return svg.String()
}

func writeRect(svg *strings.Builder, r dayview.Rect, fill string) {
	svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`+"\n",
		r.Left, r.Top, r.Width(), r.Height(), fill))
}

func drawHourLabel(svg *strings.Builder, label dayview.PlacedLabel) {
	text, _ := label.Handle.(string)
	if text == "" {
		text = LabelText(label.Hour, "24h")
	}
	x := label.Rect.Left + label.Rect.Width()/2
	y := label.Rect.Top + label.Rect.Height()/2
	svg.WriteString(fmt.Sprintf(`<text class="hour-label" x="%d" y="%d" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
		x, y, escapeXML(text)))
}

func drawEvent(svg *strings.Builder, ev dayview.PlacedEvent, index int, style Style) {
	r := ev.Rect
	if r.Width() <= 0 || r.Height() <= 0 {
		return
	}

	title, location, fill := eventText(ev.Handle)
	if fill == "" {
		fill = style.EventFill
	}

	clipID := fmt.Sprintf("event-%d", index)
	svg.WriteString(fmt.Sprintf(`<g clip-path="url(#%s)">`+"\n", clipID))
	svg.WriteString(fmt.Sprintf(`<clipPath id="%s"><rect x="%d" y="%d" width="%d" height="%d"/></clipPath>`+"\n",
		clipID, r.Left, r.Top, r.Width(), r.Height()))
	svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" rx="3" fill="%s"/>`+"\n",
		r.Left, r.Top, r.Width(), r.Height(), escapeXML(fill)))

	line := style.FontSize + 2
	y := r.Top + line
	if title != "" {
		svg.WriteString(fmt.Sprintf(`<text class="event-title" x="%d" y="%d">%s</text>`+"\n",
			r.Left+3, y, escapeXML(title)))
		y += line
	}
	// Only draw the location when a full second line fits.
	if location != "" && y <= r.Bottom {
		svg.WriteString(fmt.Sprintf(`<text class="event-location" x="%d" y="%d">%s</text>`+"\n",
			r.Left+3, y, escapeXML(location)))
	}
	svg.WriteString("</g>\n")
}

func eventText(handle any) (title, location, color string) {
	switch h := handle.(type) {
	case model.Occurrence:
		return h.Summary, h.Location, h.Color
	case *model.Occurrence:
		if h != nil {
			return h.Summary, h.Location, h.Color
		}
	case string:
		return h, "", ""
	case fmt.Stringer:
		return h.String(), "", ""
	}
	return "", "", ""
}

// escapeXML escapes the five XML special characters.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
