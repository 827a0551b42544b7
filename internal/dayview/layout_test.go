package dayview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDividerHeight      = 7
	testHalfHourHeight     = 28
	testHourLabelMarginEnd = 17
	testEventMargin        = 3
	testMinuteHeight       = float64(testHalfHourHeight) / 30
	testParentWidth        = 200
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.DividerHeight = testDividerHeight
	cfg.HalfHourHeight = testHalfHourHeight
	cfg.HourLabelMarginEnd = testHourLabelMarginEnd
	cfg.EventMargin = testEventMargin
	return cfg
}

func testLabels(cfg Config, height int) []HourLabel {
	labels := make([]HourLabel, cfg.HourLabelCount())
	for i := range labels {
		labels[i] = HourLabel{Handle: cfg.StartHour + i, Height: height}
	}
	return labels
}

func fixtureEvents() []visibleEvent {
	ranges := []TimeRange{{30, 180}, {90, 120}, {150, 300}, {150, 300}}
	out := make([]visibleEvent, len(ranges))
	for i, r := range ranges {
		out[i] = visibleEvent{Event: Event{Handle: i, Range: r}, index: i, clamped: r}
	}
	return out
}

func testGrid(rtl bool) grid {
	return newGrid(testConfig(), Bounds{Width: testParentWidth, RTL: rtl})
}

func TestHourLabelRects(t *testing.T) {
	labels := testLabels(testConfig(), 20)

	rects := testGrid(false).hourLabelRects(labels, 25, 75, 90)

	require.Len(t, rects, 25)
	assert.Equal(t, Rect{Left: 25, Top: 80, Right: 75, Bottom: 100}, rects[0].Rect)
	assert.Equal(t, Rect{Left: 25, Top: 500, Right: 75, Bottom: 520}, rects[6].Rect)
	assert.Equal(t, Rect{Left: 25, Top: 990, Right: 75, Bottom: 1010}, rects[13].Rect)
	assert.Equal(t, Rect{Left: 25, Top: 1550, Right: 75, Bottom: 1570}, rects[21].Rect)
	assert.Equal(t, 21, rects[21].Hour)
	assert.Equal(t, 21, rects[21].Handle)
}

func TestDividerRects(t *testing.T) {
	hours, halfHours := testGrid(false).dividerRects(10, 5, 195)

	require.Len(t, hours, 25)
	require.Len(t, halfHours, 24)
	assert.Equal(t, Rect{Left: 5, Top: 10, Right: 195, Bottom: 17}, hours[0])
	assert.Equal(t, Rect{Left: 5, Top: 535, Right: 195, Bottom: 542}, halfHours[7])
	assert.Equal(t, Rect{Left: 5, Top: 1340, Right: 195, Bottom: 1347}, hours[19])
	assert.Equal(t, Rect{Left: 5, Top: 1585, Right: 195, Bottom: 1592}, halfHours[22])
}

func TestEventRects(t *testing.T) {
	events := fixtureEvents()
	ranges := []TimeRange{events[0].clamped, events[1].clamped, events[2].clamped, events[3].clamped}
	spans, count := ResolveColumnSpans(ranges)

	placed := testGrid(false).eventRects(events, spans, count, 10, testMinuteHeight, 5, 195)

	require.Len(t, placed, 4)
	assert.Equal(t, Rect{Left: 8, Top: 48, Right: 65, Bottom: 175}, placed[0].Rect)
	assert.Equal(t, Rect{Left: 71, Top: 104, Right: 191, Bottom: 119}, placed[1].Rect)
	assert.Equal(t, Rect{Left: 71, Top: 160, Right: 128, Bottom: 287}, placed[2].Rect)
	assert.Equal(t, Rect{Left: 134, Top: 160, Right: 191, Bottom: 287}, placed[3].Rect)

	for i, ev := range placed {
		assert.Equal(t, i, ev.Index)
		assert.Equal(t, spans[i], ev.Span)
	}
}

func TestEventRectsRTL(t *testing.T) {
	events := fixtureEvents()
	ranges := []TimeRange{events[0].clamped, events[1].clamped, events[2].clamped, events[3].clamped}
	spans, count := ResolveColumnSpans(ranges)

	placed := testGrid(true).eventRects(events, spans, count, 10, testMinuteHeight, 5, 195)

	assert.Equal(t, Rect{Left: 135, Top: 48, Right: 192, Bottom: 175}, placed[0].Rect)
	assert.Equal(t, Rect{Left: 9, Top: 104, Right: 129, Bottom: 119}, placed[1].Rect)
	assert.Equal(t, Rect{Left: 72, Top: 160, Right: 129, Bottom: 287}, placed[2].Rect)
	assert.Equal(t, Rect{Left: 9, Top: 160, Right: 66, Bottom: 287}, placed[3].Rect)
}

func TestEventRectsNoColumns(t *testing.T) {
	placed := testGrid(false).eventRects(nil, nil, 0, 10, testMinuteHeight, 5, 195)
	assert.Empty(t, placed)
}

func TestFilterVisible(t *testing.T) {
	events := []Event{
		{Handle: "early", Range: TimeRange{0, 60}},
		{Handle: "straddle", Range: TimeRange{420, 540}},
		{Handle: "inside", Range: TimeRange{600, 660}},
		{Handle: "touching end", Range: TimeRange{1080, 1200}},
		{Handle: "late", Range: TimeRange{1000, 1100}},
	}

	visible := filterVisible(events, TimeRange{480, 1080})

	require.Len(t, visible, 3)
	assert.Equal(t, "straddle", visible[0].Handle)
	assert.Equal(t, 1, visible[0].index)
	assert.Equal(t, TimeRange{480, 540}, visible[0].clamped)
	assert.Equal(t, TimeRange{420, 540}, visible[0].Range)
	assert.Equal(t, TimeRange{600, 660}, visible[1].clamped)
	assert.Equal(t, 4, visible[2].index)
	assert.Equal(t, TimeRange{1000, 1080}, visible[2].clamped)
}
