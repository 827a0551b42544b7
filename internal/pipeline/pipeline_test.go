package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daygrid/internal/config"
	"daygrid/internal/dayview"
)

var testICS = strings.ReplaceAll(`BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//daygrid//test//EN
BEGIN:VEVENT
UID:a@example.com
DTSTAMP:20250101T000000Z
DTSTART:20250310T090000Z
DTEND:20250310T110000Z
SUMMARY:Planning
END:VEVENT
BEGIN:VEVENT
UID:b@example.com
DTSTAMP:20250101T000000Z
DTSTART:20250310T100000Z
DTEND:20250310T103000Z
SUMMARY:Call
END:VEVENT
BEGIN:VEVENT
UID:c@example.com
DTSTAMP:20250101T000000Z
DTSTART:20250311T100000Z
DTEND:20250311T103000Z
SUMMARY:Tomorrow
END:VEVENT
END:VCALENDAR
`, "\n", "\r\n")

func testConfig(t *testing.T, locations ...string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.CacheDir = t.TempDir()
	for _, loc := range locations {
		cfg.Sources = append(cfg.Sources, config.SourceConfig{Location: loc, Color: "#0b8043"})
	}
	cfg.Normalize()
	require.NoError(t, cfg.Validate())
	return cfg
}

func writeICS(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "work.ics")
	require.NoError(t, os.WriteFile(path, []byte(testICS), 0o600))
	return path
}

var testDay = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func TestBuild(t *testing.T) {
	cfg := testConfig(t, writeICS(t))

	res, err := Build(context.Background(), cfg, testDay)
	require.NoError(t, err)

	assert.Equal(t, 0, res.SourceErrors)
	require.Len(t, res.Occurrences, 2)
	assert.Equal(t, "Planning", res.Occurrences[0].Summary)
	assert.Equal(t, "#0b8043", res.Occurrences[0].Color)
	assert.Equal(t, "Call", res.Occurrences[1].Summary)

	l := res.Layout
	assert.Equal(t, 2, l.ColumnCount)
	require.Len(t, l.Events, 2)
	assert.Equal(t, dayview.ColumnSpan{StartColumn: 0, EndColumn: 1}, l.Events[0].Span)
	assert.Equal(t, dayview.ColumnSpan{StartColumn: 1, EndColumn: 2}, l.Events[1].Span)
	assert.Len(t, l.HourLabels, cfg.Grid.HourLabelCount())

	svg := res.SVG(cfg)
	assert.Contains(t, svg, ">Planning</text>")
	assert.NotContains(t, svg, "Tomorrow")
}

func TestBuildKeepsGoingWithBrokenSource(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.ics")
	cfg := testConfig(t, writeICS(t), missing)

	res, err := Build(context.Background(), cfg, testDay)
	require.NoError(t, err)
	assert.Equal(t, 1, res.SourceErrors)
	assert.Len(t, res.Occurrences, 2)
}

func TestBuildAllSourcesFail(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.ics")
	require.NoError(t, os.WriteFile(bad, nil, 0o600))
	cfg := testConfig(t, filepath.Join(t.TempDir(), "missing.ics"), bad)

	_, err := Build(context.Background(), cfg, testDay)
	assert.Error(t, err)
}

func TestBuildWithoutSources(t *testing.T) {
	cfg := testConfig(t)

	res, err := Build(context.Background(), cfg, testDay)
	require.NoError(t, err)
	assert.Empty(t, res.Layout.Events)
	assert.Equal(t, 0, res.Layout.ColumnCount)
	assert.Greater(t, res.Layout.Height, 0)
}

func TestBuildPartialDayHidesEarlyEvents(t *testing.T) {
	cfg := testConfig(t, writeICS(t))
	cfg.Grid.StartHour, cfg.Grid.EndHour = 10, 18

	res, err := Build(context.Background(), cfg, testDay)
	require.NoError(t, err)

	require.Len(t, res.Layout.Events, 2)
	assert.Equal(t, res.Layout.FirstDividerTop+cfg.Grid.DividerHeight+cfg.Grid.EventMargin, res.Layout.Events[0].Rect.Top)
}

func TestParseDay(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	now := time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)

	d, err := ParseDay("", loc, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, loc), d)

	d, err = ParseDay("2025-01-02", loc, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, loc), d)

	_, err = ParseDay("02/01/2025", loc, now)
	assert.Error(t, err)
}
