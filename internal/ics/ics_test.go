package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daygrid/internal/dayview"
	"daygrid/internal/model"
)

var sampleICS = strings.ReplaceAll(`BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//daygrid//test//EN
BEGIN:VEVENT
UID:standup@example.com
DTSTAMP:20250101T000000Z
DTSTART:20250310T090000Z
DTEND:20250310T093000Z
SUMMARY:Standup
LOCATION:Room 1
END:VEVENT
BEGIN:VEVENT
UID:holiday@example.com
DTSTAMP:20250101T000000Z
DTSTART;VALUE=DATE:20250310
DTEND;VALUE=DATE:20250311
SUMMARY:Holiday
END:VEVENT
BEGIN:VEVENT
DTSTAMP:20250101T000000Z
DTSTART:20250310T100000Z
SUMMARY:No uid
END:VEVENT
END:VCALENDAR
`, "\n", "\r\n")

func TestParseICS(t *testing.T) {
	src := Source{ID: "work", Location: "work.ics"}

	events, err := ParseICS(src, []byte(sampleICS))
	require.NoError(t, err)
	require.Len(t, events, 2)

	standup := events[0]
	assert.Equal(t, "standup@example.com", standup.UID)
	assert.Equal(t, "Standup", standup.Summary)
	assert.Equal(t, "Room 1", standup.Location)
	assert.False(t, standup.AllDay)
	assert.True(t, standup.Start.Equal(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, 30*time.Minute, standup.End.Sub(standup.Start))

	assert.True(t, events[1].AllDay)
}

func TestParseICSEmpty(t *testing.T) {
	_, err := ParseICS(Source{ID: "x"}, nil)
	assert.Error(t, err)
}

func TestOccurrences(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	events, err := ParseICS(Source{ID: "work"}, []byte(sampleICS))
	require.NoError(t, err)

	occs := Occurrences(events, loc, map[string]string{"work": "#4285f4"})

	require.Len(t, occs, 2)
	assert.Equal(t, "work", occs[0].SourceID)
	assert.Equal(t, "#4285f4", occs[0].Color)
	assert.Equal(t, 18, occs[0].Start.Hour())
	assert.Equal(t, loc, occs[0].Start.Location())
}

func occurrence(summary string, start, end time.Time) model.Occurrence {
	return model.Occurrence{Summary: summary, Start: start, End: end}
}

func TestDayEvents(t *testing.T) {
	loc := time.UTC
	day := time.Date(2025, 3, 10, 15, 0, 0, 0, loc)
	at := func(d, h, m int) time.Time { return time.Date(2025, 3, d, h, m, 0, 0, loc) }

	occs := []model.Occurrence{
		occurrence("lunch", at(10, 12, 0), at(10, 13, 0)),
		occurrence("overnight", at(9, 22, 0), at(10, 1, 30)),
		occurrence("standup", at(10, 9, 0), at(10, 9, 15)),
		occurrence("late", at(10, 23, 0), at(11, 2, 0)),
		occurrence("yesterday", at(9, 9, 0), at(9, 10, 0)),
		occurrence("ends at midnight", at(9, 23, 0), at(10, 0, 0)),
		occurrence("empty", at(10, 8, 0), at(10, 8, 0)),
		{Summary: "all day", AllDay: true, Start: at(10, 0, 0), End: at(11, 0, 0)},
		occurrence("standup long", at(10, 9, 0), at(10, 10, 0)),
	}

	events := DayEvents(occs, day)

	got := make([]string, len(events))
	for i, ev := range events {
		got[i] = ev.Handle.(model.Occurrence).Summary
	}
	assert.Equal(t, []string{"overnight", "standup", "standup long", "lunch", "late"}, got)

	assert.Equal(t, dayview.NewTimeRange(0, 90), events[0].Range)
	assert.Equal(t, dayview.NewTimeRange(540, 555), events[1].Range)
	assert.Equal(t, dayview.NewTimeRange(540, 600), events[2].Range)
	assert.Equal(t, dayview.NewTimeRange(720, 780), events[3].Range)
	assert.Equal(t, dayview.NewTimeRange(1380, 1440), events[4].Range)
}

func TestLoaderLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cal.ics")
	require.NoError(t, os.WriteFile(path, []byte(sampleICS), 0o600))

	res, err := NewLoader(t.TempDir(), nil).Load(context.Background(), Source{ID: "local", Location: path})
	require.NoError(t, err)
	assert.Equal(t, sampleICS, string(res.Body))
	assert.False(t, res.FromCache)
}

func TestLoaderRemoteCache(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(sampleICS))
	}))
	defer srv.Close()

	loader := NewLoader(t.TempDir(), srv.Client())
	src := Source{ID: "remote", Location: srv.URL + "/private.ics?token=secret"}
	ctx := context.Background()

	res, err := loader.Load(ctx, src)
	require.NoError(t, err)
	assert.False(t, res.FromCache)

	res, err = loader.Load(ctx, src)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, sampleICS, string(res.Body))

	fail.Store(true)
	res, err = loader.Load(ctx, src)
	require.NoError(t, err)
	assert.True(t, res.FromCache)

	_, err = NewLoader(t.TempDir(), srv.Client()).Load(ctx, src)
	assert.Error(t, err)
}

func TestCacheMetaRoundTrip(t *testing.T) {
	dir := t.TempDir()
	meta := cacheEntry{URL: "https://example.com/cal.ics", ETag: `"v7"`, LastModified: "Mon, 10 Mar 2025 09:00:00 GMT"}

	require.NoError(t, saveCache(dir, meta, []byte(sampleICS)))

	got, err := loadCacheMeta(dir)
	require.NoError(t, err)
	assert.Equal(t, meta.URL, got.URL)
	assert.Equal(t, meta.ETag, got.ETag)
	assert.Equal(t, meta.LastModified, got.LastModified)
	assert.False(t, got.UpdatedAt.IsZero())

	body, err := os.ReadFile(filepath.Join(dir, "body.ics"))
	require.NoError(t, err)
	assert.Equal(t, sampleICS, string(body))
}

func TestLoadAllCollectsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cal.ics")
	require.NoError(t, os.WriteFile(path, []byte(sampleICS), 0o600))

	results, errs := NewLoader(t.TempDir(), nil).LoadAll(context.Background(), []Source{
		{ID: "ok", Location: path},
		{ID: "missing", Location: filepath.Join(t.TempDir(), "nope.ics")},
		{ID: "empty"},
	})

	require.Len(t, results, 1)
	assert.Equal(t, "ok", results[0].Source.ID)
	assert.Len(t, errs, 2)
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "https://example.com/...(redacted)", redact("https://example.com/a/b.ics?token=x"))
	assert.Equal(t, "cal.ics", redact("/home/me/cal.ics"))
}
