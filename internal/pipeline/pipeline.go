package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"daygrid/internal/config"
	"daygrid/internal/dayview"
	"daygrid/internal/ics"
	appLog "daygrid/internal/log"
	"daygrid/internal/model"
	"daygrid/internal/render"
)

// Result is one built day.
type Result struct {
	Day         time.Time          `json:"day"`
	Layout      *dayview.Layout    `json:"layout"`
	Occurrences []model.Occurrence `json:"occurrences"`
	// SourceErrors counts sources that could not be loaded or parsed.
	SourceErrors int `json:"source_errors"`
}

// Builder turns configured calendar sources into a measured day layout.
type Builder struct {
	cfg    *config.Config
	loader *ics.Loader
}

// NewBuilder creates a Builder. A nil loader caches under cfg.CacheDir.
func NewBuilder(cfg *config.Config, loader *ics.Loader) *Builder {
	if loader == nil {
		loader = ics.NewLoader(cfg.CacheDir, nil)
	}
	return &Builder{cfg: cfg, loader: loader}
}

// Build is NewBuilder(cfg, nil).Build(ctx, day).
func Build(ctx context.Context, cfg *config.Config, day time.Time) (*Result, error) {
	return NewBuilder(cfg, nil).Build(ctx, day)
}

// Build loads and parses every source, selects the occurrences of day in
// the configured timezone and measures the grid.
//
// Broken sources are logged and skipped so one bad feed does not blank the
// whole day. Build fails only when every source fails or the grid cannot be
// measured.
func (b *Builder) Build(ctx context.Context, day time.Time) (*Result, error) {
	loc, err := b.cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("pipeline: timezone: %w", err)
	}
	day = day.In(loc)

	sources := make([]ics.Source, 0, len(b.cfg.Sources))
	colors := make(map[string]string, len(b.cfg.Sources))
	for _, s := range b.cfg.Sources {
		sources = append(sources, ics.Source{ID: s.ID, Location: s.Location})
		if s.Color != "" {
			colors[s.ID] = s.Color
		}
	}

	results, errs := b.loader.LoadAll(ctx, sources)

	var parsed []ics.ParsedEvent
	for _, res := range results {
		events, err := ics.ParseICS(res.Source, res.Body)
		if err != nil {
			errs = append(errs, fmt.Errorf("parse %s: %w", res.Source.ID, err))
			continue
		}
		parsed = append(parsed, events...)
	}
	failed := len(errs)
	if len(sources) > 0 && failed == len(sources) {
		return nil, fmt.Errorf("pipeline: all %d sources failed: %w", failed, errors.Join(errs...))
	}

	occs := ics.Occurrences(parsed, loc, colors)
	events := ics.DayEvents(occs, day)

	view, err := dayview.New(b.cfg.Grid)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	view.SetHourLabels(render.HourLabels(b.cfg.Grid, b.cfg.Labels))
	view.SetEvents(events)

	layout, err := view.Measure(dayview.Bounds{
		Width:   b.cfg.Width,
		RTL:     b.cfg.RTL,
		Padding: b.cfg.Padding,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: measure: %w", err)
	}

	dayOccs := make([]model.Occurrence, 0, len(layout.Events))
	for _, ev := range layout.Events {
		if occ, ok := ev.Handle.(model.Occurrence); ok {
			dayOccs = append(dayOccs, occ)
		}
	}

	appLog.Info("day built",
		"day", day.Format(time.DateOnly),
		"sources", len(sources),
		"failed_sources", failed,
		"events", len(layout.Events),
		"columns", layout.ColumnCount,
		"height", layout.Height,
	)

	return &Result{
		Day:          day,
		Layout:       layout,
		Occurrences:  dayOccs,
		SourceErrors: failed,
	}, nil
}

// SVG renders the result with the configured label font.
func (r *Result) SVG(cfg *config.Config) string {
	return render.SVG(r.Layout, render.DefaultStyle(cfg.Labels))
}

// ParseDay parses YYYY-MM-DD in loc. An empty string means today.
func ParseDay(s string, loc *time.Location, now time.Time) (time.Time, error) {
	if s == "" {
		n := now.In(loc)
		return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc), nil
	}
	d, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("pipeline: bad date %q: %w", s, err)
	}
	return d, nil
}
