// Package enrich attaches images and weather to a generated itinerary plan.
//
// Every lookup runs concurrently and is independent of the others. A lookup
// that fails, times out or panics is replaced by a placeholder, so Enrich
// always returns a plan with the same days and activities it was given.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tripsmith/itinerary-api/internal/domain"
	"github.com/tripsmith/itinerary-api/internal/metrics"
)

// ImageSearcher returns a photo URL for a free-text place query.
type ImageSearcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// WeatherSource returns forecasts for a location on a calendar date.
type WeatherSource interface {
	DayForecast(ctx context.Context, location, date string) (*domain.DayWeather, error)
	ActivityForecast(ctx context.Context, location, date string, hour int) (*domain.ActivityWeather, error)
}

// Observer receives lookup outcomes. *metrics.Recorder implements it.
type Observer interface {
	ObserveLookup(kind string, ok bool)
	ObserveEnrichment(d time.Duration)
}

// Options bound the fan-out. Budget caps the whole Enrich call; lookups
// still pending when it runs out become placeholders.
type Options struct {
	MaxConcurrency int
	ImageTimeout   time.Duration
	WeatherTimeout time.Duration
	Budget         time.Duration
}

type Enricher struct {
	images   ImageSearcher
	weather  WeatherSource
	observer Observer
	opts     Options
	logger   *slog.Logger
}

func New(images ImageSearcher, weather WeatherSource, observer Observer, opts Options, logger *slog.Logger) *Enricher {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 16
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{images: images, weather: weather, observer: observer, opts: opts, logger: logger}
}

// activityResult is the enrichment output for one (day, activity) slot.
type activityResult struct {
	image   string
	weather *domain.ActivityWeather
}

// Enrich fills in images and weather for every activity and weather for every
// day of plan. It mutates plan in place and returns it. Enrich never fails;
// a cancelled ctx only turns the remaining lookups into placeholders.
func (e *Enricher) Enrich(ctx context.Context, plan *domain.ItineraryPlan) *domain.ItineraryPlan {
	if plan == nil {
		return nil
	}
	start := time.Now()
	if e.opts.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Budget)
		defer cancel()
	}

	locations := make([]string, len(plan.Days))
	acts := make([][]activityResult, len(plan.Days))
	days := make([]*domain.DayWeather, len(plan.Days))
	for i, day := range plan.Days {
		locations[i] = DayLocation(day, plan.Destination)
		acts[i] = make([]activityResult, len(day.Activities))
	}

	var g errgroup.Group
	g.SetLimit(e.opts.MaxConcurrency)

	for i := range plan.Days {
		day := plan.Days[i]
		g.Go(e.guard("day weather", func() {
			days[i] = e.dayWeather(ctx, locations[i], day.Date)
		}))
		for j := range day.Activities {
			act := day.Activities[j]
			g.Go(e.guard("image", func() {
				acts[i][j].image = e.image(ctx, imageQueries(act.PlaceName, locations[i], plan.Destination))
			}))
			g.Go(e.guard("activity weather", func() {
				acts[i][j].weather = e.activityWeather(ctx, act, day.Date, plan.Destination)
			}))
		}
	}
	// Tasks never return errors; Wait only joins them.
	_ = g.Wait()

	assemble(plan, locations, days, acts)
	if e.observer != nil {
		e.observer.ObserveEnrichment(time.Since(start))
	}
	return plan
}

// assemble merges lookup results into plan by structural position. Slots
// left empty by a panicking lookup get placeholders here.
func assemble(plan *domain.ItineraryPlan, locations []string, days []*domain.DayWeather, acts [][]activityResult) {
	for i := range plan.Days {
		d := &plan.Days[i]
		d.PlaceQueried = locations[i]
		d.Weather = days[i]
		if d.Weather == nil {
			d.Weather = domain.UnavailableDayWeather()
		}
		for j := range d.Activities {
			a := &d.Activities[j]
			r := acts[i][j]
			if r.image != "" {
				img := r.image
				a.Image = &img
				a.ImageNote = ""
			} else {
				a.Image = nil
				a.ImageNote = domain.ImageUnavailable
			}
			a.Weather = r.weather
			if a.Weather == nil {
				a.Weather = domain.UnavailableActivityWeather()
			}
		}
	}
}

// guard turns a panic inside a lookup into a logged, absorbed failure.
func (e *Enricher) guard(kind string, fn func()) func() error {
	return func() error {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("enrichment lookup panicked", "kind", kind, "panic", fmt.Sprint(r))
			}
		}()
		fn()
		return nil
	}
}

func (e *Enricher) image(ctx context.Context, queries []string) string {
	var lastErr error
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		cctx, cancel := withTimeout(ctx, e.opts.ImageTimeout)
		url, err := e.images.Search(cctx, q)
		cancel()
		if err == nil && url != "" {
			e.observe(metrics.LookupImage, true)
			return url
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	e.observe(metrics.LookupImage, false)
	e.logger.Warn("image lookup failed", "place", first(queries), "error", errString(lastErr))
	return ""
}

func (e *Enricher) activityWeather(ctx context.Context, act domain.Activity, date, destination string) *domain.ActivityWeather {
	hour := ResolveHour(act.Time)
	var lastErr error
	for _, loc := range dedupe(act.PlaceName, destination) {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		cctx, cancel := withTimeout(ctx, e.opts.WeatherTimeout)
		w, err := e.weather.ActivityForecast(cctx, loc, date, hour)
		cancel()
		if err == nil && w.Available() {
			e.observe(metrics.LookupActivityWeather, true)
			return w
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	e.observe(metrics.LookupActivityWeather, false)
	e.logger.Warn("activity weather lookup failed",
		"place", act.PlaceName, "date", date, "hour", hour, "error", errString(lastErr))
	return domain.UnavailableActivityWeather()
}

func (e *Enricher) dayWeather(ctx context.Context, location, date string) *domain.DayWeather {
	err := ctx.Err()
	var w *domain.DayWeather
	if err == nil {
		cctx, cancel := withTimeout(ctx, e.opts.WeatherTimeout)
		w, err = e.weather.DayForecast(cctx, location, date)
		cancel()
	}
	if err == nil && w.Available() {
		e.observe(metrics.LookupDayWeather, true)
		return w
	}
	e.observe(metrics.LookupDayWeather, false)
	e.logger.Warn("day weather lookup failed", "place", location, "date", date, "error", errString(err))
	return domain.UnavailableDayWeather()
}

func (e *Enricher) observe(kind string, ok bool) {
	if e.observer != nil {
		e.observer.ObserveLookup(kind, ok)
	}
}

// DayLocation is the place a day is keyed on: the first activity's place
// name, or the destination for a day without a named first activity.
func DayLocation(day domain.DayPlan, destination string) string {
	if len(day.Activities) > 0 {
		if p := strings.TrimSpace(day.Activities[0].PlaceName); p != "" {
			return p
		}
	}
	return strings.TrimSpace(destination)
}

// imageQueries is the image fallback chain for an activity: its place name,
// then the day's location, then the destination.
func imageQueries(placeName, dayLocation, destination string) []string {
	return dedupe(placeName, dayLocation, destination)
}

func dedupe(candidates ...string) []string {
	out := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		k := strings.ToLower(c)
		if c == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	return out
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func first(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

func errString(err error) string {
	if err == nil {
		return "no result"
	}
	return err.Error()
}
