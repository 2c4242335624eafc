package weather

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tripsmith/itinerary-api/internal/calendar"
	"github.com/tripsmith/itinerary-api/internal/domain"
)

// DayForecast returns the day-level forecast for location on date.
// Dates outside the provider's horizon return ErrNoForecast.
func (c *Client) DayForecast(ctx context.Context, location, date string) (*domain.DayWeather, error) {
	day, err := c.forecastDay(ctx, location, date)
	if err != nil {
		return nil, err
	}

	w := &domain.DayWeather{
		Date:      day.Date,
		Condition: day.Day.Condition.Text,
		MaxTempC:  ptr(day.Day.MaxTempC),
		MinTempC:  ptr(day.Day.MinTempC),
		AvgTempC:  ptr(day.Day.AvgTempC),
		Icon:      AbsoluteIcon(day.Day.Condition.Icon),
	}
	if h, ok := middayHour(day.Hour); ok {
		w.Midday = &domain.HourlySample{
			Time:      h.Time,
			TempC:     ptr(h.TempC),
			Condition: h.Condition.Text,
			Icon:      AbsoluteIcon(h.Condition.Icon),
		}
	}
	return w, nil
}

// ActivityForecast returns the hourly sample closest to hour (0-23) for
// location on date.
func (c *Client) ActivityForecast(ctx context.Context, location, date string, hour int) (*domain.ActivityWeather, error) {
	day, err := c.forecastDay(ctx, location, date)
	if err != nil {
		return nil, err
	}

	hours := make([]int, len(day.Hour))
	for i, h := range day.Hour {
		hours[i] = sampleHour(h.Time)
	}
	i, ok := ClosestHour(hours, hour)
	if !ok {
		return nil, fmt.Errorf("weather.Client.ActivityForecast: %w: no hourly data for %s", ErrNoForecast, day.Date)
	}
	best := day.Hour[i]
	return &domain.ActivityWeather{
		Date:      day.Date,
		Time:      best.Time,
		TempC:     ptr(best.TempC),
		Condition: best.Condition.Text,
		Icon:      AbsoluteIcon(best.Condition.Icon),
	}, nil
}

func (c *Client) forecastDay(ctx context.Context, location, date string) (*forecastDay, error) {
	target, ok := calendar.Normalize(date)
	if !ok {
		return nil, fmt.Errorf("weather: %w: unparsable date %q", ErrNoForecast, date)
	}
	fr, err := c.forecast(ctx, location)
	if err != nil {
		return nil, err
	}
	for i := range fr.Forecast.ForecastDay {
		d := &fr.Forecast.ForecastDay[i]
		if got, ok := calendar.Normalize(d.Date); ok && got == target {
			return d, nil
		}
	}
	return nil, fmt.Errorf("weather: %w: %s not within horizon for %q", ErrNoForecast, target, location)
}

// ClosestHour returns the index of the entry in hours numerically closest to
// target. Negative entries are skipped. Ties go to the earliest entry.
func ClosestHour(hours []int, target int) (int, bool) {
	best, bestDiff := -1, math.MaxInt
	for i, h := range hours {
		if h < 0 {
			continue
		}
		diff := h - target
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	return best, best >= 0
}

// sampleHour extracts the hour from a "2006-01-02 15:04" timestamp, or -1.
func sampleHour(ts string) int {
	_, clock, ok := strings.Cut(strings.TrimSpace(ts), " ")
	if !ok {
		return -1
	}
	hh, _, _ := strings.Cut(clock, ":")
	n, err := strconv.Atoi(hh)
	if err != nil || n < 0 || n > 23 {
		return -1
	}
	return n
}

// middayHour picks the 12:00 sample, falling back to the middle of the series.
func middayHour(hours []forecastHour) (forecastHour, bool) {
	if len(hours) == 0 {
		return forecastHour{}, false
	}
	for _, h := range hours {
		if strings.HasSuffix(h.Time, "12:00") {
			return h, true
		}
	}
	return hours[len(hours)/2], true
}

// AbsoluteIcon makes the protocol-relative icon URLs returned by the provider
// ("//cdn.weatherapi.com/...") scheme-qualified.
func AbsoluteIcon(icon string) string {
	switch {
	case icon == "":
		return ""
	case strings.HasPrefix(icon, "//"):
		return "https:" + icon
	case strings.HasPrefix(icon, "/"):
		return "https://cdn.weatherapi.com" + icon
	default:
		return icon
	}
}

func ptr(f float64) *float64 { return &f }
