// Package weather fetches forecasts from weatherapi.com and reduces them to
// the day-level and activity-level samples attached to an itinerary.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/tripsmith/itinerary-api/internal/config"
)

// ErrNoAPIKey is returned by every lookup when no weatherapi.com key is configured.
var ErrNoAPIKey = errors.New("weather: WEATHERAPI_KEY not configured")

// ErrNoForecast is returned when the requested date is not covered by the
// provider's forecast horizon.
var ErrNoForecast = errors.New("weather: no forecast for date")

// maxResponseSize limits the forecast body; a 10-day forecast is ~150KB.
const maxResponseSize = 4 << 20

// Client talks to the weatherapi.com forecast endpoint.
// Forecasts are cached per location, and concurrent misses for the same
// location share a single upstream request.
type Client struct {
	apiKey     string
	baseURL    string
	days       int
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *gocache.Cache
	inflight   singleflight.Group
	logger     *slog.Logger

	// fetchTimeout bounds a shared upstream fetch, which runs detached from
	// the cancellation of the caller that started it.
	fetchTimeout time.Duration
}

// NewClient constructs a Client from cfg. A nil logger falls back to slog.Default().
func NewClient(cfg config.WeatherConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	fetchTimeout := cfg.Timeout
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		days:         max(cfg.ForecastDays, 1),
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		limiter:      rate.NewLimiter(limit, max(cfg.Burst, 1)),
		cache:        gocache.New(ttl, 2*ttl),
		logger:       logger,
		fetchTimeout: fetchTimeout,
	}
}

type condition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
}

type forecastHour struct {
	Time      string    `json:"time"` // "2025-06-01 09:00"
	TempC     float64   `json:"temp_c"`
	Condition condition `json:"condition"`
}

type forecastDay struct {
	Date string `json:"date"`
	Day  struct {
		MaxTempC  float64   `json:"maxtemp_c"`
		MinTempC  float64   `json:"mintemp_c"`
		AvgTempC  float64   `json:"avgtemp_c"`
		Condition condition `json:"condition"`
	} `json:"day"`
	Hour []forecastHour `json:"hour"`
}

type forecastResponse struct {
	Forecast struct {
		ForecastDay []forecastDay `json:"forecastday"`
	} `json:"forecast"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// forecast returns the full forecast for location, from cache when possible.
func (c *Client) forecast(ctx context.Context, location string) (*forecastResponse, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	key := strings.ToLower(strings.TrimSpace(location))
	if key == "" {
		return nil, fmt.Errorf("weather.Client.forecast: empty location")
	}
	if v, ok := c.cache.Get(key); ok {
		return v.(*forecastResponse), nil
	}

	// The shared fetch outlives any single caller: one caller giving up must
	// not fail the others waiting on the same location.
	ch := c.inflight.DoChan(key, func() (any, error) {
		if v, ok := c.cache.Get(key); ok {
			return v, nil
		}
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()
		fr, err := c.fetch(fctx, location)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, fr, gocache.DefaultExpiration)
		return fr, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("weather.Client.forecast: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*forecastResponse), nil
	}
}

func (c *Client) fetch(ctx context.Context, location string) (*forecastResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("weather.Client.fetch: rate limit wait canceled: %w", err)
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("q", location)
	params.Set("days", strconv.Itoa(c.days))
	params.Set("aqi", "no")
	params.Set("alerts", "no")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/forecast.json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("weather.Client.fetch: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather.Client.fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("weather.Client.fetch: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var ae apiError
		if json.Unmarshal(body, &ae) == nil && ae.Error.Message != "" {
			return nil, fmt.Errorf("weather.Client.fetch: status %d: %s", resp.StatusCode, ae.Error.Message)
		}
		return nil, fmt.Errorf("weather.Client.fetch: status %d", resp.StatusCode)
	}

	var fr forecastResponse
	if err := json.Unmarshal(body, &fr); err != nil {
		return nil, fmt.Errorf("weather.Client.fetch: decode: %w", err)
	}
	c.logger.DebugContext(ctx, "forecast fetched",
		"location", location,
		"days", len(fr.Forecast.ForecastDay),
	)
	return &fr, nil
}
