// Package weather fetches live conditions for RINDVERSE regions from
// OpenWeatherMap and maps them to scene ambience.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const defaultURL = "https://api.openweathermap.org/data/2.5/weather"

// Client fetches weather data from OpenWeatherMap, cached per location.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	now     func() time.Time

	mu       sync.Mutex
	entries  map[string]*entry
	cacheTTL time.Duration
}

type entry struct {
	cached      *Conditions
	cachedAt    time.Time
	lastFailAt  time.Time
	failBackoff time.Duration
}

// NewClient creates a weather API client. Returns nil if apiKey is empty.
func NewClient(apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		apiKey:   apiKey,
		baseURL:  defaultURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
		entries:  make(map[string]*entry),
		cacheTTL: 10 * time.Minute,
	}
}

// WithURL points the client at another endpoint (tests, proxies).
func (c *Client) WithURL(u string) *Client {
	if c != nil {
		c.baseURL = u
	}
	return c
}

// Enabled reports whether the client can fetch.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Conditions holds parsed weather data from the API.
type Conditions struct {
	Temp        float64 `json:"temp"` // Celsius
	Description string  `json:"description"`
	WindSpeed   float64 `json:"wind_speed"` // m/s
	IsStorm     bool    `json:"is_storm"`
	IsSnow      bool    `json:"is_snow"`
	IsRain      bool    `json:"is_rain"`
	IsFog       bool    `json:"is_fog"`
}

// Fetch retrieves current conditions at lat/lon, using cache if fresh.
// After a failure the location backs off (1 to 10 minutes), serving the
// stale value when there is one.
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (*Conditions, error) {
	key := fmt.Sprintf("%.2f,%.2f", lat, lon)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	now := c.now()

	if e.cached != nil && now.Sub(e.cachedAt) < c.cacheTTL {
		return e.cached, nil
	}

	if e.failBackoff > 0 && now.Sub(e.lastFailAt) < e.failBackoff {
		if e.cached != nil {
			return e.cached, nil
		}
		return nil, fmt.Errorf("weather API backoff (%s remaining)", e.failBackoff-now.Sub(e.lastFailAt))
	}

	conditions, err := c.fetchFromAPI(ctx, lat, lon)
	if err != nil {
		e.lastFailAt = now
		if e.failBackoff == 0 {
			e.failBackoff = 1 * time.Minute
		} else if e.failBackoff < 10*time.Minute {
			e.failBackoff *= 2
		}
		if e.cached != nil {
			return e.cached, nil
		}
		return nil, err
	}

	e.cached = conditions
	e.cachedAt = now
	e.failBackoff = 0
	return conditions, nil
}

func (c *Client) fetchFromAPI(ctx context.Context, lat, lon float64) (*Conditions, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%.4f", lat))
	q.Set("lon", fmt.Sprintf("%.4f", lon))
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create weather request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather API call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read weather response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API error %d: %s", resp.StatusCode, string(body))
	}

	var owm struct {
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	}

	if err := json.Unmarshal(body, &owm); err != nil {
		return nil, fmt.Errorf("parse weather: %w", err)
	}

	conditions := &Conditions{
		Temp:      owm.Main.Temp,
		WindSpeed: owm.Wind.Speed,
	}

	if len(owm.Weather) > 0 {
		conditions.Description = owm.Weather[0].Description
		main := strings.ToLower(owm.Weather[0].Main)
		conditions.IsRain = main == "rain" || main == "drizzle"
		conditions.IsSnow = main == "snow"
		conditions.IsFog = main == "fog" || main == "mist" || main == "haze"
		conditions.IsStorm = main == "thunderstorm" || conditions.WindSpeed > 15
	}

	slog.Debug("weather fetched", "lat", lat, "lon", lon, "temp", conditions.Temp, "desc", conditions.Description)
	return conditions, nil
}

// Ambience is how the weather colors a scene.
type Ambience struct {
	Description string  `json:"description"`
	Warmth      float64 `json:"warmth"`       // -1 cold to +1 hot
	MotionScale float64 `json:"motion_scale"` // multiplier on scene motion intensity
	Haze        float64 `json:"haze"`         // 0 clear to 1 thick fog
	Live        bool    `json:"live"`
}

// MapToAmbience converts conditions to scene modifiers. Nil conditions
// yield a seasonal default for the month.
func MapToAmbience(c *Conditions, month time.Month) Ambience {
	a := Ambience{MotionScale: 1.0}

	if c == nil {
		a.Description = seasonDefault(month)
		return a
	}

	a.Live = true
	a.Description = c.Description

	// 0C = -1, 20C = 0, 40C = +1.
	a.Warmth = (c.Temp - 20) / 20
	if a.Warmth < -1 {
		a.Warmth = -1
	}
	if a.Warmth > 1 {
		a.Warmth = 1
	}

	switch {
	case c.IsStorm:
		a.MotionScale = 1.6
	case c.WindSpeed > 8:
		a.MotionScale = 1.3
	case c.IsSnow:
		a.MotionScale = 0.7
	}

	switch {
	case c.IsFog:
		a.Haze = 0.8
	case c.IsSnow:
		a.Haze = 0.5
	case c.IsRain:
		a.Haze = 0.3
	}

	return a
}

func seasonDefault(month time.Month) string {
	switch month {
	case time.March, time.April, time.May:
		return "mild spring weather"
	case time.June, time.July, time.August:
		return "warm summer sun"
	case time.September, time.October, time.November:
		return "cool autumn breeze"
	default:
		return "cold winter chill"
	}
}
