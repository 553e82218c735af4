package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"weatheralert/internal/metrics"
	"weatheralert/internal/models"
)

const DefaultBaseURL = "https://api.openweathermap.org/data/3.0/onecall"

// defaultExclude drops the One Call sections the alert path never reads.
var defaultExclude = []string{"current", "minutely", "daily", "alerts"}

// OpenWeatherClient is a client for the OpenWeatherMap One Call API
type OpenWeatherClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

type ForecastParams struct {
	Latitude  float64
	Longitude float64
	Units     string   // imperial or metric
	Exclude   []string // One Call sections to leave out
}

// NewOpenWeatherClient creates a new OpenWeatherMap client. An empty baseURL
// selects DefaultBaseURL; a zero timeout leaves the request unbounded.
func NewOpenWeatherClient(apiKey, baseURL string, timeout time.Duration) *OpenWeatherClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &OpenWeatherClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// GetForecast fetches the raw hourly forecast for the given coordinates
func (c *OpenWeatherClient) GetForecast(ctx context.Context, params ForecastParams) (*models.Forecast, error) {
	start := time.Now()
	forecast, err := c.fetch(ctx, params)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordForecastFetch(status, time.Since(start))

	return forecast, err
}

func (c *OpenWeatherClient) fetch(ctx context.Context, params ForecastParams) (*models.Forecast, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BuildURL(params), nil)
	if err != nil {
		return nil, models.NewError(models.ErrSourceUnavailable, err, "failed to build forecast request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, models.NewError(models.ErrSourceUnavailable, stripURL(err), "failed to fetch forecast")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, models.NewError(models.ErrSourceUnavailable, nil,
			"API error: status %d, body: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var forecast models.Forecast
	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		return nil, models.NewError(models.ErrSourceUnavailable, err, "failed to decode response")
	}

	return &forecast, nil
}

// GetHourlyReadings fetches the forecast and converts it into readings, oldest first.
func (c *OpenWeatherClient) GetHourlyReadings(ctx context.Context, params ForecastParams) ([]models.HourlyReading, error) {
	forecast, err := c.GetForecast(ctx, params)
	if err != nil {
		return nil, err
	}

	readings, err := forecast.Readings()
	if err != nil {
		return nil, models.NewError(models.ErrSourceUnavailable, err, "malformed forecast payload")
	}

	return readings, nil
}

// Builds URL for OpenWeatherClient request
func (c *OpenWeatherClient) BuildURL(params ForecastParams) string {
	if params.Units == "" {
		params.Units = "imperial"
	}

	if params.Exclude == nil {
		params.Exclude = defaultExclude
	}

	u := fmt.Sprintf("%s?lat=%.4f&lon=%.4f&units=%s",
		c.baseURL, params.Latitude, params.Longitude, params.Units)

	if len(params.Exclude) > 0 {
		u += "&exclude=" + strings.Join(params.Exclude, ",")
	}

	return u + "&appid=" + url.QueryEscape(c.apiKey)
}

// stripURL drops the request URL from transport errors so the API key never reaches a log line.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
