package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ridehail/internal/domain"
)

const serviceName = "weather"

// Client fetches current conditions from the OpenWeather API.
// Every call is a live fetch.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new weather Client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// currentResponse is the subset of the current-weather payload we read.
// The rain block is only present while it is raining.
type currentResponse struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Rain *json.RawMessage `json:"rain"`
}

// Current returns the temperature and rain flag at a coordinate.
func (c *Client) Current(ctx context.Context, at domain.Coordinate) (domain.WeatherSample, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(at.Lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(at.Lng, 'f', 6, 64))
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)

	query := fmt.Sprintf("%.4f,%.4f", at.Lat, at.Lng)
	fail := func(err error) (domain.WeatherSample, error) {
		return domain.WeatherSample{}, &domain.LookupError{Service: serviceName, Query: query, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/data/2.5/weather?"+q.Encode(), nil)
	if err != nil {
		return fail(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fail(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var body currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fail(fmt.Errorf("decode response: %w", err))
	}

	return domain.WeatherSample{
		TempCelsius: body.Main.Temp,
		Raining:     body.Rain != nil && string(*body.Rain) != "null",
	}, nil
}
