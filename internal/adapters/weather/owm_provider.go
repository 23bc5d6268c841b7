package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shipment-risk-service/internal/ports"
)

// Weather condition scoring. Condition risk and the wind bump are
// summed, then capped.
const (
	severeWeatherRisk  = 30
	wetWeatherRisk     = 15
	lowVisibilityRisk  = 10
	highWindRisk       = 10
	weatherRiskCap     = 50
	windSpeedThreshold = 10.0
)

// OWMWeatherProvider implements WeatherProvider using OpenWeatherMap.
//
// The client enforces a hard timeout; a failed or timed-out lookup is
// returned as an error with no retry. Callers substitute their fixed
// fallback (the provider is expected to be unreliable).
//
// The provider is safe for concurrent use.
type OWMWeatherProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
}

func NewOWMWeatherProvider(apiKey string) (*OWMWeatherProvider, error) {
	if apiKey == "" {
		return nil, errors.New("OpenWeatherMap api key is empty")
	}

	return &OWMWeatherProvider{
		session: &http.Client{Timeout: 5 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
	}, nil
}

type owmResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// GetWeatherRisk fetches current conditions for a city and converts
// them into a bounded risk contribution.
func (o *OWMWeatherProvider) GetWeatherRisk(ctx context.Context, city string) (ports.WeatherRisk, error) {
	if strings.TrimSpace(city) == "" {
		return ports.WeatherRisk{}, errors.New("get weather risk: city must be non-empty")
	}

	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", o.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return ports.WeatherRisk{}, fmt.Errorf("get weather risk: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.session.Do(req)
	if err != nil {
		return ports.WeatherRisk{}, fmt.Errorf("get weather risk: fetch conditions for %q: %w", city, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return ports.WeatherRisk{}, fmt.Errorf(
			"get weather risk: fetch conditions for %q: %w",
			city, &httpStatusError{Code: resp.StatusCode},
		)
	}

	var data owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return ports.WeatherRisk{}, fmt.Errorf("get weather risk: decode response for %q: %w", city, err)
	}

	return analyzeConditions(data), nil
}

// analyzeConditions maps raw conditions to risk points: storms and snow
// weigh heaviest, precipitation and visibility less, with a separate
// bump for high winds.
func analyzeConditions(data owmResponse) ports.WeatherRisk {
	var risk ports.WeatherRisk

	if len(data.Weather) > 0 {
		main := strings.ToLower(data.Weather[0].Main)
		switch main {
		case "thunderstorm", "snow":
			risk.RiskScore += severeWeatherRisk
			risk.Reasons = append(risk.Reasons, fmt.Sprintf("severe weather: %s", main))
		case "rain", "drizzle":
			risk.RiskScore += wetWeatherRisk
			risk.Reasons = append(risk.Reasons, fmt.Sprintf("wet weather: %s", main))
		case "fog", "mist":
			risk.RiskScore += lowVisibilityRisk
			risk.Reasons = append(risk.Reasons, "low visibility conditions")
		}
	}

	if data.Wind.Speed > windSpeedThreshold {
		risk.RiskScore += highWindRisk
		risk.Reasons = append(risk.Reasons, "high winds")
	}

	if risk.RiskScore > weatherRiskCap {
		risk.RiskScore = weatherRiskCap
	}
	return risk
}
