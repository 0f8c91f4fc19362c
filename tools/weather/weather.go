// Package weather provides a tool that returns the current weather for a city.
package weather

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpbrief/pkg/schema"
	"github.com/effective-security/mcpbrief/tools"
	"github.com/effective-security/mcpbrief/utils"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcpbrief/tools", "weather")

const ToolName = "get_weather"

// DefaultForecastURL is the open-meteo forecast API
const DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"

// Request represents the tool input.
type Request struct {
	CityName string `json:"city_name" yaml:"city_name" jsonschema:"title=City Name,description=The name of the city (e.g. Seoul)."`
}

// Result represents the tool output.
type Result struct {
	Coordinates Coordinates `json:"coordinates" yaml:"coordinates"`
	// Weather is the forecast response as compact JSON
	Weather string `json:"weather" yaml:"weather"`
}

// Tool geocodes a city name,
// then queries the forecast API with the coordinates.
type Tool struct {
	name        string
	description string
	funcParams  any

	geocoder    Geocoder
	forecastURL string
	httpClient  *http.Client
}

// ensure Tool implements the tools.Tool interface
var _ tools.Tool[Request, Result] = (*Tool)(nil)

func New() (*Tool, error) {
	params, err := schema.For[Request]()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &Tool{
		name:        ToolName,
		description: "도시 이름을 받아 해당 도시의 현재 날씨 정보를 반환합니다.",
		funcParams:  params,
		geocoder:    NewNominatim(DefaultNominatimURL),
		forecastURL: DefaultForecastURL,
		httpClient:  http.DefaultClient,
	}, nil
}

func (t *Tool) WithGeocoder(g Geocoder) *Tool {
	t.geocoder = g
	return t
}

func (t *Tool) WithForecastURL(forecastURL string) *Tool {
	t.forecastURL = forecastURL
	return t
}

func (t *Tool) WithHTTPClient(client *http.Client) *Tool {
	t.httpClient = client
	return t
}

func (t *Tool) Name() string {
	return t.name
}

func (t *Tool) Description() string {
	return t.description
}

func (t *Tool) Parameters() any {
	return t.funcParams
}

func (t *Tool) Run(ctx context.Context, req *Request) (*Result, error) {
	if req.CityName == "" {
		return nil, tools.InvalidInput("invalid request: empty city_name")
	}

	loc, err := t.geocoder.Geocode(ctx, req.CityName)
	if err != nil {
		return nil, tools.Upstream(err, "failed to geocode %s", req.CityName)
	}
	if loc == nil {
		return nil, tools.NotFound("coordinates not found: %s", req.CityName)
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"city", req.CityName,
		"lat", loc.Lat,
		"lng", loc.Lng,
	)

	u, err := url.Parse(t.forecastURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid forecast URL")
	}
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(loc.Lng, 'f', -1, 64))
	q.Set("current_weather", "true")
	u.RawQuery = q.Encode()

	status, body, err := tools.HTTPGet(ctx, t.httpClient, ToolName, u.String())
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, tools.Upstream(nil, "weather service returned status %d: %s",
			status, strings.TrimSpace(string(body)))
	}

	js, err := utils.CompactJSON(body)
	if err != nil {
		return nil, tools.Upstream(err, "invalid weather response")
	}

	return &Result{
		Coordinates: *loc,
		Weather:     js,
	}, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req Request
	if err := tools.UnmarshalInput(input, &req); err != nil {
		return "", err
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return out.Weather, nil
}
