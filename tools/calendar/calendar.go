// Package calendar provides a tool that summarizes today's events
// of the primary Google Calendar.
package calendar

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpbrief/pkg/gauth"
	"github.com/effective-security/mcpbrief/pkg/schema"
	"github.com/effective-security/mcpbrief/store"
	"github.com/effective-security/mcpbrief/tools"
	"github.com/effective-security/mcpbrief/utils"
	"github.com/effective-security/xlog"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcpbrief/tools", "calendar")

const ToolName = "today_schedule"

const (
	// NoEvents is returned when there are no events in the window
	NoEvents = "오늘 일정이 없습니다 😊"
	// NoTitle replaces a missing event summary
	NoTitle = "제목 없음"
)

// DayBoundary selects how the end of the day is computed
type DayBoundary string

const (
	// DayBoundaryUTC ends the window at 23:59:59 of the current UTC day
	DayBoundaryUTC DayBoundary = "utc"
	// DayBoundaryLocal ends the window at the next midnight in the display location
	DayBoundaryLocal DayBoundary = "local"
)

// DefaultLocation is the fixed UTC+9 display offset
var DefaultLocation = time.FixedZone("KST", 9*60*60)

// Request represents the tool input, the tool takes no arguments.
type Request struct{}

// Event is a calendar event reshaped for output
type Event struct {
	Start   time.Time `json:"start" yaml:"start"`
	Summary string    `json:"summary" yaml:"summary"`
}

// Result represents the tool output.
type Result struct {
	Events []Event `json:"events" yaml:"events"`
}

// String returns `HH:MM summary` lines joined with ` | `,
// or NoEvents for an empty result.
func (r *Result) String() string {
	if len(r.Events) == 0 {
		return NoEvents
	}
	lines := make([]string, len(r.Events))
	for i, ev := range r.Events {
		lines[i] = ev.Start.Format("15:04") + " " + ev.Summary
	}
	return strings.Join(lines, " | ")
}

// Tool lists the events between now and the end of the day.
// The token is read from the store and refreshed when expired,
// the interactive authorization is never started by the tool.
type Tool struct {
	name        string
	description string
	funcParams  any

	store       store.TokenStore
	oauthCfg    *oauth2.Config
	endpoint    string
	httpClient  *http.Client
	location    *time.Location
	dayBoundary DayBoundary
	now         func() time.Time
}

// ensure Tool implements the tools.Tool interface
var _ tools.Tool[Request, Result] = (*Tool)(nil)

// New returns the calendar tool.
// oauthCfg is used to refresh an expired token, and may be nil.
func New(st store.TokenStore, oauthCfg *oauth2.Config) (*Tool, error) {
	if st == nil {
		return nil, errors.New("token store is required")
	}
	params, err := schema.For[Request]()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &Tool{
		name:        ToolName,
		description: "Google Calendar에서 오늘 일정을 가져옵니다.",
		funcParams:  params,
		store:       st,
		oauthCfg:    oauthCfg,
		httpClient:  http.DefaultClient,
		location:    DefaultLocation,
		dayBoundary: DayBoundaryLocal,
		now:         time.Now,
	}, nil
}

// WithEndpoint overrides the Calendar API base URL
func (t *Tool) WithEndpoint(endpoint string) *Tool {
	t.endpoint = endpoint
	return t
}

func (t *Tool) WithHTTPClient(client *http.Client) *Tool {
	t.httpClient = client
	return t
}

// WithLocation sets the display location
func (t *Tool) WithLocation(loc *time.Location) *Tool {
	if loc != nil {
		t.location = loc
	}
	return t
}

func (t *Tool) WithDayBoundary(b DayBoundary) *Tool {
	if b != "" {
		t.dayBoundary = b
	}
	return t
}

// WithClock sets the source of the current time
func (t *Tool) WithClock(now func() time.Time) *Tool {
	t.now = now
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

// Window returns the query range for the given time
func (t *Tool) Window(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	if t.dayBoundary == DayBoundaryUTC {
		return now, time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.UTC)
	}
	local := now.In(t.location)
	return now, time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, t.location).UTC()
}

func (t *Tool) Run(ctx context.Context, _ *Request) (*Result, error) {
	tok, err := gauth.ValidToken(ctx, t.store, t.oauthCfg)
	if err != nil {
		return nil, err
	}

	svc, err := t.service(ctx, tok)
	if err != nil {
		return nil, err
	}

	timeMin, timeMax := t.Window(t.now())
	events, err := svc.Events.List("primary").
		SingleEvents(true).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusUnauthorized {
			return nil, tools.AuthRequired(err, "calendar rejected the token: run `mcpbrief authorize`")
		}
		return nil, tools.Upstream(err, "failed to list events")
	}

	res := &Result{}
	for _, item := range events.Items {
		start, ok := t.effectiveStart(item)
		if !ok {
			logger.ContextKV(ctx, xlog.WARNING,
				"reason", "invalid_start",
				"event", item.Id,
			)
			continue
		}
		res.Events = append(res.Events, Event{
			Start:   start,
			Summary: utils.OrPlaceholder(item.Summary, NoTitle),
		})
	}
	sort.SliceStable(res.Events, func(i, j int) bool {
		return res.Events[i].Start.Before(res.Events[j].Start)
	})

	logger.ContextKV(ctx, xlog.DEBUG,
		"time_min", timeMin,
		"time_max", timeMax,
		"events", len(res.Events),
	)
	return res, nil
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
	return out.String(), nil
}

func (t *Tool) service(ctx context.Context, tok *oauth2.Token) (*gcal.Service, error) {
	base := t.httpClient
	if base == nil {
		base = http.DefaultClient
	}
	client := &http.Client{
		Timeout: base.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(tok),
			Base:   base.Transport,
		},
	}

	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if t.endpoint != "" {
		opts = append(opts, option.WithEndpoint(t.endpoint))
	}
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create calendar service")
	}
	return svc, nil
}

// effectiveStart prefers the timed start over the all-day date,
// and converts it to the display location.
func (t *Tool) effectiveStart(ev *gcal.Event) (time.Time, bool) {
	if ev == nil || ev.Start == nil {
		return time.Time{}, false
	}
	if ev.Start.DateTime != "" {
		ts, err := time.Parse(time.RFC3339, ev.Start.DateTime)
		if err != nil {
			return time.Time{}, false
		}
		return ts.In(t.location), true
	}
	if ev.Start.Date != "" {
		ts, err := time.ParseInLocation(time.DateOnly, ev.Start.Date, t.location)
		if err != nil {
			return time.Time{}, false
		}
		return ts, true
	}
	return time.Time{}, false
}
