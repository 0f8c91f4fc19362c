// Package kbo provides a tool that returns the KBO league team ranking.
package kbo

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpbrief/pkg/schema"
	"github.com/effective-security/mcpbrief/tools"
)

const ToolName = "get_kbo_rank"

// DefaultRankURL is the Daum sports team ranking endpoint
const DefaultRankURL = "https://sports.daum.net/prx/hermes/api/team/rank.json?leagueCode=kbo&seasonKey=2025"

// Request represents the tool input, the tool takes no arguments.
type Request struct{}

// Result represents the tool output.
type Result struct {
	Status int
	// Body is the upstream response, unparsed
	Body []byte
}

// Tool passes the ranking response through verbatim,
// regardless of the status code or content.
type Tool struct {
	name        string
	description string
	funcParams  any

	rankURL    string
	httpClient *http.Client
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
		description: "한국 프로야구 구단의 랭킹을 가져옵니다",
		funcParams:  params,
		rankURL:     DefaultRankURL,
		httpClient:  http.DefaultClient,
	}, nil
}

func (t *Tool) WithRankURL(rankURL string) *Tool {
	t.rankURL = rankURL
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

func (t *Tool) Run(ctx context.Context, _ *Request) (*Result, error) {
	status, body, err := tools.HTTPGet(ctx, t.httpClient, ToolName, t.rankURL)
	if err != nil {
		return nil, err
	}
	return &Result{Status: status, Body: body}, nil
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
	return string(out.Body), nil
}
