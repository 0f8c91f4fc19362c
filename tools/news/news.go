// Package news provides a tool that lists the headlines of an RSS feed.
package news

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpbrief/pkg/schema"
	"github.com/effective-security/mcpbrief/tools"
	"github.com/effective-security/mcpbrief/utils"
	"github.com/effective-security/xlog"
	"github.com/mmcdole/gofeed"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcpbrief/tools", "news")

const ToolName = "get_news_headlines"

// DefaultFeedURL is the Google News feed for Korea
const DefaultFeedURL = "https://news.google.com/rss?hl=ko&gl=KR&ceid=KR:ko"

const (
	// NoTitle replaces a missing title
	NoTitle = "제목 없음"
	// NoLink replaces a missing link
	NoLink = "#"
	// NoNews is returned when the feed has no entries
	NoNews = "뉴스를 가져올 수 없습니다."
)

// Request represents the tool input, the tool takes no arguments.
type Request struct{}

// Headline is a feed entry reshaped for output
type Headline struct {
	Title string `json:"title" yaml:"title"`
	Link  string `json:"link" yaml:"link"`
}

// Result represents the tool output.
type Result struct {
	Headlines []Headline `json:"headlines" yaml:"headlines"`
}

// String returns 1-indexed markdown link lines joined with newlines,
// or NoNews for an empty result.
func (r *Result) String() string {
	if len(r.Headlines) == 0 {
		return NoNews
	}
	lines := make([]string, len(r.Headlines))
	for i, h := range r.Headlines {
		lines[i] = fmt.Sprintf("%d. [%s](%s)", i+1, h.Title, h.Link)
	}
	return strings.Join(lines, "\n")
}

// Tool fetches the feed and enumerates all entries.
type Tool struct {
	name        string
	description string
	funcParams  any

	feedURL    string
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
		description: "구글 RSS피드에서 최신 뉴스와 URL을 반환합니다.",
		funcParams:  params,
		feedURL:     DefaultFeedURL,
		httpClient:  http.DefaultClient,
	}, nil
}

func (t *Tool) WithFeedURL(feedURL string) *Tool {
	t.feedURL = feedURL
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
	parser := gofeed.NewParser()
	parser.Client = t.httpClient
	parser.UserAgent = tools.UserAgent

	feed, err := parser.ParseURLWithContext(t.feedURL, ctx)
	if err != nil {
		return nil, tools.Upstream(err, "failed to fetch feed")
	}

	res := &Result{}
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		res.Headlines = append(res.Headlines, Headline{
			Title: utils.OrPlaceholder(item.Title, NoTitle, "None"),
			Link:  utils.OrPlaceholder(item.Link, NoLink, "None"),
		})
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"feed", t.feedURL,
		"items", len(res.Headlines),
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
