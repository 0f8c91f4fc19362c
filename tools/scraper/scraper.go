// Package scraper provides a tool that fetches a web page and returns its visible text.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpbrief/pkg/schema"
	"github.com/effective-security/mcpbrief/tools"
	"github.com/effective-security/mcpbrief/utils"
	"github.com/effective-security/xlog"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcpbrief/tools", "scraper")

const ToolName = "scrape_page_text"

// Request represents the tool input.
type Request struct {
	URL string `json:"url" yaml:"url" jsonschema:"title=URL,description=The URL of the web page to scrape."`
}

// Result represents the tool output.
type Result struct {
	Text string `json:"text" yaml:"text"`
}

// Tool fetches a page with a single unauthenticated GET,
// and returns the text of the document body.
type Tool struct {
	name        string
	description string
	funcParams  any

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
		description: "웹페이지의 텍스트 콘텐츠를 스크랩합니다.",
		funcParams:  params,
		httpClient:  http.DefaultClient,
	}, nil
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
	if req.URL == "" {
		return nil, tools.InvalidInput("invalid request: empty url")
	}
	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, tools.InvalidInput("invalid request: unsupported url %q", req.URL)
	}

	resp, err := tools.Fetch(ctx, t.httpClient, ToolName, req.URL)
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusOK {
		logger.ContextKV(ctx, xlog.WARNING,
			"reason", "status",
			"url", req.URL,
			"status", resp.Status,
		)
		return &Result{Text: fmt.Sprintf("Failed to fetch %s", req.URL)}, nil
	}

	r, err := charset.NewReader(bytes.NewReader(resp.Body), resp.ContentType)
	if err != nil {
		return nil, tools.Upstream(err, "unsupported charset of %s", req.URL)
	}
	text, err := ExtractText(r)
	if err != nil {
		return nil, tools.Upstream(err, "failed to parse %s", req.URL)
	}
	return &Result{Text: text}, nil
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
	return out.Text, nil
}

var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
}

// ExtractText returns the text nodes under <body> joined by a single space,
// with whitespace runs collapsed. The input must be UTF-8.
func ExtractText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse HTML")
	}

	var parts []string
	for _, n := range doc.Find("body").First().Nodes {
		collectText(n, &parts)
	}
	return utils.CollapseWhitespace(strings.Join(parts, " ")), nil
}

func collectText(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		if s := strings.TrimSpace(n.Data); s != "" {
			*parts = append(*parts, s)
		}
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		if skipped[n.DataAtom] {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
