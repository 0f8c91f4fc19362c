// Package quote provides a tool that asks a chat model for a quote of the day.
package quote

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpbrief/pkg/schema"
	"github.com/effective-security/mcpbrief/tools"
	"github.com/effective-security/xlog"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcpbrief/tools", "quote")

const ToolName = "daily_quote"

const (
	// DefaultModel is the chat model used when none is configured
	DefaultModel = "gpt-5-mini"

	SystemPrompt = "당신은 오늘 하루의 명언을 알려주는 도우미입니다. 사용자의 명언 요청이 있을시 명언만 출력합니다."
	UserPrompt   = "오늘의 명언을 출력해주세요. "
)

// Request represents the tool input, the tool takes no arguments.
type Request struct{}

// Result represents the tool output.
type Result struct {
	Quote string `json:"quote" yaml:"quote"`
}

// Config provides the chat model settings
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	// HTTPClient is optional
	HTTPClient *http.Client
}

// Tool sends a fixed two message prompt and returns the model reply as is.
type Tool struct {
	name        string
	description string
	funcParams  any

	model  string
	client openai.Client
}

// ensure Tool implements the tools.Tool interface
var _ tools.Tool[Request, Result] = (*Tool)(nil)

func New(cfg Config) (*Tool, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	params, err := schema.For[Request]()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	// a failed call is reported to the caller, never retried
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Tool{
		name:        ToolName,
		description: "사용자에게 영감을 주는 명언을 출력합니다",
		funcParams:  params,
		model:       model,
		client:      openai.NewClient(opts...),
	}, nil
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

// Model returns the configured chat model
func (t *Tool) Model() string {
	return t.model
}

func (t *Tool) Run(ctx context.Context, _ *Request) (*Result, error) {
	resp, err := t.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(t.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(UserPrompt),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return nil, tools.AuthRequired(err, "model provider rejected the API key")
		}
		return nil, tools.Upstream(err, "failed to generate quote")
	}
	if len(resp.Choices) == 0 {
		return nil, tools.Upstream(nil, "empty response")
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"model", resp.Model,
		"total_tokens", resp.Usage.TotalTokens,
	)
	return &Result{Quote: resp.Choices[0].Message.Content}, nil
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
	return out.Quote, nil
}
