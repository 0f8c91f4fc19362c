// Package briefing provides a tool that returns the daily briefing instructions.
// It performs no aggregation, the agent follows the returned template
// and calls the other tools itself.
package briefing

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpbrief/pkg/schema"
	"github.com/effective-security/mcpbrief/tools"
)

const ToolName = "brief_today"

// Template is the instruction returned to the agent.
// The tool names must match the registered tools.
const Template = `
다음을 순서대로 실행하고, 실행한 결과를 사용자에게 알려주세요.
첫째로 사용자가 위치한 도시를 파악하세요. 위치를 모른다면, 사용자에게 질문하세요.
둘째로 사용자의 위치를 기반으로 get_weather 도구를 호출하여 날씨 정보를 찾아서 제공합니다.
셋째로 get_news_headlines 도구를 사용하여 오늘의 주요 뉴스를 출력합니다.
넷째로 get_kbo_rank 도구를 사용하여 현재 시간 프로야구 랭킹 및 전적을 리스트 형태로 출력합니다.
다섯째로 today_schedule 도구를 사용하여 오늘 사용자의 일정을 알려줍니다.
마지막으로 daily_quote 을 사용하여 명언을 출력하고, 따뜻한 말한마디를 덧붙입니다.

출력은 다음과 같이 해주세요.
## 사용자님을 위한 맞춤 요약

### 오늘의 날씨
[get_weather 의 결과]

### 오늘자 주요 뉴스
[get_news_headlines 의 결과] (링크를 함께 제공합니다)


### 야구단 랭킹
[get_kbo_rank 의 결과]

### 오늘의 업무 일정
[today_schedule 의 결과]

### 영감을 주는 격언 한마디
[daily_quote 의 결과]
`

// Request represents the tool input, the tool takes no arguments.
type Request struct{}

// Result represents the tool output.
type Result struct {
	Instructions string `json:"instructions" yaml:"instructions"`
}

type Tool struct {
	name        string
	description string
	funcParams  any
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
		description: "사용자의 하루 시작을 돕기 위해 날씨, 뉴스, 일정 등을 종합하여 전달합니다.",
		funcParams:  params,
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

func (t *Tool) Run(_ context.Context, _ *Request) (*Result, error) {
	return &Result{Instructions: Template}, nil
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
	return out.Instructions, nil
}
