package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed, by error kind",
		RequiredTags: []string{"tool", "kind"},
	}

	StatsToolCallsNotFound = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_not_found",
		Help:         "stats_tool_calls_not_found provides total calls to unregistered tools",
		RequiredTags: []string{"tool"},
	}

	StatsCredentialRefreshed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_credential_refreshed",
		Help:         "stats_credential_refreshed provides total OAuth token refreshes",
		RequiredTags: []string{"store"},
	}

	StatsUpstreamBytesReceived = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_upstream_bytes_received",
		Help:         "stats_upstream_bytes_received provides total bytes received from upstream APIs",
		RequiredTags: []string{"tool"},
	}
)

// Perf
var (
	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of tool call",
		RequiredTags: []string{"tool"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfToolCall,
	&StatsCredentialRefreshed,
	&StatsToolCallsFailed,
	&StatsToolCallsNotFound,
	&StatsToolCallsSucceeded,
	&StatsUpstreamBytesReceived,
}
