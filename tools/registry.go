package tools

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpbrief/pkg/metricskey"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcpbrief", "tools")

// Entry is a registered tool
type Entry struct {
	Name        string
	Description string
	// Parameters is the JSON schema of the arguments object
	Parameters any
	Handler    Handler
}

// Registry maps tool names to handlers
type Registry struct {
	lock      sync.RWMutex
	entries   map[string]*Entry
	order     []string
	callbacks []Callback
}

// NewRegistry returns an empty Registry
func NewRegistry(callbacks ...Callback) *Registry {
	return &Registry{
		entries:   make(map[string]*Entry),
		callbacks: callbacks,
	}
}

// Register associates the name with the handler.
// A repeated name replaces the previous handler and keeps its position.
func (r *Registry) Register(name, description string, params any, handler Handler) error {
	if name == "" {
		return InvalidInput("tool name is required")
	}
	if handler == nil {
		return InvalidInput("handler is required: %s", name)
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.entries[name]; ok {
		logger.KV(xlog.WARNING,
			"reason", "replaced",
			"tool", name,
		)
	} else {
		r.order = append(r.order, name)
	}

	r.entries[name] = &Entry{
		Name:        name,
		Description: description,
		Parameters:  params,
		Handler:     handler,
	}
	return nil
}

// RegisterTool registers the tool under its name
func (r *Registry) RegisterTool(t ITool) error {
	return r.Register(t.Name(), t.Description(), t.Parameters(), t.Call)
}

// Lookup returns the entry by name
func (r *Registry) Lookup(name string) (*Entry, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// List returns the entries in registration order
func (r *Registry) List() []*Entry {
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]*Entry, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.entries[name])
	}
	return list
}

// Names returns the tool names in registration order
func (r *Registry) Names() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return append([]string(nil), r.order...)
}

// Dispatch invokes the handler registered for the name.
// The handler output and error are returned unmodified.
func (r *Registry) Dispatch(ctx context.Context, name, input string) (string, error) {
	e, ok := r.Lookup(name)
	if !ok {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, name)
		for _, cb := range r.callbacks {
			cb.OnToolNotFound(ctx, name)
		}
		return "", errors.Mark(errors.Errorf("tool not found: %s", name), ErrNotFound)
	}

	started := time.Now()
	defer metricskey.PerfToolCall.MeasureSince(started, name)

	for _, cb := range r.callbacks {
		cb.OnToolStart(ctx, name, input)
	}

	out, err := e.Handler(ctx, input)
	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, name, string(KindOf(err)))
		for _, cb := range r.callbacks {
			cb.OnToolError(ctx, name, input, err)
		}
		return "", err
	}

	metricskey.StatsToolCallsSucceeded.IncrCounter(1, name)
	for _, cb := range r.callbacks {
		cb.OnToolEnd(ctx, name, input, out)
	}
	return out, nil
}

// RegisterMCP exposes all entries to the MCP server,
// the calls are routed through Dispatch.
func (r *Registry) RegisterMCP(registrator McpServerRegistrator) error {
	for _, e := range r.List() {
		name := e.Name
		handler := func(ctx context.Context, input string) (string, error) {
			return r.Dispatch(ctx, name, input)
		}
		if err := registrator.RegisterTool(name, e.Description, e.Parameters, handler); err != nil {
			return errors.WithMessagef(err, "failed to register tool %s", name)
		}
	}
	return nil
}
