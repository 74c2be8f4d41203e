package usecase

import (
	"context"
	"sort"
	"sync"

	"github.com/fastygo/taskboard/domain"
)

type CommandHandler func(ctx context.Context, payload interface{}) (interface{}, error)
type QueryHandler func(ctx context.Context, params interface{}) (interface{}, error)

// Dispatcher routes named board commands (drag events) and queries to their handlers.
// Names arrive from clients, so an unknown name is an INVALID request rather than a fault.
type Dispatcher struct {
	commands map[string]CommandHandler
	queries  map[string]QueryHandler
	mu       sync.RWMutex
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		commands: make(map[string]CommandHandler),
		queries:  make(map[string]QueryHandler),
	}
}

// RegisterCommand binds name to handler. A later registration replaces an earlier one.
func (d *Dispatcher) RegisterCommand(name string, handler CommandHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commands[name] = handler
}

func (d *Dispatcher) RegisterQuery(name string, handler QueryHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queries[name] = handler
}

// HasCommand reports whether name can be executed.
func (d *Dispatcher) HasCommand(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.commands[name]
	return ok
}

// Commands lists the registered command names in sorted order.
func (d *Dispatcher) Commands() []string {
	d.mu.RLock()
	names := make([]string, 0, len(d.commands))
	for name := range d.commands {
		names = append(names, name)
	}
	d.mu.RUnlock()
	sort.Strings(names)
	return names
}

func (d *Dispatcher) ExecuteCommand(ctx context.Context, name string, payload interface{}) (interface{}, error) {
	d.mu.RLock()
	handler, ok := d.commands[name]
	d.mu.RUnlock()
	if !ok {
		return nil, domain.Invalidf("unknown command %q", name)
	}
	return handler(ctx, payload)
}

func (d *Dispatcher) ExecuteQuery(ctx context.Context, name string, params interface{}) (interface{}, error) {
	d.mu.RLock()
	handler, ok := d.queries[name]
	d.mu.RUnlock()
	if !ok {
		return nil, domain.Invalidf("unknown query %q", name)
	}
	return handler(ctx, params)
}
