package events

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// HandlerFunc is a function that handles a domain event.
type HandlerFunc func(ctx context.Context, event DomainEvent) error

// namedHandler wraps a handler with its name for error reporting.
type namedHandler struct {
	name    string
	handler HandlerFunc
}

// Dispatcher dispatches domain events to registered handlers.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]namedHandler
	// ContinueOnError determines if dispatch should continue when a handler
	// fails. When true all handlers run and errors are collected.
	ContinueOnError bool
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string][]namedHandler)}
}

// Register registers a handler for the given event types.
func (d *Dispatcher) Register(name string, handler HandlerFunc, eventTypes ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	nh := namedHandler{name: name, handler: handler}
	for _, eventType := range eventTypes {
		d.handlers[eventType] = append(d.handlers[eventType], nh)
	}
}

// RegisterWildcard registers a handler for all events.
func (d *Dispatcher) RegisterWildcard(name string, handler HandlerFunc) {
	d.Register(name, handler, "*")
}

// Dispatch dispatches an event to all handlers registered for its type plus
// any wildcard handlers. With ContinueOnError unset, dispatch stops at the
// first handler error.
func (d *Dispatcher) Dispatch(ctx context.Context, event DomainEvent) error {
	d.mu.RLock()
	eventType := event.EventType()
	handlers := make([]namedHandler, 0, len(d.handlers[eventType])+len(d.handlers["*"]))
	handlers = append(handlers, d.handlers[eventType]...)
	handlers = append(handlers, d.handlers["*"]...)
	d.mu.RUnlock()

	var errs []error
	for _, nh := range handlers {
		if err := nh.handler(ctx, event); err != nil {
			handlerErr := fmt.Errorf("handler %s failed for event %s: %w", nh.name, eventType, err)
			if !d.ContinueOnError {
				return handlerErr
			}
			errs = append(errs, handlerErr)
		}
	}

	if len(errs) > 0 {
		return &DispatchError{Errors: errs}
	}
	return nil
}

// HasHandlers returns true if handlers are registered for the event type.
func (d *Dispatcher) HasHandlers(eventType string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers[eventType]) > 0 || len(d.handlers["*"]) > 0
}

// DispatchError aggregates handler failures from a single dispatch.
type DispatchError struct {
	Errors []error
}

func (e *DispatchError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d handler(s) failed: %s", len(e.Errors), strings.Join(msgs, "; "))
}
