// Package eventbus defines the contract services use to publish domain
// events once their unit of work has committed.
package eventbus

import (
	"context"

	"github.com/amirasaad/finshare/pkg/domain/events"
)

// HandlerFunc processes one event.
type HandlerFunc func(ctx context.Context, e events.Event) error

// Bus publishes events and dispatches them to registered handlers.
type Bus interface {
	Register(eventType string, handler HandlerFunc)
	Emit(ctx context.Context, e events.Event) error
}

// EmitAll emits events in order and returns the first error.
func EmitAll(ctx context.Context, bus Bus, evts ...events.Event) error {
	if bus == nil {
		return nil
	}
	for _, e := range evts {
		if err := bus.Emit(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
