// Package event provides a small synchronous in-process event bus.
//
// Listeners run on the caller's goroutine after the emitting transaction has
// committed; a panicking listener is logged and does not affect the others.
package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/Shreehariballakkuraya/ScanPOS/pkg/logger"
)

// Handler receives the payload passed to Fire.
type Handler func(ctx context.Context, payload interface{})

// Bus dispatches named events to registered handlers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func New() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Listen registers a handler for the given event name.
func (b *Bus) Listen(event string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], h)
}

// Fire calls every listener for event in registration order.
func (b *Bus) Fire(ctx context.Context, event string, payload interface{}) {
	if b == nil {
		return
	}
	b.mu.RLock()
	hs := append([]Handler(nil), b.handlers[event]...)
	b.mu.RUnlock()

	for _, h := range hs {
		b.call(ctx, event, h, payload)
	}
}

func (b *Bus) call(ctx context.Context, event string, h Handler, payload interface{}) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithCtx(ctx).Error("event listener panicked", "event", event, "error", fmt.Sprint(r))
		}
	}()
	h(ctx, payload)
}

// Flush removes all listeners.
func (b *Bus) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = map[string][]Handler{}
}
