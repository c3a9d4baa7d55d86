package extensibility

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/comalice/statechart/internal/primitives"
)

// Sender accepts a named event, e.g. Statechart.Emit or a realtime runtime's
// SendEvent.
type Sender func(name string, data any) error

// ParseEvent reads "name" or "name=literal"; the literal is decoded with
// ParseValue.
func ParseEvent(s string) (primitives.Event, error) {
	name, literal, _ := strings.Cut(strings.TrimSpace(s), "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return primitives.Event{}, fmt.Errorf("event %q: missing name", s)
	}
	data, err := ParseValue(literal)
	if err != nil {
		return primitives.Event{}, fmt.Errorf("event %q: %w", s, err)
	}
	return primitives.NewEvent(name, data), nil
}

// Pump forwards events from src to send until src is closed or ctx is done.
// It stops at the first send error.
func Pump(ctx context.Context, src <-chan primitives.Event, send Sender) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-src:
			if !ok {
				return nil
			}
			if err := send(e.Name, e.Data); err != nil {
				return err
			}
		}
	}
}

// Ticker emits the named event every d until ctx is done, then closes the
// channel. Ticks are dropped while the buffer is full.
func Ticker(ctx context.Context, name string, data any, d time.Duration) <-chan primitives.Event {
	ch := make(chan primitives.Event, 10)
	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		defer close(ch)
		for {
			select {
			case <-ticker.C:
				select {
				case ch <- primitives.NewEvent(name, data):
				default:
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
