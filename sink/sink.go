package sink

import (
	"chathub/domain/event"
	"context"
)

// Buffered is the per-connection EventSink. The transport's write
// pump owns the Events channel and drains it onto the wire.
type Buffered struct {
	Events chan event.DomainEvent
}

func NewBuffered(bufferSize int) *Buffered {
	return &Buffered{Events: make(chan event.DomainEvent, bufferSize)}
}

// Consume is called by the coordinator while holding its lock, so it
// must never block. A full buffer means the client cannot keep up;
// the event is dropped (backpressure).
func (s *Buffered) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Close releases the write pump.
func (s *Buffered) Close() {
	close(s.Events)
}
