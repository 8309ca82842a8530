package events

import (
	"context"
	"sync"

	"github.com/clinicflow/scheduling-api/internal/ports/out/events"
)

// Recorder is an in-memory events.Publisher that keeps every published event.
// An optional error can be injected to simulate a broker outage.
type Recorder struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Publish(ctx context.Context, e events.Event) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, e)
	return nil
}

// FailWith makes subsequent Publish calls return err. Pass nil to recover.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *Recorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}
