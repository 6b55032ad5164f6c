package dispatcher

import (
	"context"
	"fmt"
	"sync/atomic"
)

var (
	ErrNoHealthy = fmt.Errorf("no healthy sinks")
	ErrNoAcquire = fmt.Errorf("sink not acquired")
)

// Dispatcher fans a notification out to one healthy sink, round robin with
// bounded retries.
type Dispatcher struct {
	sinks             []Sink
	roundRobinCounter atomic.Uint64
	maxAttempts       int
}

func NewDispatcher(sinks []Sink, maxAttempts int) *Dispatcher {
	if maxAttempts < 1 {
		maxAttempts = 2
	}

	return &Dispatcher{sinks: sinks, maxAttempts: maxAttempts}
}

func (d *Dispatcher) selectSink() (Sink, error) {
	healthy := make([]Sink, 0, len(d.sinks))
	for _, s := range d.sinks {
		if s.Ready() {
			healthy = append(healthy, s)
		}
	}

	if len(healthy) == 0 {
		return nil, ErrNoHealthy
	}

	x := d.roundRobinCounter.Add(1)
	idx := int((x - 1) % uint64(len(healthy)))

	return healthy[idx], nil
}

func (d *Dispatcher) tryOnce(ctx context.Context, payload []byte) (string, error) {
	s, err := d.selectSink()
	if err != nil {
		return "", err
	}

	if !s.Acquire() {
		return s.Name(), ErrNoAcquire
	}

	return s.Name(), s.Notify(ctx, payload)
}

// Notify delivers the payload to one sink, retrying up to maxAttempts.
// Returns the sink name that last handled the attempt.
func (d *Dispatcher) Notify(ctx context.Context, payload []byte) (string, error) {
	var last error
	var name string
	for i := 0; i < d.maxAttempts; i++ {
		n, err := d.tryOnce(ctx, payload)
		if n != "" {
			name = n
		}
		if err == nil {
			return name, nil
		}
		last = err
	}

	return name, last
}
