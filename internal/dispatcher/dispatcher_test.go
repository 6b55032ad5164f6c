package dispatcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSink struct {
	name  string
	ready bool
	err   error
	calls int
}

func (s *stubSink) Name() string  { return s.name }
func (s *stubSink) Ready() bool   { return s.ready }
func (s *stubSink) Acquire() bool { return s.ready }

func (s *stubSink) Notify(context.Context, []byte) error {
	s.calls++
	return s.err
}

func TestNotifyRoundRobinsAcrossHealthySinks(t *testing.T) {
	a := &stubSink{name: "a", ready: true}
	b := &stubSink{name: "b", ready: true}
	d := NewDispatcher([]Sink{a, b}, 1)

	for i := 0; i < 4; i++ {
		_, err := d.Notify(context.Background(), []byte(`{}`))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, a.calls)
	assert.Equal(t, 2, b.calls)
}

func TestNotifySkipsUnhealthySinks(t *testing.T) {
	down := &stubSink{name: "down", ready: false}
	up := &stubSink{name: "up", ready: true}
	d := NewDispatcher([]Sink{down, up}, 1)

	name, err := d.Notify(context.Background(), []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "up", name)
	assert.Zero(t, down.calls)
}

func TestNotifyRetriesUpToMaxAttempts(t *testing.T) {
	failing := &stubSink{name: "failing", ready: true, err: errors.New("boom")}
	d := NewDispatcher([]Sink{failing}, 3)

	_, err := d.Notify(context.Background(), []byte(`{}`))
	assert.Error(t, err)
	assert.Equal(t, 3, failing.calls)
}

func TestNotifyNoHealthySinks(t *testing.T) {
	d := NewDispatcher([]Sink{&stubSink{name: "a", ready: false}}, 2)

	_, err := d.Notify(context.Background(), []byte(`{}`))
	assert.ErrorIs(t, err, ErrNoHealthy)
}

func TestMicroBreakerOpensAfterThreshold(t *testing.T) {
	br := NewMicroBreaker(2, time.Hour)

	assert.True(t, br.Ready())
	br.OnFailure()
	assert.True(t, br.Ready(), "below threshold")
	br.OnFailure()
	assert.False(t, br.Ready(), "threshold reached")
	assert.False(t, br.TryAcquire())
}

func TestMicroBreakerHalfOpenProbe(t *testing.T) {
	br := NewMicroBreaker(1, 10*time.Millisecond)
	br.OnFailure()
	require.False(t, br.Ready())

	time.Sleep(20 * time.Millisecond)

	// one probe slot after the open window
	assert.True(t, br.TryAcquire())
	assert.False(t, br.TryAcquire(), "second concurrent probe denied")

	br.OnSuccess()
	assert.True(t, br.Ready())
	assert.True(t, br.TryAcquire())
}

func TestMicroBreakerFailedProbeReopens(t *testing.T) {
	br := NewMicroBreaker(1, 10*time.Millisecond)
	br.OnFailure()

	time.Sleep(20 * time.Millisecond)
	require.True(t, br.TryAcquire())

	br.OnFailure()
	assert.False(t, br.Ready())
	assert.False(t, br.TryAcquire())
}
