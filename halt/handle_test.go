package halt

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaltHandle_NaturalCompletion(t *testing.T) {
	h := New()
	var completed int32
	for i := 0; i < 10; i++ {
		h.Spawn(func(_ Tripwire) {
			atomic.AddInt32(&completed, 1)
		})
	}
	h.Ready()

	err := h.Join(0)
	require.NoError(t, err)
	assert.Equal(t, int32(10), atomic.LoadInt32(&completed))
}

func TestHaltHandle_HaltBeforeSpawnRace(t *testing.T) {
	h := New()
	h.Halt()

	const n = 5
	observed := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		h.Spawn(func(tw Tripwire) {
			<-tw.Done()
			observed <- struct{}{}
		})
	}
	h.Ready()

	err := h.Join(time.Second)
	require.NoError(t, err)
	assert.Len(t, observed, n)
}

func TestHaltHandle_Timeout(t *testing.T) {
	h := New()
	h.Spawn(func(tw Tripwire) {
		<-make(chan struct{}) // never completes, ignores the tripwire
	})
	h.Ready()
	h.Halt()

	err := h.Join(100 * time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestHaltHandle_PanicPrioritisedOverTimeout(t *testing.T) {
	h := New()
	h.Spawn(func(_ Tripwire) {
		panic("boom")
	})
	h.Spawn(func(_ Tripwire) {
		<-make(chan struct{})
	})
	h.Ready()
	h.Halt()

	err := h.Join(100 * time.Millisecond)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)

	var haltErr *Error
	require.True(t, errors.As(err, &haltErr))
	assert.Equal(t, KindJoin, haltErr.Kind)

	var panicErr *PanicError
	require.True(t, errors.As(err, &panicErr))
	assert.Equal(t, "boom", panicErr.Value)
}

func TestHaltHandle_TripwireNoSpuriousCancel(t *testing.T) {
	h := New()
	var fired int32
	h.Spawn(func(tw Tripwire) {
		<-tw.Done()
		atomic.StoreInt32(&fired, 1)
	})
	h.Ready()

	time.Sleep(500 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))

	h.Halt()
	_ = h.Join(time.Second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestHaltHandle_JoinIsOnlyCalledOnce(t *testing.T) {
	h := New()
	h.Ready()

	first := h.Join(0)
	second := h.Join(0)
	require.NoError(t, first)
	require.NoError(t, second)
}

func TestHaltHandle_HaltIdempotent(t *testing.T) {
	h := New()
	assert.NotPanics(t, func() {
		h.Halt()
		h.Halt()
		h.Halt()
	})
}
