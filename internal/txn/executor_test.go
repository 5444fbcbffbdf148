package txn

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stablevault/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	n int
}

func (c *counter) Checkpoint() func() {
	n := c.n
	return func() { c.n = n }
}

type sliceStore struct {
	events []*core.Event
	err    error
}

func (s *sliceStore) Append(_ context.Context, events []*core.Event) error {
	if s.err != nil {
		return s.err
	}

	s.events = append(s.events, events...)
	return nil
}

func (s *sliceStore) List(_ context.Context, _ int64, _ int) ([]*core.Event, error) {
	return s.events, nil
}

func (s *sliceStore) ListByVault(_ context.Context, _ core.Address, _ int64, _ int) ([]*core.Event, error) {
	return s.events, nil
}

func fixedClock(ts int64) core.Clock {
	return core.ClockFunc(func() time.Time { return time.Unix(ts, 0) })
}

func TestDoCommits(t *testing.T) {
	c := &counter{}
	store := &sliceStore{}
	e := New(fixedClock(1000), store, c)

	err := e.Do(context.Background(), "bump", func(ctx context.Context) error {
		assert.Equal(t, int64(1000), core.BlockTime(ctx, nil))
		c.n++
		core.Emit(ctx, core.NewEvent(core.EventBorrowed, "alice", "alice", nil, nil))
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 1, c.n)
	require.Len(t, store.events, 1)
	assert.Equal(t, "bump", store.events[0].Op)
	assert.NotEmpty(t, store.events[0].TraceID)
	assert.Equal(t, int64(1000), store.events[0].CreatedAt.Unix())
}

func TestDoRollsBack(t *testing.T) {
	c := &counter{n: 5}
	store := &sliceStore{}
	e := New(fixedClock(1000), store, c)

	err := e.Do(context.Background(), "bump", func(ctx context.Context) error {
		c.n = 100
		core.Emit(ctx, core.NewEvent(core.EventBorrowed, "alice", "alice", nil, nil))
		return core.ErrInsufficientCollateralRatio
	})
	assert.ErrorIs(t, err, core.ErrInsufficientCollateralRatio)
	assert.Equal(t, 5, c.n)
	assert.Empty(t, store.events)
}

func TestDoRecoversPanic(t *testing.T) {
	c := &counter{n: 1}
	e := New(fixedClock(1000), nil, c)

	err := e.Do(context.Background(), "overflow", func(ctx context.Context) error {
		c.n = 2
		panic("wad: mul div overflow")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, c.n)
}

func TestDoRollsBackWhenAppendFails(t *testing.T) {
	c := &counter{}
	store := &sliceStore{err: errors.New("disk full")}
	e := New(fixedClock(1000), store, c)

	err := e.Do(context.Background(), "bump", func(ctx context.Context) error {
		c.n++
		core.Emit(ctx, core.NewEvent(core.EventRepaid, "alice", "alice", nil, nil))
		return nil
	})
	assert.Error(t, err)
	assert.Equal(t, 0, c.n)
}

func TestDoSerializes(t *testing.T) {
	c := &counter{}
	e := New(nil, nil, c)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = e.Do(context.Background(), "bump", func(ctx context.Context) error {
				n := c.n
				time.Sleep(time.Microsecond)
				c.n = n + 1
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, c.n)
}

func TestView(t *testing.T) {
	e := New(fixedClock(42), nil)
	err := e.View(context.Background(), func(ctx context.Context) error {
		assert.Equal(t, int64(42), core.BlockTime(ctx, nil))
		return nil
	})
	assert.NoError(t, err)
}
