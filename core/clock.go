package core

import (
	"context"
	"time"
)

// Clock time source
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

// Now current time
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock wall clock
var SystemClock Clock = ClockFunc(time.Now)

type blockTimeKey struct{}

// WithBlockTime pins the time every component sees for the rest of the operation
func WithBlockTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, blockTimeKey{}, t.Unix())
}

// BlockTime unix seconds pinned on ctx, falling back to the clock
func BlockTime(ctx context.Context, clock Clock) int64 {
	if ts, ok := ctx.Value(blockTimeKey{}).(int64); ok {
		return ts
	}

	if clock == nil {
		clock = SystemClock
	}

	return clock.Now().Unix()
}
