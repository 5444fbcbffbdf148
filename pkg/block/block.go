package block

import (
	"errors"
	"time"
)

// Clock maps wall time onto discrete blocks counted from genesis
type Clock struct {
	SecondsPerBlock int64
	Genesis         int64
}

// New block clock
func New(secondsPerBlock, genesis int64) (*Clock, error) {
	if secondsPerBlock <= 0 {
		return nil, errors.New("secondsPerBlock should not be less than or equal zero")
	}

	return &Clock{SecondsPerBlock: secondsPerBlock, Genesis: genesis}, nil
}

// At block number of the unix timestamp, timestamps before genesis are block 0
func (c *Clock) At(ts int64) int64 {
	seconds := ts - c.Genesis
	if seconds <= 0 {
		return 0
	}

	return seconds / c.SecondsPerBlock
}

// ByTime block number of t
func (c *Clock) ByTime(t time.Time) int64 {
	return c.At(t.UTC().Unix())
}

// Start first second of block n
func (c *Clock) Start(n int64) int64 {
	return c.Genesis + n*c.SecondsPerBlock
}
