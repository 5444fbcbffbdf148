package refresher

import (
	"context"
	"fmt"
	"testing"

	"stablevault/core"

	"github.com/stretchr/testify/assert"
)

type fakeOracle struct {
	errs  map[core.Asset]error
	calls []core.Asset
}

func (f *fakeOracle) UpdatePriceObservation(_ context.Context, asset core.Asset) error {
	f.calls = append(f.calls, asset)
	return f.errs[asset]
}

func TestRefresh(t *testing.T) {
	oracle := &fakeOracle{errs: map[core.Asset]error{
		"stETH": fmt.Errorf("oracle: %w", core.ErrUpdateTooFrequent),
	}}

	r := New(oracle, "@every 1m", "wstETH", "stETH")
	assert.NoError(t, r.Tick(context.Background()))
	assert.Equal(t, []core.Asset{"wstETH", "stETH"}, oracle.calls)

	oracle.errs["wstETH"] = core.ErrFeedUnavailable
	err := r.Tick(context.Background())
	assert.ErrorIs(t, err, core.ErrFeedUnavailable)
	assert.Len(t, oracle.calls, 4)
}
