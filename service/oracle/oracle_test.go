package oracle

import (
	"context"
	"math/big"
	"testing"
	"time"

	"stablevault/core"
	"stablevault/service/feed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	asset core.Asset = "wstETH"
	t0    int64      = 1_700_000_000
)

func at(ts int64) context.Context {
	return core.WithBlockTime(context.Background(), time.Unix(ts, 0))
}

func setup(t *testing.T) (*Oracle, *feed.StaticFeed) {
	o := New("owner", DefaultConfig(), nil)
	f := feed.NewStatic()
	f.SetPrice(asset, 2000_00000000)
	require.NoError(t, o.SetPriceFeed(at(t0), "owner", asset, f))
	return o, f
}

func TestSetPriceFeed(t *testing.T) {
	o := New("owner", DefaultConfig(), nil)
	f := feed.NewStatic()

	assert.ErrorIs(t, o.SetPriceFeed(at(t0), "mallory", asset, f), core.ErrNotOwner)
	assert.ErrorIs(t, o.SetPriceFeed(at(t0), "owner", asset, nil), core.ErrInvalidParameter)

	_, err := o.GetPrice(at(t0), asset)
	assert.ErrorIs(t, err, core.ErrPriceFeedNotSet)
	assert.Equal(t, core.KindPrecondition, core.KindOf(err))

	require.NoError(t, o.SetPriceFeed(at(t0), "owner", asset, f))
	assert.Equal(t, []core.Asset{asset}, o.Assets())
}

func TestGetPriceValidation(t *testing.T) {
	o, f := setup(t)

	f.Set(asset, big.NewInt(0), t0, 8)
	_, err := o.GetPrice(at(t0), asset)
	assert.ErrorIs(t, err, core.ErrInvalidPrice)

	f.Set(asset, big.NewInt(-5), t0, 8)
	_, err = o.GetPrice(at(t0), asset)
	assert.ErrorIs(t, err, core.ErrInvalidPrice)

	f.Set(asset, big.NewInt(2000_00000000), t0, 8)
	_, err = o.GetPrice(at(t0+3600), asset)
	assert.NoError(t, err)
	_, err = o.GetPrice(at(t0+3601), asset)
	assert.ErrorIs(t, err, core.ErrStalePriceData)
	assert.True(t, core.IsRetryable(err))

	// below 8 decimals rounds to zero
	f.Set(asset, big.NewInt(1), t0, 18)
	_, err = o.GetPrice(at(t0), asset)
	assert.ErrorIs(t, err, core.ErrInvalidPrice)
}

func TestGetPriceNormalizes(t *testing.T) {
	o, f := setup(t)

	answer, _ := new(big.Int).SetString("2000000000000000000000", 10)
	f.Set(asset, answer, 0, 18)
	p, err := o.GetPriceView(at(t0), asset)
	require.NoError(t, err)
	assert.Equal(t, "200000000000", p.Dec())

	f.Set(asset, big.NewInt(2000_000000), 0, 6)
	p, err = o.GetPriceView(at(t0), asset)
	require.NoError(t, err)
	assert.Equal(t, "200000000000", p.Dec())
}

func TestGetPriceRecordsAfterCooldown(t *testing.T) {
	o, _ := setup(t)

	_, err := o.GetPrice(at(t0), asset)
	require.NoError(t, err)
	assert.Len(t, o.Observations(at(t0), asset), 1)

	_, err = o.GetPrice(at(t0+299), asset)
	require.NoError(t, err)
	assert.Len(t, o.Observations(at(t0), asset), 1)

	_, err = o.GetPrice(at(t0+300), asset)
	require.NoError(t, err)
	obs := o.Observations(at(t0), asset)
	require.Len(t, obs, 2)
	assert.Equal(t, t0+300, obs[1].Timestamp)
	assert.Equal(t, "60000000000000", obs[1].CumulativePrice.Dec())
}

func TestGetPriceViewNeverRecords(t *testing.T) {
	o, _ := setup(t)

	for i := int64(0); i < 5; i++ {
		_, err := o.GetPriceView(at(t0+i*600), asset)
		require.NoError(t, err)
	}

	assert.Empty(t, o.Observations(at(t0), asset))
}

func TestUpdatePriceObservation(t *testing.T) {
	o, _ := setup(t)

	require.NoError(t, o.UpdatePriceObservation(at(t0), asset))
	assert.ErrorIs(t, o.UpdatePriceObservation(at(t0), asset), core.ErrUpdateTooFrequent)
	require.NoError(t, o.UpdatePriceObservation(at(t0+1), asset))
	require.NoError(t, o.UpdatePriceObservation(at(t0+2), asset))

	err := o.UpdatePriceObservation(at(t0+3), asset)
	assert.ErrorIs(t, err, core.ErrUpdateTooFrequent)
	assert.Equal(t, core.KindEnvironmental, core.KindOf(err))

	require.NoError(t, o.UpdatePriceObservation(at(t0+2+300), asset))
	assert.Len(t, o.Observations(at(t0), asset), 4)
}

func TestTWAPObservationCount(t *testing.T) {
	o, _ := setup(t)

	_, err := o.GetTWAP(at(t0), asset, time.Hour)
	assert.ErrorIs(t, err, core.ErrInsufficientObservations)

	require.NoError(t, o.UpdatePriceObservation(at(t0), asset))
	_, err = o.GetTWAP(at(t0), asset, time.Hour)
	assert.ErrorIs(t, err, core.ErrInsufficientObservations)

	require.NoError(t, o.UpdatePriceObservation(at(t0+300), asset))
	twap, err := o.GetTWAP(at(t0+300), asset, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "200000000000", twap.Dec())
}

func TestTWAPWindow(t *testing.T) {
	o, f := setup(t)

	require.NoError(t, o.UpdatePriceObservation(at(t0), asset))
	f.SetPrice(asset, 3000_00000000)
	require.NoError(t, o.UpdatePriceObservation(at(t0+600), asset))
	require.NoError(t, o.UpdatePriceObservation(at(t0+1200), asset))

	twap, err := o.GetTWAP(at(t0+1200), asset, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "250000000000", twap.Dec())

	twap, err = o.GetTWAP(at(t0+1200), asset, 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "300000000000", twap.Dec())
}

func TestTWAPStale(t *testing.T) {
	o, _ := setup(t)

	require.NoError(t, o.UpdatePriceObservation(at(t0), asset))
	require.NoError(t, o.UpdatePriceObservation(at(t0+300), asset))

	_, err := o.GetTWAP(at(t0+300+7200), asset, time.Hour)
	assert.NoError(t, err)

	_, err = o.GetTWAP(at(t0+300+7201), asset, time.Hour)
	assert.ErrorIs(t, err, core.ErrStaleObservations)
}

func TestTWAPResistsSpike(t *testing.T) {
	o, f := setup(t)

	for i := int64(0); i < 6; i++ {
		require.NoError(t, o.UpdatePriceObservation(at(t0+i*300), asset))
	}

	// a manipulated quote lands in the newest slot but carries no elapsed time yet
	f.SetPrice(asset, 10000_00000000)
	_, err := o.GetPrice(at(t0+6*300), asset)
	require.NoError(t, err)

	twap, err := o.GetTWAP(at(t0+6*300), asset, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "200000000000", twap.Dec())
}

func TestRingWrapsAround(t *testing.T) {
	o, _ := setup(t)

	for i := int64(0); i < 30; i++ {
		require.NoError(t, o.UpdatePriceObservation(at(t0+i*300), asset))
	}

	obs := o.Observations(at(t0), asset)
	require.Len(t, obs, MaxObservations)
	assert.Equal(t, t0+6*300, obs[0].Timestamp)
	assert.Equal(t, t0+29*300, obs[MaxObservations-1].Timestamp)

	for i := 1; i < len(obs); i++ {
		assert.Greater(t, obs[i].Timestamp, obs[i-1].Timestamp)
	}

	twap, err := o.GetTWAP(at(t0+29*300), asset, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "200000000000", twap.Dec())
}

func TestCheckpoint(t *testing.T) {
	o, _ := setup(t)
	require.NoError(t, o.UpdatePriceObservation(at(t0), asset))

	restore := o.Checkpoint()
	require.NoError(t, o.UpdatePriceObservation(at(t0+300), asset))
	require.Len(t, o.Observations(at(t0), asset), 2)
	restore()

	assert.Len(t, o.Observations(at(t0), asset), 1)
}
