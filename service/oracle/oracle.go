package oracle

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"stablevault/core"
	"stablevault/pkg/wad"

	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
)

const (
	// MaxObservations capacity of the observation ring per asset
	MaxObservations = 24
	// MinObservations below this count observations may be added without waiting for the cooldown
	MinObservations = 3
	// PriceDecimals normalized price precision
	PriceDecimals = 8
)

// Config staleness and cadence rules, in seconds
type Config struct {
	MaxPriceAge       int64 `json:"max_price_age"`
	UpdateCooldown    int64 `json:"update_cooldown"`
	MaxObservationAge int64 `json:"max_observation_age"`
}

// DefaultConfig 1h price age, 5m cooldown, 2h observation age
func DefaultConfig() Config {
	return Config{
		MaxPriceAge:       3600,
		UpdateCooldown:    300,
		MaxObservationAge: 7200,
	}
}

type assetState struct {
	feed         core.PriceFeed
	observations [MaxObservations]*core.PriceObservation
	next         int
	count        int
	lastUpdate   int64
}

func (s *assetState) newestIndex() int {
	return (s.next - 1 + MaxObservations) % MaxObservations
}

func (s *assetState) newest() *core.PriceObservation {
	if s.count == 0 {
		return nil
	}

	return s.observations[s.newestIndex()]
}

// Oracle spot and time weighted prices per asset
type Oracle struct {
	owner  core.Address
	cfg    Config
	clock  core.Clock
	assets map[core.Asset]*assetState
}

// New oracle administered by owner
func New(owner core.Address, cfg Config, clock core.Clock) *Oracle {
	return &Oracle{
		owner:  owner,
		cfg:    cfg,
		clock:  clock,
		assets: map[core.Asset]*assetState{},
	}
}

// SetPriceFeed registers the feed of asset, existing observations are kept
func (o *Oracle) SetPriceFeed(ctx context.Context, caller core.Address, asset core.Asset, feed core.PriceFeed) error {
	if caller != o.owner {
		return core.ErrNotOwner
	}

	if feed == nil || asset == "" {
		return fmt.Errorf("set price feed: %w", core.ErrInvalidParameter)
	}

	st, ok := o.assets[asset]
	if !ok {
		st = &assetState{}
		o.assets[asset] = st
	}

	st.feed = feed
	core.Emit(ctx, core.NewEvent(core.EventPriceFeedSet, "", caller, nil, core.NewEventData().Put("asset", string(asset))))
	return nil
}

// Assets assets with a registered feed
func (o *Oracle) Assets() []core.Asset {
	assets := make([]core.Asset, 0, len(o.assets))
	for asset, st := range o.assets {
		if st.feed != nil {
			assets = append(assets, asset)
		}
	}

	return assets
}

func (o *Oracle) GetPrice(ctx context.Context, asset core.Asset) (*uint256.Int, error) {
	now := core.BlockTime(ctx, o.clock)
	st, price, err := o.fetch(ctx, asset, now)
	if err != nil {
		return nil, err
	}

	if st.count == 0 || now-st.lastUpdate >= o.cfg.UpdateCooldown {
		o.record(ctx, asset, st, price, now)
	}

	return price, nil
}

func (o *Oracle) GetPriceView(ctx context.Context, asset core.Asset) (*uint256.Int, error) {
	_, price, err := o.fetch(ctx, asset, core.BlockTime(ctx, o.clock))
	return price, err
}

func (o *Oracle) UpdatePriceObservation(ctx context.Context, asset core.Asset) error {
	now := core.BlockTime(ctx, o.clock)
	if st, ok := o.assets[asset]; ok && st.count >= MinObservations && now-st.lastUpdate < o.cfg.UpdateCooldown {
		return core.ErrUpdateTooFrequent
	}

	st, price, err := o.fetch(ctx, asset, now)
	if err != nil {
		return err
	}

	if !o.record(ctx, asset, st, price, now) {
		return core.ErrUpdateTooFrequent
	}

	return nil
}

func (o *Oracle) GetTWAP(ctx context.Context, asset core.Asset, period time.Duration) (*uint256.Int, error) {
	st, ok := o.assets[asset]
	if !ok || st.count < 2 {
		return nil, core.ErrInsufficientObservations
	}

	now := core.BlockTime(ctx, o.clock)
	newestIdx := st.newestIndex()
	newest := st.observations[newestIdx]
	if now-newest.Timestamp > o.cfg.MaxObservationAge {
		return nil, core.ErrStaleObservations
	}

	target := now - int64(period/time.Second)
	oldest := newest
	for i := 1; i < st.count; i++ {
		oldest = st.observations[(newestIdx-i+MaxObservations)%MaxObservations]
		if oldest.Timestamp <= target {
			break
		}
	}

	elapsed := newest.Timestamp - oldest.Timestamp
	if elapsed <= 0 {
		return nil, core.ErrInsufficientObservations
	}

	delta := wad.Sub(newest.CumulativePrice, oldest.CumulativePrice)
	return new(uint256.Int).Div(delta, uint256.NewInt(uint64(elapsed))), nil
}

// Observations stored observations, oldest first
func (o *Oracle) Observations(_ context.Context, asset core.Asset) []*core.PriceObservation {
	st, ok := o.assets[asset]
	if !ok {
		return nil
	}

	out := make([]*core.PriceObservation, 0, st.count)
	for i := st.count - 1; i >= 0; i-- {
		obs := st.observations[(st.newestIndex()-i+MaxObservations)%MaxObservations]
		out = append(out, &core.PriceObservation{
			Timestamp:       obs.Timestamp,
			Price:           obs.Price.Clone(),
			CumulativePrice: obs.CumulativePrice.Clone(),
		})
	}

	return out
}

func (o *Oracle) fetch(ctx context.Context, asset core.Asset, now int64) (*assetState, *uint256.Int, error) {
	st, ok := o.assets[asset]
	if !ok || st.feed == nil {
		return nil, nil, core.ErrPriceFeedNotSet
	}

	quote, err := st.feed.LatestQuote(ctx, asset)
	if err != nil {
		logger.FromContext(ctx).WithError(err).WithField("asset", asset).Errorln("oracle.LatestQuote")
		if core.KindOf(err) != core.KindUnknown {
			return nil, nil, err
		}

		return nil, nil, fmt.Errorf("%s: %w", err.Error(), core.ErrFeedUnavailable)
	}

	if quote.Answer == nil || quote.Answer.Sign() <= 0 {
		return nil, nil, core.ErrInvalidPrice
	}

	if now-quote.UpdatedAt > o.cfg.MaxPriceAge {
		return nil, nil, core.ErrStalePriceData
	}

	price, err := normalize(quote.Answer, quote.Decimals)
	if err != nil {
		return nil, nil, err
	}

	return st, price, nil
}

func normalize(answer *big.Int, decimals uint8) (*uint256.Int, error) {
	v, overflow := uint256.FromBig(answer)
	if overflow {
		return nil, core.ErrInvalidPrice
	}

	switch {
	case decimals > PriceDecimals:
		v = new(uint256.Int).Div(v, wad.Pow10(decimals-PriceDecimals))
	case decimals < PriceDecimals:
		scaled, overflow := new(uint256.Int).MulOverflow(v, wad.Pow10(PriceDecimals-decimals))
		if overflow {
			return nil, core.ErrInvalidPrice
		}
		v = scaled
	}

	if v.IsZero() {
		return nil, core.ErrInvalidPrice
	}

	return v, nil
}

func (o *Oracle) record(ctx context.Context, asset core.Asset, st *assetState, price *uint256.Int, now int64) bool {
	cumulative := wad.Zero()
	if prev := st.newest(); prev != nil {
		if now <= prev.Timestamp {
			return false
		}

		elapsed := uint256.NewInt(uint64(now - prev.Timestamp))
		cumulative = wad.Add(prev.CumulativePrice, new(uint256.Int).Mul(prev.Price, elapsed))
	}

	st.observations[st.next] = &core.PriceObservation{
		Timestamp:       now,
		Price:           price.Clone(),
		CumulativePrice: cumulative,
	}
	st.next = (st.next + 1) % MaxObservations
	if st.count < MaxObservations {
		st.count++
	}
	st.lastUpdate = now

	core.Emit(ctx, core.NewEvent(core.EventObservationRecorded, "", "", price, core.NewEventData().
		Put("asset", string(asset)).
		Put("cumulative_price", cumulative)))
	return true
}

// Checkpoint implements txn.Participant, observations are never mutated in place
func (o *Oracle) Checkpoint() func() {
	assets := make(map[core.Asset]*assetState, len(o.assets))
	for k, v := range o.assets {
		c := *v
		assets[k] = &c
	}

	return func() { o.assets = assets }
}
