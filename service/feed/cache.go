package feed

import (
	"context"
	"fmt"
	"time"

	"stablevault/core"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"
)

// Cache wraps feed with a short lived quote cache, concurrent misses share one fetch
func Cache(feed core.PriceFeed, exp time.Duration) core.PriceFeed {
	return &cacheFeed{
		PriceFeed: feed,
		cache:     gcache.New(256).LRU().Expiration(exp).Build(),
		sf:        &singleflight.Group{},
	}
}

type cacheFeed struct {
	core.PriceFeed
	cache gcache.Cache
	sf    *singleflight.Group
}

func (f *cacheFeed) LatestQuote(ctx context.Context, asset core.Asset) (*core.Quote, error) {
	key := f.quoteKey(asset)
	if v, err := f.cache.Get(key); err == nil {
		if q, ok := v.(*core.Quote); ok {
			return q, nil
		}
	}

	v, err, _ := f.sf.Do(key, func() (interface{}, error) {
		q, err := f.PriceFeed.LatestQuote(ctx, asset)
		if err != nil {
			return nil, err
		}

		_ = f.cache.Set(key, q)
		return q, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*core.Quote), nil
}

func (f *cacheFeed) quoteKey(asset core.Asset) string {
	return fmt.Sprintf("quote:%s", asset)
}
