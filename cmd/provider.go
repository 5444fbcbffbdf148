package cmd

import (
	"context"
	"fmt"

	"stablevault/config"
	"stablevault/core"
	"stablevault/internal/metrics"
	"stablevault/service/feed"
	"stablevault/service/protocol"
	"stablevault/store/event"
	"stablevault/worker/keeper"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
	_ "github.com/jinzhu/gorm/dialects/mysql"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/lib/pq"
)

func provideConfig() *core.Config {
	return &cfg
}

// provideDatabase nil when no dialect is configured
func provideDatabase() *db.DB {
	if cfg.DB.Dialect == "" {
		return nil
	}

	return db.MustOpen(cfg.DB)
}

// ---------------store-----------------------------------------

func provideEventStore(database *db.DB) core.IEventStore {
	if database == nil {
		return event.NewMemory()
	}

	return event.New(database)
}

func providePropertyStore(database *db.DB) property.Store {
	return propertystore.New(database)
}

// ------------------service------------------------------------

// provideProtocol assembles the protocol and installs the configured price feeds.
// The returned static feed is the one admins may override, nil when every feed is remote.
func provideProtocol(ctx context.Context, events core.IEventStore) (*protocol.Protocol, *feed.StaticFeed, error) {
	opt, err := config.Options(provideConfig())
	if err != nil {
		return nil, nil, err
	}

	opt.Events = events
	opt.Observer = metrics.Default()

	p, err := protocol.New(ctx, opt)
	if err != nil {
		return nil, nil, err
	}

	feeds, err := config.Feeds(cfg.Oracle)
	if err != nil {
		return nil, nil, err
	}

	var static *feed.StaticFeed
	for asset, f := range feeds {
		if err := p.SetPriceFeed(ctx, p.Owner(), asset, f); err != nil {
			return nil, nil, fmt.Errorf("set price feed %s: %w", asset, err)
		}

		if s, ok := f.(*feed.StaticFeed); ok {
			static = s
		}
	}

	return p, static, nil
}

type nopCheckpoints struct{}

func (nopCheckpoints) Get(_ context.Context, _ string) (property.Value, error) {
	var v property.Value
	return v, nil
}

func (nopCheckpoints) Save(_ context.Context, _ string, _ interface{}) error {
	return nil
}

// provideCheckpoints without a database the keeper keeps no progress and accrues every tick
func provideCheckpoints(database *db.DB) keeper.Checkpoints {
	if database == nil {
		return nopCheckpoints{}
	}

	return providePropertyStore(database)
}
