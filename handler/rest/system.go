package rest

import (
	"net/http"
	"time"

	"stablevault/core"
	"stablevault/handler/param"
	"stablevault/handler/render"
	"stablevault/handler/views"
	"stablevault/pkg/number"
	"stablevault/service/protocol"
)

func systemHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, views.SystemView(p.SystemHealth(r.Context())))
	}
}

func paramsHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lp := p.LiquidationParams()
		vc := p.VaultParams(r.Context())

		render.JSON(w, render.H{
			"collateral_asset":      vc.CollateralAsset,
			"min_collateral_ratio":  number.FromWad(vc.MinCollateralRatio),
			"liquidation_threshold": number.FromWad(lp.LiquidationThreshold),
			"min_debt":              number.FromWad(vc.MinDebt),
			"borrow_apr":            number.FromWad(vc.BorrowAPR),
			"protocol_fee":          number.FromWad(vc.ProtocolFee),
			"twap_period":           vc.TWAPPeriod,
			"min_commit_period":     lp.MinCommitPeriod,
			"max_commit_period":     lp.MaxCommitPeriod,
			"auction_duration":      lp.AuctionDuration,
			"total_auction_timeout": lp.TotalAuctionTimeout,
			"finalize_grace_period": lp.FinalizeGracePeriod,
			"min_deposit":           number.FromWad(lp.MinDeposit),
			"deposit_ratio":         number.FromWad(lp.DepositRatio),
			"max_bids_per_auction":  lp.MaxBidsPerAuction,
			"max_liquidation_ratio": number.FromWad(lp.MaxLiquidationRatio),
			"liquidator_bonus":      number.FromWad(lp.LiquidatorBonus),
			"liquidation_penalty":   number.FromWad(lp.LiquidationPenalty),
		})
	}
}

func eventsHandler(events core.IEventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		from := param.Int64(r, "from", 0)
		limit := int(param.Int64(r, "limit", 100))

		var (
			list []*core.Event
			err  error
		)

		if vault := r.URL.Query().Get("vault"); vault != "" {
			list, err = events.ListByVault(ctx, core.Address(vault), from, limit)
		} else {
			list, err = events.List(ctx, from, limit)
		}

		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, list)
	}
}

func priceHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		asset := core.Asset(param.URL(r, "asset"))

		view := views.Price{Asset: asset, Observations: []views.Observation{}}
		if price, err := p.PriceView(ctx, asset); err == nil {
			d := number.FromUnits(price, 8)
			view.Price = &d
		}

		period := time.Duration(p.VaultParams(ctx).TWAPPeriod) * time.Second
		if twap, err := p.TWAP(ctx, asset, period); err == nil {
			d := number.FromUnits(twap, 8)
			view.TWAP = &d
		}

		for _, o := range p.Observations(ctx, asset) {
			view.Observations = append(view.Observations, views.Observation{
				Price:     number.FromUnits(o.Price, 8),
				Timestamp: o.Timestamp,
			})
		}

		render.JSON(w, view)
	}
}

func observeHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := p.UpdatePriceObservation(r.Context(), core.Asset(param.URL(r, "asset"))); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.DefaultSuccess)
	}
}

func balanceHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var query struct {
			Asset string `json:"asset" valid:"required"`
		}

		if err := param.Binding(r, &query); err != nil {
			render.Error(w, err)
			return
		}

		balance, err := p.BalanceOf(r.Context(), core.Address(param.URL(r, "account")), core.Asset(query.Asset))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{"asset": query.Asset, "balance": number.FromWad(balance)})
	}
}
