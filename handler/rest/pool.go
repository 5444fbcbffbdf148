package rest

import (
	"net/http"

	"stablevault/core"
	"stablevault/handler/param"
	"stablevault/handler/render"
	"stablevault/handler/views"
	"stablevault/pkg/number"
	"stablevault/service/protocol"
)

func poolHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, render.H{"total_deposits": number.FromWad(p.PoolTotalDeposits(r.Context()))})
	}
}

func positionHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pos := p.GetDeposit(r.Context(), core.Address(param.URL(r, "depositor")))
		render.JSON(w, views.PositionView(pos))
	}
}

func claimGainsHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gain, err := p.ClaimCollateralGains(r.Context(), account(r))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{"gain": number.FromWad(gain)})
	}
}
