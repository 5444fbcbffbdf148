package rest

import (
	"context"
	"net/http"

	"stablevault/core"
	"stablevault/handler/param"
	"stablevault/handler/render"
	"stablevault/handler/views"
	"stablevault/pkg/number"
	"stablevault/service/feed"
	"stablevault/service/protocol"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/twitchtv/twirp"
)

func pauseHandler(op func(ctx context.Context, caller core.Address, paused bool) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Paused bool `json:"paused"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.Error(w, err)
			return
		}

		if err := op(r.Context(), account(r), body.Paused); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.DefaultSuccess)
	}
}

func resetBreakerHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := p.ResetCircuitBreaker(r.Context(), account(r)); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.DefaultSuccess)
	}
}

func borrowRateHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			APR string `json:"apr" valid:"float,required"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.Error(w, err)
			return
		}

		apr, err := param.Wad("apr", body.APR)
		if err != nil {
			render.Error(w, err)
			return
		}

		if err := p.SetBorrowRate(r.Context(), account(r), apr); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.DefaultSuccess)
	}
}

func withdrawReservesHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			To         string `json:"to" valid:"printableascii,required"`
			Stable     string `json:"stable" valid:"float"`
			Collateral string `json:"collateral" valid:"float"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.Error(w, err)
			return
		}

		amounts := make([]*uint256.Int, 2)
		for i, v := range []string{body.Stable, body.Collateral} {
			amounts[i] = new(uint256.Int)
			if v == "" {
				continue
			}

			amount, err := param.Wad("amount", v)
			if err != nil {
				render.Error(w, err)
				return
			}

			amounts[i] = amount
		}

		if err := p.WithdrawReserves(r.Context(), account(r), core.Address(body.To), amounts[0], amounts[1]); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.DefaultSuccess)
	}
}

func writeOffHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body amountBody
		if err := param.Binding(r, &body); err != nil {
			render.Error(w, err)
			return
		}

		amount, err := param.Wad("amount", body.Amount)
		if err != nil {
			render.Error(w, err)
			return
		}

		if err := p.WriteOffBadDebt(r.Context(), account(r), amount); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.DefaultSuccess)
	}
}

func withdrawSlashedHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			To     string `json:"to" valid:"printableascii,required"`
			Amount string `json:"amount" valid:"amount,required"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.Error(w, err)
			return
		}

		amount, err := param.Wad("amount", body.Amount)
		if err != nil {
			render.Error(w, err)
			return
		}

		if err := p.WithdrawSlashedRevenue(r.Context(), account(r), core.Address(body.To), amount); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.DefaultSuccess)
	}
}

func faucetHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body tokenBody
		if err := param.Binding(r, &body); err != nil {
			render.Error(w, err)
			return
		}

		amount, err := param.Wad("amount", body.Amount)
		if err != nil {
			render.Error(w, err)
			return
		}

		if err := p.Faucet(r.Context(), account(r), core.Address(body.To), core.Asset(body.Asset), amount); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.DefaultSuccess)
	}
}

// setPriceHandler overrides the answer of a static feed, prices are written with 8 decimals
func setPriceHandler(prices *feed.StaticFeed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if prices == nil {
			render.Error(w, twirp.NewError(twirp.Unimplemented, "no static price feed configured"))
			return
		}

		var body struct {
			Asset string `json:"asset" valid:"required"`
			Price string `json:"price" valid:"amount,required"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.Error(w, err)
			return
		}

		answer, err := number.ToUnits(decimal.RequireFromString(body.Price), 8)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		prices.Set(core.Asset(body.Asset), answer.ToBig(), 0, 8)
		render.JSON(w, views.DefaultSuccess)
	}
}
