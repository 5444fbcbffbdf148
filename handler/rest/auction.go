package rest

import (
	"net/http"

	"stablevault/core"
	"stablevault/handler/param"
	"stablevault/handler/render"
	"stablevault/handler/views"
	"stablevault/pkg/number"
	"stablevault/service/protocol"

	"github.com/twitchtv/twirp"
)

func auctionsHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		auctions := make([]views.Auction, 0)
		for _, a := range p.Auctions(ctx) {
			auctions = append(auctions, views.Auction{
				Auction:         *a,
				RequiredDeposit: number.FromWad(p.RequiredDeposit(ctx, a.Vault)),
			})
		}

		render.JSON(w, auctions)
	}
}

func auctionHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		vault := core.Address(param.URL(r, "vault"))

		a, ok := p.GetAuction(ctx, vault)
		if !ok {
			render.Error(w, twirp.NotFoundError("auction not found"))
			return
		}

		view := views.Auction{
			Auction:         *a,
			RequiredDeposit: number.FromWad(p.RequiredDeposit(ctx, vault)),
		}

		for _, b := range p.GetVaultBids(ctx, vault) {
			view.Bids = append(view.Bids, views.BidView(b))
		}

		render.JSON(w, view)
	}
}

func commitmentHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := p.GetCommitment(r.Context(), account(r), core.Address(param.URL(r, "vault")))
		if !ok {
			render.Error(w, twirp.NotFoundError("commitment not found"))
			return
		}

		render.JSON(w, views.CommitmentView(c))
	}
}

func commitHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			CommitHash string `json:"commit_hash" valid:"bytes32,required"`
			Deposit    string `json:"deposit" valid:"amount,required"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.Error(w, err)
			return
		}

		hash, err := param.Bytes32(body.CommitHash)
		if err != nil {
			render.Error(w, err)
			return
		}

		deposit, err := param.Wad("deposit", body.Deposit)
		if err != nil {
			render.Error(w, err)
			return
		}

		vault := core.Address(param.URL(r, "vault"))
		if err := p.CommitLiquidation(r.Context(), account(r), vault, hash, deposit); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.DefaultSuccess)
	}
}

func revealHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			BidAmount           string `json:"bid_amount" valid:"amount,required"`
			CollateralRequested string `json:"collateral_requested" valid:"amount,required"`
			Salt                string `json:"salt" valid:"bytes32,required"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.Error(w, err)
			return
		}

		bid, err := param.Wad("bid_amount", body.BidAmount)
		if err != nil {
			render.Error(w, err)
			return
		}

		coll, err := param.Wad("collateral_requested", body.CollateralRequested)
		if err != nil {
			render.Error(w, err)
			return
		}

		salt, err := param.Bytes32(body.Salt)
		if err != nil {
			render.Error(w, err)
			return
		}

		vault := core.Address(param.URL(r, "vault"))
		if err := p.RevealLiquidation(r.Context(), account(r), vault, bid, coll, salt); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.DefaultSuccess)
	}
}

func finalizeHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := p.FinalizeAuction(r.Context(), core.Address(param.URL(r, "vault"))); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.DefaultSuccess)
	}
}

func cleanupHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := p.CleanupBids(r.Context(), core.Address(param.URL(r, "vault"))); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.DefaultSuccess)
	}
}

func claimRefundHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := p.ClaimRefund(r.Context(), account(r), core.Address(param.URL(r, "vault"))); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{"pending": number.FromWad(p.PendingRefund(r.Context(), account(r)))})
	}
}

func pendingRefundHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, render.H{"pending": number.FromWad(p.PendingRefund(r.Context(), account(r)))})
	}
}

func withdrawRefundHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		amount, err := p.WithdrawRefund(r.Context(), account(r))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{"amount": number.FromWad(amount)})
	}
}
