package rest

import (
	"context"
	"net/http"

	"stablevault/core"
	"stablevault/handler/param"
	"stablevault/handler/render"
	"stablevault/handler/views"
	"stablevault/pkg/number"
	"stablevault/service/protocol"

	"github.com/holiman/uint256"
)

func vaultView(ctx context.Context, p *protocol.Protocol, owner core.Address) views.Vault {
	v := p.GetVault(ctx, owner)
	underlying := number.FromWad(p.UnderlyingCollateral(ctx, owner))

	h, err := p.GetHealthRatio(ctx, owner)
	if err != nil {
		h = nil
	}

	return views.VaultView(v, underlying, h)
}

func vaultsHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		vaults := make([]views.Vault, 0)
		for _, owner := range p.Owners(ctx) {
			vaults = append(vaults, vaultView(ctx, p, owner))
		}

		render.JSON(w, vaults)
	}
}

func vaultHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := core.Address(param.URL(r, "owner"))
		render.JSON(w, vaultView(r.Context(), p, owner))
	}
}

// vaultAmountHandler any caller scoped operation taking a single amount
func vaultAmountHandler(op func(ctx context.Context, caller core.Address, amount *uint256.Int) error) http.HandlerFunc {
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

		if err := op(r.Context(), account(r), amount); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.DefaultSuccess)
	}
}

func repayHandler(p *protocol.Protocol) http.HandlerFunc {
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

		paid, err := p.Repay(r.Context(), account(r), amount)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{"paid": number.FromWad(paid)})
	}
}

func accrueHandler(p *protocol.Protocol) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := p.AccrueYield(r.Context(), account(r)); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.DefaultSuccess)
	}
}
