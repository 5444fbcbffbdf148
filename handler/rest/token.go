package rest

import (
	"net/http"

	"stablevault/core"
	"stablevault/handler/param"
	"stablevault/handler/render"
	"stablevault/handler/views"
	"stablevault/service/protocol"
)

type tokenBody struct {
	Asset  string `json:"asset" valid:"required"`
	To     string `json:"to" valid:"printableascii,required"`
	Amount string `json:"amount" valid:"amount,required"`
}

func approveHandler(p *protocol.Protocol) http.HandlerFunc {
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

		if err := p.Approve(r.Context(), account(r), core.Address(body.To), core.Asset(body.Asset), amount); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.DefaultSuccess)
	}
}

func transferHandler(p *protocol.Protocol) http.HandlerFunc {
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

		if err := p.Transfer(r.Context(), account(r), core.Address(body.To), core.Asset(body.Asset), amount); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.DefaultSuccess)
	}
}
