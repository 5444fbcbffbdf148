package handler

import (
	"net/http"

	"stablevault/core"
	"stablevault/handler/render"
	"stablevault/handler/rest"
	"stablevault/service/feed"
	"stablevault/service/protocol"

	"github.com/go-chi/chi"
	"github.com/twitchtv/twirp"
)

// Server server
type Server struct {
	cfg    *core.Config
	p      *protocol.Protocol
	events core.IEventStore
	prices *feed.StaticFeed
}

// New new server function, prices is the static feed admins may override, or nil
func New(
	cfg *core.Config,
	p *protocol.Protocol,
	events core.IEventStore,
	prices *feed.StaticFeed,
) Server {
	return Server{
		cfg:    cfg,
		p:      p,
		events: events,
		prices: prices,
	}
}

// HandleRestAPI handle restful apis
func (s Server) HandleRestAPI() http.Handler {
	r := chi.NewRouter()
	r.Use(render.WrapResponse(true))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, twirp.NotFoundError("not found"))
	})

	r.Mount("/", rest.Handle(s.cfg, s.p, s.events, s.prices))
	return r
}
