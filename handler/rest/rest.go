package rest

import (
	"errors"
	"net/http"

	"stablevault/core"
	"stablevault/handler/auth"
	"stablevault/handler/render"
	"stablevault/handler/request"
	"stablevault/service/feed"
	"stablevault/service/protocol"

	"github.com/go-chi/chi"
)

// Handle handle rest api request, prices may be nil when no static feed is configured
func Handle(cfg *core.Config, p *protocol.Protocol, events core.IEventStore, prices *feed.StaticFeed) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Use(auth.HandleAuthentication())

	router.Get("/system", systemHandler(p))
	router.Get("/params", paramsHandler(p))
	router.Get("/events", eventsHandler(events))
	router.Get("/prices/{asset}", priceHandler(p))
	router.Post("/prices/{asset}/observe", observeHandler(p))
	router.Get("/balances/{account}", balanceHandler(p))

	router.Get("/vaults", vaultsHandler(p))
	router.Get("/vaults/{owner}", vaultHandler(p))

	router.Get("/auctions", auctionsHandler(p))
	router.Get("/auctions/{vault}", auctionHandler(p))
	router.Post("/auctions/{vault}/finalize", finalizeHandler(p))
	router.Post("/auctions/{vault}/cleanup", cleanupHandler(p))

	router.Get("/pool", poolHandler(p))
	router.Get("/pool/{depositor}", positionHandler(p))

	router.Group(func(r chi.Router) {
		r.Use(auth.LoginRequired)

		r.Post("/vault/deposit", vaultAmountHandler(p.DepositCollateral))
		r.Post("/vault/withdraw", vaultAmountHandler(p.WithdrawCollateral))
		r.Post("/vault/borrow", vaultAmountHandler(p.Borrow))
		r.Post("/vault/repay", repayHandler(p))
		r.Post("/vault/accrue", accrueHandler(p))

		r.Get("/auctions/{vault}/commitment", commitmentHandler(p))
		r.Post("/auctions/{vault}/commit", commitHandler(p))
		r.Post("/auctions/{vault}/reveal", revealHandler(p))
		r.Post("/auctions/{vault}/refund", claimRefundHandler(p))
		r.Get("/refunds", pendingRefundHandler(p))
		r.Post("/refunds/withdraw", withdrawRefundHandler(p))

		r.Post("/pool/deposit", vaultAmountHandler(p.PoolDeposit))
		r.Post("/pool/withdraw", vaultAmountHandler(p.PoolWithdraw))
		r.Post("/pool/claim", claimGainsHandler(p))

		r.Post("/tokens/approve", approveHandler(p))
		r.Post("/tokens/transfer", transferHandler(p))
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(auth.LoginRequired)

		r.Post("/vault-pause", pauseHandler(p.SetVaultPaused))
		r.Post("/emergency-pause", pauseHandler(p.SetEmergencyPause))
		r.Post("/circuit-breaker/reset", resetBreakerHandler(p))
		r.Post("/borrow-rate", borrowRateHandler(p))
		r.Post("/reserves/withdraw", withdrawReservesHandler(p))
		r.Post("/bad-debt/write-off", writeOffHandler(p))
		r.Post("/slashed-revenue/withdraw", withdrawSlashedHandler(p))
		r.Post("/faucet", faucetHandler(p))
		r.With(auth.AdminRequired(cfg)).Post("/prices", setPriceHandler(prices))
	})

	return router
}

func account(r *http.Request) core.Address {
	a, _ := request.NewContext(r.Context()).GetAccount()
	return a
}

type amountBody struct {
	Amount string `json:"amount" valid:"amount,required"`
}
