package auth

import (
	"net/http"
	"strings"

	"stablevault/core"
	"stablevault/handler/render"
	"stablevault/handler/request"

	"github.com/asaskevich/govalidator"
	"github.com/fox-one/pkg/logger"
	"github.com/twitchtv/twirp"
)

// HeaderAccount caller identity, set by the upstream gateway after authentication
const HeaderAccount = "X-Account"

// HandleAuthentication puts the caller account into the request context
func HandleAuthentication() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			account := strings.TrimSpace(r.Header.Get(HeaderAccount))
			if account == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !govalidator.IsPrintableASCII(account) || len(account) > 128 {
				logger.FromContext(ctx).Debugln("malformed account header:", account)
				render.Error(w, twirp.InvalidArgumentError(HeaderAccount, "malformed account"))
				return
			}

			ctx = logger.WithContext(ctx, logger.FromContext(ctx).WithField("account", account))
			next.ServeHTTP(w, r.WithContext(request.NewContext(ctx).WithAccount(core.Address(account))))
		}

		return http.HandlerFunc(fn)
	}
}

// LoginRequired rejects requests without an account
func LoginRequired(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if _, ok := request.NewContext(r.Context()).GetAccount(); !ok {
			render.Error(w, twirp.NewError(twirp.Unauthenticated, "missing "+HeaderAccount))
			return
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}

// AdminRequired rejects accounts not listed as admins
func AdminRequired(cfg *core.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			account, ok := request.NewContext(r.Context()).GetAccount()
			if !ok || !cfg.IsAdmin(string(account)) {
				render.Error(w, twirp.NewError(twirp.PermissionDenied, "admin only"))
				return
			}

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}
