// Package http wires the auth service's handlers, guards and middleware into
// one http.Handler.
package http

import (
	"log/slog"
	"net/http"

	"github.com/paperbark/journal/internal/auth/domain"
	"github.com/paperbark/journal/internal/auth/service"
	"github.com/paperbark/journal/internal/auth/store"
	"github.com/paperbark/journal/pkg/httpx"
	"github.com/paperbark/journal/pkg/jwtx"
	"github.com/paperbark/journal/pkg/slogx"
)

// RouterConfig carries everything the router needs to assemble routes.
type RouterConfig struct {
	Logger    *slog.Logger
	Store     store.Store
	Sessions  *service.SessionService
	AccessCtx jwtx.SigningContext
	RateLimit httpx.RateLimitConfig
	Cookies   CookieConfig
}

// Router owns the route table and the global middleware chain.
type Router struct {
	mux   *http.ServeMux
	chain []httpx.Middleware
}

// NewRouter builds the full route table. Every request passes through request
// logging, rate limiting and identity resolution, in that order; per-route
// guards sit inside that chain.
func NewRouter(cfg RouterConfig) *Router {
	limiter := httpx.NewFixedWindowLimiter(cfg.RateLimit)

	r := &Router{
		mux: http.NewServeMux(),
		chain: []httpx.Middleware{
			slogx.HTTPMiddleware(cfg.Logger),
			httpx.RateLimitMiddleware(limiter, httpx.IPKeyExtractor),
			httpx.IdentityMiddleware(cfg.AccessCtx),
		},
	}

	r.mux.Handle("POST /auth/login", &LoginHandler{Sessions: cfg.Sessions, Cookies: cfg.Cookies})
	r.mux.Handle("POST /auth/register", &RegisterHandler{Sessions: cfg.Sessions, Cookies: cfg.Cookies})
	r.mux.Handle("POST /auth/refresh", &RefreshHandler{Sessions: cfg.Sessions, Cookies: cfg.Cookies})
	r.mux.Handle("POST /auth/logout", &LogoutHandler{Cookies: cfg.Cookies})

	r.mux.Handle("GET /v1/users/me", httpx.Chain(
		&MeHandler{Store: cfg.Store},
		httpx.RequireAuth(),
	))
	r.mux.Handle("GET /v1/admin/users", httpx.Chain(
		&AdminUsersHandler{Store: cfg.Store},
		httpx.RequireRole(domain.RoleStrings(domain.RoleAdmin)...),
	))

	r.mux.Handle("GET /livez", LivezHandler{})
	r.mux.Handle("GET /readyz", &ReadyzHandler{Store: cfg.Store})

	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.mux, r.chain...).ServeHTTP(w, req)
}
