package router

import (
	"net/http"

	"github.com/skillswap/backend/internal/auth"
	"github.com/skillswap/backend/internal/catalog"
	"github.com/skillswap/backend/internal/exchange"
	"github.com/skillswap/backend/internal/ledger"
	"github.com/skillswap/backend/internal/notify"
	"github.com/skillswap/backend/internal/swap"
)

// Handlers groups the per-domain handlers the router wires up.
type Handlers struct {
	Auth     *auth.Handler
	Catalog  *catalog.Handler
	Ledger   *ledger.Handler
	Exchange *exchange.Handler
	Swap     *swap.Handler
	Notify   *notify.Handler
}

// Middleware is a standard http.Handler wrapper.
type Middleware func(http.Handler) http.Handler

// New returns an http.Handler serving the API under /api/v1. userAuth wraps
// every route except register/login and categories; balanceCheck additionally
// wraps the credit-funded exchange route.
func New(h Handlers, userAuth, balanceCheck Middleware) http.Handler {
	mux := http.NewServeMux()
	base := "/api/v1"

	authed := func(fn http.HandlerFunc) http.Handler { return userAuth(fn) }

	// Identity
	mux.HandleFunc("POST "+base+"/auth/register", h.Auth.Register)
	mux.HandleFunc("POST "+base+"/auth/login", h.Auth.Login)
	mux.Handle(base+"/users/me", authed(h.Auth.Me))

	// Skill catalog
	mux.HandleFunc("GET "+base+"/categories", h.Catalog.ListCategories)
	mux.Handle("POST "+base+"/offerings", authed(h.Catalog.CreateOffering))
	mux.Handle("GET "+base+"/offerings", authed(h.Catalog.ListOfferings))
	mux.Handle("GET "+base+"/offerings/{id}", authed(h.Catalog.GetOffering))
	mux.Handle("DELETE "+base+"/offerings/{id}", authed(h.Catalog.DeleteOffering))
	mux.Handle("POST "+base+"/offerings/{id}/deactivate", authed(h.Catalog.DeactivateOffering))
	mux.Handle("POST "+base+"/requests", authed(h.Catalog.CreateRequest))
	mux.Handle("GET "+base+"/requests", authed(h.Catalog.ListRequests))
	mux.Handle("DELETE "+base+"/requests/{id}", authed(h.Catalog.DeleteRequest))
	mux.Handle("POST "+base+"/requests/{id}/deactivate", authed(h.Catalog.DeactivateRequest))

	// Credits
	mux.Handle("GET "+base+"/credits/balance", authed(h.Ledger.Balance))
	mux.Handle("GET "+base+"/credits/ledger", authed(h.Ledger.Transactions))

	// Exchanges and swaps
	mux.Handle("POST "+base+"/exchanges/reciprocal", authed(h.Exchange.InitiateReciprocal))
	mux.Handle("POST "+base+"/exchanges/credit", userAuth(balanceCheck(http.HandlerFunc(h.Exchange.InitiateCreditFunded))))
	mux.Handle("GET "+base+"/exchanges", authed(h.Exchange.List))
	mux.Handle("GET "+base+"/exchanges/{id}", authed(h.Exchange.Get))
	mux.Handle("GET "+base+"/swaps", authed(h.Swap.List))
	mux.Handle("GET "+base+"/swaps/{id}", authed(h.Swap.Get))
	mux.Handle("POST "+base+"/swaps/{id}/accept", authed(h.Exchange.SwapTransition("accept")))
	mux.Handle("POST "+base+"/swaps/{id}/decline", authed(h.Exchange.SwapTransition("decline")))
	mux.Handle("POST "+base+"/swaps/{id}/cancel", authed(h.Exchange.SwapTransition("cancel")))
	mux.Handle("POST "+base+"/swaps/{id}/complete", authed(h.Exchange.SwapTransition("complete")))

	// Notifications
	mux.Handle("GET "+base+"/notifications", authed(h.Notify.List))
	mux.Handle("POST "+base+"/notifications/{id}/read", authed(h.Notify.MarkRead))

	return mux
}
