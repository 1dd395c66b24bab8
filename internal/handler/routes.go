package handler

import (
	"net/http"

	"github.com/folio/backend/pkg/auth"
)

// APIBase is the path prefix of every API route.
const APIBase = "/functions/v1/make-server-4d80a1b0/"

// Routes holds the handlers mounted under APIBase.
type Routes struct {
	AnonKey  string
	Sessions auth.SessionValidator
	Limiter  *RateLimiter

	Health      *Handler
	Contacts    *ContactHandler
	Subscribers *SubscriberHandler
	Newsletters *NewsletterHandler
	Admin       *AdminHandler
	Payments    *PaymentHandler
	Analytics   *AnalyticsHandler

	// Static serves the site build on every path outside APIBase. Optional.
	Static http.Handler
}

// Register mounts every route on mux.
func (rt Routes) Register(mux *http.ServeMux) {
	key := auth.RequireAPIKey(rt.AnonKey)
	admin := func(h http.HandlerFunc) http.Handler {
		return key(auth.RequireAdmin(rt.Sessions)(h))
	}
	public := func(h http.HandlerFunc) http.Handler {
		return key(h)
	}
	limited := func(h http.HandlerFunc) http.Handler {
		if rt.Limiter == nil {
			return key(h)
		}
		return rt.Limiter.Middleware(key(h))
	}
	route := func(method, path string) string {
		return method + " " + APIBase + path
	}

	mux.Handle(route("GET", "health"), public(rt.Health.Health))

	mux.Handle(route("POST", "contacts"), limited(rt.Contacts.Submit))
	mux.Handle(route("GET", "contacts"), admin(rt.Contacts.List))
	mux.Handle(route("PATCH", "contacts/{id}"), admin(rt.Contacts.Update))

	mux.Handle(route("POST", "subscribers"), limited(rt.Subscribers.Subscribe))
	mux.Handle(route("GET", "subscribers"), admin(rt.Subscribers.List))
	mux.Handle(route("DELETE", "subscribers/{id}"), admin(rt.Subscribers.Unsubscribe))

	mux.Handle(route("GET", "newsletters"), admin(rt.Newsletters.List))
	mux.Handle(route("POST", "send-newsletter"), admin(rt.Newsletters.Send))

	mux.Handle(route("POST", "admin/authenticate"), limited(rt.Admin.Authenticate))
	mux.Handle(route("GET", "admin/session"), admin(rt.Admin.Session))
	mux.Handle(route("POST", "admin/emergency-reset"), limited(rt.Admin.EmergencyReset))

	mux.Handle(route("POST", "process-payment"), limited(rt.Payments.Process))
	// Stripe authenticates with its signature header, not the anon key.
	mux.HandleFunc(route("POST", "webhooks/stripe"), rt.Payments.StripeWebhook)

	mux.Handle(route("POST", "analytics"), public(rt.Analytics.Ingest))
	mux.Handle(route("GET", "analytics/summary"), admin(rt.Analytics.Summary))

	mux.HandleFunc(APIBase, func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})
	if rt.Static != nil {
		mux.Handle("/", rt.Static)
	}
}
