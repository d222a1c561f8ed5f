package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/middleware"
	"storefront/internal/response"
	"storefront/internal/service"
	"storefront/internal/session"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Product  *handler.ProductHandler
	Auth     *handler.AuthHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Address  *handler.AddressHandler
}

// Options carries the cross-cutting dependencies of the router.
type Options struct {
	Sessions       *session.Manager
	Revoker        session.Revoker
	Gate           service.Gatekeeper
	LoginLimiter   middleware.Limiter
	CookieName     string
	AllowedOrigins []string
	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxy bool
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery sits inside Logging so a panic is logged with its 500 status.
	r.Use(chimw.RequestID)
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Authenticate(opts.Sessions, opts.Revoker, opts.CookieName, logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/products", func(pr chi.Router) {
		pr.Get("/", h.Product.GetAll)
		pr.Get("/{name}", h.Product.GetByName)
	})

	r.Get("/logout", h.Auth.Logout)

	r.Group(func(gr chi.Router) {
		gr.Use(middleware.RateLimit(opts.LoginLimiter, "auth", logger))
		gr.Post("/register", h.Auth.Register)
		gr.Post("/login", h.Auth.Login)
	})

	r.Group(func(lr chi.Router) {
		lr.Use(middleware.RequireLogin(logger))

		lr.Get("/profile", h.Auth.Profile)
		lr.Post("/complete_profile", h.Auth.CompleteProfile)

		lr.Get("/get_user_orders", h.Checkout.ListOrders)
		lr.Get("/orders/{code}", h.Checkout.GetOrder)

		lr.Get("/get_user_addresses", h.Address.List)
		lr.Post("/add_address", h.Address.Add)
		lr.Delete("/delete_address/{id}", h.Address.Delete)
		lr.Post("/set_default_address/{id}", h.Address.SetDefault)

		lr.Group(func(pr chi.Router) {
			pr.Use(middleware.RequireProfile(opts.Gate, logger))

			pr.Post("/add_to_cart", h.Cart.Add)
			pr.Post("/update_cart_quantity", h.Cart.ChangeQuantity)
			pr.Post("/remove_from_cart", h.Cart.Remove)
			pr.Post("/update_cart", h.Cart.Update)
			pr.Get("/get_cart_data", h.Cart.Data)
			pr.Get("/get_cart_count", h.Cart.Count)
			pr.Post("/clear_cart", h.Cart.Clear)
			pr.Get("/get_cart_total", h.Cart.Total)
			pr.Post("/checkout", h.Checkout.Checkout)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	return r
}
