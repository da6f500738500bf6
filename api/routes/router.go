package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/pharmacy-backend/api/controllers"
	authcontrollers "github.com/angelmondragon/pharmacy-backend/api/controllers/auth"
	cartcontrollers "github.com/angelmondragon/pharmacy-backend/api/controllers/cart"
	inventorycontrollers "github.com/angelmondragon/pharmacy-backend/api/controllers/inventory"
	ordercontrollers "github.com/angelmondragon/pharmacy-backend/api/controllers/orders"
	"github.com/angelmondragon/pharmacy-backend/api/middleware"
	"github.com/angelmondragon/pharmacy-backend/internal/auth"
	"github.com/angelmondragon/pharmacy-backend/internal/cart"
	"github.com/angelmondragon/pharmacy-backend/internal/checkout"
	"github.com/angelmondragon/pharmacy-backend/internal/inventory"
	"github.com/angelmondragon/pharmacy-backend/internal/orders"
	"github.com/angelmondragon/pharmacy-backend/internal/users"
	"github.com/angelmondragon/pharmacy-backend/pkg/auth/session"
	"github.com/angelmondragon/pharmacy-backend/pkg/config"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	"github.com/angelmondragon/pharmacy-backend/pkg/logger"
	"github.com/angelmondragon/pharmacy-backend/pkg/metrics"
	"github.com/angelmondragon/pharmacy-backend/pkg/redis"
)

// Stores groups the Redis backed helpers used by middleware. Nil members
// disable the feature they back.
type Stores struct {
	Sessions    session.AccessSessionChecker
	RateLimit   redis.RateLimiter
	Idempotency redis.IdempotencyStore
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	redisPinger controllers.Pinger,
	stores Stores,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	authService auth.Service,
	registerService auth.RegisterService,
	userService users.Service,
	inventoryService inventory.Service,
	cartService cart.Service,
	checkoutService checkout.Service,
	ordersService orders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	requireAuth := middleware.Auth(cfg.JWT, stores.Sessions, logg)
	requireAdmin := middleware.RequireRole(logg, enums.UserRoleAdmin)
	idempotent := middleware.Idempotency(stores.Idempotency, cfg.Idempotency, logg)

	r.Get("/ping", controllers.Ping())
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]controllers.Pinger{
			"db":    dbPinger,
			"redis": redisPinger,
		}, logg))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/users", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, stores.RateLimit, logg)).
			Post("/", controllers.Register(registerService, enums.UserRoleUser, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, stores.RateLimit, logg)).
			Post("/authenticate", authcontrollers.Login(authService, logg))
		r.Post("/refresh", authcontrollers.Refresh(authService, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/logout", authcontrollers.Logout(authService, logg))

			r.Get("/current", controllers.CurrentUser(userService, logg))
			r.With(idempotent).Post("/current/cart-items", cartcontrollers.Add(cartService, logg))
			r.Get("/current/cart-items", cartcontrollers.List(cartService, logg))
			r.Delete("/current/cart-items/{id}", cartcontrollers.Remove(cartService, logg))
			r.With(idempotent).Post("/current/orders", ordercontrollers.Place(checkoutService, logg))
			r.Get("/current/orders", ordercontrollers.List(ordersService, logg))
			r.Get("/current/orders/{id}", ordercontrollers.Get(ordersService, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/", controllers.ListAccounts(userService, enums.UserRoleUser, logg))
				r.Get("/{id}", controllers.GetAccount(userService, enums.UserRoleUser, logg))
				r.Delete("/{id}", controllers.DeleteAccount(userService, enums.UserRoleUser, logg))
			})
		})
	})

	r.Route("/admins", func(r chi.Router) {
		registerAdmin := controllers.Register(registerService, enums.UserRoleAdmin, logg)
		if openAdminRegistration(cfg) {
			r.With(middleware.AuthRateLimit(registerPolicy, stores.RateLimit, logg)).Post("/", registerAdmin)
		} else {
			r.With(requireAuth, requireAdmin).Post("/", registerAdmin)
		}
		r.With(middleware.AuthRateLimit(loginPolicy, stores.RateLimit, logg)).
			Post("/authenticate", authcontrollers.AdminLogin(authService, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)
			r.Get("/", controllers.ListAccounts(userService, enums.UserRoleAdmin, logg))
			r.Get("/{id}", controllers.GetAccount(userService, enums.UserRoleAdmin, logg))
			r.Delete("/{id}", controllers.DeleteAccount(userService, enums.UserRoleAdmin, logg))
		})
	})

	r.Route("/inventories", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", inventorycontrollers.List(inventoryService, logg))
		r.Get("/{id}", inventorycontrollers.Get(inventoryService, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.With(idempotent).Post("/", inventorycontrollers.Create(inventoryService, logg))
			r.Patch("/{id}", inventorycontrollers.Update(inventoryService, logg))
			r.With(idempotent).Post("/{id}/restock", inventorycontrollers.Restock(inventoryService, logg))
			r.Delete("/{id}", inventorycontrollers.Delete(inventoryService, logg))
		})
	})

	return r
}

// openAdminRegistration keeps POST /admins public outside production, or
// when the feature flag explicitly opens it.
func openAdminRegistration(cfg *config.Config) bool {
	return !cfg.App.IsProd() || cfg.FeatureFlags.OpenAdminRegistration
}
