package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/foodorder-backend/api/controllers"
	"github.com/angelmondragon/foodorder-backend/api/middleware"
	"github.com/angelmondragon/foodorder-backend/internal/auth"
	"github.com/angelmondragon/foodorder-backend/internal/cart"
	"github.com/angelmondragon/foodorder-backend/internal/catalog"
	"github.com/angelmondragon/foodorder-backend/internal/orders"
	"github.com/angelmondragon/foodorder-backend/internal/roles"
	"github.com/angelmondragon/foodorder-backend/internal/stores"
	"github.com/angelmondragon/foodorder-backend/internal/theme"
	"github.com/angelmondragon/foodorder-backend/internal/users"
	"github.com/angelmondragon/foodorder-backend/pkg/auth/session"
	"github.com/angelmondragon/foodorder-backend/pkg/config"
	"github.com/angelmondragon/foodorder-backend/pkg/db"
	"github.com/angelmondragon/foodorder-backend/pkg/logger"
	"github.com/angelmondragon/foodorder-backend/pkg/metrics"
	"github.com/angelmondragon/foodorder-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionChecker session.AccessSessionChecker,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	authService auth.Service,
	userService users.Service,
	storeService stores.Service,
	catalogService catalog.Service,
	cartService cart.Service,
	orderService orders.Service,
	themeStore *theme.Store,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
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

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(authService, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
			r.Post("/refresh", controllers.AuthRefresh(authService, logg))
			r.Post("/logout", controllers.AuthLogout(authService, logg))
		})

		r.Get("/theme", controllers.ThemeGet(themeStore, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionChecker, userService, logg))

			r.Get("/session", controllers.SessionIdentity(logg))
			r.Get("/session/screens", controllers.SessionScreens(logg))
			r.Get("/profile", controllers.ProfileGet(userService, logg))
			r.Put("/profile", controllers.ProfileUpdate(userService, logg))

			// Catalog reads are open to every resolved role.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, roles.RoleAdmin, roles.RoleCustomer, roles.RoleOwner))
				r.Get("/stores", controllers.StoreList(storeService, logg))
				r.Get("/stores/{storeId}", controllers.StoreGet(storeService, logg))
				r.Get("/stores/{storeId}/products", controllers.StoreProducts(catalogService, logg))
				r.Get("/stores/{storeId}/products/stream", controllers.StoreCatalogStream(catalogService, logg))
				r.Get("/stores/{storeId}/categories", controllers.StoreCategories(catalogService, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, roles.RoleOwner), middleware.StoreContext(logg))
				r.Get("/stores/me", controllers.StoreSettingsGet(storeService, logg))
				r.Put("/stores/me", controllers.StoreSettingsUpdate(storeService, logg))
				r.Get("/stores/me/products", controllers.OwnerProducts(catalogService, logg))
				r.Post("/stores/me/products", controllers.OwnerProductCreate(catalogService, logg))
				r.Put("/stores/me/products/{productId}", controllers.OwnerProductUpdate(catalogService, logg))
				r.Delete("/stores/me/products/{productId}", controllers.OwnerProductDelete(catalogService, logg))
				r.Get("/stores/me/categories", controllers.OwnerCategories(catalogService, logg))
				r.Post("/stores/me/categories", controllers.OwnerCategoryCreate(catalogService, logg))
				r.Delete("/stores/me/categories/{categoryId}", controllers.OwnerCategoryDelete(catalogService, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, roles.RoleCustomer))
				r.Get("/", controllers.CartGet(cartService, logg))
				r.Delete("/", controllers.CartClear(cartService, logg))
				r.Post("/items", controllers.CartAddItem(cartService, logg))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(cartService, logg))
				r.Post("/quote", controllers.CartQuote(orderService, userService, logg))
				r.With(middleware.Idempotency("checkout", redisClient, logg)).Post("/checkout", controllers.CartCheckout(orderService, userService, logg))
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, roles.RoleAdmin))
				r.Get("/stores", controllers.StoreList(storeService, logg))
				r.Post("/stores", controllers.AdminStoreCreate(storeService, logg))
				r.Delete("/stores/{storeId}", controllers.AdminStoreDelete(storeService, logg))
				r.Get("/owners", controllers.AdminOwnerList(userService, logg))
				r.Patch("/theme", controllers.ThemeUpdate(themeStore, logg))
			})
		})
	})

	return r
}
