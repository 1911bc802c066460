package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/foodorder-backend/api/routes"
	"github.com/angelmondragon/foodorder-backend/internal/auth"
	"github.com/angelmondragon/foodorder-backend/internal/cart"
	"github.com/angelmondragon/foodorder-backend/internal/catalog"
	"github.com/angelmondragon/foodorder-backend/internal/messaging"
	"github.com/angelmondragon/foodorder-backend/internal/orders"
	"github.com/angelmondragon/foodorder-backend/internal/stores"
	"github.com/angelmondragon/foodorder-backend/internal/theme"
	"github.com/angelmondragon/foodorder-backend/internal/users"
	"github.com/angelmondragon/foodorder-backend/pkg/auth/session"
	"github.com/angelmondragon/foodorder-backend/pkg/config"
	"github.com/angelmondragon/foodorder-backend/pkg/db"
	"github.com/angelmondragon/foodorder-backend/pkg/logger"
	"github.com/angelmondragon/foodorder-backend/pkg/metrics"
	"github.com/angelmondragon/foodorder-backend/pkg/migrate"
	"github.com/angelmondragon/foodorder-backend/pkg/pubsub"
	"github.com/angelmondragon/foodorder-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// closers run in reverse order once the server has drained.
	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
	}()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	closers = append(closers, dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	closers = append(closers, redisClient.Close)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	orderMetrics := metrics.NewOrderMetrics(reg)

	userRepo := users.NewRepository(dbClient.DB())
	userService, err := users.NewService(userRepo)
	if err != nil {
		return err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return err
	}

	storeRepo := stores.NewRepository(dbClient.DB())
	storeService, err := stores.NewService(storeRepo, dbClient, cfg.Password, sessionManager, logg)
	if err != nil {
		return err
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), storeRepo, orderMetrics, logg)
	if err != nil {
		return err
	}
	closers = append(closers, func() error {
		catalogService.Close()
		return nil
	})

	cartService, err := newCartService(cfg, redisClient, catalogService, orderMetrics)
	if err != nil {
		return err
	}

	var publisher *pubsub.Client
	if cfg.Messaging.NormalizedDriver() == config.MessagingDriverPubSub {
		publisher, err = pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			return err
		}
		closers = append(closers, publisher.Close)
	}
	messenger, err := newMessenger(cfg, publisher, logg)
	if err != nil {
		return err
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		Carts:     cartService,
		Profiles:  storeService,
		Messenger: messenger,
		Currency:  cfg.Currency.Symbol,
		Metrics:   orderMetrics,
		Logger:    logg,
	})
	if err != nil {
		return err
	}

	router := routes.NewRouter(
		cfg, logg, dbClient, redisClient, sessionManager, reg, metrics.NewHTTPMetrics(reg),
		authService, userService, storeService, catalogService, cartService, orderService, theme.NewStore(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":       cfg.App.Env,
		"addr":      addr,
		"cart":      cfg.Cart.Backend,
		"messenger": messenger.Name(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(router, "foodorder-api"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	// Open catalog streams only end once their subscriptions close.
	catalogService.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newCartService(cfg *config.Config, redisClient *redis.Client, products cart.ProductResolver, m *metrics.OrderMetrics) (cart.Service, error) {
	if !cfg.Cart.UsesRedis() {
		return cart.NewService(cart.NewMemoryStore(), products, nil, m)
	}
	store, err := cart.NewRedisStore(redisClient, cfg.Cart.TTL)
	if err != nil {
		return nil, err
	}
	return cart.NewService(store, products, redisClient, m)
}

// newMessenger keeps a nil *pubsub.Client from reaching the interface.
func newMessenger(cfg *config.Config, publisher *pubsub.Client, logg *logger.Logger) (orders.Messenger, error) {
	if publisher == nil {
		return messaging.New(cfg.Messaging, nil, logg)
	}
	return messaging.New(cfg.Messaging, publisher, logg)
}
