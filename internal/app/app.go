package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/tiffin-storefront/internal/apiclient"
	"github.com/xenking/tiffin-storefront/internal/domain/auth"
	"github.com/xenking/tiffin-storefront/internal/domain/cart"
	"github.com/xenking/tiffin-storefront/internal/domain/favorites"
	"github.com/xenking/tiffin-storefront/internal/domain/kitchen"
	"github.com/xenking/tiffin-storefront/internal/domain/menu"
	"github.com/xenking/tiffin-storefront/internal/domain/order"
	"github.com/xenking/tiffin-storefront/internal/handler"
	"github.com/xenking/tiffin-storefront/internal/repository"
	"github.com/xenking/tiffin-storefront/internal/storage"
	"github.com/xenking/tiffin-storefront/internal/storage/file"
	"github.com/xenking/tiffin-storefront/internal/storage/memory"
	"github.com/xenking/tiffin-storefront/internal/storage/postgres"
	"github.com/xenking/tiffin-storefront/pkg/health"
	"github.com/xenking/tiffin-storefront/pkg/httpmiddleware"
)

// OpenStore opens the configured store. The returned func releases it.
func OpenStore(ctx context.Context, cfg StoreConfig) (storage.Store, func(), error) {
	switch cfg.Driver {
	case DriverMemory:
		return memory.New(), func() {}, nil
	case DriverFile:
		s, err := file.Open(cfg.Path)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open file store")
		}
		return s, func() {}, nil
	case DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, errors.Wrap(err, "run migrations")
		}
		return postgres.NewStore(pool, cfg.Scope), pool.Close, nil
	default:
		return nil, nil, errors.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// Providers carries the telemetry providers the wiring needs.
type Providers struct {
	Tracer trace.TracerProvider
	Meter  metric.MeterProvider
}

// Server is the wired storefront: the root handler plus the resources Run
// owns for the lifetime of the process.
type Server struct {
	Handler http.Handler
	Health  *health.Health
	Online  bool

	close func()
}

// Close releases the store.
func (s *Server) Close() { s.close() }

// Build opens the store, wires every component and returns the root handler.
// Background work (session polling, health loops, limiter cleanup) stops with
// ctx.
func Build(ctx context.Context, lg *zap.Logger, p Providers, cfg *Config) (*Server, error) {
	fee, err := cfg.Fee()
	if err != nil {
		return nil, err
	}

	store, closeStore, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	built := false
	defer func() {
		if !built {
			closeStore()
		}
	}()

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	if pinger, isPinger := store.(storage.Pinger); isPinger {
		healthSvc.AddReadinessCheck("store", 5*time.Second, health.PingCheck(pinger))
	}

	session := auth.NewSession(repository.NewSessionRepository(store))

	var (
		deps      handler.Deps
		source    menu.Source
		submitter order.Submitter
		coOpts    = []order.Option{
			order.WithDeliveryFee(fee),
			order.WithMeterProvider(p.Meter),
		}
	)
	if cfg.Online() {
		client, err := apiclient.New(cfg.APIURL, session,
			apiclient.WithTimeout(cfg.HTTPTimeout),
			apiclient.WithTracerProvider(p.Tracer),
			apiclient.WithMeterProvider(p.Meter),
		)
		if err != nil {
			return nil, errors.Wrap(err, "create api client")
		}
		deps.Account, deps.Admin = client, client
		source, submitter = client, client
		coOpts = append(coOpts, order.WithProfileUpdater(client))

		// The storefront can ride out short kitchen outages on its cached
		// menu, hence the higher threshold.
		healthSvc.AddReadinessCheck("kitchen-api", 5*time.Second,
			health.HTTPCheck(&http.Client{Timeout: 5 * time.Second}, client.BaseURL()+"/meal"),
			health.WithFailureThreshold(5),
		)
	} else {
		book := order.NewLocalBook(repository.NewOrderRepository(store))
		deps.Book, submitter = book, book
	}

	catalog := menu.NewCatalog(repository.NewMenuRepository(store), source)
	if err := catalog.Load(ctx); err != nil {
		return nil, errors.Wrap(err, "load menu")
	}
	c := cart.New(ctx, repository.NewCartRepository(store))
	checkout, err := order.NewCheckout(c, submitter, coOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "create checkout")
	}

	deps.Catalog = catalog
	deps.Cart = c
	deps.Favorites = favorites.New(ctx, repository.NewFavoritesRepository(store))
	deps.Kitchen = kitchen.NewService(repository.NewKitchenRepository(store))
	deps.Session = session
	deps.Checkout = checkout

	h := handler.New(handler.Config{
		LoginLimit: httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
			Max:        cfg.LoginLimit.Max,
			Window:     cfg.LoginLimit.Window,
			TrustProxy: cfg.LoginLimit.TrustProxy,
			Message:    "Too many login attempts, please try again later",
		}),
	}, deps)

	if cfg.AuthPoll > 0 {
		go session.Watch(ctx, cfg.AuthPoll, func(st auth.State) {
			lg.Info("Session state",
				zap.Bool("authenticated", st.Authenticated),
				zap.Bool("admin", st.Admin),
			)
		})
	}

	router := mux.NewRouter()
	router.HandleFunc("/livez", healthSvc.LiveEndpoint).Methods(http.MethodGet)
	router.HandleFunc("/readyz", healthSvc.ReadyEndpoint).Methods(http.MethodGet)
	router.Use(mux.MiddlewareFunc(httpmiddleware.LogRequests()))
	h.Register(router)

	built = true
	return &Server{
		Handler: otelhttp.NewHandler(
			httpmiddleware.Wrap(router,
				httpmiddleware.InjectLogger(lg),
				httpmiddleware.RequestID(),
				httpmiddleware.Recovery(),
				httpmiddleware.CORS(httpmiddleware.CORSConfig{
					AllowOrigins:     cfg.CORS.Origins,
					AllowCredentials: cfg.CORS.AllowCredentials,
					MaxAge:           86400,
				}),
			),
			"storefront",
			otelhttp.WithTracerProvider(p.Tracer),
			otelhttp.WithMeterProvider(p.Meter),
		),
		Health: healthSvc,
		Online: h.Online(),
		close:  closeStore,
	}, nil
}

// Run builds the storefront, starts the HTTP server, and handles graceful
// shutdown.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("mode", cfg.Mode),
		zap.String("store", cfg.Store.Driver),
	)
	srv, err := Build(ctx, lg, Providers{Tracer: m.TracerProvider(), Meter: m.MeterProvider()}, cfg)
	if err != nil {
		return err
	}
	defer srv.Close()

	healthSvc := srv.Health
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.HTTPTimeout + 15*time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           srv.Handler,
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr), zap.Bool("online", srv.Online))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
