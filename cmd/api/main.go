package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/georgemunganga/predobro/internal/config"
	"github.com/georgemunganga/predobro/internal/modules/admin"
	"github.com/georgemunganga/predobro/internal/modules/auth"
	"github.com/georgemunganga/predobro/internal/modules/catalog"
	"github.com/georgemunganga/predobro/internal/modules/geo"
	"github.com/georgemunganga/predobro/internal/modules/inventory"
	"github.com/georgemunganga/predobro/internal/modules/order"
	"github.com/georgemunganga/predobro/internal/modules/user"
	"github.com/georgemunganga/predobro/internal/platform/database"
	"github.com/georgemunganga/predobro/internal/platform/httpx"
	"github.com/georgemunganga/predobro/internal/platform/jobs"
	"github.com/georgemunganga/predobro/internal/platform/logger"
)

const geocodeCacheTTL = 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	zlog, err := logger.Init(cfg.LogMode, cfg.LogFile)
	if err != nil {
		panic(err)
	}
	defer zlog.Sync()

	if err := cfg.Validate(); err != nil {
		zap.S().Fatalw("invalid configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		zap.S().Fatalw("migrate database", "error", err)
	}
	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		zap.S().Fatalw("connect database", "error", err)
	}
	defer db.Close()
	zap.S().Info("successfully connected to the database")

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(httpx.RequestLogger)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			httpx.Respond(w, http.StatusServiceUnavailable, map[string]string{"status": "database unavailable"})
			return
		}
		httpx.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// ── Identity ────────────────────────────────────────────
	userRepo := user.NewPostgresRepository(db)
	authService := auth.NewService(userRepo, auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL))
	authHandler := auth.NewHandler(authService)
	authHandler.RegisterRoutes(router)
	user.NewHandler(user.NewService(userRepo)).RegisterRoutes(router, authHandler.Middleware)

	// ── Browse ──────────────────────────────────────────────
	var geocoder geo.Geocoder = geo.NewNominatim(cfg.GeocoderURL, cfg.GeocoderUserAgent, cfg.GeocoderTimeout)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		geocoder = geo.NewCached(geocoder, rdb, geocodeCacheTTL)
	}
	resolver := geo.NewResolver(geocoder, geo.Coordinates{Lat: cfg.FallbackLat, Lon: cfg.FallbackLon})
	catalog.NewHandler(catalog.NewService(catalog.NewPostgresRepository(db), resolver)).RegisterRoutes(router)

	// ── Store, cart & orders ────────────────────────────────
	orderService := order.NewService(order.NewPostgresRepository(db), userRepo)
	router.Group(func(r chi.Router) {
		r.Use(authHandler.Middleware)
		inventory.NewHandler(inventory.NewService(inventory.NewPostgresRepository(db))).RegisterRoutes(r)
		order.NewHandler(orderService).RegisterRoutes(r)
		admin.NewHandler().RegisterRoutes(r)
	})

	// ── Background jobs ─────────────────────────────────────
	if cfg.CartAbandonAfter > 0 {
		sched := jobs.New(time.Minute)
		err := sched.Add("reclaim-abandoned-carts", cfg.CartReaperSchedule, func(ctx context.Context) error {
			_, err := orderService.ReclaimAbandonedCarts(ctx, cfg.CartAbandonAfter)
			return err
		})
		if err != nil {
			zap.S().Fatalw("schedule cart reaper", "error", err)
		}
		sched.Start()
		defer sched.Stop()
		zap.S().Infow("abandoned-cart reaper enabled",
			"idle_for", cfg.CartAbandonAfter.String(), "schedule", cfg.CartReaperSchedule)
	}

	// ── Start Server ─────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zap.S().Infow("Predobro API server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Errorw("http server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	zap.S().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.S().Errorw("graceful shutdown failed", "error", err)
	}
}
