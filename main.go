package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"jinstore-backend/auth"
	"jinstore-backend/cache"
	"jinstore-backend/config"
	adminctl "jinstore-backend/controllers/admin"
	cartctl "jinstore-backend/controllers/cart"
	favoritesctl "jinstore-backend/controllers/favorites"
	ordersctl "jinstore-backend/controllers/orders"
	productsctl "jinstore-backend/controllers/products"
	usersctl "jinstore-backend/controllers/users"
	"jinstore-backend/logger"
	"jinstore-backend/middleware"
	"jinstore-backend/realtime"
	"jinstore-backend/routes"
	"jinstore-backend/services/cart"
	"jinstore-backend/services/catalog"
	"jinstore-backend/services/favorites"
	"jinstore-backend/services/orders"
	"jinstore-backend/services/users"
	"jinstore-backend/shutdown"
	"jinstore-backend/store"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service:   "jinstore-backend",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: !cfg.Production(),
	})

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	db, err := store.Connect(ctx, cfg.MongoURL, cfg.MongoDB)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = db.Close(closeCtx)
	}()
	if err := db.EnsureIndexes(ctx); err != nil {
		return err
	}
	log.Info("mongo connected", slog.String("db", cfg.MongoDB))

	hub := realtime.NewHub(cfg.CORSOrigins, log)
	defer hub.Close()

	var productRepo catalog.ProductRepo = db.Products()
	orderOpts := []orders.Option{orders.WithPublisher(hub), orders.WithLogger(log)}
	if cfg.RedisURL != "" {
		rdb, err := cache.ConnectRedis(ctx, cache.RedisConfig{Addr: cfg.RedisURL, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		cached := cache.NewProductCache(db.Products(), rdb, cfg.ProductCacheTTL, log)
		productRepo = cached
		orderOpts = append(orderOpts, orders.WithStockInvalidator(cached))
		log.Info("product cache enabled", slog.String("redis", cfg.RedisURL))
	}

	var firebase *auth.FirebaseVerifier
	if cfg.FirebaseProjectID != "" {
		firebase, err = auth.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsJSON)
		if err != nil {
			return err
		}
		log.Info("firebase login enabled", slog.String("project", cfg.FirebaseProjectID))
	}

	userTokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	guestTokens := auth.NewTokens(cfg.JWTSecret, cfg.GuestTTL)

	catalogSvc := catalog.NewService(productRepo)
	cartSvc := cart.NewService(db.Carts(), productRepo)
	favoritesSvc := favorites.NewService(db.Favorites(), productRepo)
	usersSvc := users.NewService(db.Users(), cfg.AdminEmails)
	ordersSvc := orders.NewService(db.Orders(), productRepo, cartSvc, usersSvc, orders.Pricing{
		Standard:              cfg.ShippingStandardCents,
		Express:               cfg.ShippingExpressCents,
		FreeShippingThreshold: cfg.FreeShippingThresholdCents,
	}, orderOpts...)

	handlers := routes.Handlers{
		Products:  productsctl.NewHandler(catalogSvc, usersSvc),
		Cart:      cartctl.NewHandler(cartSvc),
		Favorites: favoritesctl.NewHandler(favoritesSvc),
		Orders:    ordersctl.NewHandler(ordersSvc),
		Users: usersctl.NewHandler(usersctl.Deps{
			Accounts:    usersSvc,
			UserTokens:  userTokens,
			GuestTokens: guestTokens,
			Parser:      userTokens,
			Firebase:    firebase,
			Cart:        cartSvc,
			Favorites:   favoritesSvc,
			Log:         log,
		}),
		Admin: adminctl.NewHandler(ordersSvc, catalogSvc, usersSvc, hub, log),
	}

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	routes.Setup(r, handlers, userTokens, db)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	return srv.Shutdown(shutdownCtx)
}
