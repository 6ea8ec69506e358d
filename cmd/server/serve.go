package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/daikitazaki/foodswho/internal/config"
	"github.com/daikitazaki/foodswho/internal/database"
	"github.com/daikitazaki/foodswho/internal/handler"
	"github.com/daikitazaki/foodswho/internal/middleware"
	"github.com/daikitazaki/foodswho/internal/queue"
	"github.com/daikitazaki/foodswho/internal/repository"
	"github.com/daikitazaki/foodswho/internal/router"
	"github.com/daikitazaki/foodswho/internal/service"
)

const shutdownTimeout = 10 * time.Second

type ServeCmd struct {
	LogDir     string `default:"logs" help:"Directory for the activity log"`
	NoEvents   bool   `help:"Do not publish activity events"`
	NoConsumer bool   `help:"Do not run the activity consumer"`
}

func (s *ServeCmd) Run(cctx *Context) (err error) {
	logger := newLogger(cctx.Debug)
	defer logger.Sync() //nolint:errcheck // sync errors on stderr are not actionable

	cfg, err := config.Load()
	if err != nil {
		logger.Error("error loading config", zap.Error(err))
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg)
	if err != nil {
		logger.Error("error connecting to database", zap.Error(err))
		return err
	}
	defer func() { err = multierr.Append(err, db.Close()) }()

	// Redis is optional: without it there is no rate limit and signed-out
	// access tokens stay valid until they expire.
	var (
		rdb  *redis.Client
		deny service.Denylist
	)
	if client, rerr := config.NewRedisClient(ctx); rerr != nil {
		logger.Warn("redis unavailable; rate limit and sign-out denylist disabled", zap.Error(rerr))
	} else {
		rdb = client
		defer func() { err = multierr.Append(err, rdb.Close()) }()
		deny = service.NewRedisDenylist(rdb, "")
	}

	restaurants := repository.NewRestaurantRepo(db)
	reviews := repository.NewReviewRepo(db)
	reservations := repository.NewReservationRepo(db)
	sessions := service.NewSessionService(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db), deny, logger.Named("session"))

	var events handler.Events
	if !s.NoEvents {
		events = service.NewPublisher(cfg.AMQPURL, logger.Named("events"))
	}

	v := handler.NewValidator()
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = v
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger.Named("http")))
	e.Use(echo.WrapMiddleware(configureCORS(cfg.CORSOrigins)))

	router.Register(e, router.Handlers{
		Pages:        handler.NewPageHandler(restaurants, reviews, sessions, cfg.PageWait, logger.Named("pages")),
		Auth:         handler.NewAuthHandler(sessions, v.V, cfg.Env == "prod", logger.Named("auth")),
		Restaurants:  handler.NewRestaurantHandler(restaurants, v.V),
		Reviews:      handler.NewReviewHandler(reviews, events, v.V),
		Reservations: handler.NewReservationHandler(reservations, events, v.V),
	}, sessions, []echo.MiddlewareFunc{
		middleware.Identify(cfg.JWTSecret),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger.Named("ratelimit")),
	}, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(sctx)
	})
	if !s.NoConsumer {
		g.Go(func() error {
			return queue.NewConsumer(cfg.AMQPURL, s.LogDir, logger.Named("consumer")).Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

// configureCORS allows cookies only for explicit origins; browsers refuse
// credentialed responses carrying a "*" origin.
func configureCORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: !slices.Contains(origins, "*"),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions, http.MethodHead},
		AllowedHeaders:   []string{"accept", "authorization", "content-type", "origin", "referer", "user-agent"},
		ExposedHeaders:   []string{"retry-after", "x-ratelimit-limit", "x-ratelimit-remaining"},
		MaxAge:           86400,
	}).Handler
}
