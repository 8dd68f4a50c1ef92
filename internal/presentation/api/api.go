package api

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kendevco/discordant/internal/infrastructure/configs"
	"github.com/kendevco/discordant/internal/infrastructure/ratelimiter"
	healthHandler "github.com/kendevco/discordant/internal/presentation/handler/health"
	messagesHandler "github.com/kendevco/discordant/internal/presentation/handler/messages"
	signalingHandler "github.com/kendevco/discordant/internal/presentation/handler/signaling"
)

type Application struct {
	config           configs.Config
	signalingHandler *signalingHandler.Handler
	healthHandler    *healthHandler.Handler
	messagesHandler  *messagesHandler.Handler
	logger           *zap.SugaredLogger
	ratelimiter      ratelimiter.Limiter
}

func NewApplication(
	config configs.Config,
	signalingHandler *signalingHandler.Handler,
	healthHandler *healthHandler.Handler,
	messagesHandler *messagesHandler.Handler,
	logger *zap.SugaredLogger,
	ratelimiter ratelimiter.Limiter,
) *Application {
	return &Application{
		config:           config,
		signalingHandler: signalingHandler,
		healthHandler:    healthHandler,
		messagesHandler:  messagesHandler,
		logger:           logger,
		ratelimiter:      ratelimiter,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// The signaling socket is long-lived; keep it outside the request
	// timeout and the rate limiter.
	r.Get("/signaling", app.signalingHandler.ConnectHandler)

	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/debug/vars", expvar.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(2 * time.Minute))
		r.Use(app.loggerMiddleware)
		r.Use(app.rateLimiterMiddleware)
		r.Use(app.enableCors)

		r.Route("/api", func(r chi.Router) {
			r.Route("/channels/{channelId}", func(r chi.Router) {
				r.Post("/system-messages", app.messagesHandler.CreateSystemMessageHandler)
			})

			r.Get("/health", app.healthHandler.GetHealth)
			r.Get("/healthz", app.healthHandler.GetHealth)
			r.Get("/ready", app.healthHandler.GetHealth)
			r.Get("/live", app.healthHandler.GetHealth)
		})
	})

	return r
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		healthHandler.SetUnhealthy()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", srv.Addr)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", srv.Addr)

	return nil
}
