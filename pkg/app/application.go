package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"paws/internal/bookings/handler"
	"paws/pkg/config"
	"paws/pkg/contracts"
	"paws/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type Application struct {
	cfg              *config.Config
	server           *http.Server
	idempotencyStore *middleware.InMemoryIdempotencyStore
	rateLimiter      *middleware.CustomerRateLimiter
	healthHandler    http.Handler
	appHttpHandler   http.Handler
	shutdownHooks    []func()
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

func (a *Application) SetApp(appHandler contracts.Handler, checks map[string]handler.ReadinessCheck) {
	a.setHealthHandler(checks)
	a.setAppHandler(appHandler)
	a.setAppServer()
}

// OnShutdown registers fn to run after the server has stopped accepting
// requests. Hooks run in registration order.
func (a *Application) OnShutdown(fn func()) {
	a.shutdownHooks = append(a.shutdownHooks, fn)
}

func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) setHealthHandler(checks map[string]handler.ReadinessCheck) {
	healthRouter := httprouter.New()
	handler.NewHealthHandler(checks, a.cfg.Log).RegisterRoutes(healthRouter)

	var healthHTTPHandler http.Handler = healthRouter
	healthHTTPHandler = middleware.RequestLogging(a.cfg.Log)(healthHTTPHandler)
	healthHTTPHandler = middleware.Recovery(a.cfg.Log)(healthHTTPHandler)
	a.healthHandler = healthHTTPHandler
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAppHandler(appHandler contracts.Handler) {
	appRouter := httprouter.New()
	appHandler.RegisterRoutes(appRouter)

	a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
	a.rateLimiter = middleware.NewCustomerRateLimiter(
		a.cfg.RateLimitRequests,
		a.cfg.RateLimitWindow,
		middleware.DefaultKeyExtractor,
		a.cfg.Log,
	)

	var appHttpHandler http.Handler = appRouter
	appHttpHandler = middleware.Idempotency(a.idempotencyStore, "Idempotency-Key")(appHttpHandler)
	appHttpHandler = middleware.RequestTimeout(a.cfg.RequestTimeout)(appHttpHandler)
	appHttpHandler = middleware.SubmissionRateLimit(a.rateLimiter, handler.SlackInteractionsPath)(appHttpHandler)
	appHttpHandler = a.guardSlackInteractions(appHttpHandler)
	appHttpHandler = middleware.ContentTypeValidation(a.cfg.Log, handler.SlackInteractionsPath)(appHttpHandler)
	appHttpHandler = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(appHttpHandler)
	appHttpHandler = middleware.RequestLogging(a.cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.Recovery(a.cfg.Log)(appHttpHandler)
	a.appHttpHandler = appHttpHandler
	a.cfg.Log.Info("Application endpoints configured with full security middleware stack")
}

// guardSlackInteractions verifies Slack signatures on the interactions path
// only. Without a signing secret the path answers 404, so approvals cannot be
// forged on deployments that never configured Slack.
func (a *Application) guardSlackInteractions(next http.Handler) http.Handler {
	var slackHandler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	if a.cfg.SlackSigningSecret != "" {
		slackHandler = middleware.SlackSignatureVerification(a.cfg.SlackSigningSecret, a.cfg.Log)(next)
		a.cfg.Log.Info("Slack signature verification enabled", "path", handler.SlackInteractionsPath)
	} else {
		a.cfg.Log.Warn("SLACK_SIGNING_SECRET not set, slack interactions disabled")
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == handler.SlackInteractionsPath {
			slackHandler.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/", a.appHttpHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Stopping background workers...")
	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()
	for _, hook := range a.shutdownHooks {
		hook()
	}
	a.cfg.Log.Info("Background workers stopped")

	a.cfg.Log.Info("Server stopped gracefully")
}
