package api

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/podium-events/podium/internal/config"
	"github.com/podium-events/podium/internal/migrations"
	"github.com/podium-events/podium/internal/services"
)

// Server is the HTTP front of the application.
type Server struct {
	srv      *fasthttp.Server
	addr     string
	conf     *config.Config
	services *services.Services
	limiter  *RateLimiter
}

// New creates a server, running pending migrations first.
func New(conf *config.Config, svc *services.Services) *Server {
	m, err := migrations.NewMigrator()
	if err != nil {
		panic("unable to create migrator")
	}

	if err := m.Up(0); err != nil {
		panic("unable to run migrations")
	}

	s := &Server{
		srv:      &fasthttp.Server{},
		addr:     conf.HTTP_ADDR,
		conf:     conf,
		services: svc,
		limiter:  NewRateLimiter(conf, 10, time.Minute),
	}

	s.srv.Handler = s.initRoutes()

	return s
}

// Start the rest server
func (s *Server) Start() {
	slog.Info("Starting REST server...", slog.String("addr", s.addr))
	go func() {
		if err := s.srv.ListenAndServe(s.addr); err != nil {
			slog.Error("Server shutdown", slog.Any("error", err))
		}
	}()
	slog.Info("REST server started!")

	// Listen for OS interrupts
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	// Block till we receive an interrupt
	<-c
	slog.Info("Received interrupt...")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	s.shutdown(ctx)
}

// Shutdown shuts down the rest server
func (s *Server) shutdown(_ context.Context) {
	slog.Info("Gracefully shutting down REST server...")
	if err := s.srv.Shutdown(); err != nil {
		slog.Error("Failed to shutdown the server", slog.Any("error", err))
	}
	if err := s.limiter.Close(); err != nil {
		slog.Error("Failed to close rate limiter", slog.Any("error", err))
	}
	slog.Info("REST server shutdown!")
}
