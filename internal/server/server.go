// Package server exposes the webhook HTTP endpoint.
package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/diffwatch/reviewbot/internal/app"
	"github.com/diffwatch/reviewbot/internal/config"
)

// Runner handles one accepted webhook delivery.
type Runner interface {
	Run(ctx context.Context, ev app.Event) (string, error)
}

// Server is the webhook HTTP front end. Accepted deliveries are handed to a
// single-worker pool, so invocations run one at a time in delivery order while
// the webhook responds immediately.
type Server struct {
	app    *fiber.App
	log    *zap.SugaredLogger
	cfg    *config.Config
	runner Runner
	pool   *ants.Pool
}

// New builds the fiber application and its routes.
func New(cfg *config.Config, log *zap.SugaredLogger, runner Runner) (*Server, error) {
	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, err
	}

	s := &Server{
		log:    log,
		cfg:    cfg,
		runner: runner,
		pool:   pool,
	}

	f := fiber.New(fiber.Config{DisableStartupMessage: true})
	f.Use(recover.New())
	f.Use(requestid.New())
	f.Use(requestLogger(log))

	f.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	f.Post("/api/webhook", s.handleWebhook)

	s.app = f
	return s, nil
}

// Listen serves until Shutdown is called.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Addr())
}

// Shutdown stops accepting deliveries and drains the worker pool.
func (s *Server) Shutdown() error {
	err := s.app.Shutdown()
	s.pool.Release()
	return err
}

// App returns the underlying fiber application, used by handler tests.
func (s *Server) App() *fiber.App {
	return s.app
}
