package v1

import (
	"context"
	"net"
	"net/http"

	"github.com/fieldops/task_distributor/internal/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	httpServer *http.Server
}

func NewServer(
	cfg config.HTTP,
	jwtSecret string,
	uploads *UploadsHandler,
	distributions *DistributionsHandler,
) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Authenticator(jwtSecret))

		r.Post("/uploads/validate", uploads.Validate)
		r.Post("/uploads", uploads.Upload)

		r.Get("/distributions", distributions.List)
		r.Get("/distributions/{id}", distributions.Get)
		r.Get("/distributions/{id}/report", distributions.Report)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
			Handler:      r,
		},
	}
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
