// Package serve implements the canopy runtime that exposes the
// workload API over gRPC/HTTP.
package serve

import (
	"context"
	"fmt"

	"github.com/canopyhost/canopy/internal/middleware"
	"github.com/canopyhost/canopy/internal/transport"
	"github.com/canopyhost/canopy/internal/transport/http"
)

// Config holds the runtime parameters for a Server.
type Config struct {
	Address        string
	AllowedOrigins []string
	AuthToken      string
}

// Server binds the HTTP server (gRPC + REST) and runs it via
// transport.Serve.
type Server struct {
	handler *Handler
}

// NewServer returns a Server wired to the given handler.
func NewServer(handler *Handler) *Server {
	return &Server{handler: handler}
}

// Run starts the HTTP server. It blocks until ctx is cancelled or an
// unrecoverable error occurs. Health and reflection endpoints are
// marked as public (no auth); everything else requires the configured
// bearer token when one is set.
func (s *Server) Run(ctx context.Context, cfg Config) error {
	opts := []http.ServerOption{
		http.WithAddress(cfg.Address),
		http.WithAllowedOrigins(cfg.AllowedOrigins),
		http.WithMount(s.handler.Mount),
	}

	if cfg.AuthToken != "" {
		opts = append(opts,
			http.WithAuthMiddleware(middleware.NewToken(cfg.AuthToken)),
			http.WithPublicPaths([]string{
				"/grpc.health.v1.Health/Check",
				"/grpc.health.v1.Health/Watch",
				"/grpc.reflection.v1.ServerReflection/ServerReflectionInfo",
				"/metrics",
			}),
		)
	}

	httpSrv, err := http.NewServer(opts...)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	return transport.Serve(ctx, httpSrv)
}
