// Package grpc serves the standard health and reflection services next to the REST API.
package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"marketplace-admin-backend/internal/api/grpc/interceptor"
	"marketplace-admin-backend/internal/logger"
	"marketplace-admin-backend/internal/repository"
)

// ServiceName is reported alongside the overall ("") health status.
const ServiceName = "marketplace.admin.v1.AdminService"

type Server struct {
	grpc   *grpc.Server
	health *health.Server
	pinger repository.Pinger
}

func NewServer(pinger repository.Pinger) *Server {
	logging := interceptor.NewLoggingInterceptor(ActorFromContext)
	s := grpc.NewServer(grpc.UnaryInterceptor(logging.Unary()))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)

	srv := &Server{grpc: s, health: hs, pinger: pinger}
	srv.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return srv
}

func (s *Server) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// Probe pings storage once and publishes the result as the serving status.
func (s *Server) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	st := healthpb.HealthCheckResponse_SERVING
	if err := s.pinger.Ping(ctx); err != nil {
		logger.Warn("Storage probe failed", "error", err)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.setStatus(st)
	return st
}

// WatchStorage probes every interval until ctx is done.
func (s *Server) WatchStorage(ctx context.Context, interval time.Duration) {
	s.Probe(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Probe(ctx)
		}
	}
}

func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Stop marks the server as not serving and drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
