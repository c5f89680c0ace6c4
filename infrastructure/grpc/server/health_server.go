package server

import (
	"errors"
	"log/slog"
	"net"

	sdkgrpc "github.com/mama165/sdk-go/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name probes ask the health service about.
const ServiceName = "presence"

// HealthServer exposes grpc.health.v1.Health for the presence node.
type HealthServer struct {
	log    *slog.Logger
	server *grpc.Server
	health *health.Server
}

func NewHealthServer(log *slog.Logger) *HealthServer {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(sdkgrpc.UnaryLoggingInterceptor(log)))
	h := health.NewServer()
	h.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(s, h)
	reflection.Register(s)
	return &HealthServer{log: log, server: s, health: h}
}

// Serve blocks until the server stops. A graceful stop is not an error.
func (s *HealthServer) Serve(listener net.Listener) error {
	for serviceName := range s.server.GetServiceInfo() {
		s.log.Debug("gRPC exposed services", "name", serviceName)
	}
	if err := s.server.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (s *HealthServer) SetServing() {
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
}

// Shutdown reports NOT_SERVING before draining in-flight calls.
func (s *HealthServer) Shutdown() {
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	s.health.Shutdown()
	s.server.GracefulStop()
}
