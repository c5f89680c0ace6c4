package server

import (
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestHealthServer_Status(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	req.NoError(err)

	s := NewHealthServer(log)
	done := make(chan error, 1)
	go func() { done <- s.Serve(listener) }()

	conn, err := grpc.NewClient(listener.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	req.NoError(err)
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Given the node has not finished starting
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	req.NoError(err)
	req.Equal(healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	// When it is ready
	s.SetServing()

	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	req.NoError(err)
	req.Equal(healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	// When it shuts down, Serve returns without error
	s.Shutdown()
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(2 * time.Second):
		req.Fail("Serve should return after shutdown")
	}
}
