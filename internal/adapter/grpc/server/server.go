package server

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/chargehub/chargehub-api/internal/adapter/grpc/interceptors"
	"github.com/chargehub/chargehub-api/internal/service/health"
)

// ServiceName is the name reported to grpc.health.v1 clients alongside the
// overall ("") status.
const ServiceName = "chargehub.api"

// ReadinessChecker is satisfied by health.Service.
type ReadinessChecker interface {
	Ready(ctx context.Context) *health.ReadyResponse
}

type GRPCServer struct {
	server *grpc.Server
	health *grpchealth.Server
	ready  ReadinessChecker
	log    *zap.Logger
}

func NewGRPCServer(ready ReadinessChecker, log *zap.Logger) *GRPCServer {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptors.UnaryLoggingInterceptor(log),
			interceptors.UnaryMetricsInterceptor(),
		),
	)

	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(s, hs)

	// Enable reflection for debugging (e.g. grpcurl)
	reflection.Register(s)

	return &GRPCServer{
		server: s,
		health: hs,
		ready:  ready,
		log:    log,
	}
}

// Sync runs the readiness checks once and publishes the result.
func (s *GRPCServer) Sync(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if s.ready.Ready(ctx).Ready {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status
}

// Watch keeps the serving status in line with readiness until ctx is done.
func (s *GRPCServer) Watch(ctx context.Context, interval time.Duration) {
	last := s.Sync(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if status := s.Sync(ctx); status != last {
				s.log.Warn("gRPC serving status changed",
					zap.String("from", last.String()),
					zap.String("to", status.String()),
				)
				last = status
			}
		}
	}
}

func (s *GRPCServer) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

// Stop marks every service as not serving and drains in-flight calls.
func (s *GRPCServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
