// Package grpc exposes the standard gRPC health service so orchestrators can
// probe the API process.
package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/tentech-me/tentech-api/internal/logging"
)

// HTTPServiceName is the health entry that tracks the REST server. The empty
// name reports the process as a whole.
const HTTPServiceName = "tentech.http"

type HealthServer struct {
	address string
	logger  logging.Logger
	health  *health.Server

	// OnListen, when set, is called once the listener is bound.
	OnListen func(addr net.Addr)
}

// NewHealthServer starts out NOT_SERVING until SetServing(true) is called.
func NewHealthServer(address string, l logging.Logger) *HealthServer {
	h := health.NewServer()
	h.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	h.SetServingStatus(HTTPServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthServer{
		address: address,
		logger:  l.With("module", "grpc_server"),
		health:  h,
	}
}

// SetServing flips both health entries.
func (s *HealthServer) SetServing(ok bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(HTTPServiceName, st)
}

func (s *HealthServer) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)
	reflection.Register(srv)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		// Shutdown reports NOT_SERVING to watchers before connections drain.
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())
	if s.OnListen != nil {
		s.OnListen(listen.Addr())
	}

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
