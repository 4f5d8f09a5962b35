package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/config"
)

// trainerService is the health service name reported by the trainer
const trainerService = "bomberman.Trainer"

// healthServer exposes gRPC health checks for a running trainer
type healthServer struct {
	grpcServer *grpc.Server
	health     *health.Server
	lis        net.Listener
	delay      time.Duration
	logger     zerolog.Logger
}

func startHealthServer(cfg config.HealthServerConfig, logger zerolog.Logger) (*healthServer, error) {
	logger = logger.With().Str("component", "HealthServer").Logger()

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			loggingInterceptor(logger),
			recoveryInterceptor(logger),
		),
	)

	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(trainerService, grpc_health_v1.HealthCheckResponse_SERVING)

	if cfg.EnableReflection {
		reflection.Register(grpcServer)
		logger.Info().Msg("gRPC reflection enabled")
	}

	s := &healthServer{
		grpcServer: grpcServer,
		health:     hs,
		lis:        lis,
		delay:      time.Duration(cfg.GracefulShutdownDelay) * time.Second,
		logger:     logger,
	}

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error().Err(err).Msg("Health server stopped")
		}
	}()
	logger.Info().Str("address", lis.Addr().String()).Msg("gRPC health server listening")
	return s, nil
}

func (s *healthServer) Addr() net.Addr { return s.lis.Addr() }

// Stop reports NOT_SERVING, waits the configured delay, then stops gracefully
func (s *healthServer) Stop() {
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	s.health.SetServingStatus(trainerService, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.logger.Info().Msg("Gracefully stopping gRPC server")
	s.grpcServer.GracefulStop()
}

// loggingInterceptor logs all unary RPC calls
func loggingInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := codes.OK
		if err != nil {
			if st, ok := status.FromError(err); ok {
				code = st.Code()
			}
		}
		logger.Debug().
			Str("method", info.FullMethod).
			Str("code", code.String()).
			Dur("duration", time.Since(start)).
			Err(err).
			Msg("gRPC call")
		return resp, err
	}
}

// recoveryInterceptor catches panics and returns proper gRPC errors
func recoveryInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().
					Str("method", info.FullMethod).
					Interface("panic", r).
					Msg("Recovered from panic in gRPC handler")
				err = status.Errorf(codes.Internal, "internal server error")
			}
		}()
		return handler(ctx, req)
	}
}
