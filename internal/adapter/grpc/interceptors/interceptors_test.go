package interceptors

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestUnaryLoggingInterceptor(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	intercept := UnaryLoggingInterceptor(zap.New(core))

	info := &grpc.UnaryServerInfo{FullMethod: "/chargehub.Test/Fail"}
	_, err := intercept(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.NotFound, "missing")
	})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound to pass through, got %v", err)
	}

	entries := logs.FilterMessage("gRPC request failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one failure entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["status_code"]; got != "NotFound" {
		t.Errorf("expected status_code NotFound, got %v", got)
	}
}

func TestUnaryLoggingInterceptor_HealthProbeAtDebug(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	intercept := UnaryLoggingInterceptor(zap.New(core))

	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	resp, err := intercept(context.Background(), "req", info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	})
	if err != nil || resp != "ok" {
		t.Fatalf("unexpected result %v, %v", resp, err)
	}

	all := logs.All()
	if len(all) != 1 || all[0].Level != zap.DebugLevel {
		t.Errorf("expected a single debug entry, got %+v", all)
	}
}

func TestUnaryMetricsInterceptor_PassesThrough(t *testing.T) {
	intercept := UnaryMetricsInterceptor()

	info := &grpc.UnaryServerInfo{FullMethod: "/chargehub.Test/Ok"}
	resp, err := intercept(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return 42, nil
	})
	if err != nil || resp != 42 {
		t.Errorf("unexpected result %v, %v", resp, err)
	}
}
