// Package app wires and runs the ledger runtime: both SQLite stores, the
// ledger service, the JSON HTTP listener, a gRPC health server, and the
// retirement trigger runner.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/communis/ledger/internal/api/httpapi"
	communitysqlite "github.com/communis/ledger/internal/community/sqlite"
	"github.com/communis/ledger/internal/ledger/service"
	ledgersqlite "github.com/communis/ledger/internal/ledger/storage/sqlite"
	"github.com/communis/ledger/internal/scheduler"
)

// RuntimeConfig controls ledger startup and loop behavior.
type RuntimeConfig struct {
	HTTPPort        int
	HealthPort      int
	LedgerDBPath    string
	CommunityDBPath string
	PollInterval    time.Duration
	TriggerBatch    int
}

const (
	defaultHTTPPort    = 8080
	defaultHealthPort  = 8081
	defaultLedgerDB    = "data/ledger.db"
	defaultCommunityDB = "data/community.db"
)

// Run starts the ledger runtime and blocks until ctx is canceled.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.HTTPPort <= 0 {
		cfg.HTTPPort = defaultHTTPPort
	}
	if cfg.HealthPort <= 0 {
		cfg.HealthPort = defaultHealthPort
	}
	if strings.TrimSpace(cfg.LedgerDBPath) == "" {
		cfg.LedgerDBPath = defaultLedgerDB
	}
	if strings.TrimSpace(cfg.CommunityDBPath) == "" {
		cfg.CommunityDBPath = defaultCommunityDB
	}

	for _, path := range []string{cfg.LedgerDBPath, cfg.CommunityDBPath} {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create storage dir: %w", err)
			}
		}
	}

	ledgerStore, err := ledgersqlite.Open(cfg.LedgerDBPath)
	if err != nil {
		return fmt.Errorf("open ledger sqlite store: %w", err)
	}
	defer func() {
		if closeErr := ledgerStore.Close(); closeErr != nil {
			log.Printf("close ledger sqlite store: %v", closeErr)
		}
	}()

	communityStore, err := communitysqlite.Open(cfg.CommunityDBPath)
	if err != nil {
		return fmt.Errorf("open community sqlite store: %w", err)
	}
	defer func() {
		if closeErr := communityStore.Close(); closeErr != nil {
			log.Printf("close community sqlite store: %v", closeErr)
		}
	}()

	svc, err := service.New(service.Config{
		Store:    ledgerStore,
		Registry: communityStore,
		Members:  communityStore,
	})
	if err != nil {
		return fmt.Errorf("wire ledger service: %w", err)
	}

	healthListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.HealthPort))
	if err != nil {
		return fmt.Errorf("listen on health port %d: %w", cfg.HealthPort, err)
	}
	defer healthListener.Close()

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("ledger.runtime", grpc_health_v1.HealthCheckResponse_SERVING)

	healthErr := make(chan error, 1)
	go func() {
		healthErr <- grpcServer.Serve(healthListener)
	}()
	defer func() {
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		<-healthErr
	}()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           httpapi.New(svc).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	httpErr := make(chan error, 1)
	go func() {
		httpErr <- httpServer.ListenAndServe()
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown http server: %v", err)
		}
		<-httpErr
	}()

	log.Printf("ledger api listening at %s, health at %v", httpServer.Addr, healthListener.Addr())

	runner := scheduler.NewRunner(ledgerStore, svc, cfg.PollInterval, cfg.TriggerBatch)
	err = runner.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
