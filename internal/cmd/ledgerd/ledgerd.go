// Package ledgerd parses ledger command flags and launches the runtime.
package ledgerd

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/communis/ledger/internal/app"
	"github.com/communis/ledger/internal/platform/config"
	"github.com/communis/ledger/internal/platform/otel"
)

// Config holds ledger command configuration.
type Config struct {
	HTTPPort        int           `env:"COMMUNIS_LEDGER_HTTP_PORT" envDefault:"8080"`
	HealthPort      int           `env:"COMMUNIS_LEDGER_HEALTH_PORT" envDefault:"8081"`
	LedgerDBPath    string        `env:"COMMUNIS_LEDGER_DB_PATH" envDefault:"data/ledger.db"`
	CommunityDBPath string        `env:"COMMUNIS_LEDGER_COMMUNITY_DB_PATH" envDefault:"data/community.db"`
	PollInterval    time.Duration `env:"COMMUNIS_LEDGER_POLL_INTERVAL" envDefault:"30s"`
	TriggerBatch    int           `env:"COMMUNIS_LEDGER_TRIGGER_BATCH" envDefault:"100"`
}

// ParseConfig parses environment and flags into a Config. Flags override
// environment values.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.HTTPPort, "http-port", cfg.HTTPPort, "The ledger JSON API port")
	fs.IntVar(&cfg.HealthPort, "health-port", cfg.HealthPort, "The ledger health gRPC server port")
	fs.StringVar(&cfg.LedgerDBPath, "db-path", cfg.LedgerDBPath, "The ledger SQLite database path")
	fs.StringVar(&cfg.CommunityDBPath, "community-db-path", cfg.CommunityDBPath, "The community registry mirror SQLite database path")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Retirement trigger poll interval")
	fs.IntVar(&cfg.TriggerBatch, "trigger-batch", cfg.TriggerBatch, "Maximum triggers executed per poll")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run sets up telemetry and starts the ledger runtime.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "ledger")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown telemetry: %v", err)
		}
	}()

	return app.Run(ctx, app.RuntimeConfig{
		HTTPPort:        cfg.HTTPPort,
		HealthPort:      cfg.HealthPort,
		LedgerDBPath:    cfg.LedgerDBPath,
		CommunityDBPath: cfg.CommunityDBPath,
		PollInterval:    cfg.PollInterval,
		TriggerBatch:    cfg.TriggerBatch,
	})
}
