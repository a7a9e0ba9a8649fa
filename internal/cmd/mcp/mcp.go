// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/arquebus/battlegrid/internal/platform/config"
	"github.com/arquebus/battlegrid/internal/platform/otel"
	mcpservice "github.com/arquebus/battlegrid/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	HTTPAddr    string `env:"BATTLEGRID_MCP_HTTP_ADDR" envDefault:"localhost:8081"`
	Transport   string `env:"BATTLEGRID_MCP_TRANSPORT" envDefault:"stdio"`
	StoragePath string `env:"BATTLEGRID_STORAGE_PATH"  envDefault:"battlegrid.db"`
	ScenarioDir string `env:"BATTLEGRID_SCENARIO_DIR"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.StringVar(&cfg.StoragePath, "storage", cfg.StoragePath, "Encounter database path (empty disables persistence)")
	fs.StringVar(&cfg.ScenarioDir, "scenarios", cfg.ScenarioDir, "Directory of Lua scenario files")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP grid server.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "mcp")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	return mcpservice.Run(ctx, mcpservice.Config{
		Transport:   mcpservice.TransportKind(cfg.Transport),
		HTTPAddr:    cfg.HTTPAddr,
		StoragePath: cfg.StoragePath,
		ScenarioDir: cfg.ScenarioDir,
	})
}
