package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/arquebus/battlegrid/internal/services/mcp/domain"
	"github.com/arquebus/battlegrid/internal/storage"
	"github.com/arquebus/battlegrid/internal/storage/sqlite"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "battlegrid"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
	// shutdownTimeout bounds HTTP server drain on context cancellation.
	shutdownTimeout = 10 * time.Second
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP runs MCP over streamable HTTP for remote clients.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	Transport   TransportKind
	HTTPAddr    string // HTTP bind address, e.g. "localhost:8081"
	StoragePath string // sqlite database path; empty disables persistence
	ScenarioDir string // directory of Lua scenario files; empty disables scenario loading
}

// Server hosts the MCP server and owns its storage handle.
type Server struct {
	mcpServer *mcp.Server
	registry  *Registry
	store     storage.EncounterStore
}

// New creates a configured MCP server with all grid tools registered.
func New(cfg Config) (*Server, error) {
	var store storage.EncounterStore
	if strings.TrimSpace(cfg.StoragePath) != "" {
		sqliteStore, err := sqlite.Open(cfg.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("open encounter storage: %w", err)
		}
		store = sqliteStore
	}

	registry := NewRegistry(store, cfg.ScenarioDir)
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registerGridTools(mcpServer, registry)

	return &Server{mcpServer: mcpServer, registry: registry, store: store}, nil
}

// registerGridTools binds every grid tool to the engine.
func registerGridTools(server *mcp.Server, engine domain.Engine) {
	mcp.AddTool(server, domain.EncounterCreateTool(), domain.EncounterCreateHandler(engine))
	mcp.AddTool(server, domain.EncounterSaveTool(), domain.EncounterSaveHandler(engine))
	mcp.AddTool(server, domain.EncounterLoadTool(), domain.EncounterLoadHandler(engine))
	mcp.AddTool(server, domain.EncounterListTool(), domain.EncounterListHandler(engine))
	mcp.AddTool(server, domain.ParticipantAddTool(), domain.ParticipantAddHandler(engine))
	mcp.AddTool(server, domain.ParticipantPlaceTool(), domain.ParticipantPlaceHandler(engine))
	mcp.AddTool(server, domain.TurnStartTool(), domain.TurnStartHandler(engine))
	mcp.AddTool(server, domain.DashTool(), domain.DashHandler(engine))
	mcp.AddTool(server, domain.MovementRemainingTool(), domain.MovementRemainingHandler(engine))
	mcp.AddTool(server, domain.MoveValidateTool(), domain.MoveValidateHandler(engine))
	mcp.AddTool(server, domain.MoveTool(), domain.MoveHandler(engine))
	mcp.AddTool(server, domain.AoECircleTool(), domain.AoECircleHandler(engine))
	mcp.AddTool(server, domain.AoEConeTool(), domain.AoEConeHandler(engine))
	mcp.AddTool(server, domain.AoELineTool(), domain.AoELineHandler(engine))
	mcp.AddTool(server, domain.LineOfSightTool(), domain.LineOfSightHandler(engine))
}

// Close releases the storage handle held by the server.
func (s *Server) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	if err := s.store.Close(); err != nil {
		return err
	}
	s.store = nil
	return nil
}

// Run is the service entrypoint for MCP and blocks until context
// cancellation. It is transport-agnostic so startup can choose stdio for
// local tools and HTTP for remote integrations.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	server, err := New(cfg)
	if err != nil {
		return err
	}

	switch cfg.Transport {
	case TransportStdio:
		return server.serveWithTransport(ctx, &mcp.StdioTransport{})
	case TransportHTTP:
		return server.serveHTTP(ctx, cfg.HTTPAddr)
	default:
		_ = server.Close()
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// serveWithTransport starts the MCP server using the provided transport.
// The server and its storage handle share a single exit path so cleanup
// behavior is consistent for both stdio and HTTP runs.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	closeErr := s.Close()
	if closeErr != nil {
		if err == nil {
			return fmt.Errorf("close encounter storage: %w", closeErr)
		}
		return fmt.Errorf("serve MCP: %v; close encounter storage: %w", err, closeErr)
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// serveHTTP serves the MCP server over streamable HTTP and blocks until
// context cancellation or a listener error.
func (s *Server) serveHTTP(ctx context.Context, addr string) error {
	defer func() { _ = s.Close() }()

	// Default to localhost-only binding so the default footprint stays
	// constrained to local development.
	if strings.TrimSpace(addr) == "" {
		addr = "localhost:8081"
	}

	mux := http.NewServeMux()
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil))
	mux.HandleFunc("/mcp/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","server":%q,"version":%q}`, serverName, serverVersion)
	})

	httpServer := &http.Server{Addr: addr, Handler: mux}
	log.Printf("starting MCP HTTP server on %s", addr)

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("shutting down MCP HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("HTTP server error: %w", err)
	}
}
