// ABOUTME: MCP server setup for the gymlog training log.
// ABOUTME: Wraps the MCP server with service access and a debounced set writer.
package mcp

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/gymlog/internal/debounce"
	"github.com/harperreed/gymlog/internal/logging"
	"github.com/harperreed/gymlog/internal/service"
)

// Version is reported to clients during initialization.
var Version = "1.0.0"

const instructions = `gymlog is a strength training log. Workouts hold exercises, exercises hold
sets. Exercises can be referenced by id or by name. Weights are in the unit
the user logs in; reps are whole numbers. update_set edits are applied shortly
after the last change to the same field.`

// Server exposes a training log to MCP clients.
type Server struct {
	mcpServer *mcp.Server
	svc       *service.Services
	writer    *debounce.Writer
	logger    *log.Logger
}

// NewServer registers every tool and resource against svc. Set edits go
// through writer; a nil writer gets one with the default interval.
func NewServer(svc *service.Services, writer *debounce.Writer, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if writer == nil {
		writer = debounce.New(debounce.WithLogger(logger))
	}

	s := &Server{
		mcpServer: mcp.NewServer(
			&mcp.Implementation{Name: "gymlog", Version: Version},
			&mcp.ServerOptions{Instructions: instructions},
		),
		svc:    svc,
		writer: writer,
		logger: logger,
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Serve starts the MCP server using stdio transport. Pending set edits are
// flushed when the session ends.
func (s *Server) Serve(ctx context.Context) error {
	err := s.mcpServer.Run(ctx, &mcp.StdioTransport{})
	if flushErr := s.writer.FlushAll(); flushErr != nil {
		s.logger.Error("flush pending set edits", "err", flushErr)
	}
	return err
}
