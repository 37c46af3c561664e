package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/lpm"
	"github.com/aretw0/lpm/internal/emitter"
	"github.com/aretw0/lpm/internal/logging"
	"github.com/aretw0/lpm/pkg/domain"
	"github.com/aretw0/lpm/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ArtifactsURI is the resource listing every stored artifact name.
const ArtifactsURI = "lpm://artifacts"

// Toolkit is the subset of *lpm.Toolkit the server exposes.
type Toolkit interface {
	DeclarePath(ctx context.Context, bits, name, cacheID string) (*emitter.PathResult, error)
	DeclareBetween(ctx context.Context, lowerBits, upperBits, lowerName, upperName string) (*emitter.BetweenResult, error)
	PathData(bits string) (*lpm.PathData, error)
	Store() ports.ArtifactStore
}

// DeclarePathArgs are the arguments of the declare_path tool.
type DeclarePathArgs struct {
	Bits    string `json:"bits"`
	Name    string `json:"name"`
	CacheID string `json:"cache_id,omitempty"`
}

// PathResponse is the structured result of declare_path.
type PathResponse struct {
	Safe     string `json:"safe" jsonschema_description:"Sanitized name used in macro and file names"`
	TeXFile  string `json:"tex_file" jsonschema_description:"Artifact name of the macro file"`
	JSONFile string `json:"json_file" jsonschema_description:"Artifact name of the manifest"`
	Warning  string `json:"warning,omitempty" jsonschema_description:"Collision warning, if any"`
	Macros   string `json:"macros" jsonschema_description:"TeX definitions pointing at the artifacts"`
}

// BetweenArgs are the arguments of the compose_between tool.
type BetweenArgs struct {
	L     string `json:"L"`
	U     string `json:"U"`
	LName string `json:"lname,omitempty"`
	UName string `json:"uname,omitempty"`
}

// BetweenResponse is the structured result of compose_between.
type BetweenResponse struct {
	TeXFile string         `json:"tex_file" jsonschema_description:"Artifact name of the region macro file"`
	Polygon domain.Polygon `json:"polygon" jsonschema_description:"Closed boundary as [x, y] pairs"`
	Macros  string         `json:"macros" jsonschema_description:"TeX definition pointing at the region file"`
}

// PathDataArgs are the arguments of the path_data tool.
type PathDataArgs struct {
	Bits string `json:"bits"`
}

// Server exposes a Toolkit as an MCP server.
type Server struct {
	toolkit   Toolkit
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger. Stdio transports must log to stderr.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(tk Toolkit, opts ...Option) *Server {
	s := &Server{
		toolkit:   tk,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("lpm-mcp", strings.TrimSpace(lpm.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	declareTool := mcp.NewTool("declare_path",
		mcp.WithDescription("Declare a lattice path from a bit-string ('0' = east, '1' = north) and write its TeX macros and manifest."),
		mcp.WithString("bits", mcp.Required(), mcp.Description("Step encoding, e.g. 0101")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Path name used in macro names")),
		mcp.WithString("cache_id", mcp.Description("Optional namespace mixed into the cache key")),
		mcp.WithOutputSchema[PathResponse](),
	)
	s.mcpServer.AddTool(declareTool, mcp.NewStructuredToolHandler(s.handleDeclarePath))

	betweenTool := mcp.NewTool("compose_between",
		mcp.WithDescription("Compose the closed polygon between a lower and an upper path with the same endpoint and write its TeX macros."),
		mcp.WithString("L", mcp.Required(), mcp.Description("Lower path bit-string")),
		mcp.WithString("U", mcp.Required(), mcp.Description("Upper path bit-string")),
		mcp.WithString("lname", mcp.Description("Lower path name (default L)")),
		mcp.WithString("uname", mcp.Description("Upper path name (default U)")),
		mcp.WithOutputSchema[BetweenResponse](),
	)
	s.mcpServer.AddTool(betweenTool, mcp.NewStructuredToolHandler(s.handleBetween))

	dataTool := mcp.NewTool("path_data",
		mcp.WithDescription("Return the coordinates and north-step positions of a path without writing anything."),
		mcp.WithString("bits", mcp.Required(), mcp.Description("Step encoding, e.g. 0101")),
		mcp.WithOutputSchema[lpm.PathData](),
	)
	s.mcpServer.AddTool(dataTool, mcp.NewStructuredToolHandler(s.handlePathData))
}

func (s *Server) handleDeclarePath(ctx context.Context, _ mcp.CallToolRequest, args DeclarePathArgs) (PathResponse, error) {
	res, err := s.toolkit.DeclarePath(ctx, args.Bits, args.Name, args.CacheID)
	if err != nil {
		s.logger.Warn("MCP declare_path failed", "err", err)
		return PathResponse{}, err
	}
	return PathResponse{
		Safe:     res.Safe,
		TeXFile:  res.TeXFile,
		JSONFile: res.JSONFile,
		Warning:  res.Warning,
		Macros:   res.Macros(),
	}, nil
}

func (s *Server) handleBetween(ctx context.Context, _ mcp.CallToolRequest, args BetweenArgs) (BetweenResponse, error) {
	if args.LName == "" {
		args.LName = "L"
	}
	if args.UName == "" {
		args.UName = "U"
	}
	res, err := s.toolkit.DeclareBetween(ctx, args.L, args.U, args.LName, args.UName)
	if err != nil {
		s.logger.Warn("MCP compose_between failed", "err", err)
		return BetweenResponse{}, err
	}
	return BetweenResponse{TeXFile: res.TeXFile, Polygon: res.Polygon, Macros: res.Macros()}, nil
}

func (s *Server) handlePathData(_ context.Context, _ mcp.CallToolRequest, args PathDataArgs) (lpm.PathData, error) {
	data, err := s.toolkit.PathData(args.Bits)
	if err != nil {
		return lpm.PathData{}, err
	}
	return *data, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ArtifactsURI, "Stored Artifacts",
		mcp.WithMIMEType("application/json"),
	), s.readArtifacts)
}

func (s *Server) readArtifacts(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	names, err := s.toolkit.Store().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	jsonBytes, err := json.Marshal(names)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ArtifactsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
