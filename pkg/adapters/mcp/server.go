package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/rewind"
	"github.com/aretw0/rewind/internal/logging"
	"github.com/aretw0/rewind/pkg/domain"
	"github.com/aretw0/rewind/pkg/ports"
)

// SessionsURI is the resource listing every session.
const SessionsURI = "rewind://sessions"

// SessionArgs identifies a session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// DispatchArgs are the arguments of the dispatch tool.
// Payload is a JSON object encoded as a string.
type DispatchArgs struct {
	SessionID string `json:"session_id"`
	Type      string `json:"type"`
	Payload   string `json:"payload,omitempty"`
}

// ViewResponse wraps a view so every tool returns the same structure.
type ViewResponse struct {
	View domain.View `json:"view" jsonschema_description:"The session's active document and its undo/redo peek"`
}

// SessionsResponse lists session IDs.
type SessionsResponse struct {
	Sessions []string `json:"sessions" jsonschema_description:"IDs of all stored sessions"`
}

// Server exposes a HistoryService as an MCP Server.
type Server struct {
	service   ports.HistoryService
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(svc ports.HistoryService, opts ...Option) *Server {
	s := &Server{
		service:   svc,
		mcpServer: server.NewMCPServer("rewind-mcp", strings.TrimSpace(rewind.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE transport on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
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
	sessionArg := mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID"))

	s.mcpServer.AddTool(mcp.NewTool("dispatch",
		mcp.WithDescription("Apply an action to a session, creating the session if needed. Types 'undo' and 'redo' move through history."),
		sessionArg,
		mcp.WithString("type", mcp.Required(), mcp.Description("Action type, e.g. add, subtract, set, unset, note, clear, undo, redo")),
		mcp.WithString("payload", mcp.Description(`JSON object with the action's arguments, e.g. {"amount": 2}`)),
		mcp.WithOutputSchema[ViewResponse](),
	), mcp.NewStructuredToolHandler(s.handleDispatch))

	s.mcpServer.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Step a session back to its previous document. No-op at the oldest document."),
		sessionArg,
		mcp.WithOutputSchema[ViewResponse](),
	), mcp.NewStructuredToolHandler(s.control(domain.ActionUndo)))

	s.mcpServer.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Step a session forward to the document it was undone from. No-op at the newest document."),
		sessionArg,
		mcp.WithOutputSchema[ViewResponse](),
	), mcp.NewStructuredToolHandler(s.control(domain.ActionRedo)))

	s.mcpServer.AddTool(mcp.NewTool("view",
		mcp.WithDescription("Show a session's active document and what undo and redo would return."),
		sessionArg,
		mcp.WithOutputSchema[ViewResponse](),
	), mcp.NewStructuredToolHandler(s.handleView))

	s.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List all stored sessions."),
		mcp.WithOutputSchema[SessionsResponse](),
	), mcp.NewStructuredToolHandler(s.handleList))
}

// Handler methods for structured tools

func (s *Server) handleDispatch(ctx context.Context, request mcp.CallToolRequest, args DispatchArgs) (ViewResponse, error) {
	if args.SessionID == "" {
		return ViewResponse{}, domain.ErrEmptySessionID
	}

	action := domain.Action{Type: args.Type}
	if args.Payload != "" {
		if err := json.Unmarshal([]byte(args.Payload), &action.Payload); err != nil {
			return ViewResponse{}, fmt.Errorf("payload must be a JSON object: %w", err)
		}
	}

	if _, err := s.service.Open(ctx, args.SessionID, nil); err != nil {
		return ViewResponse{}, fmt.Errorf("open session: %w", err)
	}

	view, err := s.service.Dispatch(ctx, args.SessionID, action)
	if err != nil {
		s.logger.Warn("MCP dispatch failed", "session_id", args.SessionID, "type", args.Type, "err", err)
		return ViewResponse{}, fmt.Errorf("dispatch failed: %w", err)
	}
	return ViewResponse{View: view}, nil
}

func (s *Server) control(actionType string) func(context.Context, mcp.CallToolRequest, SessionArgs) (ViewResponse, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (ViewResponse, error) {
		view, err := s.service.Dispatch(ctx, args.SessionID, domain.NewAction(actionType, nil))
		if err != nil {
			return ViewResponse{}, fmt.Errorf("%s failed: %w", actionType, err)
		}
		return ViewResponse{View: view}, nil
	}
}

func (s *Server) handleView(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (ViewResponse, error) {
	view, err := s.service.View(ctx, args.SessionID)
	if err != nil {
		return ViewResponse{}, fmt.Errorf("view failed: %w", err)
	}
	return ViewResponse{View: view}, nil
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest, _ map[string]any) (SessionsResponse, error) {
	ids, err := s.service.List(ctx)
	if err != nil {
		return SessionsResponse{}, fmt.Errorf("list failed: %w", err)
	}
	slices.Sort(ids)
	return SessionsResponse{Sessions: ids}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SessionsURI, "Stored Sessions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		resp, err := s.handleList(ctx, mcp.CallToolRequest{}, nil)
		if err != nil {
			return nil, err
		}
		jsonBytes, _ := json.Marshal(resp)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      SessionsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
