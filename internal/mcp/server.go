package mcp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// DefaultUserID is used when the transport did not identify a user.
const DefaultUserID = "local"

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok && id != "" {
		return id
	}
	return DefaultUserID
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("GymChat", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("GymChat training log. Log strength-training sets from shorthand such as '深蹲 100kg 8', "+
			"ask for period summaries, and undo the last entry. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolInterpret, Handler: h.interpret},
		server.ServerTool{Tool: toolGetSummary, Handler: h.getSummary},
		server.ServerTool{Tool: toolGetRecords, Handler: h.getRecords},
		server.ServerTool{Tool: toolUndoLast, Handler: h.undoLast},
	)

	s.AddResources(
		server.ServerResource{Resource: resToday, Handler: h.today},
	)

	return s
}

// HTTPHandler serves s over streamable HTTP. userID maps each request to the
// user the tools act for.
func HTTPHandler(s *server.MCPServer, userID func(*http.Request) string) http.Handler {
	return server.NewStreamableHTTPServer(s,
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return WithUserID(ctx, userID(r))
		}),
	)
}

// ServeStdio serves s on stdin/stdout, acting for userID.
func ServeStdio(s *server.MCPServer, userID string) error {
	return server.ServeStdio(s,
		server.WithStdioContextFunc(func(ctx context.Context) context.Context {
			return WithUserID(ctx, userID)
		}),
	)
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resToday = mcp.NewResource(
	"gymchat://today",
	"Today's Training",
	mcp.WithResourceDescription("Today's summary per exercise and the sets logged so far, newest first"),
	mcp.WithMIMEType("application/json"),
)
