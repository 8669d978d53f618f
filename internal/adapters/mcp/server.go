// Package mcp exposes a skill as a Model Context Protocol server, so AI
// agents can drive simulated conversations against it as tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/internal/logging"
	"github.com/aretw0/tendril/pkg/model"
	"github.com/aretw0/tendril/pkg/response"
	"github.com/aretw0/tendril/pkg/simulate"
)

// TurnResponse is the structured result of one simulated conversation turn.
type TurnResponse struct {
	SessionID         string         `json:"session_id" jsonschema_description:"Session id to pass back for the next turn"`
	Speech            string         `json:"speech" jsonschema_description:"Speech text produced by the skill"`
	EndSession        bool           `json:"end_session" jsonschema_description:"Whether the skill closed the session"`
	SessionAttributes map[string]any `json:"session_attributes,omitempty" jsonschema_description:"Session attributes after this turn"`
}

// Invoker runs one request envelope through a skill. *tendril.Skill
// satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, envelope *model.RequestEnvelope) (*model.ResponseEnvelope, error)
}

// Server wraps a skill and exposes it as an MCP Server. It keeps simulated
// sessions alive between tool calls so agents can hold multi-turn
// conversations.
type Server struct {
	invoker   Invoker
	logger    *slog.Logger
	mcpServer *server.MCPServer

	mu       sync.Mutex
	sessions map[string]*simulate.Session
}

// Option configures the MCP server.
type Option func(*Server)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance around an invoker.
func NewServer(invoker Invoker, opts ...Option) *Server {
	s := &Server{
		invoker:   invoker,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("tendril-mcp", strings.TrimSpace(tendril.Version)),
		sessions:  make(map[string]*simulate.Session),
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

// ServeSSE starts the server on the given port using SSE.
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
		s.logger.Info("mcp server listening", "address", addr)
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: invoke_skill
	s.mcpServer.AddTool(mcp.NewTool("invoke_skill",
		mcp.WithDescription("Run a raw request envelope through the skill and return the raw response envelope."),
		mcp.WithString("envelope", mcp.Required(), mcp.Description("JSON request envelope")),
	), s.handleInvokeSkill)

	// TOOL: simulate_launch
	launchTool := mcp.NewTool("simulate_launch",
		mcp.WithDescription("Open a new simulated session and send its launch request to the skill."),
		mcp.WithString("locale", mcp.Description("Locale for the new session (default en-US)")),
		mcp.WithOutputSchema[TurnResponse](),
	)
	s.mcpServer.AddTool(launchTool, mcp.NewStructuredToolHandler(s.handleSimulateLaunch))

	// TOOL: simulate_intent
	intentTool := mcp.NewTool("simulate_intent",
		mcp.WithDescription("Send an intent request to the skill. Pass session_id to continue a conversation; omit it to start a new session."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Intent name")),
		mcp.WithString("slots", mcp.Description("JSON object of slot name to string value (optional)")),
		mcp.WithString("session_id", mcp.Description("Session to continue (optional)")),
		mcp.WithString("locale", mcp.Description("Locale for a new session (optional)")),
		mcp.WithOutputSchema[TurnResponse](),
	)
	s.mcpServer.AddTool(intentTool, mcp.NewStructuredToolHandler(s.handleSimulateIntent))

	// TOOL: end_session
	endTool := mcp.NewTool("end_session",
		mcp.WithDescription("Send a session-ended request and discard the simulated session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to end")),
		mcp.WithString("reason", mcp.Description("Termination reason (default USER_INITIATED)")),
		mcp.WithOutputSchema[TurnResponse](),
	)
	s.mcpServer.AddTool(endTool, mcp.NewStructuredToolHandler(s.handleEndSession))
}

func (s *Server) handleInvokeSkill(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("envelope")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var envelope model.RequestEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("envelope is not valid JSON: %v", err)), nil
	}

	resp, err := s.invoker.Invoke(ctx, &envelope)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invoke failed: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(resp)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// Handler methods for structured tools

type launchArgs struct {
	Locale string `mapstructure:"locale"`
}

func (s *Server) handleSimulateLaunch(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (TurnResponse, error) {
	var in launchArgs
	if err := mapstructure.Decode(args, &in); err != nil {
		return TurnResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}

	session := s.newSession(in.Locale)
	return s.turn(ctx, session, session.Launch())
}

type intentArgs struct {
	SessionID string `mapstructure:"session_id"`
	Name      string `mapstructure:"name"`
	Slots     string `mapstructure:"slots"`
	Locale    string `mapstructure:"locale"`
}

func (s *Server) handleSimulateIntent(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (TurnResponse, error) {
	var in intentArgs
	if err := mapstructure.Decode(args, &in); err != nil {
		return TurnResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}
	if in.Name == "" {
		return TurnResponse{}, fmt.Errorf("intent name is required")
	}

	var slots map[string]string
	if in.Slots != "" {
		if err := json.Unmarshal([]byte(in.Slots), &slots); err != nil {
			return TurnResponse{}, fmt.Errorf("slots must be a JSON object of strings: %w", err)
		}
	}

	session, err := s.resumeOrNew(in.SessionID, in.Locale)
	if err != nil {
		return TurnResponse{}, err
	}
	return s.turn(ctx, session, session.Intent(in.Name, slots))
}

type endArgs struct {
	SessionID string `mapstructure:"session_id"`
	Reason    string `mapstructure:"reason"`
}

func (s *Server) handleEndSession(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (TurnResponse, error) {
	var in endArgs
	if err := mapstructure.Decode(args, &in); err != nil {
		return TurnResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}

	session, err := s.resume(in.SessionID)
	if err != nil {
		return TurnResponse{}, err
	}
	reason := in.Reason
	if reason == "" {
		reason = "USER_INITIATED"
	}

	resp, err := s.invoker.Invoke(ctx, session.SessionEnded(reason))
	if err != nil {
		return TurnResponse{}, fmt.Errorf("invoke failed: %w", err)
	}
	s.drop(session.SessionID())

	return TurnResponse{
		SessionID:         session.SessionID(),
		Speech:            response.TrimSpeech(resp.Response.SpeechText()),
		EndSession:        true,
		SessionAttributes: resp.SessionAttributes,
	}, nil
}

// turn sends one envelope through the skill and folds the result back into
// the session. The session is only kept in the registry after a successful
// turn, so failed first turns leave nothing behind.
func (s *Server) turn(ctx context.Context, session *simulate.Session, envelope *model.RequestEnvelope) (TurnResponse, error) {
	resp, err := s.invoker.Invoke(ctx, envelope)
	if err != nil {
		return TurnResponse{}, fmt.Errorf("invoke failed: %w", err)
	}

	ended := session.Record(resp)
	if ended {
		s.drop(session.SessionID())
	} else {
		s.remember(session)
	}
	s.logger.Debug("turn handled",
		"session_id", session.SessionID(),
		"request_type", envelope.RequestType(),
		"end_session", ended,
	)

	return TurnResponse{
		SessionID:         session.SessionID(),
		Speech:            response.TrimSpeech(resp.Response.SpeechText()),
		EndSession:        ended,
		SessionAttributes: resp.SessionAttributes,
	}, nil
}

func (s *Server) newSession(locale string) *simulate.Session {
	var opts []simulate.Option
	if locale != "" {
		opts = append(opts, simulate.WithLocale(locale))
	}
	return simulate.NewSession(opts...)
}

func (s *Server) remember(session *simulate.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.SessionID()] = session
}

func (s *Server) resume(id string) (*simulate.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("unknown session %q", id)
	}
	return session, nil
}

func (s *Server) resumeOrNew(id, locale string) (*simulate.Session, error) {
	if id == "" {
		return s.newSession(locale), nil
	}
	return s.resume(id)
}

func (s *Server) drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *Server) registerResources() {
	// EXPOSE: tendril://info
	s.mcpServer.AddResource(mcp.NewResource("tendril://info", "Skill Runtime Info",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, _ := json.Marshal(map[string]string{
			"app":     "tendril-mcp",
			"version": strings.TrimSpace(tendril.Version),
		})

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "tendril://info",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
