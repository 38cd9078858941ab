// Package server implements the JSON-RPC dispatcher: it routes protocol
// methods to the mode registry, task orchestrator, and session manager, and
// owns input validation and error-code mapping.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/roomodes/roomodes/internal/modes"
	"github.com/roomodes/roomodes/internal/orchestrator"
	"github.com/roomodes/roomodes/internal/rpc"
	"github.com/roomodes/roomodes/internal/session"
)

// ProtocolVersion is the MCP protocol revision this server speaks.
const ProtocolVersion = "2024-11-05"

// Server routes JSON-RPC messages between the framed transport and the
// mode/task/session services. One Server handles one client connection
// (stdin/stdout); requests are processed in receive order.
type Server struct {
	name    string
	version string

	registry *modes.Registry
	orch     *orchestrator.Orchestrator
	sessions *session.Manager
	log      zerolog.Logger

	writer      *rpc.Writer
	initialized bool

	requests      map[string]requestHandler
	notifications map[string]notificationHandler

	// cleanup lists session ids to destroy after the in-flight response
	// has been written (grace policy for complete_task).
	cleanup []string
}

type requestHandler func(params json.RawMessage) (any, *rpc.Error)

type notificationHandler func(params json.RawMessage)

// New creates a dispatcher over the given services.
func New(name, version string, registry *modes.Registry, orch *orchestrator.Orchestrator, sessions *session.Manager, log zerolog.Logger) *Server {
	s := &Server{
		name:     name,
		version:  version,
		registry: registry,
		orch:     orch,
		sessions: sessions,
		log:      log.With().Str("component", "server").Logger(),
	}

	s.requests = map[string]requestHandler{
		"initialize":     s.handleInitialize,
		"resources/list": s.handleListResources,
		"resources/read": s.handleReadResource,
		"tools/list":     s.handleListTools,
		"tools/call":     s.handleCallTool,
	}
	s.notifications = map[string]notificationHandler{
		"notifications/initialized": s.handleInitialized,
		"notifications/cancelled":   s.handleCancelled,
		"cancelled":                 s.handleCancelled,
	}

	return s
}

// Run reads newline-delimited messages from r and writes responses to w
// until EOF or context cancellation. Handler failures never terminate the
// loop; they surface as error responses.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	reader := rpc.NewLineReader(r, rpc.DefaultMaxLineBytes)
	s.writer = rpc.NewWriter(w)

	s.log.Info().Msg("server started, waiting for messages")

	for {
		if ctx.Err() != nil {
			s.log.Info().Msg("context cancelled, shutting down")
			return nil
		}

		line, err := reader.ReadLine()
		switch {
		case errors.Is(err, io.EOF):
			s.log.Info().Msg("EOF received, shutting down")
			return nil
		case errors.Is(err, rpc.ErrLineTooLong):
			s.writeError(nil, rpc.NewError(rpc.CodeParseError, "message exceeds maximum line length"))
			continue
		case err != nil:
			return fmt.Errorf("reading input: %w", err)
		}

		s.handleLine(line)
		s.flushCleanup()
	}
}

// handleLine decodes and dispatches one inbound message.
func (s *Server) handleLine(line []byte) {
	req, decodeErr := rpc.DecodeRequest(line)
	if decodeErr != nil {
		s.log.Warn().Str("error", decodeErr.Message).Msg("rejecting malformed message")
		s.writeError(nil, decodeErr)
		return
	}

	if req.IsNotification() {
		s.dispatchNotification(req)
		return
	}
	s.dispatchRequest(req)
}

func (s *Server) dispatchNotification(req *rpc.Request) {
	handler, ok := s.notifications[req.Method]
	if !ok {
		s.log.Debug().Str("method", req.Method).Msg("ignoring unknown notification")
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("method", req.Method).Any("panic", r).Msg("panic in notification handler")
		}
	}()
	handler(req.Params)
}

func (s *Server) dispatchRequest(req *rpc.Request) {
	handler, ok := s.requests[req.Method]
	if !ok {
		s.log.Warn().Str("method", req.Method).Msg("unknown method")
		s.writeError(req.ID, rpc.NewError(rpc.CodeMethodNotFound, "Method not found: %s", req.Method))
		return
	}

	result, rpcErr := s.invoke(req.Method, handler, req.Params)
	if rpcErr != nil {
		s.log.Warn().
			Str("method", req.Method).
			Int("code", rpcErr.Code).
			Str("error", rpcErr.Message).
			Msg("request failed")
		s.writeError(req.ID, rpcErr)
		return
	}

	if err := s.writer.WriteResponse(req.ID, result); err != nil {
		s.log.Error().Err(err).Msg("writing response")
	}
}

// invoke runs a handler, converting panics into internal errors so a
// defective handler can never take the server down. The panic detail is
// logged but redacted from the wire.
func (s *Server) invoke(method string, handler requestHandler, params json.RawMessage) (result any, rpcErr *rpc.Error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("method", method).Any("panic", r).Msg("panic in request handler")
			result = nil
			rpcErr = rpc.NewError(rpc.CodeInternalError, "Internal server error")
		}
	}()
	return handler(params)
}

func (s *Server) writeError(id json.RawMessage, rpcErr *rpc.Error) {
	if err := s.writer.WriteError(id, rpcErr); err != nil {
		s.log.Error().Err(err).Msg("writing error response")
	}
}

// deferCleanup schedules a session for destruction after the current
// response has been written, so the caller still observes the result.
func (s *Server) deferCleanup(sessionID string) {
	s.cleanup = append(s.cleanup, sessionID)
}

func (s *Server) flushCleanup() {
	for _, id := range s.cleanup {
		s.sessions.Destroy(id)
	}
	s.cleanup = s.cleanup[:0]
}

// --- Protocol handlers ---

type initializeParams struct {
	ProtocolVersion string `json:"protocolVersion"`
	ClientInfo      struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"clientInfo"`
}

func (s *Server) handleInitialize(params json.RawMessage) (any, *rpc.Error) {
	var p initializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, rpc.NewError(rpc.CodeInvalidParams, "malformed initialize params").WithData(err.Error())
		}
	}

	clientName := p.ClientInfo.Name
	if clientName == "" {
		clientName = "unknown"
	}
	s.log.Info().
		Str("client", clientName).
		Str("protocol", p.ProtocolVersion).
		Msg("initialize request")

	s.initialized = true
	return map[string]any{
		"protocolVersion": ProtocolVersion,
		"serverInfo": map[string]any{
			"name":    s.name,
			"version": s.version,
		},
		"capabilities": map[string]any{
			"resources": map[string]any{"listChanged": false},
			"tools":     map[string]any{"listChanged": false},
		},
	}, nil
}

func (s *Server) handleInitialized(json.RawMessage) {
	s.log.Info().Msg("client initialization complete")
}

func (s *Server) handleCancelled(params json.RawMessage) {
	var p struct {
		RequestID any    `json:"requestId"`
		Reason    string `json:"reason"`
	}
	_ = json.Unmarshal(params, &p)
	// JSON-RPC has no cancellation primitive here; requests are cheap and
	// non-cancellable, so this is informational only.
	s.log.Info().Any("request_id", p.RequestID).Str("reason", p.Reason).Msg("request cancelled by client")
}
