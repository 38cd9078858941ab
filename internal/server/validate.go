package server

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/roomodes/roomodes/internal/rpc"
	"github.com/roomodes/roomodes/internal/session"
)

// slugPattern mirrors the mode slug grammar.
var slugPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// decodeArgs parses a raw params object into a generic argument map.
func decodeArgs(raw json.RawMessage) (map[string]any, *rpc.Error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, rpc.NewError(rpc.CodeInvalidParams, "params must be an object").WithData(err.Error())
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// requireString fetches a mandatory string argument.
func requireString(args map[string]any, key string) (string, *rpc.Error) {
	raw, ok := args[key]
	if !ok {
		return "", rpc.NewError(rpc.CodeInvalidParams, "Missing required parameter: %s", key)
	}
	value, ok := raw.(string)
	if !ok {
		return "", rpc.NewError(rpc.CodeInvalidParams, "Parameter %q must be a string", key)
	}
	return value, nil
}

// optionalString fetches an optional string argument, defaulting to "".
func optionalString(args map[string]any, key string) (string, *rpc.Error) {
	raw, ok := args[key]
	if !ok {
		return "", nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", rpc.NewError(rpc.CodeInvalidParams, "Parameter %q must be a string", key)
	}
	return value, nil
}

// optionalBool fetches an optional boolean argument, defaulting to false.
func optionalBool(args map[string]any, key string) (bool, *rpc.Error) {
	raw, ok := args[key]
	if !ok {
		return false, nil
	}
	value, ok := raw.(bool)
	if !ok {
		return false, rpc.NewError(rpc.CodeInvalidParams, "Parameter %q must be a boolean", key)
	}
	return value, nil
}

// validateModeSlug checks the slug grammar without consulting the registry.
func validateModeSlug(slug string) *rpc.Error {
	if slug == "" {
		return rpc.NewError(rpc.CodeValidationError, "Mode slug must be a non-empty string")
	}
	if len(slug) > 50 {
		return rpc.NewError(rpc.CodeValidationError, "Mode slug is too long (max 50 characters)")
	}
	if !slugPattern.MatchString(slug) {
		return rpc.NewError(rpc.CodeValidationError,
			"Mode slug must contain only lowercase letters, digits, hyphens, and underscores")
	}
	return nil
}

// validateSessionID checks the opaque session id format.
func validateSessionID(id string) *rpc.Error {
	if id == "" {
		return rpc.NewError(rpc.CodeValidationError, "Session ID must be a non-empty string")
	}
	if !strings.HasPrefix(id, "ses_") || len(id) < 5 {
		return rpc.NewError(rpc.CodeValidationError, "Session ID must start with 'ses_'")
	}
	return nil
}

// resolveSession looks up a session, translating lookup failures into the
// protocol's TASK_NOT_FOUND / SESSION_EXPIRED codes.
func (s *Server) resolveSession(sessionID string) (*session.Session, *rpc.Error) {
	if rpcErr := validateSessionID(sessionID); rpcErr != nil {
		return nil, rpcErr
	}

	sess, err := s.sessions.Get(sessionID)
	switch {
	case err == nil:
		return sess, nil
	case errors.Is(err, session.ErrExpired):
		return nil, rpc.NewError(rpc.CodeSessionExpired, "Session expired: %s", sessionID)
	default:
		return nil, rpc.NewError(rpc.CodeTaskNotFound, "Session not found: %s", sessionID)
	}
}
