package rpc

import (
	"bytes"
	"encoding/json"
)

// Version is the only JSON-RPC version this server speaks.
const Version = "2.0"

// Request is an inbound JSON-RPC message. ID is kept raw so that string,
// number, and null ids are echoed back byte-for-byte. A missing id marks
// the message as a notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the message carries no id. A literal null
// id is also treated as a notification, mirroring id absence.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0 || bytes.Equal(r.ID, nullID)
}

var nullID = json.RawMessage("null")

// Response is an outbound JSON-RPC message: exactly one of Result or Err
// is set. The zero ID serializes as null, which is what parse errors need.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Err     *Error          `json:"error,omitempty"`
}

// NewResponse builds a success response for the given request id.
func NewResponse(id json.RawMessage, result any) *Response {
	return &Response{JSONRPC: Version, ID: normalizeID(id), Result: result}
}

// NewErrorResponse builds an error response. Pass a nil id for parse
// failures; it serializes as null per the JSON-RPC spec.
func NewErrorResponse(id json.RawMessage, err *Error) *Response {
	return &Response{JSONRPC: Version, ID: normalizeID(id), Err: err}
}

func normalizeID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return nullID
	}
	return id
}

// DecodeRequest parses one line into a Request. It distinguishes malformed
// JSON (CodeParseError) from a structurally invalid message
// (CodeInvalidRequest): wrong version, missing or non-string method.
func DecodeRequest(line []byte) (*Request, *Error) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return nil, NewError(CodeParseError, "empty message")
	}

	// A JSON-RPC message must be an object; arrays and scalars are valid
	// JSON but invalid requests.
	var probe any
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, NewError(CodeParseError, "invalid JSON").WithData(err.Error())
	}
	if _, ok := probe.(map[string]any); !ok {
		return nil, NewError(CodeInvalidRequest, "message must be a JSON object")
	}

	var req Request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, NewError(CodeInvalidRequest, "malformed request").WithData(err.Error())
	}

	if req.JSONRPC != Version {
		return nil, &Error{
			Code:    CodeInvalidRequest,
			Message: "invalid JSON-RPC version, must be \"2.0\"",
		}
	}
	if req.Method == "" {
		return nil, NewError(CodeInvalidRequest, "missing 'method' field")
	}

	return &req, nil
}
