package rpc

import (
	"encoding/json"
	"testing"
)

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		name         string
		line         string
		wantCode     int
		wantMethod   string
		notification bool
	}{
		{
			name:       "request with numeric id",
			line:       `{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
			wantMethod: "initialize",
		},
		{
			name:       "request with string id",
			line:       `{"jsonrpc":"2.0","id":"abc","method":"tools/list","params":{}}`,
			wantMethod: "tools/list",
		},
		{
			name:         "notification",
			line:         `{"jsonrpc":"2.0","method":"notifications/initialized"}`,
			wantMethod:   "notifications/initialized",
			notification: true,
		},
		{
			name:         "null id treated as notification",
			line:         `{"jsonrpc":"2.0","id":null,"method":"notifications/initialized"}`,
			wantMethod:   "notifications/initialized",
			notification: true,
		},
		{
			name:     "invalid JSON",
			line:     `{not json`,
			wantCode: CodeParseError,
		},
		{
			name:     "empty line",
			line:     "   ",
			wantCode: CodeParseError,
		},
		{
			name:     "JSON array",
			line:     `[1,2,3]`,
			wantCode: CodeInvalidRequest,
		},
		{
			name:     "missing method",
			line:     `{"jsonrpc":"2.0","id":1}`,
			wantCode: CodeInvalidRequest,
		},
		{
			name:     "wrong version",
			line:     `{"jsonrpc":"1.0","id":1,"method":"x"}`,
			wantCode: CodeInvalidRequest,
		},
		{
			name:     "non-string method",
			line:     `{"jsonrpc":"2.0","id":1,"method":42}`,
			wantCode: CodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rpcErr := DecodeRequest([]byte(tt.line))

			if tt.wantCode != 0 {
				if rpcErr == nil {
					t.Fatalf("expected error code %d, got request %+v", tt.wantCode, req)
				}
				if rpcErr.Code != tt.wantCode {
					t.Errorf("error code = %d, want %d", rpcErr.Code, tt.wantCode)
				}
				return
			}

			if rpcErr != nil {
				t.Fatalf("unexpected error: %v", rpcErr)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("method = %q, want %q", req.Method, tt.wantMethod)
			}
			if req.IsNotification() != tt.notification {
				t.Errorf("IsNotification() = %v, want %v", req.IsNotification(), tt.notification)
			}
		})
	}
}

func TestResponseSerializesNullID(t *testing.T) {
	resp := NewErrorResponse(nil, NewError(CodeParseError, "bad"))
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if id, ok := decoded["id"]; !ok || id != nil {
		t.Errorf("id = %v, want explicit null", id)
	}
}

func TestResponseEchoesIDBytes(t *testing.T) {
	resp := NewResponse(json.RawMessage(`"req-7"`), "ok")
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(decoded.ID) != `"req-7"` {
		t.Errorf("id = %s, want %q", decoded.ID, `"req-7"`)
	}
}
