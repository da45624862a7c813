package apiclient

import (
	"bytes"
	"encoding/json"
)

// Envelope is the wrapper the backend applies to every response.
type Envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

// DecodeEnvelope reports whether body is an envelope. Only a JSON object whose
// "success" member is a boolean qualifies; anything else is a raw body.
func DecodeEnvelope(body []byte) (*Envelope, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, false
	}

	var success bool
	rawSuccess, ok := fields["success"]
	if !ok || json.Unmarshal(rawSuccess, &success) != nil {
		return nil, false
	}

	env := &Envelope{Success: success, Data: fields["data"]}
	// message and timestamp are informational; a non-string value is ignored
	_ = json.Unmarshal(fields["message"], &env.Message)
	_ = json.Unmarshal(fields["timestamp"], &env.Timestamp)
	return env, true
}

// unwrap returns the data member of an envelope, or body unchanged when body is
// not an envelope. An envelope with success=false becomes an application error.
func unwrap(statusCode int, body []byte) ([]byte, error) {
	env, ok := DecodeEnvelope(body)
	if !ok {
		return body, nil
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = applicationMessage
		}
		return nil, &Error{Kind: KindApplication, StatusCode: statusCode, Message: msg}
	}
	return env.Data, nil
}

// bareMessage extracts a "message" string from a non-envelope JSON error body.
func bareMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	return payload.Message
}
