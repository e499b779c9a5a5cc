package protocol

import "encoding/json"

// Request is a command from the dashboard shell to the host.
type Request struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is a message from the host to the shell. Results carry the
// request ID and a "<type>_result" type.
type Response struct {
	ID      string      `json:"id,omitempty"`
	Type    string      `json:"type"`
	Success bool        `json:"success"`
	Payload interface{} `json:"payload,omitempty"`
}

// KeyPayload is the payload for store_key / get_key / delete_key.
type KeyPayload struct {
	KeyName  string `json:"key_name"`
	KeyValue string `json:"key_value,omitempty"`
}

// MessageResult carries a human-readable status line for the shell to
// surface directly (toast, log line).
type MessageResult struct {
	Message string `json:"message"`
}

// SecretResult is the success payload for get_key.
type SecretResult struct {
	Value string `json:"value"`
}

// WindowPayload is for the window veneer requests.
type WindowPayload struct {
	Ignore bool `json:"ignore,omitempty"`
	State  bool `json:"state,omitempty"`
}

// InfoPayload is sent by the host right after a shell connects so the
// shell can resync its UI state after its own restart or reconnect.
type InfoPayload struct {
	OS        string `json:"os"`
	Version   string `json:"version"`
	Service   string `json:"service"`
	KeepAlive bool   `json:"keep_alive"`
}

// ErrorPayload for error responses.
type ErrorPayload struct {
	Error string `json:"error"`
}
