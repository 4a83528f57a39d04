package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// envelope is the {success, data, message} wrapper used by the JASS services
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// page is the Spring pageable shape some list endpoints return as data
type page struct {
	Content json.RawMessage `json:"content"`
}

// errRejected is returned when a 2xx response carries success=false
type errRejected struct {
	message string
}

func (e *errRejected) Error() string {
	if e.message == "" {
		return "operation rejected by upstream"
	}
	return e.message
}

// unwrap returns the payload of body: the data member when body is an
// envelope, the whole body otherwise. A null or missing data yields nil.
func unwrap(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] != '{' {
		return trimmed, nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &keys); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	_, hasData := keys["data"]
	_, hasSuccess := keys["success"]
	if !hasData && !hasSuccess {
		return trimmed, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Success != nil && !*env.Success {
		return nil, &errRejected{message: env.Message}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, nil
	}
	return env.Data, nil
}

// decodeInto unwraps body into out. out may be nil to discard the payload.
func decodeInto(body []byte, out any) error {
	data, err := unwrap(body)
	if err != nil || out == nil || data == nil {
		return err
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// decodeList decodes a list payload that is either a JSON array or a page
// object with a content array.
func decodeList[T any](data json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return []T{}, nil
	}
	if trimmed[0] == '{' {
		var p page
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return nil, fmt.Errorf("decode page: %w", err)
		}
		trimmed = p.Content
		if len(trimmed) == 0 || string(trimmed) == "null" {
			return []T{}, nil
		}
	}
	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// errorMessage extracts a human message from an error response body.
// A bare reason phrase such as "Not Found" is ignored.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	switch e := payload.Error.(type) {
	case string:
		if e == http.StatusText(status) {
			return ""
		}
		return e
	case map[string]any:
		if msg, ok := e["message"].(string); ok {
			return msg
		}
	}
	return ""
}
