package prms

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Success responses arrive in one of three shapes:
//
//	{"status":"success","data":{"patient":{...}}}   nested under a named key
//	{"status":"success","data":{...}}               data is the payload
//	{...} or [...]                                  bare payload
//
// decodePayload is the only place that knows about them. keys lists the
// names the payload may be nested under, singular and plural.
func decodePayload(path string, raw []byte, keys []string, dest any) error {
	payload, err := unwrap(raw, keys)
	if err != nil {
		return &ShapeError{Path: path, Detail: err.Error()}
	}
	payload, err = normalizeIDs(payload)
	if err != nil {
		return &ShapeError{Path: path, Detail: "malformed payload", Err: err}
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return &ShapeError{Path: path, Detail: fmt.Sprintf("payload does not match %T", dest), Err: err}
	}
	if e, ok := dest.(interface{ Key() string }); ok && e.Key() == "" {
		return &ShapeError{Path: path, Detail: "payload has no id", Field: "id"}
	}
	return nil
}

func unwrap(raw []byte, keys []string) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("empty response body")
	}
	switch trimmed[0] {
	case '[':
		return trimmed, nil
	case '{':
	default:
		return nil, errors.New("payload is not a JSON object or array")
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, fmt.Errorf("malformed envelope: %v", err)
	}
	data, ok := obj["data"]
	if !ok {
		return trimmed, nil
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, errors.New("envelope data is null")
	}
	if data[0] != '{' {
		return data, nil
	}

	var inner map[string]json.RawMessage
	if err := json.Unmarshal(data, &inner); err != nil {
		return nil, fmt.Errorf("malformed envelope data: %v", err)
	}
	for _, k := range keys {
		if v, ok := inner[k]; ok {
			return v, nil
		}
	}
	return data, nil
}

// normalizeIDs copies "_id" into "id" on every object that lacks one.
func normalizeIDs(raw json.RawMessage) (json.RawMessage, error) {
	if !bytes.Contains(raw, []byte(`"_id"`)) {
		return raw, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	aliasIDs(v)
	return json.Marshal(v)
}

func aliasIDs(v any) {
	switch t := v.(type) {
	case map[string]any:
		if _, ok := t["id"]; !ok {
			if mid, ok := t["_id"]; ok {
				t["id"] = mid
			}
		}
		for _, child := range t {
			aliasIDs(child)
		}
	case []any:
		for _, child := range t {
			aliasIDs(child)
		}
	}
}

// errorEnvelope is the body of a non-2xx response.
type errorEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func newAPIError(path string, code int, raw []byte) *APIError {
	apiErr := &APIError{Path: path, StatusCode: code}
	var env errorEnvelope
	if err := json.Unmarshal(bytes.TrimSpace(raw), &env); err == nil {
		apiErr.Status = env.Status
		apiErr.Message = env.Message
		if apiErr.Message == "" {
			apiErr.Message = env.Error
		}
	}
	return apiErr
}
