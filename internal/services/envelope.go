package services

import (
	"encoding/json"
	"errors"

	"github.com/zaqqye/surat_tugas_web/internal/upstream"
)

// Result is the uniform outcome of every service call. Controllers never see
// raw errors: they branch on Success, show Message, and check Expired to
// decide whether the session must be torn down.
type Result struct {
	Success bool
	Message string
	Expired bool
	Err     *upstream.Error
}

func success(msg string) Result {
	return Result{Success: true, Message: msg}
}

// invalid is a local validation failure, produced before any network call.
func invalid(msg string) Result {
	return Result{Message: msg, Err: &upstream.Error{Kind: upstream.KindValidation, Message: msg}}
}

// Failure wraps an arbitrary error in the envelope. Used by the session
// manager, which participates in the same no-errors-escape contract.
func Failure(err error) Result {
	return failure(err)
}

// failure converts a transport-layer error into a Result.
func failure(err error) Result {
	if errors.Is(err, upstream.ErrSessionExpired) {
		e := &upstream.Error{Kind: upstream.KindAuth, Message: "session expired"}
		return Result{Message: e.UserMessage(), Expired: true, Err: e}
	}
	var ue *upstream.Error
	if errors.As(err, &ue) {
		return Result{Message: ue.UserMessage(), Err: ue}
	}
	e := &upstream.Error{Kind: upstream.KindServer, Message: err.Error(), Err: err}
	return Result{Message: e.UserMessage(), Err: e}
}

// failureStatus converts a non-2xx upstream response into a Result, keeping
// the upstream message when the body carried one.
func failureStatus(resp *upstream.Response) Result {
	e := upstream.FromStatus(resp.StatusCode, messageFrom(resp.Body))
	msg := e.Message
	if msg == "" {
		msg = e.UserMessage()
	}
	return Result{Message: msg, Err: e}
}

// candidate keys under which the upstream services have been observed to nest
// list payloads. Order matters: generic wrappers first, resource names last.
var listKeys = []string{"data", "items", "results", "rows", "list", "users", "mails", "nims", "histories"}

// extractList returns the first JSON array found in the payload: the payload
// itself, a candidate key, or a candidate key one wrapper deeper. Malformed
// or empty input yields an empty slice, never an error — list pages render
// an empty table instead of failing.
func extractList(raw []byte) []json.RawMessage {
	var arr []json.RawMessage
	if json.Unmarshal(raw, &arr) == nil {
		return arr
	}
	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) != nil {
		return []json.RawMessage{}
	}
	for _, key := range listKeys {
		v, ok := obj[key]
		if !ok {
			continue
		}
		if json.Unmarshal(v, &arr) == nil {
			return arr
		}
		var inner map[string]json.RawMessage
		if json.Unmarshal(v, &inner) != nil {
			continue
		}
		for _, innerKey := range listKeys {
			iv, ok := inner[innerKey]
			if !ok {
				continue
			}
			if json.Unmarshal(iv, &arr) == nil {
				return arr
			}
		}
	}
	return []json.RawMessage{}
}

// decodeObject decodes a single-object payload into the endpoint's explicit
// struct, unwrapping one optional {"data": {...}} envelope. Unlike list
// extraction this fails loudly: a shape mismatch is a decode error, not an
// empty value.
func decodeObject(raw []byte, v interface{}) *upstream.Error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return &upstream.Error{Kind: upstream.KindDecode, Message: "unexpected response shape", Err: err}
	}
	if data, ok := probe["data"]; ok {
		var inner map[string]json.RawMessage
		if json.Unmarshal(data, &inner) == nil {
			raw = data
		}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &upstream.Error{Kind: upstream.KindDecode, Message: "unexpected response shape", Err: err}
	}
	return nil
}

// messageFrom pulls a human-readable message out of an upstream body, if any.
func messageFrom(raw []byte) string {
	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) != nil {
		return ""
	}
	for _, key := range []string{"message", "error", "msg"} {
		v, ok := obj[key]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(v, &s) == nil && s != "" {
			return s
		}
	}
	return ""
}
