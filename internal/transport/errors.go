package transport

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/apierr"
)

// User-facing messages. These are the only strings a caller ever sees from a
// failed request.
const (
	MsgSessionExpired = "Session expired. Please sign in again."
	MsgInvalidRequest = "Invalid request"
	MsgNotFound       = "Not found"
	MsgRateLimited    = "Too many attempts. Please wait a moment."
	MsgServer         = "Server error. Please try again later."
	MsgUnknown        = "Unknown error"
	MsgNetwork        = "Connection error. Check your internet connection."
	MsgRequest        = "Could not process the request."
)

// serverError pulls the human message out of an error body. The service
// sends either {"message": "..."} or {"error": "..."}; older handlers nest
// {"error": {"message": "..."}}.
func serverError(raw []byte) (message, code string) {
	var env struct {
		Message string          `json:"message"`
		Code    string          `json:"code"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", ""
	}
	message = strings.TrimSpace(env.Message)
	code = strings.TrimSpace(env.Code)
	if len(env.Error) == 0 {
		return message, code
	}
	var s string
	if err := json.Unmarshal(env.Error, &s); err == nil {
		if message == "" {
			message = strings.TrimSpace(s)
		}
		return message, code
	}
	var nested struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(env.Error, &nested); err == nil {
		if message == "" {
			message = strings.TrimSpace(nested.Message)
		}
		if code == "" {
			code = strings.TrimSpace(nested.Code)
		}
	}
	return message, code
}

// normalize maps a non-2xx response to the fixed message table.
func normalize(status int, raw []byte) *apierr.Error {
	msg, code := serverError(raw)
	e := &apierr.Error{
		Kind:   apierr.KindServer,
		Status: status,
		Code:   code,
		Body:   strings.TrimSpace(string(raw)),
	}
	switch {
	case status == http.StatusUnauthorized:
		e.Message = MsgSessionExpired
	case status == http.StatusBadRequest:
		e.Message = firstNonEmpty(msg, MsgInvalidRequest)
	case status == http.StatusNotFound:
		e.Message = firstNonEmpty(msg, MsgNotFound)
	case status == http.StatusTooManyRequests:
		e.Message = MsgRateLimited
	case status >= 500:
		e.Message = MsgServer
	default:
		e.Message = firstNonEmpty(msg, MsgUnknown)
	}
	return e
}

func networkError(err error) *apierr.Error {
	return &apierr.Error{Kind: apierr.KindNetwork, Message: MsgNetwork, Err: err}
}

func requestError(err error) *apierr.Error {
	return &apierr.Error{Kind: apierr.KindRequest, Message: MsgRequest, Err: err}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
