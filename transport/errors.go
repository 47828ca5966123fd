package transport

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/goliatone/go-errors"
)

// Text codes attached to transport errors.
const (
	TextCodeNetwork      = "NETWORK_ERROR"
	TextCodeCircuitOpen  = "CIRCUIT_OPEN"
	TextCodeDecode       = "DECODE_ERROR"
	TextCodeBadRequest   = "BAD_REQUEST"
	TextCodeUnauthorized = "UNAUTHORIZED"
	TextCodeForbidden    = "FORBIDDEN"
	TextCodeNotFound     = "NOT_FOUND"
	TextCodeConflict     = "CONFLICT"
	TextCodeRateLimited  = "RATE_LIMITED"
	TextCodeServer       = "SERVER_ERROR"
	TextCodeHTTP         = "HTTP_ERROR"
)

// errorBody is the error payload the API sends; either field may carry the message.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func statusError(status int, body []byte, method, path string) *errors.Error {
	msg := messageFrom(body)
	if msg == "" {
		msg = http.StatusText(status)
	}

	category, textCode := classify(status)
	return errors.New(msg, category).
		WithCode(status).
		WithTextCode(textCode).
		WithMetadata(map[string]any{
			"method": method,
			"path":   path,
		})
}

func classify(status int) (errors.Category, string) {
	switch {
	case status == http.StatusBadRequest:
		return errors.CategoryBadInput, TextCodeBadRequest
	case status == http.StatusUnauthorized:
		return errors.CategoryAuth, TextCodeUnauthorized
	case status == http.StatusForbidden:
		return errors.CategoryAuthz, TextCodeForbidden
	case status == http.StatusNotFound:
		return errors.CategoryNotFound, TextCodeNotFound
	case status == http.StatusConflict:
		return errors.CategoryConflict, TextCodeConflict
	case status == http.StatusTooManyRequests:
		return errors.CategoryRateLimit, TextCodeRateLimited
	case status >= 500:
		return errors.CategoryExternal, TextCodeServer
	case status >= 400:
		return errors.CategoryBadInput, TextCodeHTTP
	default:
		return errors.CategoryExternal, TextCodeHTTP
	}
}

func messageFrom(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if eb.Message != "" {
		return eb.Message
	}
	return eb.Error
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *errors.Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// IsUnauthorized reports whether err came from a 401 or 403 response.
func IsUnauthorized(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// IsNetwork reports whether err means no response was received.
func IsNetwork(err error) bool {
	var e *errors.Error
	return errors.As(err, &e) && (e.TextCode == TextCodeNetwork || e.TextCode == TextCodeCircuitOpen)
}
