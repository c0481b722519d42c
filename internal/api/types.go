package api

import (
	"encoding/json"
	"strings"

	"github.com/nhle/todoclient/internal/model"
)

// Envelope is the wrapper the API puts around successful payloads.
type Envelope[T any] struct {
	Content T      `json:"content"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the body of a rejected request. Errors entries are
// either plain strings or objects carrying a message.
type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  []json.RawMessage `json:"errors"`
}

// First returns the first structured error message, or "".
func (r ErrorResponse) First() string {
	for _, raw := range r.Errors {
		var s string
		if json.Unmarshal(raw, &s) == nil && strings.TrimSpace(s) != "" {
			return s
		}
		var obj struct {
			Message string `json:"message"`
			Msg     string `json:"msg"`
		}
		if json.Unmarshal(raw, &obj) == nil {
			if obj.Message != "" {
				return obj.Message
			}
			if obj.Msg != "" {
				return obj.Msg
			}
		}
	}
	return ""
}

// User is the account returned alongside a login token.
type User struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// AuthResponse is the content of POST /login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Ack is the acknowledgement of a mutating call. Body is kept raw since
// the API does not document its shape.
type Ack struct {
	Message string
	Body    json.RawMessage
}

// TodoQuery parameterizes GET /todos. SearchFilters is matched by the API
// as OR-style substrings; Filters carries exact constraints such as isDone.
type TodoQuery struct {
	Page          int
	Rows          int
	SearchFilters map[string]string
	Filters       map[string]any
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

type createTodoRequest struct {
	Item string `json:"item"`
}

type markTodoRequest struct {
	Action model.MarkAction `json:"action"`
}
