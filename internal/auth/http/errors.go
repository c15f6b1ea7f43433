package http

import (
	"net/http"

	"github.com/paperbark/journal/pkg/httpx"
)

// apiError is one entry of the closed outward-facing error vocabulary.
// Internal failure detail is logged, never returned.
type apiError struct {
	Status      int
	Code        string
	Description string
}

func (e apiError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.Status, map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

var (
	errInvalidRequest = apiError{
		Status:      http.StatusBadRequest,
		Code:        "invalid_request",
		Description: "malformed or incomplete request body",
	}

	// errInvalidCredentials deliberately covers unknown username, wrong
	// password and disabled accounts with one message.
	errInvalidCredentials = apiError{
		Status:      http.StatusUnauthorized,
		Code:        "invalid_credentials",
		Description: "invalid username or password",
	}

	errDuplicateUsername = apiError{
		Status:      http.StatusConflict,
		Code:        "duplicate_username",
		Description: "username is already taken",
	}

	// errInvalidToken merges signature failure, expiry, malformed tokens and
	// disabled-at-refresh-time into one outward message.
	errInvalidToken = apiError{
		Status:      http.StatusUnauthorized,
		Code:        "invalid_token",
		Description: "invalid or expired token",
	}

	errServerError = apiError{
		Status:      http.StatusInternalServerError,
		Code:        "server_error",
		Description: "internal server error",
	}
)
