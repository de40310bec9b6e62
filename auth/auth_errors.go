package auth

import (
	"fmt"

	"github.com/pkg/errors"

	apperrors "github.com/taskmate/go-auth-client/internal/errors"
)

var (
	NetworkUnavailableErr = errors.New("network unavailable")
	UnauthorizedErr       = errors.New("unauthorized")
	ServerErr             = errors.New("server error")
)

// User-visible messages. Login failures distinguish bad credentials from an
// unreachable server; everything else falls back to the generic variant.
const (
	BadCredentialsMessage    = "Invalid username or password."
	ServerUnreachableMessage = "Unable to reach the server. Please check your connection and try again."
	GenericFailureMessage    = "Something went wrong. Please try again."

	// PasswordResetMessage is returned for every reset request outcome so a
	// caller can never learn whether an address is registered.
	PasswordResetMessage = "If an account exists for that address, a password reset email has been sent."
)

// ValidationError carries server-provided field errors verbatim, or the
// result of client-side request validation before anything hits the wire.
type ValidationError struct {
	Status  int
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("validation failed (%d fields)", len(e.Fields))
}

// ErrorMessage maps an operation error to the string shown to the user.
// Server-provided messages win; sentinels map to their fixed variants.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *ValidationError
	switch {
	case apperrors.As(err, &validationErr) && validationErr.Message != "":
		return validationErr.Message
	case apperrors.Is(err, UnauthorizedErr):
		return BadCredentialsMessage
	case apperrors.Is(err, NetworkUnavailableErr):
		return ServerUnreachableMessage
	default:
		return GenericFailureMessage
	}
}
