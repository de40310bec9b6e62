package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Credentials is the payload posted to the login endpoint.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Username, validation.Required),
		validation.Field(&c.Password, validation.Required),
	)
}

// SignupRequest is the payload posted to the registration endpoint. The new
// account is not auto-logged-in.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 100)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

// ResetRequest consumes a password-reset token from the email link together
// with the replacement password.
type ResetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (r ResetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 100)),
	)
}

// asValidationError converts an ozzo validation result into the error type
// the rest of the client understands. Field errors keep their field names.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validation.Errors)
	if !ok {
		return &ValidationError{Message: err.Error()}
	}

	fields := make(map[string][]string, len(fieldErrors))
	for field, fieldErr := range fieldErrors {
		fields[field] = []string{fieldErr.Error()}
	}
	return &ValidationError{Message: err.Error(), Fields: fields}
}
