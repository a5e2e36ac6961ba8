package catalog

import (
	"strings"

	"github.com/cineshelf/cineshelf/internal/constants"
)

// Messages shown for rejected credentials.
const (
	MsgMissingCredentials = "Please enter email and password."
	MsgMissingName        = "Please enter your name."
	MsgMissingEmail       = "Please enter your email."
	MsgPasswordTooShort   = "Password must be at least 8 characters"
	MsgPasswordMismatch   = "Passwords do not match"
)

// ValidateLogin checks the login form before any request is made.
func ValidateLogin(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return &ValidationError{Message: MsgMissingCredentials}
	}
	return nil
}

// ValidateSignup checks the signup form before any request is made.
func ValidateSignup(name, email, password, confirm string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Message: MsgMissingName}
	}
	if strings.TrimSpace(email) == "" {
		return &ValidationError{Message: MsgMissingEmail}
	}
	if len(password) < constants.MinPasswordLength {
		return &ValidationError{Message: MsgPasswordTooShort}
	}
	if password != confirm {
		return &ValidationError{Message: MsgPasswordMismatch}
	}
	return nil
}
