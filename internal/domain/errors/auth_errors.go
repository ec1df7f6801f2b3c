package errors

import "fmt"

// Account errors
var (
	ErrUserNotFound       = fmt.Errorf("user not found: %w", ErrNotFound)
	ErrUserAlreadyExists  = fmt.Errorf("username already exists: %w", ErrAlreadyExists)
	ErrInvalidCredentials = fmt.Errorf("invalid username or password: %w", ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("invalid token: %w", ErrUnauthorized)
	ErrTokenBlacklisted   = fmt.Errorf("token has been revoked: %w", ErrUnauthorized)
	ErrWeakPassword       = fmt.Errorf("password does not meet requirements: %w", ErrInvalidInput)
	ErrPasswordMismatch   = fmt.Errorf("passwords do not match: %w", ErrInvalidInput)
	ErrInvalidUsername    = fmt.Errorf("invalid username: %w", ErrInvalidInput)
)

// UserNotFoundError creates a user not found error
func UserNotFoundError(identifier string) *DomainError {
	return &DomainError{
		Err:     ErrUserNotFound,
		Code:    "USER_NOT_FOUND",
		Message: "user not found",
		Details: map[string]interface{}{
			"identifier": identifier,
		},
	}
}

// UserAlreadyExistsError creates a user already exists error
func UserAlreadyExistsError(username string) *DomainError {
	return &DomainError{
		Err:     ErrUserAlreadyExists,
		Code:    "USER_ALREADY_EXISTS",
		Message: "Username already exists",
		Details: map[string]interface{}{
			"username": username,
		},
	}
}

// InvalidCredentialsError creates an invalid credentials error
func InvalidCredentialsError() *DomainError {
	return &DomainError{
		Err:     ErrInvalidCredentials,
		Code:    "INVALID_CREDENTIALS",
		Message: "Invalid username or password",
	}
}

// WeakPasswordError creates a weak password error with requirements
func WeakPasswordError(requirements []string) *DomainError {
	return &DomainError{
		Err:     ErrWeakPassword,
		Code:    "WEAK_PASSWORD",
		Message: "password does not meet requirements",
		Details: map[string]interface{}{
			"requirements": requirements,
		},
	}
}
