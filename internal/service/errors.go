// Package service holds the business rules that span more than one
// repository: authentication, product image lifecycle, design validation,
// cart pricing, checkout and payment review.
package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation wraps every input rule violation; handlers answer 400
	// with the wrapped message.
	ErrValidation = errors.New("validation failed")

	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrSessionRevoked is returned when a rotated refresh token is
	// replayed; every session of the user has been revoked.
	ErrSessionRevoked = errors.New("session revoked")
	ErrEmptyCart      = errors.New("cart is empty")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
