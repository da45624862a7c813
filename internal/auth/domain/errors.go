package domain

import "errors"

var (
	ErrMissingToken = errors.New("login token is required")
	ErrInvalidPhone = errors.New("phone number must have at least 10 digits")
	ErrInvalidOTP   = errors.New("otp must be exactly 6 digits")
)
