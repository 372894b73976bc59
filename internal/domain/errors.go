package domain

import "errors"

var (
	// ErrUserNotFound signals that no identity record matches the lookup key.
	ErrUserNotFound = errors.New("auth: user not found")
	// ErrVerificationFailed covers wrong, expired and already-used OTP codes.
	// Callers must not be able to tell which of the three occurred.
	ErrVerificationFailed = errors.New("auth: verification failed")
	// ErrOTPThrottled signals the per-address issuance cap was reached.
	ErrOTPThrottled = errors.New("auth: otp request limit reached")
)
