package services

import "errors"

// Error taxonomy surfaced by the reward and identity services. Controllers
// map these onto HTTP statuses; anything else is a server-side failure.
var (
	// ErrValidation marks malformed or missing required input.
	ErrValidation = errors.New("invalid or missing input")
	// ErrDeviceConflict marks a device already bound to a different account,
	// or an account already bound to a different device.
	ErrDeviceConflict = errors.New("device already linked to another account")
	// ErrInviteConsumed marks a referral attempt for a user whose invited-by
	// reference is already set.
	ErrInviteConsumed = errors.New("invite code already consumed")
	// ErrRateLimited marks an activity logged within the blocking window.
	ErrRateLimited = errors.New("activity already logged within the blocking window")
	// ErrNotFound marks a missing user, mission or entry.
	ErrNotFound = errors.New("record not found")
	// ErrExternalAuth marks a token the identity provider rejected.
	ErrExternalAuth = errors.New("identity token rejected")
	// ErrGenerationExhausted marks a unique-field generation that failed
	// after the bounded retries. Not recoverable by the caller.
	ErrGenerationExhausted = errors.New("could not generate a unique value")
)
