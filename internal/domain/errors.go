package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a game session has not been stored yet.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrChallengeNotFound indicates the challenge definition could not be loaded.
	ErrChallengeNotFound = errors.New("challenge not found")
	// ErrInvalidChallenge is returned when a challenge definition cannot drive a session.
	ErrInvalidChallenge = errors.New("invalid challenge definition")
)
