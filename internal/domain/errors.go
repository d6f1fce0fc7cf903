package domain

import "errors"

var (
	ErrEmptyMessage    = errors.New("message text is empty")
	ErrEmptySession    = errors.New("session has no messages")
	ErrSessionNotFound = errors.New("session not found")
	ErrEventNotFound   = errors.New("event not found")
	ErrProfileNotFound = errors.New("profile not found")
)
