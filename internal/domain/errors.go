package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidRating   = errors.New("rating out of range")
	ErrSessionClosed   = errors.New("session closed")
	ErrEmptyCompletion = errors.New("empty completion")
	// ErrCollaborator marks failures of an external dependency (store,
	// completion service, transport).
	ErrCollaborator = errors.New("collaborator failure")
)
