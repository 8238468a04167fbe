package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrQuotaExceeded    = errors.New("season quota exceeded")
	ErrAlreadyPicked    = errors.New("candidate already picked this season")
	ErrInvalidCandidate = errors.New("candidate id and name are required")

	ErrDisplayNameRequired = errors.New("display name is required")
	ErrDisplayNameTooShort = errors.New("display name is too short")
	ErrDisplayNameTaken    = errors.New("display name already taken")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrEmailTaken          = errors.New("email already registered")
	ErrPasswordTooShort    = errors.New("password is too short")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidToken        = errors.New("invalid or expired session")
	ErrSetupCompleted      = errors.New("setup already completed")

	ErrCandidateNotFound = errors.New("candidate not found")
	ErrAlreadyDeceased   = errors.New("death already recorded")
	ErrInvalidDeathDate  = errors.New("death date precedes birth date")
)

// PersistenceError reports a storage failure during a player operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
