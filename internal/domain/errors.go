package domain

import "errors"

var (
	// ErrRequestNotFound signals an unknown searchId.
	ErrRequestNotFound = errors.New("search request not found")
	// ErrRequestNotPending signals a request that was already consumed.
	ErrRequestNotPending = errors.New("search request is not pending")
	// ErrInvalidInput signals a missing or malformed caller parameter.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStoreUnavailable signals that the backing store could not be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrResultPersist signals a result-store write failure after the fetch
	// phase already succeeded. The request may be left in the asymmetric-write
	// window between the two stores, so callers log it distinctly.
	ErrResultPersist = errors.New("result persistence failed")
	// ErrRegistryUnavailable signals that the registry service rejected or
	// failed a call.
	ErrRegistryUnavailable = errors.New("registry service unavailable")
)
