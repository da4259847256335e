// Package services defines the business logic of the warranty lifecycle:
// issuing, claiming, releasing, self-declaring, and public verification.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the handler
// layer. Every one of them represents a local, user-recoverable condition —
// none is fatal to the process.
package services

import "errors"

var (
	// ErrWarrantyNotFound indicates that no record matches the requested id
	// or code, or that the record is not visible to the current user.
	ErrWarrantyNotFound = errors.New("warranty not found")

	// ErrAlreadyClaimed is returned when a claim targets a code whose record
	// already has an owner. Exactly one of two concurrent claimants receives
	// the warranty; the other receives this error.
	ErrAlreadyClaimed = errors.New("warranty already claimed by another user")

	// ErrPurchaseDateMismatch is returned when the optional purchase date
	// supplied on a claim does not match the issued record.
	ErrPurchaseDateMismatch = errors.New("purchase date does not match this warranty")

	// ErrNotTransferable is returned when a release targets a self-declared
	// record; manual records have no code and never re-enter the claim cycle.
	ErrNotTransferable = errors.New("self-declared warranties cannot be transferred")

	// ErrMissingField is returned when a required free-text field is blank.
	ErrMissingField = errors.New("required field is missing")

	// ErrCodeSpaceExhausted is returned when code generation keeps colliding
	// past the retry cap. With a 32^8 code space this is effectively
	// unreachable and indicates a broken random source or a poisoned table.
	ErrCodeSpaceExhausted = errors.New("could not generate a unique warranty code")
)
