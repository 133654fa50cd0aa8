// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the requester may not release a
// claim held by a different visitor, while ErrConflict signals that a
// claim attempt lost to a visitor who already holds the gift.
package repository

import "errors"

// ErrGiftNotFound is returned when an operation references a gift that
// does not exist (or was deleted concurrently). Handlers should
// translate this into an HTTP 404 response.
var ErrGiftNotFound = errors.New("gift not found")

// ErrConflict is returned when a claim attempt is rejected because a
// different visitor currently holds the active claim on the gift. This
// is an expected business outcome under normal multi-visitor usage, not
// a system failure. Handlers should translate this into an HTTP 403
// response that names the current claimant.
var ErrConflict = errors.New("conflict")

// ErrForbidden is returned when a release attempt comes from a visitor
// who is neither the claimant nor an admin. Handlers should translate
// this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrTokenInvalid is returned when a one-time login token is unknown,
// expired, or already used. The verify handler treats all three cases
// identically so the response does not reveal which check failed.
var ErrTokenInvalid = errors.New("token invalid")
