// Package common defines the shared sentinel errors and small helpers used
// across the storage and policy layers of GistVault. Callers should use
// errors.Is to match these values: policy rejections and storage faults are
// deliberately distinct so the layer above can map them to different
// responses and retry decisions.
package common

import "errors"

var (
	// ErrNotFound signals that a gist (or an underlying object) does not
	// exist. A metadata record whose blob is missing also reads as not found.
	ErrNotFound = errors.New("not found")

	// ErrExpired signals that a gist's expires_at has passed. The physical
	// objects may still exist, but every read, update and delete must treat
	// the gist as gone. Kept distinct from ErrNotFound so callers can render
	// a different message.
	ErrExpired = errors.New("expired")

	// ErrVersionConflict signals a failed optimistic-lock check: the version
	// supplied by the caller no longer matches the stored version.
	ErrVersionConflict = errors.New("version conflict")

	// ErrUnauthorized signals a PIN or deletion-proof mismatch, or a
	// destructive operation on a gist that provides no authorization path.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSizeExceeded signals a blob larger than the configured ceiling.
	// Oversize payloads are rejected outright, never truncated.
	ErrSizeExceeded = errors.New("size exceeded")

	// ErrProtectionConflict signals a create request that asks for both PIN
	// protection and one-time view; a gist carries at most one of the two.
	ErrProtectionConflict = errors.New("pin protection and one-time view are mutually exclusive")

	// ErrStorageFault wraps any transport or I/O error from the underlying
	// object store. It is propagated unchanged through the repository (no
	// retries, no swallowing) so the caller can decide on retry/backoff.
	ErrStorageFault = errors.New("storage fault")
)
