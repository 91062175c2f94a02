// Package gists implements the gist storage and mutation-consistency layer:
// the repository mapping gist ids onto object-store keys, the stateless
// authorization policy for destructive operations, and the service that ties
// the two together behind the operation contract callers see.
//
// The layer is zero-knowledge: blob bytes and the encrypted_metadata pair are
// stored and returned verbatim, never interpreted.
package gists

import "time"

const (
	// DefaultMaxBlobBytes is the aggregate size ceiling for one gist's blob.
	DefaultMaxBlobBytes int64 = 5 << 20 // 5 MiB

	// MaxFileBytes is the per-logical-file cap. Enforcement happens in the
	// layer above (this layer never unpacks the blob); the constant is
	// exported for that layer's use.
	MaxFileBytes int64 = 500 << 10 // 500 KiB
)

// EncryptedMetadata is the opaque {iv, data} pair a client attaches to a
// gist. The layer round-trips it untouched.
type EncryptedMetadata struct {
	IV   string `json:"iv"`
	Data string `json:"data"`
}

// Record is the metadata JSON object stored at metadata/{id}.json — the unit
// of truth for one gist. Timestamps are integer epoch milliseconds in UTC;
// the decimal string form of created_at is what the deletion proof is
// derived from, so the representation must stay stable.
type Record struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`

	// ExpiresAt of zero means the gist never expires. Once in the past the
	// record is logically dead though physically present until a delete
	// completes.
	ExpiresAt int64 `json:"expires_at,omitempty"`

	// OneTimeView marks the read-then-explicit-delete lifecycle. Deletion is
	// a caller-triggered second step authorized by the derived proof, never
	// an automatic side effect of the read.
	OneTimeView bool `json:"one_time_view"`

	// EditPinHash and EditPinSalt are present together or absent together.
	EditPinHash []byte `json:"edit_pin_hash,omitempty"`
	EditPinSalt []byte `json:"edit_pin_salt,omitempty"`

	TotalSize int64 `json:"total_size"`
	BlobCount int   `json:"blob_count"`

	EncryptedMetadata EncryptedMetadata `json:"encrypted_metadata"`

	// Version is the optimistic-lock token a caller must supply to mutate;
	// CurrentVersion mirrors the latest stored value and is authoritative.
	// Both start at 1 and are bumped together.
	Version        int64 `json:"version"`
	CurrentVersion int64 `json:"current_version"`

	// Editor preferences: opaque passthrough scalars, never validated here.
	IndentMode string `json:"indent_mode,omitempty"`
	IndentSize int    `json:"indent_size,omitempty"`
	WrapMode   string `json:"wrap_mode,omitempty"`
	Theme      string `json:"theme,omitempty"`
}

// PinProtected reports whether the PIN hash/salt pair is present.
func (r *Record) PinProtected() bool {
	return len(r.EditPinHash) > 0 && len(r.EditPinSalt) > 0
}

// Expired reports whether expires_at is set and has passed.
func (r *Record) Expired(now time.Time) bool {
	return r.ExpiresAt != 0 && r.ExpiresAt <= now.UnixMilli()
}

// CreatedTime returns created_at as a time.Time in UTC.
func (r *Record) CreatedTime() time.Time {
	return time.UnixMilli(r.CreatedAt).UTC()
}

// UpdatedTime returns updated_at as a time.Time in UTC.
func (r *Record) UpdatedTime() time.Time {
	return time.UnixMilli(r.UpdatedAt).UTC()
}

// ExpiryTime returns expires_at as a time.Time in UTC, or the zero time when
// the gist never expires.
func (r *Record) ExpiryTime() time.Time {
	if r.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(r.ExpiresAt).UTC()
}
