package gists

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/gistvault/gistvault/internal/common"
	"github.com/gistvault/gistvault/internal/cryptox"
)

// Credential carries the two shapes of authorization a caller may supply:
// a deletion proof (one-time-view gists) or a PIN (PIN-protected gists).
// Only the field matching the gist's protection mode is consulted.
type Credential struct {
	Proof string
	PIN   []byte
}

// Authorizer is the stateless policy evaluator gating every destructive or
// PIN-protected mutating operation. It has no store access and no side
// effects: the decision is a pure function of the stored metadata and the
// supplied credential.
type Authorizer struct {
	hasher cryptox.PinHasher
}

// NewAuthorizer constructs an Authorizer around the given PIN hashing
// service. The hasher must be the same one used when PINs were stored.
func NewAuthorizer(hasher cryptox.PinHasher) *Authorizer {
	return &Authorizer{hasher: hasher}
}

// DeletionProof derives the proof token that authorizes deletion of a
// one-time-view gist: hex(sha256(created_at ++ total_size ++ id ++ "delete"))
// with the numeric fields in decimal string form. The proof is a
// deterministic, non-secret fingerprint — it prevents accidental or drive-by
// deletion via guessed URLs, not disclosure. Legitimate clients derive it
// from fields they already hold.
func DeletionProof(rec *Record) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d%d%s%s", rec.CreatedAt, rec.TotalSize, rec.ID, "delete")))
	return hex.EncodeToString(sum[:])
}

// AuthorizeDelete decides whether cred permits deleting the gist described
// by rec. A gist that is neither one-time-view nor PIN-protected has no
// deletion path through this layer, regardless of credential.
func (a *Authorizer) AuthorizeDelete(rec *Record, cred Credential) error {
	switch {
	case rec.OneTimeView:
		expected := DeletionProof(rec)
		if subtle.ConstantTimeCompare([]byte(cred.Proof), []byte(expected)) != 1 {
			return common.ErrUnauthorized
		}
		return nil
	case rec.PinProtected():
		return a.checkPin(rec, cred.PIN)
	default:
		return common.ErrUnauthorized
	}
}

// AuthorizeUpdate decides whether the supplied PIN permits updating rec.
// One-time-view gists are never updatable: their lifecycle already ends on
// read. Unprotected gists update freely.
func (a *Authorizer) AuthorizeUpdate(rec *Record, pin []byte) error {
	if rec.OneTimeView {
		return common.ErrUnauthorized
	}
	if !rec.PinProtected() {
		return nil
	}
	return a.checkPin(rec, pin)
}

func (a *Authorizer) checkPin(rec *Record, pin []byte) error {
	if len(pin) == 0 {
		return common.ErrUnauthorized
	}
	candidate := a.hasher(pin, rec.EditPinSalt)
	if subtle.ConstantTimeCompare(candidate, rec.EditPinHash) != 1 {
		return common.ErrUnauthorized
	}
	return nil
}
