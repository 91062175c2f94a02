package gists

import (
	"time"

	"github.com/gistvault/gistvault/internal/common"
)

// Consistency checks are pure functions of a record and explicit inputs.
// They take no locks and touch no storage.

// CheckExpired gates every read, update and delete: an expired gist is
// treated as already gone, with an outcome distinct from "never existed".
func CheckExpired(rec *Record, now time.Time) error {
	if rec.Expired(now) {
		return common.ErrExpired
	}
	return nil
}

// CheckVersion is the optimistic-lock compare. The surrounding update is a
// read-then-conditionally-write sequence with no atomic compare-and-swap
// assumed from the store, so two updates that both read version N before
// either writes N+1 can both pass this check; the losing write is silently
// overwritten. That race is documented and accepted.
func CheckVersion(rec *Record, callerVersion int64) error {
	if callerVersion != rec.Version {
		return common.ErrVersionConflict
	}
	return nil
}
