package gists

import (
	"context"
	"time"

	"github.com/gistvault/gistvault/internal/common"
	"github.com/gistvault/gistvault/internal/cryptox"
	"github.com/gistvault/gistvault/internal/logging"
)

// CreateRequest is the caller-facing shape of a create: the settable record
// fields plus an optional plaintext PIN. The service hashes the PIN with a
// fresh salt and wipes the plaintext before touching storage.
type CreateRequest struct {
	ExpiresAt   int64
	OneTimeView bool
	Pin         []byte

	EncryptedMetadata EncryptedMetadata
	BlobCount         int

	IndentMode string
	IndentSize int
	WrapMode   string
	Theme      string
}

// Service implements the operation contract surfaced to the layer above:
// create, read, update, delete with the expiry gate and authorization policy
// applied in front of the physical repository.
type Service struct {
	repo *Repository
	auth *Authorizer
	log  logging.Logger

	now func() time.Time // test seam
}

// NewService wires the repository and authorizer together.
func NewService(repo *Repository, auth *Authorizer, log logging.Logger) *Service {
	return &Service{
		repo: repo,
		auth: auth,
		log:  log,
		now:  time.Now,
	}
}

// Create validates the protection invariant, derives PIN material when a
// plaintext PIN is supplied, and hands off to the repository. A request
// asking for both a PIN and one-time view is rejected: a gist carries at
// most one deletion path.
func (s *Service) Create(ctx context.Context, req CreateRequest, blob []byte) (*Record, error) {
	if len(req.Pin) > 0 && req.OneTimeView {
		return nil, common.ErrProtectionConflict
	}

	params := CreateParams{
		ExpiresAt:         req.ExpiresAt,
		OneTimeView:       req.OneTimeView,
		EncryptedMetadata: req.EncryptedMetadata,
		BlobCount:         req.BlobCount,
		IndentMode:        req.IndentMode,
		IndentSize:        req.IndentSize,
		WrapMode:          req.WrapMode,
		Theme:             req.Theme,
	}

	if len(req.Pin) > 0 {
		salt := common.GenerateRandByteArray(cryptox.PinSaltLength)
		params.EditPinSalt = salt
		params.EditPinHash = s.auth.hasher(req.Pin, salt)
		common.WipeByteArray(req.Pin)
	}

	rec, err := s.repo.Create(ctx, params, blob)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "gist created",
		"id", rec.ID, "size", rec.TotalSize, "one_time_view", rec.OneTimeView, "pin_protected", rec.PinProtected())
	return rec, nil
}

// Read returns the record and blob, byte-identical to what was stored.
// Expired gists read as expired even though the physical objects remain; the
// one-time-view flag does not trigger deletion here — that is the caller's
// explicit, proof-authorized second step.
func (s *Service) Read(ctx context.Context, id string) (*Record, []byte, error) {
	rec, blob, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := CheckExpired(rec, s.now()); err != nil {
		return nil, nil, err
	}
	return rec, blob, nil
}

// Update applies the expiry gate and the update authorization policy, then
// performs the optimistic-locked repository update. Returns the new version.
func (s *Service) Update(ctx context.Context, id string, patch Patch, blob []byte, callerVersion int64, pin []byte) (int64, error) {
	rec, err := s.repo.GetRecord(ctx, id)
	if err != nil {
		return 0, err
	}
	if err := CheckExpired(rec, s.now()); err != nil {
		return 0, err
	}
	if err := s.auth.AuthorizeUpdate(rec, pin); err != nil {
		return 0, err
	}

	version, err := s.repo.Update(ctx, id, patch, blob, callerVersion)
	if err != nil {
		return 0, err
	}

	s.log.Info(ctx, "gist updated", "id", id, "version", version, "size", len(blob))
	return version, nil
}

// Delete applies the expiry gate and the deletion policy, then physically
// removes the pair. nil means success.
func (s *Service) Delete(ctx context.Context, id string, cred Credential) error {
	rec, err := s.repo.GetRecord(ctx, id)
	if err != nil {
		return err
	}
	if err := CheckExpired(rec, s.now()); err != nil {
		return err
	}
	if err := s.auth.AuthorizeDelete(rec, cred); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info(ctx, "gist deleted", "id", id, "one_time_view", rec.OneTimeView)
	return nil
}
