package gists

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/gistvault/gistvault/internal/common"
	"github.com/gistvault/gistvault/internal/store"
)

const blobContentType = "application/octet-stream"

// CreateParams carries the caller-settable fields of a new gist. System
// fields (id, timestamps, versions, total_size) are stamped by the
// repository. PIN material arrives pre-hashed; plaintext never reaches this
// layer.
type CreateParams struct {
	ExpiresAt   int64
	OneTimeView bool
	EditPinHash []byte
	EditPinSalt []byte

	EncryptedMetadata EncryptedMetadata
	BlobCount         int

	IndentMode string
	IndentSize int
	WrapMode   string
	Theme      string
}

// Patch holds the updatable fields of a record. Nil pointers mean "keep the
// stored value" — an explicit preserve-on-omit merge, not a full overwrite.
// Identity, timestamps, expiry and protection mode are not patchable.
type Patch struct {
	EncryptedMetadata *EncryptedMetadata
	BlobCount         *int
	IndentMode        *string
	IndentSize        *int
	WrapMode          *string
	Theme             *string
}

// Repository maps gist ids onto the two object-store keys of a gist and
// implements the physical create/read/update/delete mechanics with the
// business invariants: size ceiling, version stamping, write ordering. It
// performs no authorization and no expiry policy — those belong to the
// service above it.
type Repository struct {
	store        store.Store
	maxBlobBytes int64

	// seams for tests
	now   func() time.Time
	newID func() string
}

// NewRepository constructs a Repository over the given store. A
// maxBlobBytes of zero or less falls back to DefaultMaxBlobBytes.
func NewRepository(s store.Store, maxBlobBytes int64) *Repository {
	if maxBlobBytes <= 0 {
		maxBlobBytes = DefaultMaxBlobBytes
	}
	return &Repository{
		store:        s,
		maxBlobBytes: maxBlobBytes,
		now:          time.Now,
		newID:        func() string { return uuid.NewString() },
	}
}

// Create assigns a fresh id, stamps system fields and writes the pair:
// metadata first, blob second. A metadata-only object with no blob reads as
// not found, so a crash between the two writes is a safe failure mode.
// Oversize blobs are rejected, never truncated.
func (r *Repository) Create(ctx context.Context, params CreateParams, blob []byte) (*Record, error) {
	if int64(len(blob)) > r.maxBlobBytes {
		return nil, fmt.Errorf("%w: blob is %d bytes, ceiling is %d", common.ErrSizeExceeded, len(blob), r.maxBlobBytes)
	}

	now := r.now().UTC().UnixMilli()
	rec := &Record{
		ID:                r.newID(),
		CreatedAt:         now,
		UpdatedAt:         now,
		ExpiresAt:         params.ExpiresAt,
		OneTimeView:       params.OneTimeView,
		EditPinHash:       params.EditPinHash,
		EditPinSalt:       params.EditPinSalt,
		TotalSize:         int64(len(blob)),
		BlobCount:         params.BlobCount,
		EncryptedMetadata: params.EncryptedMetadata,
		Version:           1,
		CurrentVersion:    1,
		IndentMode:        params.IndentMode,
		IndentSize:        params.IndentSize,
		WrapMode:          params.WrapMode,
		Theme:             params.Theme,
	}

	if err := r.putRecord(ctx, rec); err != nil {
		return nil, err
	}
	if err := r.putBlob(ctx, rec, blob); err != nil {
		return nil, err
	}
	return rec, nil
}

// GetRecord fetches a gist's metadata and confirms its blob exists. A gist
// whose blob is missing reads as not found: the pair only exists together.
func (r *Repository) GetRecord(ctx context.Context, id string) (*Record, error) {
	data, err := r.store.Get(ctx, MetadataKey(id))
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: decoding metadata for %s: %v", common.ErrStorageFault, id, err)
	}

	exists, err := r.store.Head(ctx, BlobKey(id))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, common.ErrNotFound
	}
	return &rec, nil
}

// Get returns the metadata record and the blob bytes, absent if either
// object is missing.
func (r *Repository) Get(ctx context.Context, id string) (*Record, []byte, error) {
	data, err := r.store.Get(ctx, MetadataKey(id))
	if err != nil {
		return nil, nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, nil, fmt.Errorf("%w: decoding metadata for %s: %v", common.ErrStorageFault, id, err)
	}

	blob, err := r.store.Get(ctx, BlobKey(id))
	if err != nil {
		return nil, nil, err
	}
	return &rec, blob, nil
}

// Update performs the optimistic-locked overwrite: the caller's version must
// match the stored version, otherwise storage is left untouched. On a match
// both version counters bump by one, total_size is recomputed and updated_at
// restamped, and only non-nil patch fields replace stored values. The blob
// is written before the metadata: an acknowledged version bump must always
// have its bytes durable, while the reverse order could acknowledge a
// version whose content never landed.
func (r *Repository) Update(ctx context.Context, id string, patch Patch, blob []byte, callerVersion int64) (int64, error) {
	if int64(len(blob)) > r.maxBlobBytes {
		return 0, fmt.Errorf("%w: blob is %d bytes, ceiling is %d", common.ErrSizeExceeded, len(blob), r.maxBlobBytes)
	}

	rec, err := r.GetRecord(ctx, id)
	if err != nil {
		return 0, err
	}
	if err := CheckVersion(rec, callerVersion); err != nil {
		return 0, err
	}

	rec.Version++
	rec.CurrentVersion = rec.Version
	rec.UpdatedAt = r.now().UTC().UnixMilli()
	rec.TotalSize = int64(len(blob))
	applyPatch(rec, patch)

	if err := r.putBlob(ctx, rec, blob); err != nil {
		return 0, err
	}
	if err := r.putRecord(ctx, rec); err != nil {
		return 0, err
	}
	return rec.Version, nil
}

// Delete removes both keys of a gist. Purely physical: authorization must
// already have happened above. Idempotent and safe to retry; the blob goes
// first so a half-deleted pair is still discoverable through its metadata.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, BlobKey(id)); err != nil {
		return err
	}
	return r.store.Delete(ctx, MetadataKey(id))
}

func (r *Repository) putRecord(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: encoding metadata for %s: %v", common.ErrStorageFault, rec.ID, err)
	}
	tags := store.Tags{
		"version":    strconv.FormatInt(rec.Version, 10),
		"created_at": strconv.FormatInt(rec.CreatedAt, 10),
	}
	return r.store.Put(ctx, MetadataKey(rec.ID), data, "application/json", tags)
}

func (r *Repository) putBlob(ctx context.Context, rec *Record, blob []byte) error {
	tags := store.Tags{"size": strconv.Itoa(len(blob))}
	return r.store.Put(ctx, BlobKey(rec.ID), blob, blobContentType, tags)
}

func applyPatch(rec *Record, patch Patch) {
	if patch.EncryptedMetadata != nil {
		rec.EncryptedMetadata = *patch.EncryptedMetadata
	}
	if patch.BlobCount != nil {
		rec.BlobCount = *patch.BlobCount
	}
	if patch.IndentMode != nil {
		rec.IndentMode = *patch.IndentMode
	}
	if patch.IndentSize != nil {
		rec.IndentSize = *patch.IndentSize
	}
	if patch.WrapMode != nil {
		rec.WrapMode = *patch.WrapMode
	}
	if patch.Theme != nil {
		rec.Theme = *patch.Theme
	}
}
