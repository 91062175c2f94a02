// Package inventory implements aggregate statistics scans over the store's
// paginated key listing. Scans run outside any request path; they are the
// bulk consumer the cursor API exists for.
package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gistvault/gistvault/internal/common"
	"github.com/gistvault/gistvault/internal/gists"
	"github.com/gistvault/gistvault/internal/logging"
	"github.com/gistvault/gistvault/internal/store"
)

// DefaultPageSize is the listing page size used when none is configured.
const DefaultPageSize = 500

// Report aggregates the state of every gist in the bucket at scan time.
type Report struct {
	Total        int
	Active       int
	Expired      int
	OneTimeView  int
	PinProtected int
	Unprotected  int

	// TotalBytes sums total_size across all decodable records.
	TotalBytes int64

	// Orphaned counts metadata records whose blob is missing: the stranded
	// leftovers of a create whose second write never completed. They read
	// as not found through the repository and can only be purged by ops.
	Orphaned int

	// Undecodable counts metadata objects that failed JSON decoding. They
	// are logged and skipped, never fatal to the scan.
	Undecodable int
}

// Scanner walks the metadata namespace page by page.
type Scanner struct {
	store    store.Store
	log      logging.Logger
	pageSize int

	now func() time.Time // test seam
}

// NewScanner constructs a Scanner. A pageSize of zero or less falls back to
// DefaultPageSize.
func NewScanner(s store.Store, log logging.Logger, pageSize int) *Scanner {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Scanner{store: s, log: log, pageSize: pageSize, now: time.Now}
}

// Scan lists every metadata record, decodes it and accumulates the report.
// A record deleted between the listing and the fetch is skipped. Storage
// faults abort the scan.
func (s *Scanner) Scan(ctx context.Context) (*Report, error) {
	report := &Report{}
	now := s.now()

	cursor := ""
	for {
		page, err := s.store.List(ctx, gists.MetadataPrefix, s.pageSize, cursor)
		if err != nil {
			return nil, fmt.Errorf("listing metadata: %w", err)
		}

		for _, key := range page.Keys {
			if err := s.scanOne(ctx, key, now, report); err != nil {
				return nil, err
			}
		}

		if !page.Truncated {
			return report, nil
		}
		cursor = page.NextCursor
	}
}

func (s *Scanner) scanOne(ctx context.Context, key string, now time.Time, report *Report) error {
	id, ok := gists.IDFromMetadataKey(key)
	if !ok {
		s.log.Warn(ctx, "skipping foreign key in metadata namespace", "key", key)
		return nil
	}

	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Deleted between the listing and the fetch.
			return nil
		}
		return fmt.Errorf("fetching %s: %w", key, err)
	}

	var rec gists.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		report.Undecodable++
		s.log.Warn(ctx, "undecodable metadata record", "key", key, "error", err)
		return nil
	}

	report.Total++
	report.TotalBytes += rec.TotalSize

	if rec.Expired(now) {
		report.Expired++
	} else {
		report.Active++
	}

	switch {
	case rec.OneTimeView:
		report.OneTimeView++
	case rec.PinProtected():
		report.PinProtected++
	default:
		report.Unprotected++
	}

	exists, err := s.store.Head(ctx, gists.BlobKey(id))
	if err != nil {
		return fmt.Errorf("checking blob for %s: %w", id, err)
	}
	if !exists {
		report.Orphaned++
		s.log.Warn(ctx, "metadata record without blob", "id", id)
	}
	return nil
}
