package cli

import (
	"context"
	"fmt"
)

// Inventory scans every stored gist and prints the aggregate report.
// The scan pages the metadata namespace; it is not bounded by the
// per-request timeout since it can legitimately take a while on a large
// bucket.
func (a *App) Inventory(ctx context.Context) error {
	report, err := a.scanner.Scan(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "total:         %d\n", report.Total)
	fmt.Fprintf(a.out, "active:        %d\n", report.Active)
	fmt.Fprintf(a.out, "expired:       %d\n", report.Expired)
	fmt.Fprintf(a.out, "one-time-view: %d\n", report.OneTimeView)
	fmt.Fprintf(a.out, "pin-protected: %d\n", report.PinProtected)
	fmt.Fprintf(a.out, "unprotected:   %d\n", report.Unprotected)
	fmt.Fprintf(a.out, "total bytes:   %d\n", report.TotalBytes)
	fmt.Fprintf(a.out, "orphaned:      %d\n", report.Orphaned)
	fmt.Fprintf(a.out, "undecodable:   %d\n", report.Undecodable)
	return nil
}
