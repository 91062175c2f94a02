package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
)

// Stat prints a gist's metadata record. It reads through the repository,
// below the expiry policy, so operators can inspect expired gists too.
func (a *App) Stat(ctx context.Context, args []string) error {
	id, rest := splitID(args)
	fs := flag.NewFlagSet("stat", flag.ContinueOnError)
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if id == "" {
		id = fs.Arg(0)
	}
	if id == "" {
		return errors.New("usage: stat <id>")
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	rec, err := a.repo.GetRecord(ctx, id)
	if err != nil {
		return err
	}

	protection := "none"
	switch {
	case rec.OneTimeView:
		protection = "one-time-view"
	case rec.PinProtected():
		protection = "pin"
	}

	fmt.Fprintf(a.out, "id:          %s\n", rec.ID)
	fmt.Fprintf(a.out, "created:     %s\n", formatTime(rec.CreatedAt))
	fmt.Fprintf(a.out, "updated:     %s\n", formatTime(rec.UpdatedAt))
	fmt.Fprintf(a.out, "expires:     %s\n", formatTime(rec.ExpiresAt))
	fmt.Fprintf(a.out, "version:     %d\n", rec.CurrentVersion)
	fmt.Fprintf(a.out, "size:        %d\n", rec.TotalSize)
	fmt.Fprintf(a.out, "files:       %d\n", rec.BlobCount)
	fmt.Fprintf(a.out, "protection:  %s\n", protection)
	return nil
}
