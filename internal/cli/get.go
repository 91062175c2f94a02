package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/gistvault/gistvault/internal/gists"
)

// Get fetches a gist through the service (expiry enforced) and writes the
// blob to the output file or stdout. With -burn it performs the explicit
// second step of the one-time-view lifecycle: a proof-authorized delete
// after the read. A failed burn is logged, never fatal — the content was
// already legitimately served.
func (a *App) Get(ctx context.Context, args []string) error {
	id, rest := splitID(args)
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	outFile := fs.String("o", "", "write blob to file instead of stdout")
	burn := fs.Bool("burn", false, "delete a one-time-view gist after reading")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if id == "" {
		id = fs.Arg(0)
	}
	if id == "" {
		return errors.New("usage: get <id> [-o file] [-burn]")
	}

	readCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	rec, blob, err := a.service.Read(readCtx, id)
	if err != nil {
		return err
	}

	if *outFile != "" {
		if err := os.WriteFile(*outFile, blob, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", *outFile, err)
		}
	} else {
		if _, err := a.out.Write(blob); err != nil {
			return err
		}
	}

	if *burn {
		a.burn(ctx, rec)
	}
	return nil
}

func (a *App) burn(ctx context.Context, rec *gists.Record) {
	if !rec.OneTimeView {
		a.log.Warn(ctx, "burn requested for a gist that is not one-time-view", "id", rec.ID)
		return
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	cred := gists.Credential{Proof: gists.DeletionProof(rec)}
	if err := a.service.Delete(ctx, rec.ID, cred); err != nil {
		a.log.Warn(ctx, "one-time-view delete failed after read", "id", rec.ID, "error", err)
	}
}
