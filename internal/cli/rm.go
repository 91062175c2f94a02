package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/gistvault/gistvault/internal/common"
	"github.com/gistvault/gistvault/internal/gists"
)

// Rm deletes a gist through the authorization policy. PIN-protected gists
// take -pin (an empty value prompts without echo); one-time-view gists take
// -proof. Gists with neither protection are always rejected.
func (a *App) Rm(ctx context.Context, args []string) error {
	id, rest := splitID(args)
	fs := flag.NewFlagSet("rm", flag.ContinueOnError)
	pin := fs.String("pin", "", "edit PIN (empty value prompts)")
	proof := fs.String("proof", "", "deletion proof for one-time-view gists")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if id == "" {
		id = fs.Arg(0)
	}
	if id == "" {
		return errors.New("usage: rm <id> [-pin v | -proof v]")
	}

	cred := gists.Credential{Proof: *proof, PIN: []byte(*pin)}
	defer common.WipeByteArray(cred.PIN)

	if *proof == "" && *pin == "" {
		// No credential supplied: look at the record to decide whether a
		// PIN prompt makes sense.
		statCtx, cancel := a.withTimeout(ctx)
		rec, err := a.repo.GetRecord(statCtx, id)
		cancel()
		if err != nil {
			return err
		}
		switch {
		case rec.OneTimeView:
			return errors.New("one-time-view gists require -proof")
		case rec.PinProtected():
			entered, err := GetPin(a.out)
			if err != nil {
				return err
			}
			cred.PIN = entered
		}
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.service.Delete(ctx, id, cred); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted %s\n", id)
	return nil
}
