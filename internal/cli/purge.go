package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
)

// Purge physically removes a gist pair through the repository, below the
// authorization policy. It exists for expired gists and for stranded
// metadata whose blob never landed — neither has a policy-level deletion
// path. Idempotent: purging an absent id succeeds.
func (a *App) Purge(ctx context.Context, args []string) error {
	id, rest := splitID(args)
	fs := flag.NewFlagSet("purge", flag.ContinueOnError)
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if id == "" {
		id = fs.Arg(0)
	}
	if id == "" {
		return errors.New("usage: purge <id>")
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.repo.Delete(ctx, id); err != nil {
		return err
	}

	a.log.Info(ctx, "gist purged", "id", id)
	fmt.Fprintf(a.out, "purged %s\n", id)
	return nil
}
