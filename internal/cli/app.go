// Package cli implements the operator command-line tool: inspection, reads,
// authorized deletes, physical purges and inventory reports over a
// configured store backend.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gistvault/gistvault/internal/config"
	"github.com/gistvault/gistvault/internal/cryptox"
	"github.com/gistvault/gistvault/internal/gists"
	"github.com/gistvault/gistvault/internal/inventory"
	"github.com/gistvault/gistvault/internal/logging"
	"github.com/gistvault/gistvault/internal/store"
	"github.com/gistvault/gistvault/internal/store/memory"
	"github.com/gistvault/gistvault/internal/store/postgres"
	"github.com/gistvault/gistvault/internal/store/s3"
)

type App struct {
	config  *config.Config
	repo    *gists.Repository
	service *gists.Service
	scanner *inventory.Scanner
	log     logging.Logger
	out     io.Writer
}

// NewApp wires the configured store backend into the repository, service and
// scanner. The store handle is built here and injected everywhere — there is
// no shared global client.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	st, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newAppWithStore(cfg, st, log, os.Stdout), nil
}

func newAppWithStore(cfg *config.Config, st store.Store, log logging.Logger, out io.Writer) *App {
	hasher := cryptox.NewPBKDF2PinHasher(cfg.PinHashIterations)
	repo := gists.NewRepository(st, cfg.MaxBlobBytes)
	auth := gists.NewAuthorizer(hasher)

	return &App{
		config:  cfg,
		repo:    repo,
		service: gists.NewService(repo, auth, log),
		scanner: inventory.NewScanner(st, log, cfg.InventoryPageSize),
		log:     log,
		out:     out,
	}
}

func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendS3:
		return s3.NewStore(ctx, s3.Options{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
		})
	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		if err := postgres.RunMigrations(ctx, db); err != nil {
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		return postgres.NewStore(db), nil
	case config.BackendMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// Run dispatches the first positional argument as a subcommand. Config flags
// may precede it; they were already consumed by config.LoadConfig.
func (a *App) Run(ctx context.Context, args []string) error {
	cmd, rest := splitCommand(args)

	switch cmd {
	case "stat":
		return a.Stat(ctx, rest)
	case "get":
		return a.Get(ctx, rest)
	case "rm":
		return a.Rm(ctx, rest)
	case "purge":
		return a.Purge(ctx, rest)
	case "inventory":
		return a.Inventory(ctx)
	case "", "help":
		a.printUsage()
		return nil
	default:
		a.printUsage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// withTimeout bounds one store operation. Timeouts belong to callers, never
// to the storage layer itself.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

// splitID pulls a leading positional id off args so subcommand flags can
// appear on either side of it (stdlib flag parsing stops at the first
// positional argument).
func splitID(args []string) (string, []string) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return args[0], args[1:]
	}
	return "", args
}

// splitCommand finds the first positional argument, skipping config flags
// and their values, and returns it with the remaining arguments.
func splitCommand(args []string) (string, []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "-") {
			// "-flag value" occupies two slots, "-flag=value" one.
			if !strings.Contains(arg, "=") && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
			}
			continue
		}
		return arg, args[i+1:]
	}
	return "", nil
}

func (a *App) printUsage() {
	fmt.Fprintln(a.out, `Usage: gvault [config flags] <command> [args]

Commands:
  stat <id>                     show a gist's metadata record
  get <id> [-o file] [-burn]    fetch a gist's blob; -burn deletes a
                                one-time-view gist after the read
  rm <id> [-pin v | -proof v]   delete a gist through the authorization
                                policy; an empty -pin prompts without echo
  purge <id>                    physically remove a gist pair, bypassing
                                policy (for expired or stranded gists)
  inventory                     aggregate report over all stored gists`)
}

func formatTime(ms int64) string {
	if ms == 0 {
		return "never"
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
