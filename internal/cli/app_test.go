package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/gistvault/gistvault/internal/common"
	"github.com/gistvault/gistvault/internal/config"
	"github.com/gistvault/gistvault/internal/gists"
	"github.com/gistvault/gistvault/internal/logging"
	"github.com/gistvault/gistvault/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*App, *memory.Store, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StoreBackend = config.BackendMemory
	cfg.PinHashIterations = 1000

	mem := memory.NewStore()
	out := &bytes.Buffer{}
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return newAppWithStore(cfg, mem, log, out), mem, out
}

func seed(t *testing.T, app *App, req gists.CreateRequest, blob []byte) *gists.Record {
	t.Helper()
	rec, err := app.service.Create(context.Background(), req, blob)
	require.NoError(t, err)
	return rec
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCmd  string
		wantRest []string
	}{
		{"bare command", []string{"stat", "g1"}, "stat", []string{"g1"}},
		{"config flags before command", []string{"-b", "bucket", "-s", "memory", "rm", "g1", "-proof", "p"}, "rm", []string{"g1", "-proof", "p"}},
		{"equals form", []string{"-b=bucket", "inventory"}, "inventory", []string{}},
		{"no command", []string{"-b", "bucket"}, "", nil},
		{"empty", nil, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, rest := splitCommand(tt.args)
			assert.Equal(t, tt.wantCmd, cmd)
			if len(tt.wantRest) == 0 {
				assert.Empty(t, rest)
			} else {
				assert.Equal(t, tt.wantRest, rest)
			}
		})
	}
}

func TestRunUnknownCommand(t *testing.T) {
	app, _, _ := newTestApp(t)

	err := app.Run(context.Background(), []string{"frobnicate"})
	assert.ErrorContains(t, err, "unknown command")
}

func TestRunNoCommandPrintsUsage(t *testing.T) {
	app, _, out := newTestApp(t)

	require.NoError(t, app.Run(context.Background(), nil))
	assert.Contains(t, out.String(), "Usage:")
}

func TestStatCommand(t *testing.T) {
	app, _, out := newTestApp(t)
	rec := seed(t, app, gists.CreateRequest{OneTimeView: true}, []byte("12345"))

	err := app.Run(context.Background(), []string{"stat", rec.ID})
	require.NoError(t, err)

	assert.Contains(t, out.String(), rec.ID)
	assert.Contains(t, out.String(), "one-time-view")
	assert.Contains(t, out.String(), "size:        5")
}

func TestStatShowsExpiredGists(t *testing.T) {
	app, _, out := newTestApp(t)
	rec := seed(t, app, gists.CreateRequest{ExpiresAt: 1}, []byte("x"))

	// The service refuses expired reads, but stat goes through the
	// repository below the policy.
	_, _, err := app.service.Read(context.Background(), rec.ID)
	require.True(t, errors.Is(err, common.ErrExpired))

	require.NoError(t, app.Stat(context.Background(), []string{rec.ID}))
	assert.Contains(t, out.String(), rec.ID)
}

func TestGetWritesBlobToStdout(t *testing.T) {
	app, _, out := newTestApp(t)
	rec := seed(t, app, gists.CreateRequest{}, []byte("ciphertext"))

	err := app.Run(context.Background(), []string{"get", rec.ID})
	require.NoError(t, err)
	assert.Equal(t, "ciphertext", out.String())
}

func TestGetWritesBlobToFile(t *testing.T) {
	app, _, _ := newTestApp(t)
	rec := seed(t, app, gists.CreateRequest{}, []byte{0x01, 0x02})

	path := filepath.Join(t.TempDir(), "blob.bin")
	err := app.Get(context.Background(), []string{"-o", path, rec.ID})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, data)
}

func TestGetBurnDeletesOneTimeView(t *testing.T) {
	app, mem, _ := newTestApp(t)
	rec := seed(t, app, gists.CreateRequest{OneTimeView: true}, []byte("once"))

	err := app.Get(context.Background(), []string{"-burn", rec.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, mem.Len(), "burn must remove both objects")
}

func TestGetBurnIgnoredForRegularGists(t *testing.T) {
	app, mem, _ := newTestApp(t)
	rec := seed(t, app, gists.CreateRequest{}, []byte("keep"))

	err := app.Get(context.Background(), []string{"-burn", rec.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, mem.Len())
}

func TestRmWithProof(t *testing.T) {
	app, mem, out := newTestApp(t)
	rec := seed(t, app, gists.CreateRequest{OneTimeView: true}, []byte("x"))

	err := app.Rm(context.Background(), []string{"-proof", gists.DeletionProof(rec), rec.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, mem.Len())
	assert.Contains(t, out.String(), "deleted "+rec.ID)
}

func TestRmWithPin(t *testing.T) {
	app, mem, _ := newTestApp(t)
	rec := seed(t, app, gists.CreateRequest{Pin: []byte("1234")}, []byte("x"))

	err := app.Rm(context.Background(), []string{"-pin", "4321", rec.ID})
	assert.True(t, errors.Is(err, common.ErrUnauthorized))

	err = app.Rm(context.Background(), []string{"-pin", "1234", rec.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, mem.Len())
}

func TestRmPromptsWhenPinProtectedAndNoCredential(t *testing.T) {
	app, mem, _ := newTestApp(t)
	rec := seed(t, app, gists.CreateRequest{Pin: []byte("1234")}, []byte("x"))

	orig := readPassword
	defer func() { readPassword = orig }()
	readPassword = func(fd int) ([]byte, error) { return []byte("1234"), nil }

	err := app.Rm(context.Background(), []string{rec.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, mem.Len())
}

func TestRmOneTimeViewWithoutProof(t *testing.T) {
	app, _, _ := newTestApp(t)
	rec := seed(t, app, gists.CreateRequest{OneTimeView: true}, []byte("x"))

	err := app.Rm(context.Background(), []string{rec.ID})
	assert.ErrorContains(t, err, "-proof")
}

func TestRmUnprotectedDenied(t *testing.T) {
	app, mem, _ := newTestApp(t)
	rec := seed(t, app, gists.CreateRequest{}, []byte("x"))

	err := app.Rm(context.Background(), []string{rec.ID})
	assert.True(t, errors.Is(err, common.ErrUnauthorized))
	assert.Equal(t, 2, mem.Len())
}

func TestPurgeBypassesPolicy(t *testing.T) {
	app, mem, out := newTestApp(t)
	rec := seed(t, app, gists.CreateRequest{}, []byte("x"))

	// Undeletable through the service, but purge is below policy.
	err := app.Run(context.Background(), []string{"purge", rec.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, mem.Len())
	assert.Contains(t, out.String(), "purged "+rec.ID)
}

func TestInventoryCommand(t *testing.T) {
	app, _, out := newTestApp(t)
	seed(t, app, gists.CreateRequest{}, []byte("12345"))
	seed(t, app, gists.CreateRequest{OneTimeView: true}, []byte("123"))

	err := app.Run(context.Background(), []string{"inventory"})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "total:         2")
	assert.Contains(t, out.String(), "one-time-view: 1")
	assert.Contains(t, out.String(), "total bytes:   8")
}

func TestNewStoreMemoryBackend(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StoreBackend = config.BackendMemory

	st, err := newStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, st)
}

func TestNewStoreUnknownBackend(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StoreBackend = "tape"

	_, err := newStore(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown store backend")
}
