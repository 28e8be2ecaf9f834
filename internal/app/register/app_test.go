package register

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"gophregister/internal/app/register/config"
	"gophregister/internal/domain/provision"
	"gophregister/internal/domain/shift"
	domainsync "gophregister/internal/domain/sync"
)

func testConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Env:               config.EnvLocal,
		ServerAddress:     strings.TrimPrefix(serverURL, "http://"),
		APIAddress:        "127.0.0.1:0",
		ConfigDir:         dir,
		DataPath:          filepath.Join(dir, "register.db"),
		TokenPath:         filepath.Join(dir, "device.token"),
		APITokenPath:      filepath.Join(dir, "local_api_token"),
		StatePath:         filepath.Join(dir, "state.json"),
		DeviceName:        "caja-1",
		PullInterval:      time.Hour,
		PushInterval:      time.Hour,
		HeartbeatInterval: time.Hour,
		SyncMaxBackoff:    time.Hour,
		SyncWindowDays:    30,
		RetentionDays:     30,
		Listener:          config.ListenerPoll,
		PollInterval:      time.Hour,
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	app, err := New(cfg, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() {
		app.tracker.Stop()
		_ = app.Close()
	})
	return app
}

func TestApp_DeviceIdentityPersists(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.BranchID = "b1"

	first, err := New(cfg, slog.Default())
	require.NoError(t, err)
	deviceID := first.DeviceID()
	require.NotEmpty(t, deviceID)
	assert.Equal(t, "b1", first.BranchID())
	require.NoError(t, first.Close())

	second := newTestApp(t, cfg)
	assert.Equal(t, deviceID, second.DeviceID())
	assert.False(t, second.Provisioned())
}

func TestApp_CredentialsLifecycle(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	app := newTestApp(t, cfg)
	ctx := context.Background()

	_, err := app.Token()
	require.Error(t, err)

	err = app.SaveCredentials(ctx, provision.Credentials{Token: "device-token", OrganizationID: "org1"})
	require.NoError(t, err)

	token, err := app.Token()
	require.NoError(t, err)
	assert.Equal(t, "device-token", token)
	assert.True(t, app.Provisioned())
	assert.Equal(t, "org1", app.OrganizationID())

	require.NoError(t, app.SignOut(ctx))
	assert.False(t, app.Provisioned())
	assert.Empty(t, app.OrganizationID())
	assert.NoFileExists(t, cfg.TokenPath)
}

func TestApp_SelectBranch(t *testing.T) {
	app := newTestApp(t, testConfig(t, "http://127.0.0.1:1"))
	ctx := context.Background()

	assert.ErrorIs(t, app.SelectBranch(ctx, "", ""), domainsync.ErrNoBranch)

	// справочник филиалов пуст, принимается любой
	require.NoError(t, app.SelectBranch(ctx, "b1", "op1"))
	assert.Equal(t, "b1", app.BranchID())
	assert.Equal(t, "op1", app.OperatorID())

	_, err := app.storage.DB().Exec(`INSERT INTO branches (id, name) VALUES ('b1', 'Centro')`)
	require.NoError(t, err)

	assert.ErrorIs(t, app.SelectBranch(ctx, "b9", ""), domainsync.ErrUnknownBranch)
	assert.Equal(t, "b1", app.BranchID())
	assert.Equal(t, "op1", app.OperatorID())
}

func TestApp_PullRequiresProvisioning(t *testing.T) {
	app := newTestApp(t, testConfig(t, "http://127.0.0.1:1"))

	_, err := app.PullNow(context.Background())
	assert.ErrorIs(t, err, provision.ErrNotProvisioned)
	assert.NoError(t, app.pullCycle(context.Background()))
}

func TestApp_UnauthorizedForcesSignOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	cfg.BranchID = "b1"
	app := newTestApp(t, cfg)
	ctx := context.Background()

	require.NoError(t, app.SaveCredentials(ctx, provision.Credentials{Token: "device-token", OrganizationID: "org1"}))

	_, err := app.PullNow(ctx)
	assert.ErrorIs(t, err, domainsync.ErrUnauthorized)

	assert.False(t, app.Provisioned())
	notices := app.Notices.List()
	require.NotEmpty(t, notices)
	assert.Equal(t, signedOutNotice, notices[len(notices)-1].Message)
}

func TestApp_RefreshTracksOpenShift(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.BranchID = "b1"
	app := newTestApp(t, cfg)
	ctx := context.Background()

	res, err := app.Shifts.Open(ctx, shift.OpenRequest{
		BranchID:    "b1",
		OperatorID:  "op1",
		InitialCash: decimal.NewFromInt(50000),
	})
	require.NoError(t, err)

	// наблюдатель только запрашивает обновление
	assert.Len(t, app.refresh, 1)
	assert.Empty(t, app.tracker.Current())

	<-app.refresh
	app.refreshTracked(ctx)
	assert.Equal(t, res.Shift.ID, app.tracker.Current())
	assert.Equal(t, res.Shift.ID, app.Listener.Tracked())

	_, err = app.Shifts.Close(ctx, shift.CloseRequest{ShiftID: res.Shift.ID, FinalCash: decimal.NewFromInt(50000)})
	require.NoError(t, err)

	<-app.refresh
	app.refreshTracked(ctx)
	assert.Empty(t, app.tracker.Current())
}

func TestApp_ChecklistSurvivesRestart(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")

	first, err := New(cfg, slog.Default())
	require.NoError(t, err)
	_, err = first.Checklist.Mark(shift.Items()[0], true)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := newTestApp(t, cfg)
	assert.Equal(t, []string{shift.Items()[0]}, second.Checklist.State().Items)
}
