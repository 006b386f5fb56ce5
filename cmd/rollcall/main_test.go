package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/app"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/config"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dataDir := t.TempDir()
	t.Setenv("ENV", "test")
	t.Setenv("STORAGE_DRIVER", "csv")
	t.Setenv("DATA_DIR", dataDir)
	t.Setenv("PROVIDER_TYPE", "mock")
	t.Setenv("JWT_SECRET", "cli-test-secret")

	cfg, err := config.Load()
	require.NoError(t, err)
	a, err := app.Open(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	hire := time.Now().UTC().AddDate(0, -3, 0)
	require.NoError(t, a.Employees.Create(ctx, &domain.Employee{EmployeeID: "EMP001", Name: "Ana", HireDate: hire}))
	require.NoError(t, a.Employees.Create(ctx, &domain.Employee{EmployeeID: "EMP002", Name: "Bruno", HireDate: hire}))
	return dataDir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func faceImage(seed byte) []byte {
	return bytes.Repeat([]byte{seed}, 4096)
}

func TestEnrollCaptureAlerts(t *testing.T) {
	setupEnv(t)

	imgPath := filepath.Join(t.TempDir(), "ana.jpg")
	require.NoError(t, os.WriteFile(imgPath, faceImage(7), 0o600))

	out, err := execute(t, "enroll", "--employee", "EMP001", "--image", imgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "enrolled EMP001")

	frames := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(frames, "0001.jpg"), faceImage(7), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(frames, "0002.jpg"), faceImage(7), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(frames, "0003.jpg"), faceImage(99), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(frames, "notes.txt"), []byte("skip me"), 0o600))

	out, err = execute(t, "capture", "--dir", frames)
	require.NoError(t, err)
	assert.Contains(t, out, "frames:     3")
	assert.Contains(t, out, "recorded:   1")
	assert.Contains(t, out, "suppressed: 1")
	assert.Contains(t, out, "unknown:    1")

	out, err = execute(t, "alerts", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "employee_id,kind,severity")
	assert.Contains(t, out, "EMP002,inactivity")

	out, err = execute(t, "alerts")
	require.NoError(t, err)
	assert.Contains(t, out, "EMPLOYEE")
	assert.Contains(t, out, "EMP002")
}

func TestAlerts_UnknownFormat(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "alerts", "--format", "pdf")
	assert.ErrorContains(t, err, "unknown format")
}

func TestEnroll_RequiresFlags(t *testing.T) {
	_, err := execute(t, "enroll", "--employee", "EMP001")
	assert.Error(t, err)
}

func TestCapture_MissingDirectory(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "capture", "--dir", filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Contains(t, out, "errors:     1")
}

func TestMigrate_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("DATABASE_URL"))

	_, err := execute(t, "migrate", "status")
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestMigrate_ForceNeedsNumericVersion(t *testing.T) {
	_, err := execute(t, "migrate", "force", "latest")
	assert.ErrorContains(t, err, "version must be a number")

	_, err = execute(t, "migrate", "force")
	assert.Error(t, err)
}
