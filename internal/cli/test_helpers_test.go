package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ecocare/internal/model"
	"ecocare/internal/repository/sqlite"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// testGlobals points the commands at a fresh database file.
func testGlobals(t *testing.T) *GlobalFlags {
	t.Helper()
	return &GlobalFlags{DB: filepath.Join(t.TempDir(), "data", "ecocare.db")}
}

// withStore opens the command database directly, for setup and assertions.
func withStore(t *testing.T, g *GlobalFlags, fn func(repo *sqlite.DetectionRepository)) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(g.DB), 0755))
	db, err := sqlite.New(g.DB)
	require.NoError(t, err)
	defer db.Close()
	fn(sqlite.NewDetectionRepository(db))
}

func insertDetections(t *testing.T, g *GlobalFlags, detections ...model.Detection) {
	t.Helper()
	withStore(t, g, func(repo *sqlite.DetectionRepository) {
		require.NoError(t, repo.InsertBatch(context.Background(), detections))
	})
}
