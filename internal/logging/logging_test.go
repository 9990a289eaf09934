package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesRotatingFile(t *testing.T) {
	dir := t.TempDir()
	prev := log.Logger
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})

	require.NoError(t, Init(Options{Verbose: true, Quiet: true, Dir: dir}))
	require.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	log.Debug().Str("issue", "PROJ-1").Msg("hello")

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	require.Contains(t, string(data), `"issue":"PROJ-1"`)
	require.Contains(t, string(data), `"message":"hello"`)
}

func TestInit_LogsFolderFromEnv(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	t.Setenv("LOGS_FOLDER", dir)
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	require.NoError(t, Init(Options{Quiet: true}))
	require.DirExists(t, dir)
}
