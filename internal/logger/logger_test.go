package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestInitLevels(t *testing.T) {
	require.NoError(t, Init("debug", "json", ""))
	require.Equal(t, logrus.DebugLevel, Log.GetLevel())

	require.NoError(t, Init("warn", "text", ""))
	require.Equal(t, logrus.WarnLevel, Log.GetLevel())

	require.Error(t, Init("loud", "text", ""))
	require.Error(t, Init("info", "xml", ""))
}

func TestInitWritesFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init("info", "json", dir))
	t.Cleanup(func() { Log.ReplaceHooks(make(logrus.LevelHooks)) })

	WithPrefix("test").Error("boom")

	data, err := os.ReadFile(filepath.Join(dir, "bicle_error.log"))
	require.NoError(t, err)
	require.Contains(t, string(data), "boom")
}

func TestOrDefault(t *testing.T) {
	e := Log.WithField("prefix", "mine")
	require.Same(t, e, OrDefault(e, "other"))
	require.Equal(t, "other", OrDefault(nil, "other").Data["prefix"])
}
