package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLogFileName(t *testing.T) {
	at := time.Date(2024, 1, 10, 9, 30, 5, 0, time.UTC)
	assert.Equal(t, filepath.Join("logs", "prod_2024-01-10_09-30-05.log"), LogFileName("logs", "prod", at))
}

func TestInitLoggerWithOptions_WritesDebugJSONToFile(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2024, 1, 10, 9, 30, 5, 0, time.UTC)

	logger, err := InitLoggerWithOptions("test", Options{
		Dir:          dir,
		ConsoleLevel: zapcore.ErrorLevel,
		Now:          func() time.Time { return at },
	})
	require.NoError(t, err)

	logger.Debug("Loaded active assignments for staff", zap.Int("count", 2))
	_ = logger.Sync()

	data, err := os.ReadFile(LogFileName(dir, "test", at))
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "Loaded active assignments for staff", entry["msg"])
	assert.Equal(t, "test", entry["env"])
	assert.EqualValues(t, 2, entry["count"])
	assert.Contains(t, entry, "timestamp")
}
