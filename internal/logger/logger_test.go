package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestResolveLogFilePathDefaultDir(t *testing.T) {
	tmpDir := t.TempDir()
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = os.Chdir(oldWD)
	})
	require.NoError(t, os.Chdir(tmpDir))

	got, err := resolveLogFilePath(Options{})
	require.NoError(t, err)

	realTmpDir, err := filepath.EvalSymlinks(tmpDir)
	require.NoError(t, err)
	realGot, err := filepath.EvalSymlinks(filepath.Dir(got))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(realTmpDir, defaultLogDirName), realGot)
	assert.Equal(t, defaultLogFilename, filepath.Base(got))
}

func TestNewJSONWritesToConfiguredFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New(Options{Format: "json", Dir: tmpDir, Filename: "run.log"})
	log.Info("json-log-test")
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "run.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `"message":"json-log-test"`)
}

func TestNewConsoleDoesNotWriteFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New(Options{Format: "console", Dir: tmpDir, Filename: "console.log"})
	log.Info("console-log-test")
	_ = log.Sync()

	_, err := os.Stat(filepath.Join(tmpDir, "console.log"))
	assert.True(t, os.IsNotExist(err))
}

func TestNewLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"", zapcore.InfoLevel},
		{"nonsense", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log := New(Options{Level: tt.level})
			assert.True(t, log.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, log.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestZFallsBack(t *testing.T) {
	old := L
	t.Cleanup(func() { L = old })

	L = nil
	assert.NotNil(t, Z())
	assert.NotNil(t, S())
}
