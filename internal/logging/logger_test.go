package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DEBUG, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, INFO, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestLoggerWritesFileAndFiltersConsole(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	Configure(Options{Dir: dir, ConsoleLevel: WARN, FileLevel: DEBUG, Console: &console})
	t.Cleanup(func() { Configure(Options{Dir: "logs", ConsoleLevel: INFO, FileLevel: TRACE}) })

	l, err := NewLogger("physics")
	require.NoError(t, err)
	l.Trace("невидимое")
	l.Debug("тик %d", 7)
	l.Warn("контакт")
	require.NoError(t, l.Close())

	assert.NotContains(t, console.String(), "тик 7")
	assert.Contains(t, console.String(), "[WARN] [physics] контакт")

	files, err := filepath.Glob(filepath.Join(dir, "physics_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "[DEBUG] [physics] тик 7")
	assert.NotContains(t, string(data), "невидимое")

	// после закрытия запись не падает
	l.Error("после закрытия")
}

func TestConsoleOnlyLogger(t *testing.T) {
	var console bytes.Buffer
	Configure(Options{ConsoleLevel: INFO, FileLevel: OFF, Console: &console})
	t.Cleanup(func() { Configure(Options{Dir: "logs", ConsoleLevel: INFO, FileLevel: TRACE}) })

	l, err := NewLogger("render")
	require.NoError(t, err)
	l.Info("кадр")
	assert.Contains(t, console.String(), "[INFO] [render] кадр")
	assert.NoError(t, l.Close())
}

func TestManagerReusesLoggers(t *testing.T) {
	Configure(Options{ConsoleLevel: OFF, FileLevel: OFF})
	t.Cleanup(func() { Configure(Options{Dir: "logs", ConsoleLevel: INFO, FileLevel: TRACE}) })

	lm := &LoggerManager{loggers: make(map[string]*Logger)}
	a, err := lm.GetLogger("storage")
	require.NoError(t, err)
	b, err := lm.GetLogger("storage")
	require.NoError(t, err)
	assert.Same(t, a, b)

	require.NoError(t, lm.SetLogLevel("storage", ERROR, ERROR))
	assert.Error(t, lm.SetLogLevel("missing", ERROR, ERROR))
	assert.Equal(t, []string{"storage"}, lm.ListComponents())
	assert.NoError(t, lm.CloseAll())
}
