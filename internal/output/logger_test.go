package output

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func newBufferedLogger() (*Logger, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &Logger{out: &out, errOut: &errOut}, &out, &errOut
}

func TestLoggerWritesToExpectedStreams(t *testing.T) {
	color.NoColor = true
	l, out, errOut := newBufferedLogger()

	l.Info("hello %s", "world")
	l.Success("done")
	l.Bold("Balance: %d", 7)
	l.Cyan("highlight")
	l.Warn("careful")
	l.Error("broken")

	require.Contains(t, out.String(), "hello world")
	require.Contains(t, out.String(), "✓ done")
	require.Contains(t, out.String(), "Balance: 7")
	require.Contains(t, out.String(), "highlight")
	require.Contains(t, errOut.String(), "Warning: careful")
	require.Contains(t, errOut.String(), "Error: broken")
}

func TestLoggerJSONModeSuppressesText(t *testing.T) {
	color.NoColor = true
	l, out, errOut := newBufferedLogger()
	l.SetJSONMode(true)

	l.Info("hidden")
	l.Bold("hidden")
	l.Cyan("hidden")
	l.Warn("hidden")
	l.Error("hidden")
	l.Success("hidden")

	require.Empty(t, out.String())
	require.Empty(t, errOut.String())
}

func TestLoggerDebugGatedByVerbose(t *testing.T) {
	color.NoColor = true
	l, out, _ := newBufferedLogger()

	l.Debug("quiet")
	require.Empty(t, out.String())
	require.False(t, l.IsVerbose())

	l.SetVerbose(true)
	l.Debug("loud")
	require.True(t, l.IsVerbose())
	require.Contains(t, out.String(), "[DEBUG] loud")
}

// The command files call the package-level wrappers; every Logger method used
// there must have one.
func TestPackageLevelWrappers(t *testing.T) {
	color.NoColor = true
	l, out, errOut := newBufferedLogger()

	prev := DefaultLogger
	DefaultLogger = l
	defer func() { DefaultLogger = prev }()

	Info("info line")
	Success("success line")
	Bold("bold line")
	Cyan("cyan line")
	Warn("warn line")
	Error("error line")

	require.Contains(t, out.String(), "info line")
	require.Contains(t, out.String(), "success line")
	require.Contains(t, out.String(), "bold line")
	require.Contains(t, out.String(), "cyan line")
	require.Contains(t, errOut.String(), "warn line")
	require.Contains(t, errOut.String(), "error line")
}
