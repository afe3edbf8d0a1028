package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/qterm/internal/config"
)

func withTempHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old, hadOld := os.LookupEnv("QTERM_HOME")
	require.NoError(t, os.Setenv("QTERM_HOME", dir))
	config.ResetForTest()
	t.Cleanup(func() {
		if hadOld {
			os.Setenv("QTERM_HOME", old)
		} else {
			os.Unsetenv("QTERM_HOME")
		}
		config.ResetForTest()
	})
	return dir
}

func TestSettingsCmdRoundTrips(t *testing.T) {
	withTempHome(t)

	set := &SettingsCmd{}
	set.Args.Key = "demo.key"
	set.Args.Value = "demo value"
	require.NoError(t, set.Execute(nil))

	get := &SettingsCmd{}
	get.Args.Key = "demo.key"
	require.NoError(t, get.Execute(nil))
}

func TestSettingsCmdRequiresKey(t *testing.T) {
	withTempHome(t)

	cmd := &SettingsCmd{}
	err := cmd.Execute(nil)
	assert.Error(t, err)
}

func TestInlineCmdEnableDisableStatus(t *testing.T) {
	withTempHome(t)

	enable := &InlineCmd{}
	enable.Args.Action = "enable"
	require.NoError(t, enable.Execute(nil))

	status := &InlineCmd{}
	status.Args.Action = "status"
	require.NoError(t, status.Execute(nil))

	disable := &InlineCmd{}
	disable.Args.Action = "disable"
	require.NoError(t, disable.Execute(nil))
}

func TestHookCmdSilentlyNoOpsWithoutSessionID(t *testing.T) {
	withTempHome(t)
	os.Unsetenv("QTERM_SESSION_ID")

	cmd := &HookCmd{}
	cmd.Args.Kind = "prompt"
	assert.NoError(t, cmd.Execute(nil))
}

func TestBuildHookFrameUnknownKindIsRejected(t *testing.T) {
	_, ok := buildHookFrame("sess-1", "not-a-kind", nil)
	assert.False(t, ok)
}

func TestBuildHookFrameEditBuffer(t *testing.T) {
	frame, ok := buildHookFrame("sess-1", "editbuffer", []string{"git sta", "7"})
	require.True(t, ok)
	assert.Equal(t, "sess-1", frame.SessionID)
	assert.NotEmpty(t, frame.Body)
}

func TestBuildHookFrameLifecycleKindsRideSessionControl(t *testing.T) {
	frame, ok := buildHookFrame("sess-1", "init", []string{"zsh"})
	require.True(t, ok)
	assert.Contains(t, string(frame.Body), "init")
}

func TestUpdateCmdReportsDefaultChannel(t *testing.T) {
	cmd := &UpdateCmd{}
	assert.NoError(t, cmd.Execute(nil))
}
