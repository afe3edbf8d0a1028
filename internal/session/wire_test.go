package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeHookRoundTripsEachVariant(t *testing.T) {
	cases := []Hook{
		EditBufferUpdated{Text: "ls -la", Cursor: 3},
		Prompt{},
		PreExec{},
		PostExec{Command: "ls", ExitCode: 0},
		ShellContextChanged{Context: ShellContext{Pid: 42, Cwd: "/tmp"}},
	}
	for _, h := range cases {
		data, err := EncodeHook(h)
		require.NoError(t, err)
		decoded, err := DecodeHook(data)
		require.NoError(t, err)
		assert.Equal(t, h, decoded)
	}
}
