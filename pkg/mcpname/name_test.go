package mcpname

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	testCases := []struct {
		name       string
		raw        string
		wantServer string
		wantTool   string
		wantOK     bool
	}{
		{name: "namespaced", raw: "demo" + Delimiter + "search", wantServer: "demo", wantTool: "search", wantOK: true},
		{name: "builtin", raw: "fs_read", wantOK: false},
		{name: "empty", raw: "", wantOK: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server, tool, ok := Split(tc.raw)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.wantServer, server)
				assert.Equal(t, tc.wantTool, tool)
			}
		})
	}
}

func TestNewRoundTrip(t *testing.T) {
	n := New("demo", "search")
	assert.Equal(t, "demo", n.Server())
	assert.Equal(t, "search", n.Tool())
	assert.True(t, IsNamespaced(string(n)))
}

func TestValidRejectsEmbeddedDelimiter(t *testing.T) {
	assert.False(t, Valid("demo"+Delimiter+"x", "search"))
	assert.False(t, Valid("demo", "search"+Delimiter+"y"))
	assert.True(t, Valid("demo", "search"))
}

func TestBuiltinToolNameHasNoDelimiter(t *testing.T) {
	builtins := []string{"fs_read", "fs_write", "execute_bash", "use_aws", "report_issue", "gh_issue"}
	for _, b := range builtins {
		assert.False(t, IsNamespaced(b), "builtin tool name %q must not contain the namespace delimiter", b)
	}
}
