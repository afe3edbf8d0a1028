package contextmgr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlobMatchSingleSegmentWildcard(t *testing.T) {
	assert.True(t, globMatch("*.go", "main.go"))
	assert.False(t, globMatch("*.go", "main.py"))
}

func TestGlobMatchGlobstarMatchesAnyDepth(t *testing.T) {
	assert.True(t, globMatch("mem://localhost/**/*.go", "mem://localhost/a/b/c.go"))
	assert.True(t, globMatch("mem://localhost/**/*.go", "mem://localhost/c.go"))
	assert.False(t, globMatch("mem://localhost/**/*.go", "mem://localhost/a/b/c.py"))
}

func TestGlobMatchEmptyInputsNeverMatch(t *testing.T) {
	assert.False(t, globMatch("", "anything"))
	assert.False(t, globMatch("*.go", ""))
}
