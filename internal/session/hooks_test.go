package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchEditBufferUpdated(t *testing.T) {
	reg := NewRegistry()
	reg.Insert(newTestRecord("s1"))

	err := Dispatch(reg, "s1", EditBufferUpdated{Text: "ls -la", Cursor: 6})
	require.NoError(t, err)

	rec, ok := reg.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "ls -la", rec.EditBuffer.Text)
	assert.Equal(t, 6, rec.EditBuffer.Cursor)
}

func TestDispatchOnGoneSessionReturnsSessionGone(t *testing.T) {
	reg := NewRegistry()
	err := Dispatch(reg, "missing", Prompt{})
	assert.ErrorIs(t, err, ErrSessionGone)

	reg.Insert(newTestRecord("s1"))
	reg.Remove("s1")
	err = Dispatch(reg, "s1", Prompt{})
	assert.ErrorIs(t, err, ErrSessionGone)
}

func TestDispatchPreExecPostExecTogglesFlag(t *testing.T) {
	reg := NewRegistry()
	rec := newTestRecord("s1")
	rec.ShellContext = &ShellContext{Cwd: "/tmp"}
	reg.Insert(rec)

	require.NoError(t, Dispatch(reg, "s1", PreExec{}))
	got, _ := reg.Get("s1")
	assert.True(t, got.ShellContext.InPreexec)

	require.NoError(t, Dispatch(reg, "s1", PostExec{Command: "ls", ExitCode: 0}))
	got, _ = reg.Get("s1")
	assert.False(t, got.ShellContext.InPreexec)
}

func TestDispatchShellContextChangedIsFullReplacement(t *testing.T) {
	reg := NewRegistry()
	rec := newTestRecord("s1")
	rec.ShellContext = &ShellContext{Cwd: "/old", AliasText: "alias ll=ls"}
	reg.Insert(rec)

	require.NoError(t, Dispatch(reg, "s1", ShellContextChanged{Context: ShellContext{Cwd: "/new"}}))

	got, _ := reg.Get("s1")
	assert.Equal(t, "/new", got.ShellContext.Cwd)
	assert.Empty(t, got.ShellContext.AliasText)
}

func TestBusPublishesAppliedHooksOnly(t *testing.T) {
	reg := NewRegistry()
	reg.Insert(newTestRecord("s1"))
	bus := NewBus(reg)
	events := bus.Subscribe(4)

	require.NoError(t, bus.Dispatch("s1", Prompt{}))
	assert.ErrorIs(t, bus.Dispatch("missing", Prompt{}), ErrSessionGone)

	select {
	case ev := <-events:
		assert.Equal(t, "s1", ev.SessionID)
	default:
		t.Fatal("expected one published event")
	}

	select {
	case ev := <-events:
		t.Fatalf("unexpected second event: %+v", ev)
	default:
	}
}
