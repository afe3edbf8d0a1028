package ipc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	frames := []Frame{
		{Kind: KindHook, SessionID: "s1", Body: []byte("hello")},
		{Kind: KindToolRequest, SessionID: "", Body: nil},
		{Kind: KindSessionControl, SessionID: "abc-123", Body: []byte{0, 1, 2, 3, 255}},
	}
	for _, want := range frames {
		b, err := Encode(want)
		require.NoError(t, err)

		d := NewDecoder()
		d.Feed(b)
		got, err := d.Next()
		require.NoError(t, err)
		assert.Equal(t, want.Kind, got.Kind)
		assert.Equal(t, want.SessionID, got.SessionID)
		assert.Equal(t, want.Body, got.Body)
	}
}

func TestDecoderIncompletePrefix(t *testing.T) {
	want := Frame{Kind: KindHook, SessionID: "sess", Body: []byte("partial-please")}
	b, err := Encode(want)
	require.NoError(t, err)

	for cut := 0; cut < len(b); cut++ {
		d := NewDecoder()
		d.Feed(b[:cut])
		_, err := d.Next()
		assert.ErrorIs(t, err, ErrIncomplete, "prefix of length %d should be incomplete", cut)
	}

	d := NewDecoder()
	d.Feed(b)
	got, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, want.Body, got.Body)
}

func TestDecoderResyncsPastGarbage(t *testing.T) {
	want := Frame{Kind: KindHook, SessionID: "s", Body: []byte("payload")}
	encoded, err := Encode(want)
	require.NoError(t, err)

	garbage := []byte("garbage-not-a-frame-prefix")
	d := NewDecoder()
	d.Feed(garbage)
	d.Feed(encoded)

	got, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, want.SessionID, got.SessionID)
	assert.Equal(t, want.Body, got.Body)
}

func TestDecoderFeedIncrementally(t *testing.T) {
	want := Frame{Kind: KindToolResponse, SessionID: "chunked", Body: []byte("streamed-in-pieces")}
	encoded, err := Encode(want)
	require.NoError(t, err)

	d := NewDecoder()
	for i := 0; i < len(encoded); i++ {
		d.Feed(encoded[i : i+1])
		f, err := d.Next()
		if err == ErrIncomplete {
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, want.Body, f.Body)
		return
	}
	t.Fatal("decoder never produced a frame")
}
