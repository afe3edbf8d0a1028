// Package ipc implements the process-local framed message transport that
// connects the shell-side PTY wrapper to the chat process: a fixed 8-byte
// magic, a big-endian length prefix, and an encoded payload, plus the
// runtime-socket permission hardening described by the spec.
package ipc

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
)

// Magic is the 8-byte frame header: "FIG" prefixed by a reserved byte,
// followed by a version byte and three reserved zero bytes.
var Magic = [8]byte{0x40, 0x46, 0x49, 0x47, 0x01, 0x00, 0x00, 0x00}

const headerLen = len(Magic) + 8 // magic + u64 length

// ErrIncomplete is returned by Decoder.Next when the buffered bytes do not
// yet contain a full frame. Callers should read more bytes and feed again.
var ErrIncomplete = errors.New("ipc: incomplete frame")

// FrameKind classifies the payload carried by a Frame. The concrete hook and
// session-control payloads (§4.2) are encoded as the Body of a Frame tagged
// with the matching Kind.
type FrameKind uint8

const (
	KindHook FrameKind = iota + 1
	KindSessionControl
	KindToolRequest
	KindToolResponse
)

// Frame is the self-describing envelope carried inside every IPC message.
// It stands in for the vendor protobuf payload the real product uses (see
// DESIGN.md): the framing discipline (magic, length, resync) is in scope and
// fully implemented; the payload codec is a deterministic substitute.
type Frame struct {
	Kind      FrameKind
	SessionID string
	Body      []byte
}

// Encode serialises f into a full wire frame: magic, length, payload.
func Encode(f Frame) ([]byte, error) {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(f); err != nil {
		return nil, fmt.Errorf("ipc: encode frame: %w", err)
	}
	out := make([]byte, 0, headerLen+payload.Len())
	out = append(out, Magic[:]...)
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(payload.Len()))
	out = append(out, lenBuf[:]...)
	out = append(out, payload.Bytes()...)
	return out, nil
}

// Decoder accumulates bytes from a stream reader and yields complete Frames,
// retrying partial reads until header-plus-length is available, and
// resynchronising to the next magic occurrence after a framing error.
type Decoder struct {
	buf bytes.Buffer
}

// NewDecoder returns an empty streaming frame decoder.
func NewDecoder() *Decoder { return &Decoder{} }

// Feed appends newly read bytes to the decoder's buffer.
func (d *Decoder) Feed(p []byte) {
	d.buf.Write(p)
}

// Next attempts to decode one frame from the buffered bytes. It returns
// ErrIncomplete when more bytes are required. A framing error (bad magic)
// triggers a resync: bytes up to the next magic occurrence are discarded and
// the caller may call Next again.
func (d *Decoder) Next() (Frame, error) {
	raw := d.buf.Bytes()
	if len(raw) < len(Magic) {
		return Frame{}, ErrIncomplete
	}
	if !bytes.Equal(raw[:len(Magic)], Magic[:]) {
		if resynced := d.resync(); !resynced {
			return Frame{}, ErrIncomplete
		}
		return d.Next()
	}
	if len(raw) < headerLen {
		return Frame{}, ErrIncomplete
	}
	length := binary.BigEndian.Uint64(raw[len(Magic):headerLen])
	if uint64(len(raw)) < uint64(headerLen)+length {
		return Frame{}, ErrIncomplete
	}
	payload := raw[headerLen : uint64(headerLen)+length]
	var f Frame
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&f); err != nil {
		d.buf.Next(headerLen + int(length))
		return Frame{}, fmt.Errorf("ipc: decode payload: %w", err)
	}
	d.buf.Next(headerLen + int(length))
	return f, nil
}

// resync discards buffered bytes up to (not including) the next occurrence
// of Magic, returning false if no such occurrence exists yet (all buffered
// bytes are dropped except a magic-length tail that might be a partial
// match).
func (d *Decoder) resync() bool {
	raw := d.buf.Bytes()
	idx := bytes.Index(raw[1:], Magic[:])
	if idx < 0 {
		keep := len(Magic) - 1
		if keep > len(raw) {
			keep = len(raw)
		}
		d.buf.Next(len(raw) - keep)
		return false
	}
	d.buf.Next(idx + 1)
	return true
}
