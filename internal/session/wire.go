package session

import (
	"bytes"
	"encoding/gob"
)

func init() {
	gob.Register(EditBufferUpdated{})
	gob.Register(Prompt{})
	gob.Register(PreExec{})
	gob.Register(PostExec{})
	gob.Register(ShellContextChanged{})
}

// envelope carries a Hook across gob, which cannot encode a bare interface
// value without a concrete field to hang the registered type on.
type envelope struct {
	Hook Hook
}

// EncodeHook serializes hook for transport over the IPC Fabric's Frame.Body.
func EncodeHook(hook Hook) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(envelope{Hook: hook}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeHook reverses EncodeHook.
func DecodeHook(data []byte) (Hook, error) {
	var env envelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return nil, err
	}
	return env.Hook, nil
}
