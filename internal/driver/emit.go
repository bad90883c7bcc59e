package driver

import (
	"encoding/json"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"mirbuild/internal/mir"
)

// EmitMsgpack writes m in the same encoding the disk cache uses.
func EmitMsgpack(w io.Writer, m *mir.Module) error {
	return msgpack.NewEncoder(w).Encode(m)
}

// EmitJSON writes m as indented JSON. Field names follow the Go types.
func EmitJSON(w io.Writer, m *mir.Module) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// DecodeMsgpack reads a module written by EmitMsgpack.
func DecodeMsgpack(r io.Reader) (*mir.Module, error) {
	var m mir.Module
	if err := msgpack.NewDecoder(r).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}
