package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cfoust/padlink/pkg/failure"

	"github.com/fxamacker/cbor/v2"
)

// FrameType mirrors the two WebSocket data frame kinds.
type FrameType uint8

const (
	FrameText FrameType = iota
	FrameBinary
)

type Codec interface {
	Name() string
	Frame() FrameType
	Encode(ControlMessage) ([]byte, error)
	Decode([]byte) (ControlMessage, error)
}

type jsonCodec struct{}

func (jsonCodec) Name() string     { return "json" }
func (jsonCodec) Frame() FrameType { return FrameText }

func (jsonCodec) Encode(m ControlMessage) ([]byte, error) {
	return json.Marshal(m.wire())
}

func (jsonCodec) Decode(data []byte) (ControlMessage, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))

	var fields map[string]json.RawMessage
	if err := decoder.Decode(&fields); err != nil {
		return ControlMessage{}, failure.Wrap(failure.KindValidation, "decode json", err)
	}
	if fields == nil {
		return ControlMessage{}, failure.Newf(failure.KindValidation, "message is not an object")
	}
	// Only whitespace may follow the object.
	if _, err := decoder.Token(); err != io.EOF {
		return ControlMessage{}, failure.Newf(failure.KindValidation, "trailing data after message")
	}

	return fromFields(fields, func(raw json.RawMessage, value interface{}) error {
		return json.Unmarshal(raw, value)
	})
}

type cborCodec struct{}

func (cborCodec) Name() string     { return "cbor" }
func (cborCodec) Frame() FrameType { return FrameBinary }

func (cborCodec) Encode(m ControlMessage) ([]byte, error) {
	return cbor.Marshal(m.wire())
}

func (cborCodec) Decode(data []byte) (ControlMessage, error) {
	decoder := cbor.NewDecoder(bytes.NewReader(data))

	var fields map[string]cbor.RawMessage
	if err := decoder.Decode(&fields); err != nil {
		return ControlMessage{}, failure.Wrap(failure.KindValidation, "decode cbor", err)
	}
	if fields == nil {
		return ControlMessage{}, failure.Newf(failure.KindValidation, "message is not a map")
	}
	if decoder.NumBytesRead() != len(data) {
		return ControlMessage{}, failure.Newf(failure.KindValidation, "trailing data after message")
	}

	return fromFields(fields, func(raw cbor.RawMessage, value interface{}) error {
		return cbor.Unmarshal(raw, value)
	})
}

var (
	JSON Codec = jsonCodec{}
	CBOR Codec = cborCodec{}
)

func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return JSON, nil
	case "cbor":
		return CBOR, nil
	}
	return nil, fmt.Errorf("unknown codec %q: expected json or cbor", name)
}

// Decode picks the codec from the frame type: text frames carry JSON and
// binary frames carry CBOR.
func Decode(frame FrameType, data []byte) (ControlMessage, error) {
	if frame == FrameBinary {
		return CBOR.Decode(data)
	}
	return JSON.Decode(data)
}
