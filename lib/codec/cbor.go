// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items. Same logical data always
// produces identical bytes, which is what makes schema fingerprints
// computed over encoded descriptors stable.
var encMode cbor.EncMode

// decMode is the CBOR decoder used for every read of wire data.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Field values decoded into any (list elements, sink fields)
		// must come back as map[string]any so they interoperate with
		// encoding/json in the CLI. Struct and typed decoding is
		// unaffected.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		// Every nesting level of a described object costs two levels
		// (tag + array). The default of 32 is too shallow for
		// realistic object graphs.
		MaxNestedLevels: 256,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// ErrNotSequence is returned by [Sequence] when the raw value is not a
// CBOR array.
var ErrNotSequence = errors.New("codec: value is not a sequence")

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// RawMessage is a raw encoded CBOR value. It implements
// cbor.Marshaler and cbor.Unmarshaler so it can be used to delay
// decoding until the schema for the value is known.
type RawMessage = cbor.RawMessage

// Tag is a CBOR tag number paired with unencoded content. Used to
// write described containers.
type Tag = cbor.Tag

// RawTag is a CBOR tag number paired with still-encoded content. Used
// to read described containers before dispatching on the tag number.
type RawTag = cbor.RawTag

// Encoder is a CBOR stream encoder.
type Encoder = cbor.Encoder

// Decoder is a CBOR stream decoder.
type Decoder = cbor.Decoder

// NewEncoder returns a CBOR encoder that writes to w using Core
// Deterministic Encoding.
func NewEncoder(w io.Writer) *Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder returns a CBOR decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return decMode.NewDecoder(r)
}

// cborNull is the single-byte encoding of CBOR null (major type 7,
// simple value 22).
const cborNull = 0xf6

// IsNull reports whether raw is the CBOR null value.
func IsNull(raw RawMessage) bool {
	return len(raw) == 1 && raw[0] == cborNull
}

// Null returns a freshly allocated encoding of CBOR null.
func Null() RawMessage {
	return RawMessage{cborNull}
}

// Sequence splits raw, which must be a CBOR array, into its encoded
// elements without decoding them. Each returned element is exactly
// one data item, so consuming the elements in order consumes the
// array exactly once.
func Sequence(raw RawMessage) ([]RawMessage, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrNotSequence)
	}
	// Major type 4 (array) occupies the top three bits.
	if raw[0]>>5 != 4 {
		return nil, fmt.Errorf("%w: major type %d", ErrNotSequence, raw[0]>>5)
	}
	var elements []RawMessage
	if err := decMode.Unmarshal(raw, &elements); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSequence, err)
	}
	return elements, nil
}

// ReadAll decodes every data item of a CBOR sequence (RFC 8742) and
// returns them as raw messages, in order.
func ReadAll(data []byte) ([]RawMessage, error) {
	decoder := decMode.NewDecoder(bytes.NewReader(data))
	var items []RawMessage
	for {
		var item RawMessage
		if err := decoder.Decode(&item); err != nil {
			if errors.Is(err, io.EOF) {
				return items, nil
			}
			return nil, fmt.Errorf("decode CBOR sequence item %d: %w", len(items), err)
		}
		items = append(items, item)
	}
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for the
// entire contents of data.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}

// DiagnoseFirst returns the CBOR diagnostic notation for the first
// data item in data, along with the remaining unconsumed bytes.
func DiagnoseFirst(data []byte) (string, []byte, error) {
	return cbor.DiagnoseFirst(data)
}
