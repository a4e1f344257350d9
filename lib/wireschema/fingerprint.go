// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wireschema

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/wirecodec/lib/codec"
)

// Fingerprint is the 32-byte BLAKE3 digest identifying a type's
// shape. It is the descriptor written on the wire ahead of every
// described value and the key of every serializer cache.
type Fingerprint [32]byte

// domainKey is a 32-byte key for BLAKE3 keyed hashing. Composite and
// restricted descriptors hash in separate domains so a struct and an
// enum with coincidentally identical canonical bytes never collide.
type domainKey [32]byte

// Domain separation keys. Changing them changes every fingerprint and
// makes all previously written data undecodable.
var (
	compositeDomainKey = domainKey{
		'w', 'i', 'r', 'e', 'c', 'o', 'd', 'e', 'c', '.', 's', 'c', 'h', 'e', 'm', 'a',
		'.', 'c', 'o', 'm', 'p', 'o', 's', 'i', 't', 'e', 0, 0, 0, 0, 0, 0,
	}

	restrictedDomainKey = domainKey{
		'w', 'i', 'r', 'e', 'c', 'o', 'd', 'e', 'c', '.', 's', 'c', 'h', 'e', 'm', 'a',
		'.', 'r', 'e', 's', 't', 'r', 'i', 'c', 't', 'e', 'd', 0, 0, 0, 0, 0,
	}
)

// String returns the lower-case hex encoding of the fingerprint.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// ShortString returns the first 12 hex digits, enough to tell
// descriptors apart in log output.
func (f Fingerprint) ShortString() string {
	return f.String()[:12]
}

// IsZero reports whether f is the zero fingerprint.
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

// ParseFingerprint parses a 64-character hex fingerprint.
func ParseFingerprint(text string) (Fingerprint, error) {
	var fingerprint Fingerprint
	decoded, err := hex.DecodeString(text)
	if err != nil {
		return fingerprint, fmt.Errorf("parsing fingerprint: %w", err)
	}
	if len(decoded) != len(fingerprint) {
		return fingerprint, fmt.Errorf("fingerprint is %d bytes, want %d", len(decoded), len(fingerprint))
	}
	copy(fingerprint[:], decoded)
	return fingerprint, nil
}

// fingerprintFromBytes converts a wire byte string into a Fingerprint.
func fingerprintFromBytes(data []byte) (Fingerprint, error) {
	var fingerprint Fingerprint
	if len(data) != len(fingerprint) {
		return fingerprint, fmt.Errorf("%w: descriptor is %d bytes, want %d",
			ErrMalformedSchema, len(data), len(fingerprint))
	}
	copy(fingerprint[:], data)
	return fingerprint, nil
}

// keyedHash computes the BLAKE3 keyed hash of the deterministic CBOR
// encoding of canonical.
func keyedHash(key domainKey, canonical any) Fingerprint {
	data, err := codec.Marshal(canonical)
	if err != nil {
		// The canonical forms are built from strings and integers
		// only; encoding cannot fail.
		panic("wireschema: encoding canonical form: " + err.Error())
	}
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("wireschema: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var fingerprint Fingerprint
	copy(fingerprint[:], hasher.Sum(nil))
	return fingerprint
}
