package bloom

import (
	"encoding/binary"
	"errors"
)

var (
	ErrInvalidParameter   = errors.New("bloom: invalid filter parameter")
	ErrUnsupportedKeyType = errors.New("bloom: key must be an integer or text")
)

type keyKind uint8

const (
	unsupportedKey keyKind = iota
	intKey
	textKey
)

// Key is either a 32-bit integer or a text key. The zero Key is neither and
// is rejected by Insert.
type Key struct {
	kind keyKind
	data []byte
}

// IntKey returns the key for v, encoded as 4 big-endian bytes.
func IntKey(v int32) Key {
	return Key{
		kind: intKey,
		data: binary.BigEndian.AppendUint32(nil, uint32(v)),
	}
}

// TextKey returns the key for s, encoded as the raw bytes of s.
func TextKey(s string) Key {
	return Key{kind: textKey, data: []byte(s)}
}

// Valid reports whether k is an integer or text key.
func (k Key) Valid() bool {
	return k.kind != unsupportedKey
}

// Bytes returns the encoded form of the key that is fed to the hash.
func (k Key) Bytes() []byte {
	return k.data
}
