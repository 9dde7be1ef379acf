// Package bloom implements a fixed-size Bloom filter whose k hash functions
// are MurmurHash3 x86_32 with seeds 1 through k.
package bloom

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/weiiwang01/bloomset/internal/murmur"
)

// Filter is a Bloom filter over integer and text keys.
//
// Filter is not safe for concurrent Insert. Concurrent Query calls are safe
// as long as no Insert runs at the same time; use Locked otherwise.
type Filter struct {
	bits *bitset.BitSet
	m    int
	k    int
}

// New constructs an empty filter of m bits using k hash functions.
func New(m, k int) (*Filter, error) {
	if m < 1 {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidParameter, m)
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: hash count %d", ErrInvalidParameter, k)
	}
	return &Filter{
		bits: bitset.New(uint(m)),
		m:    m,
		k:    k,
	}, nil
}

// index maps the i-th hash of a key into [0, m).
//
// The hash is read as a signed 32-bit value and its absolute value is taken
// in 64-bit arithmetic, so math.MinInt32 maps to 2^31 mod m instead of
// staying negative.
func index(h uint32, m int) uint {
	v := int64(int32(h))
	if v < 0 {
		v = -v
	}
	return uint(v % int64(m))
}

func (f *Filter) hash(data []byte, seed int) uint {
	return index(murmur.Sum32(data, uint32(seed)), f.m)
}

// Insert sets the k bits of key. Inserting the same key again has no effect.
func (f *Filter) Insert(key Key) error {
	if !key.Valid() {
		return ErrUnsupportedKeyType
	}
	data := key.Bytes()
	for i := 1; i <= f.k; i++ {
		f.bits.Set(f.hash(data, i))
	}
	return nil
}

// Query reports whether key might have been inserted. Unsupported keys are
// never present.
func (f *Filter) Query(key Key) bool {
	if !key.Valid() {
		return false
	}
	data := key.Bytes()
	for i := 1; i <= f.k; i++ {
		if !f.bits.Test(f.hash(data, i)) {
			return false
		}
	}
	return true
}

// Cap returns m, the number of bits in the filter.
func (f *Filter) Cap() int { return f.m }

// K returns the number of hash functions.
func (f *Filter) K() int { return f.k }

// Count returns the number of set bits.
func (f *Filter) Count() int {
	return int(f.bits.Count())
}

// FillRatio returns the fraction of bits that are set.
func (f *Filter) FillRatio() float64 {
	return float64(f.Count()) / float64(f.m)
}
