// Package murmur provides the seeded 32-bit mixing hash used to derive
// Bloom filter indices.
//
// Varying the seed over a small range gives hash functions that behave as
// independent for index derivation.
package murmur

import "github.com/spaolacci/murmur3"

// Sum32 returns the MurmurHash3 x86_32 checksum of data with the given seed.
func Sum32(data []byte, seed uint32) uint32 {
	return murmur3.Sum32WithSeed(data, seed)
}
