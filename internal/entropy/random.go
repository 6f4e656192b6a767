// Package entropy provides seed sourcing and deterministic sub-seed
// derivation for the generation passes. Every generator in this module
// takes an explicit *rand.Rand; this package is where those seeds come
// from, so determinism is a property of the call graph rather than of
// shared global state.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
)

// mix64 is a splitmix64 finalizer. It spreads structured input (seeds
// XORed with small coordinates) across the full 64-bit range so derived
// streams are statistically independent.
func mix64(v uint64) uint64 {
	v += 0x9e3779b97f4a7c15
	v = (v ^ (v >> 30)) * 0xbf58476d1ce4e5b9
	v = (v ^ (v >> 27)) * 0x94d049bb133111eb
	return v ^ (v >> 31)
}

// PassSeed derives the seed for one numbered generation pass from the
// world seed. Passes are numbered, not offset-added, so inserting a new
// pass never shifts the streams of the ones after it.
func PassSeed(worldSeed int64, pass uint64) int64 {
	return int64(mix64(uint64(worldSeed) ^ mix64(pass)))
}

// BlockSeed derives the render seed for the block at (bx, by). Identical
// inputs always yield the identical seed; neighboring blocks yield
// unrelated streams.
func BlockSeed(worldSeed int64, bx, by int) int64 {
	ux := uint64(uint32(int32(bx)))
	uy := uint64(uint32(int32(by)))
	return int64(mix64(uint64(worldSeed) ^ ux*0x9e3779b97f4a7c15 ^ uy*0xbf58476d1ce4e5b9))
}

// PlaceSeed derives the layout seed for the place of the given ordinal at
// origin (x, y). The ordinal keeps two places founded on the same block
// coordinate in different maps from sharing layouts.
func PlaceSeed(worldSeed int64, ordinal, x, y int) int64 {
	return int64(mix64(uint64(BlockSeed(worldSeed, x, y)) ^ mix64(uint64(ordinal)+0x51)))
}

// SystemSeed returns a seed drawn from the operating system's entropy
// source, for callers that asked for a random world. Falls back to a
// fixed value if the source fails; generation still works, it just is
// no longer surprising.
func SystemSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0x5eed
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
}
