package shard

import (
	"crypto/sha256"
	"encoding/binary"
)

// Route maps an (asset, rate) pair to a shard index in [0, shardCount).
// Pure function: sha256(asset || rate), first 8 bytes little-endian, modulo
// shardCount. shardCount is immutable after protocol initialization, so
// routing is stable for the life of the protocol.
//
// Different rates for the same asset may collide into one shard by hash;
// that is deliberate coarse-graining, not a defect.
func Route(asset string, rate uint8, shardCount uint64) uint64 {
	h := sha256.New()
	h.Write([]byte(asset))
	h.Write([]byte{rate})
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum[:8]) % shardCount
}
