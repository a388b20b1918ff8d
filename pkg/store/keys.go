package store

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// PositionKey derives the composite record key for a position: owner,
// tick_lower, and tick_upper hashed together under the owning pool (§6:
// "positions keyed by (owner xor tick_lower xor tick_upper) hash").
func PositionKey(poolID, owner solana.PublicKey, tickLower, tickUpper int32) []byte {
	var buf [40]byte
	copy(buf[:32], owner[:])
	binary.LittleEndian.PutUint32(buf[32:36], uint32(tickLower))
	binary.LittleEndian.PutUint32(buf[36:40], uint32(tickUpper))

	h := sha256.New()
	h.Write(poolID[:])
	h.Write(buf[:])
	return h.Sum(nil)
}

// TickArrayKey derives the record key for the tick array starting at
// startTick within pool poolID.
func TickArrayKey(poolID solana.PublicKey, startTick int32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(startTick))

	h := sha256.New()
	h.Write(poolID[:])
	h.Write(buf[:])
	return h.Sum(nil)
}

// PoolRecordKey derives the key for a pool's singleton sub-record (oracle
// ring buffer, floor record, JIT state, buffer record), namespaced by tag
// so the same pool can address several distinct records.
func PoolRecordKey(poolID solana.PublicKey, tag string) []byte {
	h := sha256.New()
	h.Write(poolID[:])
	h.Write([]byte(tag))
	return h.Sum(nil)
}
