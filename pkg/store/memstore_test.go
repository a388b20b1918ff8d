package store

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func TestMemStorePutGetDelete(t *testing.T) {
	ms := NewMemStore()
	key := []byte("pool-header-1")

	_, ok := ms.Get(key)
	require.False(t, ok)

	ms.Put(key, []byte("payload"))
	v, ok := ms.Get(key)
	require.True(t, ok)
	require.Equal(t, []byte("payload"), v)

	ms.Delete(key)
	_, ok = ms.Get(key)
	require.False(t, ok)
}

func TestMemStoreShardsDoNotCollideOnValue(t *testing.T) {
	ms := NewMemStore()
	for i := 0; i < 200; i++ {
		key := []byte{byte(i), byte(i >> 8)}
		ms.Put(key, []byte{byte(i)})
	}
	for i := 0; i < 200; i++ {
		key := []byte{byte(i), byte(i >> 8)}
		v, ok := ms.Get(key)
		require.True(t, ok)
		require.Equal(t, byte(i), v[0])
	}
}

func TestPositionKeyDeterministicAndDistinct(t *testing.T) {
	pool := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	owner := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

	k1 := PositionKey(pool, owner, -100, 100)
	k2 := PositionKey(pool, owner, -100, 100)
	require.Equal(t, k1, k2)

	k3 := PositionKey(pool, owner, -200, 100)
	require.NotEqual(t, k1, k3)
}
