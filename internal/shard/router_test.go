package shard_test

import (
	"LendAuction/internal/shard"
	"testing"
)

func TestRoute_Deterministic(t *testing.T) {
	first := shard.Route("USDC", 5, 16)
	for i := 0; i < 100; i++ {
		if got := shard.Route("USDC", 5, 16); got != first {
			t.Fatalf("route not deterministic: got %d, want %d", got, first)
		}
	}
}

func TestRoute_InRange(t *testing.T) {
	const shardCount = 7
	assets := []string{"USDC", "USDT", "SOL", "BONK"}
	for _, asset := range assets {
		for rate := uint8(0); rate < 100; rate++ {
			id := shard.Route(asset, rate, shardCount)
			if id >= shardCount {
				t.Errorf("Route(%s, %d) = %d, out of range [0, %d)", asset, rate, id, shardCount)
			}
		}
	}
}

func TestRoute_SingleShardAlwaysZero(t *testing.T) {
	if got := shard.Route("USDC", 42, 1); got != 0 {
		t.Errorf("shardCount=1 must route to 0, got %d", got)
	}
}

func TestRoute_AssetAndRateBothMatter(t *testing.T) {
	// Not a strict property of a hash, but with 1<<32 shards a collision
	// between these fixed inputs would be a code bug, not bad luck.
	const shardCount = 1 << 32
	a := shard.Route("USDC", 5, shardCount)
	b := shard.Route("USDC", 6, shardCount)
	c := shard.Route("USDT", 5, shardCount)
	if a == b && a == c {
		t.Errorf("routes for distinct inputs all collided: %d", a)
	}
}
