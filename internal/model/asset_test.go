package model

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"liquidityEngine/internal/fixed"
)

func TestAssetJSONRoundTrip(t *testing.T) {
	original := Asset{Denom: "uaura", Amount: fixed.MustParseUint("340282366920938463463374607431768211455")}

	b, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(b) != `{"denom":"uaura","amount":"340282366920938463463374607431768211455"}` {
		t.Fatalf("unexpected encoding: %s", b)
	}

	var decoded Asset
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round-trip mismatch: %+v != %+v", original, decoded)
	}
}

func TestParseAsset(t *testing.T) {
	asset, err := ParseAsset("1000uaura")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if asset.Denom != "uaura" || asset.Amount.Uint64() != 1000 {
		t.Fatalf("unexpected asset: %s", asset)
	}
	if asset.String() != "1000uaura" {
		t.Fatalf("unexpected string: %s", asset)
	}

	for _, input := range []string{"", "1000", "uaura", "-5uaura"} {
		if _, err := ParseAsset(input); !errors.Is(err, ErrInvalidAsset) {
			t.Fatalf("expected ErrInvalidAsset for %q, got %v", input, err)
		}
	}
}

func TestSnapshotIndexAndAlign(t *testing.T) {
	snap := PoolSnapshot{
		Assets:     []Asset{NewAsset("uaura", 100), NewAsset("uusd", 200)},
		Decimals:   []uint8{6, 6},
		TotalShare: fixed.MustParseUint("0"),
	}
	if err := snap.Validate(); err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	idx, err := snap.Index("uusd")
	if err != nil || idx != 1 {
		t.Fatalf("expected index 1, got %d (%v)", idx, err)
	}
	if _, err := snap.Index("ubtc"); !errors.Is(err, ErrInvalidAsset) {
		t.Fatalf("expected ErrInvalidAsset, got %v", err)
	}

	aligned, err := snap.Align([]Asset{NewAsset("uusd", 7)})
	if err != nil {
		t.Fatalf("align failed: %v", err)
	}
	if !aligned[0].IsZero() || aligned[1].Uint64() != 7 {
		t.Fatalf("unexpected alignment: %v", aligned)
	}
	if _, err := snap.Align([]Asset{NewAsset("uusd", 1), NewAsset("uusd", 2)}); !errors.Is(err, ErrInvalidAsset) {
		t.Fatalf("expected duplicate denom to fail, got %v", err)
	}

	snap.Decimals = []uint8{6}
	if err := snap.Validate(); !errors.Is(err, ErrInvalidPool) {
		t.Fatalf("expected ErrInvalidPool, got %v", err)
	}
}

func TestSnapshotJSONStringFields(t *testing.T) {
	snap := PoolSnapshot{
		Assets:     []Asset{NewAsset("0xaaa", 5), NewAsset("0xbbb", 6)},
		Decimals:   []uint8{18, 6},
		TotalShare: fixed.MustParseUint("12345678901234567890"),
		Timestamp:  1700000000,
	}

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := decoded["total_share"].(string); !ok {
		t.Fatalf("total_share should be string")
	}

	var back PoolSnapshot
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal snapshot failed: %v", err)
	}
	if !reflect.DeepEqual(snap, back) {
		t.Fatalf("round-trip mismatch: %+v != %+v", snap, back)
	}
}
