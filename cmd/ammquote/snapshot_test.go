package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"liquidityEngine/internal/model"
)

type failingCloser struct {
	bytes.Buffer
	closed bool
}

func (f *failingCloser) Close() error {
	f.closed = true
	return errors.New("disk full")
}

func testSnapshot() model.PoolSnapshot {
	return model.PoolSnapshot{
		Assets:     []model.Asset{model.NewAsset("uaura", 1000), model.NewAsset("uusdc", 2000)},
		Decimals:   []uint8{6, 6},
		TotalShare: uint256.NewInt(1414),
		Timestamp:  1_700_000_000,
	}
}

func TestWriteAndCloseReportsCloseError(t *testing.T) {
	wc := &failingCloser{}
	err := writeAndClose(wc, testSnapshot())
	require.ErrorContains(t, err, "disk full")
	require.True(t, wc.closed)
	require.NotZero(t, wc.Len())
}

func TestWriteSnapshotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots", "pair.json")
	require.NoError(t, writeSnapshotFile(path, testSnapshot()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var snap model.PoolSnapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	require.Equal(t, "1414", snap.TotalShare.Dec())
	require.Equal(t, "2000", snap.Assets[1].Amount.Dec())
}
