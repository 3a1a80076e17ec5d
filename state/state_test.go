// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/lvldb"
)

func TestStateReadWrite(t *testing.T) {
	st := New(nil)

	addr := ledger.BytesToAddress([]byte("account1"))
	slot := ledger.BytesToBytes32([]byte("slot"))

	bal, err := st.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, 0, bal.Sign())

	require.NoError(t, st.SetBalance(addr, big.NewInt(100)))
	bal, _ = st.GetBalance(addr)
	assert.Equal(t, big.NewInt(100), bal)

	assert.Error(t, st.SetBalance(addr, big.NewInt(-1)))

	v, err := st.GetStorage(addr, slot)
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	val := ledger.BytesToBytes32([]byte("value"))
	st.SetStorage(addr, slot, val)
	v, _ = st.GetStorage(addr, slot)
	assert.Equal(t, val, v)

	// a list value reads back as its hash
	raw, _ := rlp.EncodeToBytes([]uint{1, 2})
	st.SetRawStorage(addr, slot, raw)
	v, _ = st.GetStorage(addr, slot)
	assert.Equal(t, ledger.Blake2b(raw), v)

	require.NoError(t, st.EncodeStorage(addr, slot, func() ([]byte, error) {
		return rlp.EncodeToBytes(uint64(42))
	}))
	var got uint64
	require.NoError(t, st.DecodeStorage(addr, slot, func(b []byte) error {
		return rlp.DecodeBytes(b, &got)
	}))
	assert.Equal(t, uint64(42), got)
}

func TestStateRevert(t *testing.T) {
	st := New(nil)
	addr := ledger.BytesToAddress([]byte("account1"))
	slot := ledger.BytesToBytes32([]byte("slot"))

	st.SetStorage(addr, slot, ledger.BytesToBytes32([]byte{1}))
	rev := st.NewCheckpoint()
	st.SetStorage(addr, slot, ledger.BytesToBytes32([]byte{2}))
	require.NoError(t, st.SetBalance(addr, big.NewInt(5)))
	st.RevertTo(rev)

	v, _ := st.GetStorage(addr, slot)
	assert.Equal(t, ledger.BytesToBytes32([]byte{1}), v)
	bal, _ := st.GetBalance(addr)
	assert.Equal(t, 0, bal.Sign())
	assert.Equal(t, 1, st.Stage().Len())
}

func TestStageCommit(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	stater := NewStater(db, 0)
	addr := ledger.BytesToAddress([]byte("acc1"))
	storage := map[ledger.Bytes32]ledger.Bytes32{
		ledger.BytesToBytes32([]byte("s1")): ledger.BytesToBytes32([]byte("v1")),
		ledger.BytesToBytes32([]byte("s2")): ledger.BytesToBytes32([]byte("v2")),
		ledger.BytesToBytes32([]byte("s3")): ledger.BytesToBytes32([]byte("v3")),
	}

	st := stater.NewState()
	require.NoError(t, st.SetBalance(addr, big.NewInt(10)))
	for k, v := range storage {
		st.SetStorage(addr, k, v)
	}

	stage := st.Stage()
	assert.Equal(t, 4, stage.Len())
	// hash is independent of write order
	other := New(nil)
	for k, v := range storage {
		other.SetStorage(addr, k, v)
	}
	require.NoError(t, other.SetBalance(addr, big.NewInt(10)))
	assert.Equal(t, stage.Hash(), other.Stage().Hash())
	assert.Error(t, other.Stage().Commit())

	require.NoError(t, stage.Commit())

	st = stater.NewState()
	bal, err := st.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), bal)
	for k, v := range storage {
		got, err := st.GetStorage(addr, k)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	// clearing a slot deletes it from the store
	first := ledger.BytesToBytes32([]byte("s1"))
	st.SetStorage(addr, first, ledger.Bytes32{})
	require.NoError(t, st.Stage().Commit())

	has, err := db.Has(key{spaceStorage, addr, first}.encode())
	require.NoError(t, err)
	assert.False(t, has)

	// a fresh stater reads through to the db
	st = NewStater(db, 16).NewState()
	got, _ := st.GetStorage(addr, ledger.BytesToBytes32([]byte("s2")))
	assert.Equal(t, ledger.BytesToBytes32([]byte("v2")), got)
}

func TestStaterCache(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	stater := NewStater(db, 16)
	addr := ledger.BytesToAddress([]byte("acc1"))

	for range 3 {
		_, err := stater.NewState().GetBalance(addr)
		require.NoError(t, err)
	}
	_, hit, miss := stater.CacheStats()
	assert.Equal(t, int64(2), hit)
	assert.Equal(t, int64(1), miss)

	st := stater.NewState()
	require.NoError(t, st.SetBalance(addr, big.NewInt(7)))
	require.NoError(t, st.Stage().Commit())

	// committed value is served from cache
	bal, err := stater.NewState().GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), bal)
	_, hit, _ = stater.CacheStats()
	assert.Equal(t, int64(3), hit)
}

func TestKeyCodec(t *testing.T) {
	addr := ledger.BytesToAddress([]byte("acc1"))
	for _, k := range []key{
		{space: spaceBalance, addr: addr},
		{spaceStorage, addr, ledger.BytesToBytes32([]byte("slot"))},
	} {
		got, ok := decodeKey(k.encode())
		assert.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := decodeKey([]byte("short"))
	assert.False(t, ok)
}

func TestNativeLedger(t *testing.T) {
	st := New(nil)
	vault := ledger.StakingAddress
	alice := ledger.BytesToAddress([]byte("alice"))
	require.NoError(t, st.SetBalance(alice, big.NewInt(100)))

	native := NewNativeLedger(st, vault)
	assert.Equal(t, vault, native.Vault())

	require.NoError(t, native.TransferIn(alice, big.NewInt(60)))
	err := native.TransferIn(alice, big.NewInt(41))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	bal, _ := st.GetBalance(vault)
	assert.Equal(t, big.NewInt(60), bal)

	require.NoError(t, native.TransferOut(alice, big.NewInt(60)))
	assert.ErrorIs(t, native.TransferOut(alice, big.NewInt(1)), ErrInsufficientBalance)

	bal, _ = st.GetBalance(alice)
	assert.Equal(t, big.NewInt(100), bal)
	assert.Error(t, native.TransferIn(alice, big.NewInt(-1)))

	require.NoError(t, st.SetBalance(vault, big.NewInt(5)))
	assert.ErrorIs(t, native.TransferIn(vault, big.NewInt(5)), ErrSelfTransfer)
	assert.ErrorIs(t, native.TransferOut(vault, big.NewInt(5)), ErrSelfTransfer)
	bal, _ = st.GetBalance(vault)
	assert.Equal(t, big.NewInt(5), bal)
}
