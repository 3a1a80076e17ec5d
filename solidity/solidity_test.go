// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/state"
)

type testStruct struct {
	Field1 uint64
	Amount *big.Int
	Addr   ledger.Address
}

func newTestContext() *Context {
	return NewContext(ledger.Address{1}, state.New(nil))
}

func TestMapping(t *testing.T) {
	ctx := newTestContext()
	m := NewMapping[ledger.Address, testStruct](ctx, Slot("records"))

	alice := ledger.BytesToAddress([]byte("alice"))
	bob := ledger.BytesToAddress([]byte("bob"))

	v, err := m.Get(alice)
	require.NoError(t, err)
	assert.Equal(t, testStruct{}, v)

	in := testStruct{Field1: 7, Amount: big.NewInt(1e18), Addr: bob}
	require.NoError(t, m.Set(alice, in))

	v, err = m.Get(alice)
	require.NoError(t, err)
	assert.Equal(t, in, v)

	v, err = m.Get(bob)
	require.NoError(t, err)
	assert.Equal(t, testStruct{}, v)

	m.Delete(alice)
	v, _ = m.Get(alice)
	assert.Equal(t, testStruct{}, v)

	// mappings at different bases do not collide
	other := NewMapping[ledger.Address, testStruct](ctx, Slot("others"))
	require.NoError(t, m.Set(alice, in))
	v, _ = other.Get(alice)
	assert.Equal(t, testStruct{}, v)
}

func TestRaw(t *testing.T) {
	ctx := newTestContext()
	r := NewRaw[testStruct](ctx, Slot("raw"))

	v, err := r.Get()
	require.NoError(t, err)
	assert.Nil(t, v.Amount)

	require.NoError(t, r.Set(testStruct{Field1: 1, Amount: big.NewInt(2)}))
	v, err = r.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v.Field1)
	assert.Equal(t, big.NewInt(2), v.Amount)
}

func TestUint256(t *testing.T) {
	ctx := newTestContext()
	u := NewUint256(ctx, Slot("total"))

	v, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, 0, v.Sign())

	require.NoError(t, u.Set(big.NewInt(10)))
	require.NoError(t, u.Add(big.NewInt(5)))
	require.NoError(t, u.Sub(big.NewInt(3)))
	v, _ = u.Get()
	assert.Equal(t, big.NewInt(12), v)

	assert.Error(t, u.Sub(big.NewInt(13)))
	assert.Error(t, u.Set(new(big.Int).Lsh(big.NewInt(1), 256)))

	maxUint := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	require.NoError(t, u.Set(maxUint))
	v, _ = u.Get()
	assert.Equal(t, maxUint, v)
}

func TestAddress(t *testing.T) {
	ctx := newTestContext()
	a := NewAddress(ctx, Slot("owner"))

	v, err := a.Get()
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	owner := ledger.BytesToAddress([]byte("owner"))
	a.Set(owner)
	v, _ = a.Get()
	assert.Equal(t, owner, v)
	assert.Equal(t, ledger.Address{1}, ctx.Address())
}
