// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", false},
		{"7567d83b7b8d80addcb281a71d54fc7b3364ffed", false},
		{"0X7567D83B7B8D80ADDCB281A71D54FC7B3364FFED", false},
		{"1x7567d83b7b8d80addcb281a71d54fc7b3364ffed", true},
		{"0x7567d83b", true},
		{"0xzz67d83b7b8d80addcb281a71d54fc7b3364ffed", true},
	}
	for _, tt := range tests {
		addr, err := ParseAddress(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", addr.String())
	}
}

func TestAddressJSON(t *testing.T) {
	addr := BytesToAddress([]byte("alice"))
	data, err := json.Marshal(&addr)
	assert.NoError(t, err)

	var decoded Address
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, addr, decoded)
	assert.False(t, decoded.IsZero())
	assert.True(t, Address{}.IsZero())
}

func TestBytes32(t *testing.T) {
	b := BytesToBytes32([]byte("slot"))
	parsed, err := ParseBytes32(b.String())
	assert.NoError(t, err)
	assert.Equal(t, b, parsed)

	_, err = ParseBytes32("0x01")
	assert.Error(t, err)
	_, err = ParseBytes32("xyz")
	assert.Error(t, err)

	noPrefix, err := ParseBytes32(b.String()[2:])
	assert.NoError(t, err)
	assert.Equal(t, b, noPrefix)

	data, err := json.Marshal(struct{ Topic Bytes32 }{b})
	assert.NoError(t, err)
	assert.Equal(t, `{"Topic":"`+b.String()+`"}`, string(data))

	var decoded struct{ Topic Bytes32 }
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, b, decoded.Topic)
	assert.Error(t, json.Unmarshal([]byte(`{"Topic":"0x01"}`), &decoded))
}

func TestBlake2b(t *testing.T) {
	// single and multiple slices hash the same concatenated input
	assert.Equal(t, Blake2b([]byte("ab")), Blake2b([]byte("a"), []byte("b")))
	assert.NotEqual(t, Blake2b([]byte("a")), Blake2b([]byte("b")))
}

func TestKeccak256(t *testing.T) {
	// well-known ERC-20 Transfer topic
	assert.Equal(t,
		"0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef",
		Keccak256([]byte("Transfer(address,address,uint256)")).String())
}

func TestConstants(t *testing.T) {
	assert.Equal(t, uint64(31_536_000), SecondsPerYear)
	// 9% per year
	rate := new(big.Rat).SetFrac(new(big.Int).SetUint64(DefaultInterestRate), RateBase)
	assert.Equal(t, big.NewRat(9, 100), rate)
	assert.Equal(t, "1000000000000000000", Ether.String())
}
