// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU(t *testing.T) {
	_, err := NewLRU[string, int](0)
	assert.Error(t, err)

	c, err := NewLRU[string, int](2)
	require.NoError(t, err)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3) // evicts a

	_, ok := c.Get("a")
	assert.False(t, ok)
	v, ok := c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, c.Len())

	c.Remove("c")
	_, ok = c.Get("c")
	assert.False(t, ok)
}

func TestLRUGetOrLoad(t *testing.T) {
	c, err := NewLRU[string, []byte](4)
	require.NoError(t, err)

	loads := 0
	load := func(k string) ([]byte, error) {
		loads++
		if k == "bad" {
			return nil, errors.New("boom")
		}
		return []byte(k), nil
	}

	for range 3 {
		v, err := c.GetOrLoad("k", load)
		require.NoError(t, err)
		assert.Equal(t, []byte("k"), v)
	}
	assert.Equal(t, 1, loads)

	_, err = c.GetOrLoad("bad", load)
	assert.Error(t, err)
	_, ok := c.Get("bad")
	assert.False(t, ok)
}
