// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStmtCache(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	sc := newStmtCache(db.db)
	a, err := sc.Prepare("SELECT COUNT(*) FROM event")
	require.NoError(t, err)
	b, err := sc.Prepare("SELECT COUNT(*) FROM event")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, sc.Len())

	_, err = sc.Prepare("SELECT * FROM nowhere")
	assert.Error(t, err)
	assert.Equal(t, 1, sc.Len())

	var n int
	require.NoError(t, a.QueryRow().Scan(&n))
	assert.Equal(t, 0, n)

	sc.Clear()
	assert.Equal(t, 0, sc.Len())
}
