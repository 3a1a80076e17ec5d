// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"slices"

	"github.com/vechain/stakeledger/ledger"
)

var errNoSink = errors.New("state has no backing store")

type change struct {
	key []byte
	val []byte
}

// Stage holds the net changes of a state, ordered by key.
type Stage struct {
	changes []change
	sink    func([]change) error
}

func newStage(latest map[key][]byte, sink func([]change) error) *Stage {
	changes := make([]change, 0, len(latest))
	for k, v := range latest {
		changes = append(changes, change{k.encode(), v})
	}
	slices.SortFunc(changes, func(a, b change) int {
		return bytes.Compare(a.key, b.key)
	})
	return &Stage{changes, sink}
}

// Len returns the count of changed keys.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Hash digests the changes. Equal change sets have equal hashes.
func (s *Stage) Hash() ledger.Bytes32 {
	return ledger.Blake2bFn(func(w io.Writer) {
		var lenBuf [4]byte
		for _, c := range s.changes {
			for _, b := range [][]byte{c.key, c.val} {
				binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
				w.Write(lenBuf[:])
				w.Write(b)
			}
		}
	})
}

// Commit writes all changes into the backing store atomically.
func (s *Stage) Commit() error {
	if s.sink == nil {
		return &Error{errNoSink}
	}
	if len(s.changes) == 0 {
		return nil
	}
	if err := s.sink(s.changes); err != nil {
		return &Error{err}
	}
	return nil
}
