// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakeledger/kv"
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/stackedmap"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

const (
	spaceStorage byte = 's'
	spaceBalance byte = 'b'
)

type key struct {
	space byte
	addr  ledger.Address
	slot  ledger.Bytes32
}

// encode returns the kv key: space | addr | slot (storage only).
func (k key) encode() []byte {
	b := make([]byte, 0, 1+20+32)
	b = append(b, k.space)
	b = append(b, k.addr[:]...)
	if k.space == spaceStorage {
		b = append(b, k.slot[:]...)
	}
	return b
}

func decodeKey(b []byte) (key, bool) {
	if len(b) < 21 {
		return key{}, false
	}
	k := key{space: b[0], addr: ledger.BytesToAddress(b[1:21])}
	switch k.space {
	case spaceBalance:
		return k, len(b) == 21
	case spaceStorage:
		if len(b) != 21+32 {
			return key{}, false
		}
		k.slot = ledger.BytesToBytes32(b[21:])
		return k, true
	}
	return key{}, false
}

// State manages contract storage and native balances.
type State struct {
	src  kv.Getter
	sm   *stackedmap.StackedMap[key, []byte]
	sink func(changes []change) error
}

// New creates a state reading committed values from src.
// A nil src is an empty state, and its stages can be hashed but not committed.
func New(src kv.Getter) *State {
	s := &State{src: src}
	s.sm = stackedmap.New(s.load)
	return s
}

// load implements stackedmap.MapGetter. Missing keys read as nil.
func (s *State) load(k key) ([]byte, bool, error) {
	if s.src == nil {
		return nil, true, nil
	}
	v, err := s.src.Get(k.encode())
	if err != nil {
		if s.src.IsNotFound(err) {
			return nil, true, nil
		}
		return nil, false, err
	}
	return v, true, nil
}

// GetBalance returns native balance for the given address.
func (s *State) GetBalance(addr ledger.Address) (*big.Int, error) {
	raw, _, err := s.sm.Get(key{space: spaceBalance, addr: addr})
	if err != nil {
		return nil, &Error{err}
	}
	bal := new(big.Int)
	if len(raw) == 0 {
		return bal, nil
	}
	if err := rlp.DecodeBytes(raw, bal); err != nil {
		return nil, &Error{err}
	}
	return bal, nil
}

// SetBalance sets native balance for the given address.
func (s *State) SetBalance(addr ledger.Address, balance *big.Int) error {
	if balance.Sign() < 0 {
		return &Error{fmt.Errorf("negative balance %v", balance)}
	}
	var raw []byte
	if balance.Sign() > 0 {
		var err error
		if raw, err = rlp.EncodeToBytes(balance); err != nil {
			return &Error{err}
		}
	}
	s.sm.Put(key{space: spaceBalance, addr: addr}, raw)
	return nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr ledger.Address, slot ledger.Bytes32) (ledger.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, slot)
	if err != nil {
		return ledger.Bytes32{}, err
	}
	if len(raw) == 0 {
		return ledger.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return ledger.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// a customized storage value, return the hash of raw data
		return ledger.Blake2b(raw), nil
	}
	return ledger.BytesToBytes32(content), nil
}

// SetStorage sets storage value for the given address and key.
func (s *State) SetStorage(addr ledger.Address, slot, value ledger.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, slot, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, slot, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr ledger.Address, slot ledger.Bytes32) (rlp.RawValue, error) {
	v, _, err := s.sm.Get(key{spaceStorage, addr, slot})
	if err != nil {
		return nil, &Error{err}
	}
	return v, nil
}

// SetRawStorage sets storage value in rlp raw.
func (s *State) SetRawStorage(addr ledger.Address, slot ledger.Bytes32, raw rlp.RawValue) {
	s.sm.Put(key{spaceStorage, addr, slot}, raw)
}

// EncodeStorage sets storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr ledger.Address, slot ledger.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, slot, raw)
	return nil
}

// DecodeStorage gets and decodes storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr ledger.Address, slot ledger.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, slot)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo reverts to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Stage collects the net changes made so far.
func (s *State) Stage() *Stage {
	latest := make(map[key][]byte)
	s.sm.Journal(func(k key, v []byte) bool {
		latest[k] = v
		return true
	})
	return newStage(latest, s.sink)
}
