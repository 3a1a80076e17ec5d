// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import "github.com/vechain/stakeledger/ledger"

// Address stores an address in one slot.
type Address struct {
	context *Context
	pos     ledger.Bytes32
}

func NewAddress(context *Context, pos ledger.Bytes32) *Address {
	return &Address{context: context, pos: pos}
}

func (a *Address) Get() (ledger.Address, error) {
	storage, err := a.context.state.GetStorage(a.context.address, a.pos)
	if err != nil {
		return ledger.Address{}, err
	}
	return ledger.BytesToAddress(storage.Bytes()), nil
}

func (a *Address) Set(addr ledger.Address) {
	a.context.state.SetStorage(a.context.address, a.pos, ledger.BytesToBytes32(addr.Bytes()))
}
