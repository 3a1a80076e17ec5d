// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/ledger"
)

var (
	// ErrInsufficientBalance is returned when a native transfer exceeds the source balance.
	ErrInsufficientBalance = errors.New("insufficient native balance")
	// ErrSelfTransfer is returned when source and destination of a native transfer are the same account.
	ErrSelfTransfer = errors.New("native transfer to self")
)

// NativeLedger moves native balance between accounts and a vault account.
type NativeLedger struct {
	state *State
	vault ledger.Address
}

// NewNativeLedger creates a native ledger whose vault is the given address.
func NewNativeLedger(state *State, vault ledger.Address) *NativeLedger {
	return &NativeLedger{state, vault}
}

// Vault returns the vault address.
func (n *NativeLedger) Vault() ledger.Address {
	return n.vault
}

// TransferIn moves amount from the account into the vault.
func (n *NativeLedger) TransferIn(from ledger.Address, amount *big.Int) error {
	return n.move(from, n.vault, amount)
}

// TransferOut moves amount from the vault to the account.
func (n *NativeLedger) TransferOut(to ledger.Address, amount *big.Int) error {
	return n.move(n.vault, to, amount)
}

func (n *NativeLedger) move(from, to ledger.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.Errorf("negative amount %v", amount)
	}
	if from == to {
		return errors.Wrapf(ErrSelfTransfer, "%v", from)
	}
	if amount.Sign() == 0 {
		return nil
	}
	fromBal, err := n.state.GetBalance(from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientBalance, "%v has %v, needs %v", from, fromBal, amount)
	}
	toBal, err := n.state.GetBalance(to)
	if err != nil {
		return err
	}
	if err := n.state.SetBalance(from, fromBal.Sub(fromBal, amount)); err != nil {
		return err
	}
	return n.state.SetBalance(to, toBal.Add(toBal, amount))
}
