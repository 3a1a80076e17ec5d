// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements the fungible reward currency on contract storage.
package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/solidity"
	"github.com/vechain/stakeledger/state"
)

var (
	// ErrInsufficientBalance is returned when a transfer exceeds the sender balance.
	ErrInsufficientBalance = errors.New("insufficient token balance")
	// ErrSelfTransfer is returned when sender and receiver are the same account.
	ErrSelfTransfer = errors.New("token transfer to self")
)

var (
	slotSupply   = solidity.Slot("token-supply")
	slotBalances = solidity.Slot("token-balances")
)

// Token binder of the reward token contract.
type Token struct {
	supply   *solidity.Uint256
	balances *solidity.Mapping[ledger.Address, *big.Int]
}

func New(addr ledger.Address, state *state.State) *Token {
	ctx := solidity.NewContext(addr, state)
	return &Token{
		supply:   solidity.NewUint256(ctx, slotSupply),
		balances: solidity.NewMapping[ledger.Address, *big.Int](ctx, slotBalances),
	}
}

// TotalSupply returns the amount ever minted.
func (t *Token) TotalSupply() (*big.Int, error) {
	return t.supply.Get()
}

// BalanceOf returns the balance of holder.
func (t *Token) BalanceOf(holder ledger.Address) (*big.Int, error) {
	bal, err := t.balances.Get(holder)
	if err != nil {
		return nil, err
	}
	if bal == nil {
		return new(big.Int), nil
	}
	return bal, nil
}

// Mint credits amount to the account and grows the supply.
func (t *Token) Mint(to ledger.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.Errorf("negative amount %v", amount)
	}
	bal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := t.supply.Add(amount); err != nil {
		return err
	}
	return t.setBalance(to, bal.Add(bal, amount))
}

// Transfer moves amount between accounts.
func (t *Token) Transfer(from, to ledger.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.Errorf("negative amount %v", amount)
	}
	if from == to {
		return errors.Wrapf(ErrSelfTransfer, "%v", from)
	}
	if amount.Sign() == 0 {
		return nil
	}
	fromBal, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientBalance, "%v has %v, needs %v", from, fromBal, amount)
	}
	toBal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := t.setBalance(from, fromBal.Sub(fromBal, amount)); err != nil {
		return err
	}
	return t.setBalance(to, toBal.Add(toBal, amount))
}

func (t *Token) setBalance(holder ledger.Address, bal *big.Int) error {
	if bal.Sign() == 0 {
		t.balances.Delete(holder)
		return nil
	}
	return t.balances.Set(holder, bal)
}

// Vault is the token seen from one holding account: pulls come in to it, payouts leave from it.
type Vault struct {
	token   *Token
	account ledger.Address
}

// Vault binds the token to the holding account.
func (t *Token) Vault(account ledger.Address) *Vault {
	return &Vault{t, account}
}

// TransferIn pulls amount from the payer into the vault.
func (v *Vault) TransferIn(payer ledger.Address, amount *big.Int) error {
	return v.token.Transfer(payer, v.account, amount)
}

// TransferOut pays amount from the vault to the payee.
func (v *Vault) TransferOut(payee ledger.Address, amount *big.Int) error {
	return v.token.Transfer(v.account, payee, amount)
}

// BalanceOf returns the balance of holder.
func (v *Vault) BalanceOf(holder ledger.Address) (*big.Int, error) {
	return v.token.BalanceOf(holder)
}
