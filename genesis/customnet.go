// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/params"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/token"
)

// CustomGenesis is user customized genesis
type CustomGenesis struct {
	LaunchTime    uint64                `yaml:"launchTime"`
	Owner         ledger.Address        `yaml:"owner"`
	LockUpPeriod  uint64                `yaml:"lockUpPeriod"`
	InterestRate  uint64                `yaml:"interestRate"`
	RewardPrefund *math.HexOrDecimal256 `yaml:"rewardPrefund,omitempty"`
	Accounts      []Account             `yaml:"accounts"`
}

// Account is the account will set to the genesis state
type Account struct {
	Address ledger.Address        `yaml:"address"`
	Balance *math.HexOrDecimal256 `yaml:"balance,omitempty"` // native asset
	Tokens  *math.HexOrDecimal256 `yaml:"tokens,omitempty"`  // reward currency
}

func amount(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return (*big.Int)(v)
}

// LoadCustomGenesis reads a yaml genesis file.
func LoadCustomGenesis(path string) (*CustomGenesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	var gen CustomGenesis
	if err := yaml.Unmarshal(data, &gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis file")
	}
	return &gen, nil
}

// NewCustomNet create custom network genesis.
func NewCustomNet(gen *CustomGenesis) (*Genesis, error) {
	if gen.Owner.IsZero() {
		return nil, errors.New("owner must be set")
	}
	if gen.LockUpPeriod == 0 {
		return nil, errors.New("lockUpPeriod must be a non-zero integer")
	}
	if gen.InterestRate == 0 {
		return nil, errors.New("interestRate must be a non-zero integer")
	}
	if amount(gen.RewardPrefund).Sign() < 0 {
		return nil, errors.New("rewardPrefund must be a non-negative integer")
	}
	for _, a := range gen.Accounts {
		if a.Address == ledger.StakingAddress {
			return nil, fmt.Errorf("%s: the staking vault can not be allocated", a.Address)
		}
		if amount(a.Balance).Sign() < 0 {
			return nil, fmt.Errorf("%s: balance must be a non-negative integer", a.Address)
		}
		if amount(a.Tokens).Sign() < 0 {
			return nil, fmt.Errorf("%s: tokens must be a non-negative integer", a.Address)
		}
	}

	builder := new(Builder).
		Timestamp(gen.LaunchTime).
		State(func(st *state.State) error {
			return params.New(ledger.ParamsAddress, st).Initialize(gen.Owner, gen.LockUpPeriod, gen.InterestRate)
		}).
		State(func(st *state.State) error {
			tok := token.New(ledger.TokenAddress, st)
			for _, a := range gen.Accounts {
				if err := st.SetBalance(a.Address, amount(a.Balance)); err != nil {
					return err
				}
				if err := tok.Mint(a.Address, amount(a.Tokens)); err != nil {
					return err
				}
			}
			return tok.Mint(ledger.StakingAddress, amount(gen.RewardPrefund))
		})

	id, err := builder.ComputeID()
	if err != nil {
		return nil, err
	}
	return &Genesis{builder, id, "customnet"}, nil
}
