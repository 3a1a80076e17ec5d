// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vechain/stakeledger/ledger"
)

// DevAccount account for development.
type DevAccount struct {
	Address    ledger.Address
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for solo mode.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
	}
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		addr := crypto.PubkeyToAddress(pk.PublicKey)
		accs = append(accs, DevAccount{ledger.Address(addr), pk})
	}
	devAccounts.Store(accs)
	return accs
}

// DevnetName is the network name of the devnet genesis.
const DevnetName = "devnet"

// NewDevnet create genesis for solo mode. The first dev account owns the ledger.
func NewDevnet() *Genesis {
	launchTime := uint64(1526400000) // 'Wed May 16 2018 00:00:00 GMT+0800 (CST)'

	bal, _ := new(big.Int).SetString("1000000000000000000000000000", 10)
	prefund := new(big.Int).Mul(big.NewInt(1_000_000), ledger.Ether)

	gen := &CustomGenesis{
		LaunchTime:    launchTime,
		Owner:         DevAccounts()[0].Address,
		LockUpPeriod:  ledger.DefaultLockUpPeriod,
		InterestRate:  ledger.DefaultInterestRate,
		RewardPrefund: (*math.HexOrDecimal256)(prefund),
	}
	for _, a := range DevAccounts() {
		gen.Accounts = append(gen.Accounts, Account{
			Address: a.Address,
			Balance: (*math.HexOrDecimal256)(bal),
			Tokens:  (*math.HexOrDecimal256)(bal),
		})
	}

	g, err := NewCustomNet(gen)
	if err != nil {
		panic(err)
	}
	g.name = DevnetName
	return g
}
