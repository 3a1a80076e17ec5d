// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking serves the ledger over http. Queries are always mounted,
// operations only in solo mode where the caller in the body is trusted.
package staking

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/api/restutil"
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/node"
	stakingcore "github.com/vechain/stakeledger/staking"
)

type Staking struct {
	node     *node.Node
	soloMode bool
}

func New(n *node.Node, soloMode bool) *Staking {
	return &Staking{
		n,
		soloMode,
	}
}

func (s *Staking) handleGetConfig(w http.ResponseWriter, _ *http.Request) error {
	cfg := &Config{
		GenesisID: s.node.GenesisID(),
		Staking:   ledger.StakingAddress,
		Token:     ledger.TokenAddress,
		RateBase:  ledger.RateBase.Uint64(),
	}
	err := s.node.View(func(st *stakingcore.Staking, _ uint64) (err error) {
		if cfg.Owner, err = st.Owner(); err != nil {
			return err
		}
		if cfg.LockUpPeriod, err = st.LockUpPeriod(); err != nil {
			return err
		}
		cfg.InterestRate, err = st.InterestRate()
		return err
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, cfg)
}

func (s *Staking) handleGetPool(w http.ResponseWriter, _ *http.Request) error {
	var pool *Pool
	err := s.node.View(func(st *stakingcore.Staking, _ uint64) error {
		p, err := st.Pool()
		if err != nil {
			return err
		}
		balance, err := st.RewardBalance()
		if err != nil {
			return err
		}
		pool = convertPool(p, balance)
		return nil
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, pool)
}

func (s *Staking) handleGetParticipant(w http.ResponseWriter, req *http.Request) error {
	addr, err := ledger.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	var p *Participant
	err = s.node.View(func(st *stakingcore.Staking, now uint64) error {
		r, err := st.Participant(addr)
		if err != nil {
			return err
		}
		ok, err := st.Withdrawable(addr, now)
		if err != nil {
			return err
		}
		p = convertParticipant(addr, r, ok)
		return nil
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, p)
}

func (s *Staking) handleGetPendingReward(w http.ResponseWriter, req *http.Request) error {
	addr, err := ledger.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	var pending *PendingReward
	err = s.node.View(func(st *stakingcore.Staking, now uint64) error {
		reward, err := st.PendingReward(addr, now)
		if err != nil {
			return err
		}
		pending = &PendingReward{Reward: (*math.HexOrDecimal256)(reward), Timestamp: now}
		return nil
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, pending)
}

func (s *Staking) handleStake(w http.ResponseWriter, req *http.Request) error {
	var body AmountRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := s.node.Stake(body.Caller, body.amount())
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertReceipt(receipt))
}

func (s *Staking) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body WithdrawRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := s.node.Withdraw(body.Caller)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertReceipt(receipt))
}

func (s *Staking) handleAddReward(w http.ResponseWriter, req *http.Request) error {
	var body AmountRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := s.node.AddReward(body.Caller, body.amount())
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertReceipt(receipt))
}

func (s *Staking) handleSetLockUpPeriod(w http.ResponseWriter, req *http.Request) error {
	var body LockUpRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := s.node.SetLockUpPeriod(body.Caller, body.Period)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertReceipt(receipt))
}

func (s *Staking) handleChangeInterestRate(w http.ResponseWriter, req *http.Request) error {
	var body InterestRateRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := s.node.ChangeInterestRate(body.Caller, body.Rate)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertReceipt(receipt))
}

func (s *Staking) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := ledger.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	native, tokens, err := s.node.Balances(addr)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Balance{
		Native: (*math.HexOrDecimal256)(native),
		Token:  (*math.HexOrDecimal256)(tokens),
	})
}

func (s *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/config").
		Methods(http.MethodGet).
		Name("GET /staking/config").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetConfig))
	sub.Path("/pool").
		Methods(http.MethodGet).
		Name("GET /staking/pool").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetPool))
	sub.Path("/participants/{address}").
		Methods(http.MethodGet).
		Name("GET /staking/participants/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetParticipant))
	sub.Path("/participants/{address}/pending").
		Methods(http.MethodGet).
		Name("GET /staking/participants/{address}/pending").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetPendingReward))
	sub.Path("/balances/{address}").
		Methods(http.MethodGet).
		Name("GET /staking/balances/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetBalance))

	if !s.soloMode {
		return
	}
	sub.Path("/stake").
		Methods(http.MethodPost).
		Name("POST /staking/stake").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleStake))
	sub.Path("/withdraw").
		Methods(http.MethodPost).
		Name("POST /staking/withdraw").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleWithdraw))
	sub.Path("/rewards").
		Methods(http.MethodPost).
		Name("POST /staking/rewards").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleAddReward))
	sub.Path("/lockup").
		Methods(http.MethodPost).
		Name("POST /staking/lockup").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSetLockUpPeriod))
	sub.Path("/rate").
		Methods(http.MethodPost).
		Name("POST /staking/rate").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleChangeInterestRate))
}
