// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package participant

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/solidity"
)

var slotParticipants = solidity.Slot("participants")

// Service stores participant records keyed by address.
type Service struct {
	records *solidity.Mapping[ledger.Address, *Record]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		records: solidity.NewMapping[ledger.Address, *Record](sctx, slotParticipants),
	}
}

// Get returns the record of addr. A participant never seen has an all-zero record.
func (s *Service) Get(addr ledger.Address) (*Record, error) {
	r, err := s.records.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get participant")
	}
	if r == nil {
		return newRecord(), nil
	}
	return r.normalize(), nil
}

// Set stores the record of addr.
func (s *Service) Set(addr ledger.Address, r *Record) error {
	if err := s.records.Set(addr, r); err != nil {
		return errors.Wrap(err, "failed to set participant")
	}
	return nil
}
