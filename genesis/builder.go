// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/state"
)

// Builder helper to build the genesis state.
type Builder struct {
	timestamp  uint64
	stateProcs []func(state *state.State) error
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.timestamp = t
	return b
}

// State add a state process
func (b *Builder) State(proc func(state *state.State) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// ComputeID compute genesis ID.
func (b *Builder) ComputeID() (ledger.Bytes32, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return ledger.Bytes32{}, err
	}
	defer db.Close()
	return b.Build(state.NewStater(db, 0))
}

// Build runs the state processes and commits the result.
func (b *Builder) Build(stater *state.Stater) (ledger.Bytes32, error) {
	st := stater.NewState()
	for _, proc := range b.stateProcs {
		if err := proc(st); err != nil {
			return ledger.Bytes32{}, errors.Wrap(err, "state process")
		}
	}

	stage := st.Stage()
	id := stage.Hash()
	if err := stage.Commit(); err != nil {
		return ledger.Bytes32{}, errors.Wrap(err, "commit state")
	}
	return id, nil
}
