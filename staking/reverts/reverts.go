// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/vechain/stakeledger/ledger"
)

// Kind classifies why an operation was rejected.
type Kind uint8

const (
	KindNone          Kind = iota
	KindValidation         // invalid argument
	KindAuthorization      // caller is not permitted
	KindState              // operation not allowed in the current state
	KindTransfer           // a collaborator transfer failed
	KindAccounting         // the ledger cannot honour its obligations
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindAuthorization:
		return "AuthorizationError"
	case KindState:
		return "StateError"
	case KindTransfer:
		return "TransferFailure"
	case KindAccounting:
		return "FatalAccountingFailure"
	}
	return "None"
}

// ErrRevert aborts an operation. No state change survives it.
type ErrRevert struct {
	kind    Kind
	message string
	cause   error
}

func newRevert(kind Kind, message string) *ErrRevert {
	return &ErrRevert{kind: kind, message: message}
}

func NewValidation(message string) *ErrRevert    { return newRevert(KindValidation, message) }
func NewAuthorization(message string) *ErrRevert { return newRevert(KindAuthorization, message) }
func NewState(message string) *ErrRevert         { return newRevert(KindState, message) }
func NewAccounting(message string) *ErrRevert    { return newRevert(KindAccounting, message) }

// NewTransfer wraps the failure reported by a collaborator.
func NewTransfer(message string, cause error) *ErrRevert {
	return &ErrRevert{kind: KindTransfer, message: message, cause: cause}
}

func (e *ErrRevert) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *ErrRevert) Unwrap() error {
	return e.cause
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

// Message returns the reason without the collaborator failure.
func (e *ErrRevert) Message() string {
	return e.message
}

var (
	errorSelector = ledger.Keccak256([]byte("Error(string)")).Bytes()[:4]
	stringArgs    = func() abi.Arguments {
		typ, err := abi.NewType("string", "", nil)
		if err != nil {
			panic(err)
		}
		return abi.Arguments{{Type: typ}}
	}()
)

// Bytes returns the message abi encoded as Error(string), the way a contract revert carries it.
func (e *ErrRevert) Bytes() []byte {
	if e == nil {
		return nil
	}
	packed, err := stringArgs.Pack(e.message)
	if err != nil {
		return nil
	}
	return append(append([]byte{}, errorSelector...), packed...)
}

// KindOf returns the kind of the revert in err's chain, or KindNone.
func KindOf(err error) Kind {
	var re *ErrRevert
	if errors.As(err, &re) {
		return re.kind
	}
	return KindNone
}
