// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package common holds the types shared by the http and websocket clients.
package common

import (
	"errors"
	"fmt"

	"github.com/vechain/stakeledger/api/restutil"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrNot200Status  = errors.New("not 200 status code")
	ErrUnexpectedMsg = errors.New("unexpected message format")
)

// StatusError is returned for any non 200 response. It unwraps to ErrNot200Status,
// or ErrNotFound for 404.
// Revert is set when the ledger rejected the operation.
type StatusError struct {
	Code   int
	Body   string
	Revert *restutil.RevertError
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http error - Status Code %d - %s", e.Code, e.Body)
}

func (e *StatusError) Unwrap() error {
	if e.Code == 404 {
		return ErrNotFound
	}
	return ErrNot200Status
}

// EventWrapper carries either a decoded message or the error that ended the stream.
type EventWrapper[T any] struct {
	Data  T
	Error error
}
