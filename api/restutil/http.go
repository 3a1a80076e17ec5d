// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/staking/reverts"
)

var logger = log.WithContext("pkg", "restutil")

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	return e.cause.Error()
}

func (e *httpError) Unwrap() error {
	return e.cause
}

// HTTPError create an error with http status code.
func HTTPError(cause error, status int) error {
	return &httpError{
		cause:  cause,
		status: status,
	}
}

// BadRequest convenience method to create http bad request error.
func BadRequest(cause error) error {
	return HTTPError(cause, http.StatusBadRequest)
}

// Forbidden convenience method to create http forbidden error.
func Forbidden(cause error) error {
	return HTTPError(cause, http.StatusForbidden)
}

// NotFound convenience method to create http not found error.
func NotFound(cause error) error {
	return HTTPError(cause, http.StatusNotFound)
}

// RevertStatus maps a ledger revert to the status it is reported with.
func RevertStatus(kind reverts.Kind) int {
	switch kind {
	case reverts.KindValidation:
		return http.StatusBadRequest
	case reverts.KindAuthorization:
		return http.StatusForbidden
	case reverts.KindState:
		return http.StatusConflict
	case reverts.KindTransfer, reverts.KindAccounting:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// RevertError is the response body of a rejected ledger operation.
// Data is the reason abi encoded as Error(string).
type RevertError struct {
	Kind    string        `json:"kind"`
	Message string        `json:"message"`
	Cause   string        `json:"cause,omitempty"`
	Data    hexutil.Bytes `json:"data"`
}

func writeRevert(w http.ResponseWriter, re *reverts.ErrRevert) {
	body := &RevertError{
		Kind:    re.Kind().String(),
		Message: re.Message(),
		Data:    re.Bytes(),
	}
	if cause := re.Unwrap(); cause != nil {
		body.Cause = cause.Error()
	}
	w.Header().Set("Content-Type", JSONContentType)
	w.WriteHeader(RevertStatus(re.Kind()))
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Debug("failed to write revert", "err", err)
	}
}

// HandlerFunc like http.HandlerFunc, bu it returns an error.
// If the returned error is httpError type, httpError.status will be responded.
// A ledger revert is responded with the status of its kind and a RevertError body,
// otherwise http.StatusInternalServerError responded.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc convert HandlerFunc to http.HandlerFunc.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		var he *httpError
		if errors.As(err, &he) {
			if he.cause != nil {
				http.Error(w, he.cause.Error(), he.status)
			} else {
				w.WriteHeader(he.status)
			}
			return
		}
		var re *reverts.ErrRevert
		if errors.As(err, &re) {
			writeRevert(w, re)
			return
		}
		logger.Debug("all errors should be wrapped in httpError", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// content types
const (
	JSONContentType = "application/json; charset=utf-8"
)

// ParseJSON parse a JSON object using strict mode.
func ParseJSON(r io.Reader, v any) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// WriteJSON response an object in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}
