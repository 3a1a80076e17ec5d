// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package httpclient provides an HTTP client for the staking ledger API.
// It reads the pool, participants and balances, submits operations when the
// server runs in solo mode and queries the event history.
package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakeledger/api/events"
	"github.com/vechain/stakeledger/api/restutil"
	"github.com/vechain/stakeledger/api/staking"
	"github.com/vechain/stakeledger/client/common"
	"github.com/vechain/stakeledger/ledger"
)

// Client represents the HTTP client for the staking ledger API.
type Client struct {
	url string
	c   *http.Client
}

// New creates a new Client with the provided URL.
func New(url string) *Client {
	return NewWithHTTP(url, http.DefaultClient)
}

func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{
		url: url,
		c:   c,
	}
}

// GetConfig retrieves the ledger configuration.
func (c *Client) GetConfig() (*staking.Config, error) {
	var cfg staking.Config
	if err := c.getJSON("/staking/config", &cfg); err != nil {
		return nil, fmt.Errorf("unable to retrieve config - %w", err)
	}
	return &cfg, nil
}

// GetPool retrieves the reward pool counters.
func (c *Client) GetPool() (*staking.Pool, error) {
	var pool staking.Pool
	if err := c.getJSON("/staking/pool", &pool); err != nil {
		return nil, fmt.Errorf("unable to retrieve pool - %w", err)
	}
	return &pool, nil
}

// GetParticipant retrieves the staking record of addr.
func (c *Client) GetParticipant(addr ledger.Address) (*staking.Participant, error) {
	var p staking.Participant
	if err := c.getJSON("/staking/participants/"+addr.String(), &p); err != nil {
		return nil, fmt.Errorf("unable to retrieve participant - %w", err)
	}
	return &p, nil
}

// GetPendingReward retrieves the reward addr would receive if it withdrew now.
func (c *Client) GetPendingReward(addr ledger.Address) (*staking.PendingReward, error) {
	var r staking.PendingReward
	if err := c.getJSON("/staking/participants/"+addr.String()+"/pending", &r); err != nil {
		return nil, fmt.Errorf("unable to retrieve pending reward - %w", err)
	}
	return &r, nil
}

// GetBalance retrieves the native and reward token balances of addr.
func (c *Client) GetBalance(addr ledger.Address) (*staking.Balance, error) {
	var b staking.Balance
	if err := c.getJSON("/staking/balances/"+addr.String(), &b); err != nil {
		return nil, fmt.Errorf("unable to retrieve balance - %w", err)
	}
	return &b, nil
}

// Stake deposits amount on behalf of caller.
func (c *Client) Stake(caller ledger.Address, amount *big.Int) (*staking.Receipt, error) {
	return c.send("/staking/stake", &staking.AmountRequest{Caller: caller, Amount: (*math.HexOrDecimal256)(amount)})
}

// Withdraw pays out the principal and reward of caller.
func (c *Client) Withdraw(caller ledger.Address) (*staking.Receipt, error) {
	return c.send("/staking/withdraw", &staking.WithdrawRequest{Caller: caller})
}

// AddReward tops up the reward pool.
func (c *Client) AddReward(caller ledger.Address, amount *big.Int) (*staking.Receipt, error) {
	return c.send("/staking/rewards", &staking.AmountRequest{Caller: caller, Amount: (*math.HexOrDecimal256)(amount)})
}

// SetLockUpPeriod changes the lock-up period, owner only.
func (c *Client) SetLockUpPeriod(caller ledger.Address, period uint64) (*staking.Receipt, error) {
	return c.send("/staking/lockup", &staking.LockUpRequest{Caller: caller, Period: period})
}

// ChangeInterestRate changes the interest rate, owner only.
func (c *Client) ChangeInterestRate(caller ledger.Address, rate uint64) (*staking.Receipt, error) {
	return c.send("/staking/rate", &staking.InterestRateRequest{Caller: caller, Rate: rate})
}

// FilterEvents queries the event history.
func (c *Client) FilterEvents(req *events.EventFilter) ([]*events.Event, error) {
	body, err := c.httpPOST(c.url+"/logs/event", req)
	if err != nil {
		return nil, fmt.Errorf("unable to filter events - %w", err)
	}

	var res []*events.Event
	if err = json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("unable to unmarshal events - %w", err)
	}
	return res, nil
}

// RawHTTPPost sends a raw HTTP POST request to the specified path with the provided data.
func (c *Client) RawHTTPPost(path string, calldata any) ([]byte, int, error) {
	data, err := marshal(calldata)
	if err != nil {
		return nil, 0, err
	}
	return c.rawHTTPRequest(http.MethodPost, c.url+path, bytes.NewBuffer(data))
}

// RawHTTPGet sends a raw HTTP GET request to the specified path.
func (c *Client) RawHTTPGet(path string) ([]byte, int, error) {
	return c.rawHTTPRequest(http.MethodGet, c.url+path, nil)
}

func (c *Client) send(path string, req any) (*staking.Receipt, error) {
	body, err := c.httpPOST(c.url+path, req)
	if err != nil {
		return nil, fmt.Errorf("unable to send %s - %w", path, err)
	}

	var receipt staking.Receipt
	if err = json.Unmarshal(body, &receipt); err != nil {
		return nil, fmt.Errorf("unable to unmarshal receipt - %w", err)
	}
	return &receipt, nil
}

func (c *Client) getJSON(path string, v any) error {
	body, err := c.httpGET(c.url + path)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

func marshal(payload any) ([]byte, error) {
	if data, ok := payload.([]byte); ok {
		return data, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal payload - %w", err)
	}
	return data, nil
}

func (c *Client) rawHTTPRequest(method, url string, payload io.Reader) ([]byte, int, error) {
	req, err := http.NewRequest(method, url, payload)
	if err != nil {
		return nil, 0, fmt.Errorf("error creating request: %w", err)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("error performing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("error reading response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func (c *Client) httpRequest(method, url string, payload io.Reader) ([]byte, error) {
	body, status, err := c.rawHTTPRequest(method, url, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		se := &common.StatusError{Code: status, Body: string(bytes.TrimSpace(body))}
		var revert restutil.RevertError
		if json.Unmarshal(body, &revert) == nil && revert.Kind != "" {
			se.Revert = &revert
		}
		return nil, se
	}
	return body, nil
}

func (c *Client) httpGET(url string) ([]byte, error) {
	return c.httpRequest(http.MethodGet, url, nil)
}

func (c *Client) httpPOST(url string, payload any) ([]byte, error) {
	data, err := marshal(payload)
	if err != nil {
		return nil, err
	}
	return c.httpRequest(http.MethodPost, url, bytes.NewBuffer(data))
}
