// Copyright © 2021 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package near

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/karlseguin/ccache"
	"github.com/kaleido-io/nftmarket/internal/config"
	"github.com/kaleido-io/nftmarket/internal/i18n"
	"github.com/kaleido-io/nftmarket/internal/log"
	"github.com/kaleido-io/nftmarket/internal/metrics"
	"github.com/kaleido-io/nftmarket/internal/retry"
)

const blockHashCacheKey = "final"

// Connection binds an RPC endpoint to a network ID and key store, and is shared
// by every Account used in a deployment
type Connection struct {
	networkID    string
	rpc          *RPC
	keystore     KeyStore
	metrics      metrics.Manager
	gas          uint64
	blockHashes  *ccache.Cache
	blockHashTTL time.Duration
	poll         retry.Retry
	pollTimeout  time.Duration
}

func NewConnection(ctx context.Context, rpcConf config.Prefix, keystore KeyStore, mm metrics.Manager) (*Connection, error) {
	gasStr := config.GetString(config.Gas)
	gas, err := strconv.ParseUint(gasStr, 10, 64)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgInvalidGas, gasStr)
	}
	c := &Connection{
		networkID:    config.GetString(config.NetworkID),
		rpc:          NewRPC(ctx, rpcConf),
		keystore:     keystore,
		metrics:      mm,
		gas:          gas,
		blockHashes:  ccache.New(ccache.Configure().MaxSize(10)),
		blockHashTTL: config.GetDuration(config.NetworkBlockHashCacheTTL),
		poll: retry.Retry{
			InitialDelay: config.GetDuration(config.PollInitialDelay),
			MaximumDelay: config.GetDuration(config.PollMaxDelay),
			Factor:       retry.DefaultFactor,
		},
		pollTimeout: config.GetDuration(config.PollTimeout),
	}
	log.L(ctx).Debugf("Connection to network '%s' (gas=%d)", c.networkID, c.gas)
	return c, nil
}

func (c *Connection) NetworkID() string {
	return c.networkID
}

func (c *Connection) KeyStore() KeyStore {
	return c.keystore
}

// Gas is the gas attached to every function call
func (c *Connection) Gas() uint64 {
	return c.gas
}

func (c *Connection) RPC() *RPC {
	return c.rpc
}

func (c *Connection) ViewAccount(ctx context.Context, accountID string) (*AccountView, error) {
	c.metrics.QueryIssued(accountID, "view_account")
	return c.rpc.ViewAccount(ctx, accountID)
}

// ViewFunction calls a read-only contract method with JSON args, decoding the JSON result.
// A nil args is sent as an empty object.
func (c *Connection) ViewFunction(ctx context.Context, contractID, method string, args interface{}, result interface{}) error {
	if args == nil {
		args = map[string]interface{}{}
	}
	argBytes, err := json.Marshal(args)
	if err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgArgsSerializeFailed, method)
	}
	c.metrics.QueryIssued(contractID, method)
	cfr, err := c.rpc.CallFunction(ctx, contractID, method, argBytes)
	if err != nil {
		return err
	}
	for _, l := range cfr.Logs {
		log.L(ctx).Debugf("%s.%s: %s", contractID, method, l)
	}
	if result != nil && len(cfr.Result) > 0 {
		if err := json.Unmarshal(cfr.Result, result); err != nil {
			return i18n.WrapError(ctx, err, i18n.MsgViewResultDecode, method, contractID)
		}
	}
	return nil
}

// recentBlockHash is cached briefly, as every transaction needs one and any recent final block will do
func (c *Connection) recentBlockHash(ctx context.Context) (CryptoHash, error) {
	item, err := c.blockHashes.Fetch(blockHashCacheKey, c.blockHashTTL, func() (interface{}, error) {
		block, err := c.rpc.Block(ctx)
		if err != nil {
			return nil, err
		}
		log.L(ctx).Debugf("Block %d hash %s", block.Header.Height, block.Header.Hash)
		return ParseCryptoHash(ctx, block.Header.Hash)
	})
	if err != nil {
		return CryptoHash{}, err
	}
	return item.Value().(CryptoHash), nil
}

// Account returns a signing account for an explicit key
func (c *Connection) Account(accountID string, kp *KeyPair) *Account {
	return &Account{
		conn: c,
		id:   accountID,
		key:  kp,
	}
}

// LoadAccount returns a signing account using the key held in the key store
func (c *Connection) LoadAccount(ctx context.Context, accountID string) (*Account, error) {
	kp, err := c.keystore.GetKey(ctx, c.networkID, accountID)
	if err != nil {
		return nil, err
	}
	return c.Account(accountID, kp), nil
}

// WaitForAccount polls until the account is visible on the network
func (c *Connection) WaitForAccount(ctx context.Context, accountID string) (*AccountView, error) {
	return c.waitForState(ctx, accountID, "account "+accountID, func(av *AccountView) bool { return true })
}

// WaitForCode polls until a contract is deployed to the account
func (c *Connection) WaitForCode(ctx context.Context, accountID string) (*AccountView, error) {
	return c.waitForState(ctx, accountID, "code on "+accountID, func(av *AccountView) bool { return av.HasCode() })
}

func (c *Connection) waitForState(ctx context.Context, accountID, desc string, ready func(av *AccountView) bool) (*AccountView, error) {
	pollCtx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()
	var av *AccountView
	err := c.poll.Do(pollCtx, desc, func(attempt int) (bool, error) {
		var err error
		av, err = c.ViewAccount(pollCtx, accountID)
		if err != nil {
			return i18n.HasCode(err, i18n.MsgUnknownAccount), err
		}
		return !ready(av), nil
	})
	if err != nil {
		if pollCtx.Err() != nil && ctx.Err() == nil {
			return nil, i18n.NewError(ctx, i18n.MsgWaitTimeout, desc)
		}
		return nil, err
	}
	return av, nil
}
