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

package neartest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/kaleido-io/nftmarket/internal/config"
	"github.com/kaleido-io/nftmarket/internal/near"
	"github.com/kaleido-io/nftmarket/internal/restclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var utConf = config.NewPluginConfig("neartest_unit_tests.rpc")

func newTestSandbox(t *testing.T) (*Sandbox, *near.RPC, *near.KeyPair) {
	sb := New()
	t.Cleanup(sb.Close)
	config.Reset()
	near.InitConfig(utConf)
	utConf.Set(restclient.HTTPConfigURL, sb.URL())
	kp, err := near.GenerateKeyPair()
	require.NoError(t, err)
	sb.CreateAccount("alice.near", kp.PublicKey(), near.NewBalance(1000000))
	return sb, near.NewRPC(context.Background(), utConf), kp
}

func signedTransfer(t *testing.T, rpc *near.RPC, signer *near.KeyPair, pk near.PublicKey, nonce uint64) string {
	ctx := context.Background()
	block, err := rpc.Block(ctx)
	require.NoError(t, err)
	bh, err := near.ParseCryptoHash(ctx, block.Header.Hash)
	require.NoError(t, err)
	tx := &near.Transaction{
		SignerID:   "alice.near",
		PublicKey:  pk,
		Nonce:      nonce,
		ReceiverID: "alice.near",
		BlockHash:  bh,
		Actions:    []near.Action{near.NewTransferAction(near.NewBalance(1))},
	}
	_, b64, err := tx.Sign(ctx, signer)
	require.NoError(t, err)
	return b64
}

func TestBroadcastAcceptsAndRecords(t *testing.T) {
	ctx := context.Background()
	sb, rpc, kp := newTestSandbox(t)
	akv, err := rpc.ViewAccessKey(ctx, "alice.near", kp.PublicKey())
	require.NoError(t, err)

	outcome, err := rpc.BroadcastTxCommit(ctx, signedTransfer(t, rpc, kp, kp.PublicKey(), akv.Nonce+1))
	require.NoError(t, err)
	assert.NoError(t, outcome.Error(ctx))

	txs := sb.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, akv.Nonce+1, txs[0].Nonce)
	assert.Equal(t, outcome.Transaction.Hash, txs[0].Hash)
	assert.False(t, txs[0].Failed)
	assert.Equal(t, 1, sb.RequestCount("broadcast_tx_commit"))
}

func TestBroadcastRejectsReusedNonce(t *testing.T) {
	ctx := context.Background()
	_, rpc, kp := newTestSandbox(t)
	akv, err := rpc.ViewAccessKey(ctx, "alice.near", kp.PublicKey())
	require.NoError(t, err)

	_, err = rpc.BroadcastTxCommit(ctx, signedTransfer(t, rpc, kp, kp.PublicKey(), akv.Nonce))
	rpcErr, ok := near.AsRPCError(err)
	require.True(t, ok)
	assert.True(t, rpcErr.IsInvalidNonce())
}

func TestBroadcastRejectsBadSignature(t *testing.T) {
	ctx := context.Background()
	_, rpc, kp := newTestSandbox(t)
	other, _ := near.GenerateKeyPair()

	_, err := rpc.BroadcastTxCommit(ctx, signedTransfer(t, rpc, other, kp.PublicKey(), 999999999))
	assert.Regexp(t, "InvalidSignature", err)

	_, err = rpc.BroadcastTxCommit(ctx, signedTransfer(t, rpc, other, other.PublicKey(), 999999999))
	assert.Regexp(t, "AccessKeyNotFound", err)

	_, err = rpc.BroadcastTxCommit(ctx, "!!!")
	assert.Regexp(t, "Invalid params", err)
}

func TestQueryErrors(t *testing.T) {
	ctx := context.Background()
	_, rpc, _ := newTestSandbox(t)

	_, err := rpc.ViewAccount(ctx, "bob.near")
	assert.Regexp(t, "NM10113", err)

	other, _ := near.GenerateKeyPair()
	_, err = rpc.ViewAccessKey(ctx, "alice.near", other.PublicKey())
	assert.Regexp(t, "NM10131", err)

	_, err = rpc.CallFunction(ctx, "alice.near", "anything", []byte("{}"))
	assert.Regexp(t, "CodeDoesNotExist", err)

	av, err := rpc.ViewAccount(ctx, "alice.near")
	assert.NoError(t, err)
	assert.False(t, av.HasCode())
}

func TestNFTContract(t *testing.T) {
	c := NewNFTContract("nft.near")
	owner := &CallContext{ContractID: "nft.near", PredecessorID: "alice.near", SignerID: "alice.near"}

	_, err := c.Call(owner, "set_contract_royalty", []byte(`{"contract_royalty":1}`))
	assert.Regexp(t, "not initialized", err)

	_, err = c.Call(owner, "new", []byte(`{"owner_id":"alice.near","metadata":{"spec":"nft-1.0.0"},"supply_cap_by_type":{"a:1":"10"},"locked":true}`))
	assert.NoError(t, err)
	_, err = c.Call(owner, "new", []byte(`{}`))
	assert.Regexp(t, "already been initialized", err)

	_, err = c.Call(owner, "set_contract_royalty", []byte(`{"contract_royalty":5001}`))
	assert.Regexp(t, "too high", err)
	_, err = c.Call(owner, "set_contract_royalty", []byte(`{"contract_royalty":1000}`))
	assert.NoError(t, err)
	_, err = c.Call(&CallContext{PredecessorID: "bob.near"}, "set_contract_royalty", []byte(`{"contract_royalty":1}`))
	assert.Regexp(t, "Owner's method", err)

	_, err = c.Call(owner, "add_token_types", []byte(`{"supply_cap_by_type":{"b:1":"5","c:1":"6"},"locked":false}`))
	assert.NoError(t, err)
	_, err = c.Call(owner, "add_token_types", []byte(`{"supply_cap_by_type":{"b:1":"5"}}`))
	assert.Regexp(t, "already exists", err)

	res, err := c.View("get_contract_royalty", nil)
	assert.NoError(t, err)
	assert.Equal(t, "1000", string(res))
	res, err = c.View("get_supply_caps", nil)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"a:1":"10","b:1":"5","c:1":"6"}`, string(res))
	res, err = c.View("get_token_types_locked", nil)
	assert.NoError(t, err)
	assert.Equal(t, `["a:1"]`, string(res))

	_, err = c.View("nft_tokens", nil)
	assert.IsType(t, &MethodNotFound{}, err)
}

func TestFTContract(t *testing.T) {
	c := NewFTContract("ft.near")
	cc := &CallContext{PredecessorID: "alice.near", SignerID: "alice.near", Deposit: FTStorageMinimum}

	_, err := c.Call(cc, "new", []byte(`{"owner_id":"alice.near"}`))
	assert.Regexp(t, "total_supply", err)
	_, err = c.Call(cc, "new", []byte(`{"owner_id":"alice.near","total_supply":"1000","name":"Test","symbol":"TST","decimals":0}`))
	assert.NoError(t, err)

	res, err := c.View("storage_balance_of", []byte(`{"account_id":"bob.near"}`))
	assert.NoError(t, err)
	assert.Equal(t, "null", string(res))

	_, err = c.Call(&CallContext{PredecessorID: "bob.near", Deposit: near.NewBalance(1)}, "storage_deposit", nil)
	assert.Regexp(t, "less than the minimum", err)
	_, err = c.Call(&CallContext{PredecessorID: "bob.near", Deposit: FTStorageMinimum}, "storage_deposit", nil)
	assert.NoError(t, err)
	res, err = c.View("storage_balance_of", []byte(`{"account_id":"bob.near"}`))
	assert.NoError(t, err)
	var sbal storageBalance
	assert.NoError(t, json.Unmarshal(res, &sbal))
	assert.Equal(t, FTStorageMinimum.String(), sbal.Total.String())

	cc = &CallContext{PredecessorID: "alice.near"}
	_, err = c.Call(cc, "storage_deposit", []byte(`{"account_id":"bob.near"}`))
	assert.NoError(t, err)
	assert.Regexp(t, "already registered", cc.Logs[0])

	res, err = c.View("ft_balance_of", []byte(`{"account_id":"alice.near"}`))
	assert.NoError(t, err)
	assert.Equal(t, `"1000"`, string(res))
	res, err = c.View("ft_metadata", nil)
	assert.NoError(t, err)
	assert.Contains(t, string(res), `"symbol":"TST"`)
}

func TestMarketContract(t *testing.T) {
	c := NewMarketContract("market.near")
	owner := &CallContext{PredecessorID: "alice.near"}

	_, err := c.Call(owner, "new", []byte(`{"owner_id":"alice.near","ft_token_ids":["ft.near","ft.near"],"bid_history_length":5}`))
	assert.NoError(t, err)
	assert.Equal(t, uint8(5), c.(*MarketContract).BidHistoryLength)

	res, err := c.Call(owner, "add_ft_token_ids", []byte(`{"ft_token_ids":["ft.near","ft2.near"]}`))
	assert.NoError(t, err)
	assert.Equal(t, `[false,true]`, string(res))
	_, err = c.Call(owner, "add_ft_token_ids", []byte(`{"ft_token_ids":["Bad..id"]}`))
	assert.Regexp(t, "Invalid token ID", err)
	_, err = c.Call(&CallContext{PredecessorID: "bob.near"}, "add_ft_token_ids", []byte(`{"ft_token_ids":[]}`))
	assert.Regexp(t, "Owner's method", err)

	res, err = c.View("supported_ft_token_ids", nil)
	assert.NoError(t, err)
	assert.Equal(t, `["ft.near","ft2.near"]`, string(res))
	res, err = c.View("storage_amount", nil)
	assert.NoError(t, err)
	assert.Equal(t, `"10000000000000000000000"`, string(res))
}

func TestUnknownContract(t *testing.T) {
	_, err := unknownContract{}.Call(&CallContext{}, "new", nil)
	assert.Regexp(t, "MethodNotFound: new", err)
	assert.Equal(t, "FunctionCallError(MethodResolveError(MethodNotFound))", executionError(err))
	assert.Regexp(t, "GuestPanic", executionError(panicf("boom")))
}
