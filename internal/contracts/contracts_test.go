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

package contracts

import (
	"context"
	"testing"

	"github.com/kaleido-io/nftmarket/internal/config"
	"github.com/kaleido-io/nftmarket/internal/near"
	"github.com/kaleido-io/nftmarket/internal/near/neartest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var utRPCConf = config.NewPluginConfig("contracts_unit_tests.rpc")

const ownerID = "nft.test.near"

func newTestNetwork(t *testing.T) *neartest.Network {
	return neartest.NewNetwork(t, utRPCConf, ownerID)
}

func newSubAccount(t *testing.T, nw *neartest.Network, prefix string) *near.Account {
	ctx := context.Background()
	kp, err := near.GenerateKeyPair()
	require.NoError(t, err)
	amount, _ := near.ParseNearAmount(ctx, "20")
	id := prefix + "." + ownerID
	_, err = nw.Root.CreateAccount(ctx, id, kp.PublicKey(), amount)
	require.NoError(t, err)
	return nw.Conn.Account(id, kp)
}

func TestNFTLifecycle(t *testing.T) {
	ctx := context.Background()
	nw := newTestNetwork(t)
	nft := NewNFT(ownerID)

	_, err := nft.New(ctx, nw.Root, neartest.NFTWasm, &NFTInitArgs{
		OwnerID:         ownerID,
		Metadata:        NFTMetadata{Spec: "nft-1.0.0", Name: "Test NFT", Symbol: "TNFT"},
		SupplyCapByType: map[string]string{"typeA:1": "1"},
		Locked:          true,
	})
	require.NoError(t, err)

	_, err = nft.SetContractRoyalty(ctx, nw.Root, 500)
	assert.NoError(t, err)
	_, err = nft.AddTokenTypes(ctx, nw.Root, map[string]string{"typeB:1": "500"}, false)
	assert.NoError(t, err)

	royalty, err := nft.ContractRoyalty(ctx, nw.Conn)
	assert.NoError(t, err)
	assert.Equal(t, uint32(500), royalty)

	caps, err := nft.SupplyCapByType(ctx, nw.Root)
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"typeA:1": "1", "typeB:1": "500"}, caps)

	locked, err := nft.TokenTypesLocked(ctx, nw.Conn)
	assert.NoError(t, err)
	assert.Equal(t, []string{"typeA:1"}, locked)

	md, err := nft.Metadata(ctx, nw.Conn)
	assert.NoError(t, err)
	assert.Equal(t, "TNFT", md.Symbol)

	// a second initialization is rejected by the contract
	_, err = nft.New(ctx, nw.Root, nil, &NFTInitArgs{OwnerID: ownerID})
	assert.Regexp(t, "NM10116.*already been initialized", err)
}

func TestNFTOwnerOnly(t *testing.T) {
	ctx := context.Background()
	nw := newTestNetwork(t)
	nft := NewNFT(ownerID)
	_, err := nft.New(ctx, nw.Root, neartest.NFTWasm, &NFTInitArgs{OwnerID: ownerID})
	require.NoError(t, err)

	alice := newSubAccount(t, nw, "alice")
	_, err = nft.SetContractRoyalty(ctx, alice, 100)
	assert.Regexp(t, "NM10116.*Owner's method", err)
	_, err = nft.AddTokenTypes(ctx, alice, map[string]string{"x:1": "1"}, true)
	assert.Regexp(t, "NM10116.*Owner's method", err)
}

func TestFTLifecycle(t *testing.T) {
	ctx := context.Background()
	nw := newTestNetwork(t)
	ftAccount := newSubAccount(t, nw, "fungible")
	ft := NewFT(ftAccount.ID())

	supply, _ := near.ParseNearAmount(ctx, "1000000")
	_, err := ft.New(ctx, ftAccount, neartest.FTWasm, &FTInitArgs{
		OwnerID:     ownerID,
		TotalSupply: supply,
		Name:        "Test Fungible T",
		Symbol:      "TFT",
		Version:     "1",
		Decimals:    24,
	})
	require.NoError(t, err)

	min, err := ft.StorageMinimumBalance(ctx, nw.Conn)
	assert.NoError(t, err)
	assert.Equal(t, neartest.FTStorageMinimum.String(), min.String())

	sb, err := ft.StorageBalanceOf(ctx, nw.Conn, "a1.testnet")
	assert.NoError(t, err)
	assert.Nil(t, sb)

	_, err = ft.StorageDeposit(ctx, ftAccount, "a1.testnet", min)
	assert.NoError(t, err)
	sb, err = ft.StorageBalanceOf(ctx, nw.Conn, "a1.testnet")
	assert.NoError(t, err)
	assert.Equal(t, min.String(), sb.Total.String())

	// registering the payer itself
	_, err = ft.StorageDeposit(ctx, ftAccount, "", min)
	assert.NoError(t, err)
	sb, err = ft.StorageBalanceOf(ctx, nw.Conn, ftAccount.ID())
	assert.NoError(t, err)
	assert.NotNil(t, sb)

	_, err = ft.StorageDeposit(ctx, ftAccount, "a2.testnet", near.NewBalance(1))
	assert.Regexp(t, "NM10116.*less than the minimum", err)

	balance, err := ft.BalanceOf(ctx, nw.Conn, ownerID)
	assert.NoError(t, err)
	assert.Equal(t, supply.String(), balance.String())
	total, err := ft.TotalSupply(ctx, nw.Conn)
	assert.NoError(t, err)
	assert.Equal(t, supply.String(), total.String())
}

func TestMarketLifecycle(t *testing.T) {
	ctx := context.Background()
	nw := newTestNetwork(t)
	marketAccount := newSubAccount(t, nw, "market")
	market := NewMarket(marketAccount.ID())

	_, err := market.New(ctx, marketAccount, neartest.MarketWasm, &MarketInitArgs{
		OwnerID:          ownerID,
		FtTokenIDs:       []string{"fungible." + ownerID},
		BidHistoryLength: 3,
	})
	require.NoError(t, err)

	ids, err := market.SupportedFtTokenIDs(ctx, nw.Conn)
	assert.NoError(t, err)
	assert.Equal(t, []string{"fungible." + ownerID}, ids)

	added, outcome, err := market.AddFtTokenIDs(ctx, nw.Root, []string{"fungible." + ownerID, "other.testnet"})
	assert.NoError(t, err)
	assert.NotNil(t, outcome)
	assert.Equal(t, []bool{false, true}, added)

	_, _, err = market.AddFtTokenIDs(ctx, marketAccount, []string{"x.testnet"})
	assert.Regexp(t, "NM10116.*Owner's method", err)

	amount, err := market.StorageAmount(ctx, nw.Conn)
	assert.NoError(t, err)
	assert.Equal(t, neartest.MarketStorageAmount.String(), amount.String())
}

func TestViewsWithoutContract(t *testing.T) {
	ctx := context.Background()
	nw := newTestNetwork(t)

	_, err := NewFT(ownerID).StorageMinimumBalance(ctx, nw.Conn)
	assert.Regexp(t, "NM10114", err)
	_, err = NewMarket("nobody.test.near").StorageAmount(ctx, nw.Conn)
	assert.Regexp(t, "NM10113", err)
	_, err = NewNFT(ownerID).Metadata(ctx, nw.Conn)
	assert.Regexp(t, "NM10114", err)
	_, err = NewFT(ownerID).BalanceOf(ctx, nw.Conn, "a1.testnet")
	assert.Regexp(t, "NM10114", err)
	_, err = NewFT(ownerID).TotalSupply(ctx, nw.Conn)
	assert.Regexp(t, "NM10114", err)
}

func TestDeployAndInitArgsFailure(t *testing.T) {
	ctx := context.Background()
	nw := newTestNetwork(t)
	_, err := deployAndInit(ctx, nw.Root, ownerID, nil, map[string]interface{}{"bad": make(chan int)})
	assert.Regexp(t, "NM10127", err)
	assert.Empty(t, nw.Sandbox.Transactions())
}
