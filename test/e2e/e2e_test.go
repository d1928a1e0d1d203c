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

package e2e

import (
	"context"
	"os"
	"testing"

	"github.com/kaleido-io/nftmarket/internal/config"
	"github.com/kaleido-io/nftmarket/internal/contracts"
	"github.com/kaleido-io/nftmarket/internal/deployer"
	"github.com/kaleido-io/nftmarket/internal/metrics"
	"github.com/kaleido-io/nftmarket/internal/near"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs the full deployment against the network in the config file named by
// NFTMARKET_E2E_CONFIG, such as testnet with a dev account created by near-cli
const e2eConfigEnv = "NFTMARKET_E2E_CONFIG"

var rpcConf = config.NewPluginConfig("network.rpc")

func init() {
	near.InitConfig(rpcConf)
}

func TestE2EDeployment(t *testing.T) {
	cfgFile := os.Getenv(e2eConfigEnv)
	if cfgFile == "" {
		t.Skipf("%s not set", e2eConfigEnv)
	}
	ctx := context.Background()
	require.NoError(t, config.ReadConfig(cfgFile))

	mm := metrics.NewMetricsManager()
	conn, err := near.NewConnection(ctx, rpcConf, near.NewFileKeyStore(config.GetString(config.KeystorePath)), mm)
	require.NoError(t, err)
	dp, err := deployer.NewDeployer(ctx, conn, nil, mm)
	require.NoError(t, err)

	d, err := dp.Run(ctx)
	require.NoError(t, err)
	contractID := config.GetString(config.ContractID)

	t.Run("contract royalty", func(t *testing.T) {
		royalty, err := contracts.NewNFT(contractID).ContractRoyalty(ctx, conn)
		assert.NoError(t, err)
		assert.Equal(t, uint32(config.GetUint(config.ContractRoyalty)), royalty)
	})

	t.Run("token types locked", func(t *testing.T) {
		locked, err := contracts.NewNFT(contractID).TokenTypesLocked(ctx, conn)
		assert.NoError(t, err)
		for tokenType := range d.TokenTypes {
			assert.Contains(t, locked, tokenType)
		}
	})

	t.Run("fungible registrations", func(t *testing.T) {
		ft := contracts.NewFT(d.FungibleID)
		for _, accountID := range append([]string{d.MarketID}, d.StorageAccounts...) {
			sb, err := ft.StorageBalanceOf(ctx, conn, accountID)
			assert.NoError(t, err)
			assert.NotNil(t, sb, accountID)
		}
	})

	t.Run("market tokens", func(t *testing.T) {
		assert.Contains(t, d.SupportedFtTokenIDs, d.FungibleID)
		assert.Equal(t, []bool{false}, d.AddedFtTokenIDs)
		assert.False(t, d.MarketStorageAmount.IsZero())
	})

	s, err := dp.Status(ctx)
	require.NoError(t, err)
	assert.True(t, s.NFT.Deployed)
	assert.True(t, s.Fungible.Deployed)
	assert.True(t, s.Market.Deployed)
}
