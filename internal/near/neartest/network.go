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
	"testing"

	"github.com/kaleido-io/nftmarket/internal/config"
	"github.com/kaleido-io/nftmarket/internal/metrics"
	"github.com/kaleido-io/nftmarket/internal/near"
	"github.com/kaleido-io/nftmarket/internal/restclient"
)

// SandboxNetworkID is the network ID keys are stored under for a sandbox
const SandboxNetworkID = "sandbox"

// Network is a running sandbox with a connection to it and a funded root account,
// for tests of the packages built on near
type Network struct {
	Sandbox  *Sandbox
	RPCConf  config.Prefix
	KeyStore *near.FileKeyStore
	Conn     *near.Connection
	Root     *near.Account
}

// NewNetwork resets config, points rpcConf at a new sandbox with fast polling, and
// creates rootID holding 1,000,000 NEAR with its key in a temporary key store
func NewNetwork(t testing.TB, rpcConf config.Prefix, rootID string) *Network {
	ctx := context.Background()
	sb := New()
	t.Cleanup(sb.Close)

	config.Reset()
	near.InitConfig(rpcConf)
	rpcConf.Set(restclient.HTTPConfigURL, sb.URL())
	config.Set(config.NetworkID, SandboxNetworkID)
	config.Set(config.KeystorePath, t.TempDir())
	config.Set(config.PollInitialDelay, "1ms")
	config.Set(config.PollMaxDelay, "5ms")
	config.Set(config.PollTimeout, "500ms")

	kp, err := near.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	supply, _ := near.ParseNearAmount(ctx, "1000000")
	sb.CreateAccount(rootID, kp.PublicKey(), supply)
	ks := near.NewFileKeyStore(config.GetString(config.KeystorePath))
	if err := ks.SetKey(ctx, SandboxNetworkID, rootID, kp); err != nil {
		t.Fatal(err)
	}

	conn, err := near.NewConnection(ctx, rpcConf, ks, metrics.NewMetricsManager())
	if err != nil {
		t.Fatal(err)
	}
	return &Network{
		Sandbox:  sb,
		RPCConf:  rpcConf,
		KeyStore: ks,
		Conn:     conn,
		Root:     conn.Account(rootID, kp),
	}
}
