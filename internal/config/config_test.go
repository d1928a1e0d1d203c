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

package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

const configDir = "../../test/data/config"

func TestInitConfigOK(t *testing.T) {
	viper.Reset()
	err := ReadConfig("")
	assert.Regexp(t, "Not Found", err.Error())
}

func TestDefaults(t *testing.T) {
	cwd, _ := os.Getwd()
	defer os.Chdir(cwd)
	os.Chdir(configDir)
	err := ReadConfig("")
	assert.NoError(t, err)

	assert.Equal(t, "info", GetString(LogLevel))
	assert.True(t, GetBool(LogColor))
	assert.Equal(t, -1, GetInt(DebugPort))
	assert.Equal(t, "testnet", GetString(NetworkID))
	assert.Equal(t, "dev-1623333795623-21399959778159", GetString(ContractID))
	assert.Equal(t, 500, GetInt(ContractRoyalty))
	assert.Equal(t, int64(3), GetInt64(MarketBidHistoryLength))
	assert.Equal(t, uint(24), GetUint(FungibleDecimals))
	assert.Equal(t, 250*time.Millisecond, GetDuration(PollInitialDelay))
	assert.Equal(t, []string{"typeA=1", "typeB=500"}, GetStringSlice(TokenTypesCaps))
	assert.Equal(t, []string{"a1.testnet", "a2.testnet", "a3.testnet", "a4.testnet", "a5.testnet"}, GetStringSlice(FungibleStorageAccounts))
	assert.False(t, GetBool(LedgerEnabled))
}

func TestSpecificConfigFileOk(t *testing.T) {
	rpcConf := NewPluginConfig("network.rpc")
	rpcConf.AddKnownKey("url")
	err := ReadConfig(configDir + "/nftmarket.yaml")
	assert.NoError(t, err)
	assert.Equal(t, "https://rpc.testnet.near.org", rpcConf.GetString("url"))
	assert.Equal(t, "testnet", GetString(NetworkID))
}

func TestSpecificConfigFileFail(t *testing.T) {
	err := ReadConfig(configDir + "/no.hope.yaml")
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	os.Setenv("NFTMARKET_CONTRACT_ID", "nft.example.testnet")
	defer os.Unsetenv("NFTMARKET_CONTRACT_ID")
	err := ReadConfig(configDir + "/nftmarket.yaml")
	assert.NoError(t, err)
	assert.Equal(t, "nft.example.testnet", GetString(ContractID))
}

func TestAttemptToAccessRandomKey(t *testing.T) {
	assert.Panics(t, func() {
		GetString("any.key")
	})
}

func TestSetGetMap(t *testing.T) {
	Reset()
	Set(TokenTypesCaps, map[string]interface{}{"some": "map"})
	assert.Equal(t, map[string]interface{}{"some": "map"}, GetObject(TokenTypesCaps))
}

func TestSetGetRawInterace(t *testing.T) {
	type myType struct{ name string }
	Set(LedgerURL, &myType{name: "test"})
	v := Get(LedgerURL)
	assert.Equal(t, myType{name: "test"}, *(v.(*myType)))
}

func TestPluginConfig(t *testing.T) {
	pic := NewPluginConfig("my")
	pic.AddKnownKey("special.config", 12345)
	assert.Equal(t, 12345, pic.GetInt("special.config"))
	Reset()
	assert.Equal(t, 12345, pic.GetInt("special.config"))
}

func TestPluginConfigArrayInit(t *testing.T) {
	pic := NewPluginConfig("my").SubPrefix("special")
	pic.AddKnownKey("config", "val1", "val2", "val3")
	assert.Equal(t, "val1", pic.GetStringSlice("config")[0])
}

func TestUnmarshalKey(t *testing.T) {
	pic := NewPluginConfig("unmarshal")
	pic.AddKnownKey("obj", map[string]interface{}{"bidHistoryLength": 3})
	var c struct {
		BidHistoryLength int `json:"bidhistorylength"`
	}
	err := pic.UnmarshalKey(context.Background(), "obj", &c)
	assert.NoError(t, err)
	assert.Equal(t, 3, c.BidHistoryLength)
}

func TestUnmarshalKeyFail(t *testing.T) {
	pic := NewPluginConfig("unmarshal")
	pic.AddKnownKey("bad")
	pic.Set("bad", "not a map")
	var c map[string]string
	err := pic.UnmarshalKey(context.Background(), "bad", &c)
	assert.Regexp(t, "NM10105", err)
}
