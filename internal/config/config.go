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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kaleido-io/nftmarket/internal/i18n"
	"github.com/spf13/viper"
)

// The following keys can be access from the root configuration.
// Sub-systems are responsible for defining their own keys using the Prefix interface
var (
	Lang                     RootKey = ark("lang")
	LogLevel                 RootKey = ark("log.level")
	LogColor                 RootKey = ark("log.color")
	LogUTC                   RootKey = ark("log.utc")
	DebugPort                RootKey = ark("debug.port")
	DebugCorsEnabled         RootKey = ark("debug.cors.enabled")
	DebugCorsAllowedOrigins  RootKey = ark("debug.cors.origins")
	DebugCorsMaxAge          RootKey = ark("debug.cors.maxAge")
	MetricsEnabled           RootKey = ark("metrics.enabled")
	NetworkID                RootKey = ark("network.id")
	NetworkBlockHashCacheTTL RootKey = ark("network.blockHashCacheTTL")
	KeystorePath             RootKey = ark("keystore.path")
	Gas                      RootKey = ark("gas")
	GuestsSecret             RootKey = ark("guests.secret")
	AccountsInitialBalance   RootKey = ark("accounts.initialBalance")
	AccountsUsers            RootKey = ark("accounts.users")
	AccountsContractBalance  RootKey = ark("accounts.contractBalance")
	ContractID               RootKey = ark("contract.id")
	ContractSecret           RootKey = ark("contract.secret")
	ContractWasm             RootKey = ark("contract.wasm")
	ContractRoyalty          RootKey = ark("contract.royalty")
	ContractName             RootKey = ark("contract.name")
	ContractSymbol           RootKey = ark("contract.symbol")
	TokenTypesCaps           RootKey = ark("tokenTypes.caps")
	TokenTypesLocked         RootKey = ark("tokenTypes.locked")
	TokenTypesSuffix         RootKey = ark("tokenTypes.suffix")
	FungiblePrefix           RootKey = ark("fungible.prefix")
	FungibleWasm             RootKey = ark("fungible.wasm")
	FungibleTotalSupply      RootKey = ark("fungible.totalSupply")
	FungibleName             RootKey = ark("fungible.name")
	FungibleSymbol           RootKey = ark("fungible.symbol")
	FungibleVersion          RootKey = ark("fungible.version")
	FungibleDecimals         RootKey = ark("fungible.decimals")
	FungibleReference        RootKey = ark("fungible.reference")
	FungibleReferenceHash    RootKey = ark("fungible.referenceHash")
	FungibleStorageAccounts  RootKey = ark("fungible.storageAccounts")
	MarketPrefix             RootKey = ark("market.prefix")
	MarketWasm               RootKey = ark("market.wasm")
	MarketBidHistoryLength   RootKey = ark("market.bidHistoryLength")
	PollInitialDelay         RootKey = ark("poll.initialDelay")
	PollMaxDelay             RootKey = ark("poll.maxDelay")
	PollTimeout              RootKey = ark("poll.timeout")
	DeployTimeout            RootKey = ark("deploy.timeout")
	LedgerEnabled            RootKey = ark("ledger.enabled")
	LedgerType               RootKey = ark("ledger.type")
	LedgerURL                RootKey = ark("ledger.url")
	LedgerMaxConns           RootKey = ark("ledger.maxConns")
	LedgerMigrationsAuto     RootKey = ark("ledger.migrations.auto")
)

// Prefix represents the global configuration, at a nested point in
// the config heirarchy. This allows sub-systems such as the RPC client to
// define their own keys under a section of the file.
//
// Note that all values are GLOBAL so this cannot be used for per-instance
// customization.
type Prefix interface {
	AddKnownKey(key string, defValue ...interface{})
	SubPrefix(suffix string) Prefix
	Set(key string, value interface{})

	GetString(key string) string
	GetBool(key string) bool
	GetInt(key string) int
	GetInt64(key string) int64
	GetUint(key string) uint
	GetDuration(key string) time.Duration
	GetStringSlice(key string) []string
	GetObject(key string) map[string]interface{}
	UnmarshalKey(ctx context.Context, key string, rawVal interface{}) error
	Get(key string) interface{}
}

// RootKey key are the known configuration keys
type RootKey string

// Reset clears viper and re-applies every default
func Reset() {
	viper.Reset()

	home, _ := os.UserHomeDir()

	// Set defaults
	viper.SetDefault(string(Lang), "en")
	viper.SetDefault(string(LogLevel), "info")
	viper.SetDefault(string(LogColor), true)
	viper.SetDefault(string(LogUTC), false)
	viper.SetDefault(string(DebugPort), -1)
	viper.SetDefault(string(DebugCorsEnabled), false)
	viper.SetDefault(string(DebugCorsAllowedOrigins), []string{"*"})
	viper.SetDefault(string(DebugCorsMaxAge), 600)
	viper.SetDefault(string(MetricsEnabled), true)
	viper.SetDefault(string(NetworkID), "testnet")
	viper.SetDefault(string(NetworkBlockHashCacheTTL), "10s")
	viper.SetDefault(string(KeystorePath), filepath.Join(home, ".near-credentials"))
	viper.SetDefault(string(Gas), "200000000000000")
	viper.SetDefault(string(AccountsInitialBalance), "10")
	viper.SetDefault(string(AccountsUsers), []string{"alice", "bob"})
	viper.SetDefault(string(AccountsContractBalance), "20")
	viper.SetDefault(string(ContractWasm), "./out/main.wasm")
	viper.SetDefault(string(ContractRoyalty), 500)
	viper.SetDefault(string(ContractName), "Test NFT")
	viper.SetDefault(string(ContractSymbol), "TNFT")
	viper.SetDefault(string(TokenTypesCaps), []string{"typeA=1", "typeB=500"})
	viper.SetDefault(string(TokenTypesLocked), true)
	viper.SetDefault(string(FungiblePrefix), "fungible")
	viper.SetDefault(string(FungibleWasm), "./out/ft.wasm")
	viper.SetDefault(string(FungibleTotalSupply), "1000000")
	viper.SetDefault(string(FungibleName), "Test Fungible T")
	viper.SetDefault(string(FungibleSymbol), "TFT")
	viper.SetDefault(string(FungibleVersion), "1")
	viper.SetDefault(string(FungibleDecimals), 24)
	viper.SetDefault(string(FungibleReference), "https://github.com/near/core-contracts/tree/master/w-near-141")
	viper.SetDefault(string(FungibleReferenceHash), "7c879fa7b49901d0ecc6ff5d64d7f673da5e4a5eb52a8d50a214175760d8919a")
	viper.SetDefault(string(FungibleStorageAccounts), []string{"a1.testnet", "a2.testnet", "a3.testnet", "a4.testnet", "a5.testnet"})
	viper.SetDefault(string(MarketPrefix), "market")
	viper.SetDefault(string(MarketWasm), "./out/market.wasm")
	viper.SetDefault(string(MarketBidHistoryLength), 3)
	viper.SetDefault(string(PollInitialDelay), "250ms")
	viper.SetDefault(string(PollMaxDelay), "5s")
	viper.SetDefault(string(PollTimeout), "60s")
	viper.SetDefault(string(DeployTimeout), "10m")
	viper.SetDefault(string(LedgerEnabled), true)
	viper.SetDefault(string(LedgerType), "sqlite")
	viper.SetDefault(string(LedgerURL), "nftmarket.db")
	viper.SetDefault(string(LedgerMaxConns), 1)
	viper.SetDefault(string(LedgerMigrationsAuto), true)

	for k, v := range root.defaults {
		viper.SetDefault(k, v)
	}

	i18n.SetLang(GetString(Lang))
}

// ReadConfig initializes the config
func ReadConfig(cfgFile string) error {
	Reset()

	// Set precedence order for reading config location
	viper.SetEnvPrefix("nftmarket")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.SetConfigType("yaml")
	if cfgFile != "" {
		f, err := os.Open(cfgFile)
		if err == nil {
			defer f.Close()
			err = viper.ReadConfig(f)
		}
		return err
	}
	viper.SetConfigName("nftmarket")
	viper.AddConfigPath("/etc/nftmarket/")
	viper.AddConfigPath("$HOME/.nftmarket")
	viper.AddConfigPath(".")
	return viper.ReadInConfig()
}

var root = &configPrefix{
	keys:     map[string]bool{}, // All keys go here, including those defined in sub prefixies
	defaults: map[string]interface{}{},
}

// ark adds a root key, used to define the keys that are used within the core
func ark(k string) RootKey {
	root.AddKnownKey(k)
	return RootKey(k)
}

// configPrefix is the main config structure passed to sub-systems, and used for root to wrap viper
type configPrefix struct {
	prefix   string
	keys     map[string]bool
	defaults map[string]interface{}
}

// NewPluginConfig creates a new configuration object, at the specified prefix
func NewPluginConfig(prefix string) Prefix {
	if !strings.HasSuffix(prefix, ".") {
		prefix += "."
	}
	return &configPrefix{
		prefix:   prefix,
		keys:     root.keys,
		defaults: root.defaults,
	}
}

func (c *configPrefix) prefixKey(k string) string {
	key := c.prefix + k
	if !c.keys[key] {
		panic(fmt.Sprintf("Undefined configuration key '%s'", key))
	}
	return key
}

func (c *configPrefix) SubPrefix(suffix string) Prefix {
	return &configPrefix{
		prefix:   c.prefix + suffix + ".",
		keys:     root.keys,
		defaults: root.defaults,
	}
}

// AddKnownKey registers a key, and remembers its default so it survives a Reset
func (c *configPrefix) AddKnownKey(k string, defValue ...interface{}) {
	key := c.prefix + k
	if len(defValue) == 1 {
		c.defaults[key] = defValue[0]
		viper.SetDefault(key, defValue[0])
	} else if len(defValue) > 0 {
		c.defaults[key] = defValue
		viper.SetDefault(key, defValue)
	}
	c.keys[key] = true
}

// GetString gets a configuration string
func GetString(key RootKey) string {
	return root.GetString(string(key))
}
func (c *configPrefix) GetString(key string) string {
	return viper.GetString(c.prefixKey(key))
}

// GetStringSlice gets a configuration string array
func GetStringSlice(key RootKey) []string {
	return root.GetStringSlice(string(key))
}
func (c *configPrefix) GetStringSlice(key string) []string {
	return viper.GetStringSlice(c.prefixKey(key))
}

// GetBool gets a configuration bool
func GetBool(key RootKey) bool {
	return root.GetBool(string(key))
}
func (c *configPrefix) GetBool(key string) bool {
	return viper.GetBool(c.prefixKey(key))
}

// GetUint gets a configuration uint
func GetUint(key RootKey) uint {
	return root.GetUint(string(key))
}
func (c *configPrefix) GetUint(key string) uint {
	return viper.GetUint(c.prefixKey(key))
}

// GetInt gets a configuration int
func GetInt(key RootKey) int {
	return root.GetInt(string(key))
}
func (c *configPrefix) GetInt(key string) int {
	return viper.GetInt(c.prefixKey(key))
}

// GetInt64 gets a configuration int64
func GetInt64(key RootKey) int64 {
	return root.GetInt64(string(key))
}
func (c *configPrefix) GetInt64(key string) int64 {
	return viper.GetInt64(c.prefixKey(key))
}

// GetDuration gets a configuration time duration, parsing strings such as "250ms"
func GetDuration(key RootKey) time.Duration {
	return root.GetDuration(string(key))
}
func (c *configPrefix) GetDuration(key string) time.Duration {
	return viper.GetDuration(c.prefixKey(key))
}

// GetObject gets a configuration map
func GetObject(key RootKey) map[string]interface{} {
	return root.GetObject(string(key))
}
func (c *configPrefix) GetObject(key string) map[string]interface{} {
	return viper.GetStringMap(c.prefixKey(key))
}

// Get gets a configuration in raw form
func Get(key RootKey) interface{} {
	return root.Get(string(key))
}
func (c *configPrefix) Get(key string) interface{} {
	return viper.Get(c.prefixKey(key))
}

// Set allows runtime setting of config (used in unit tests)
func Set(key RootKey, value interface{}) {
	root.Set(string(key), value)
}
func (c *configPrefix) Set(key string, value interface{}) {
	viper.Set(c.prefixKey(key), value)
}

// UnmarshalKey gets a configuration section into a struct
func UnmarshalKey(ctx context.Context, key RootKey, rawVal interface{}) error {
	return root.UnmarshalKey(ctx, string(key), rawVal)
}
func (c *configPrefix) UnmarshalKey(ctx context.Context, key string, rawVal interface{}) error {
	// Viper's unmarshal does not work with our json annotated config
	// structures, so we have to go from map to JSON, then to unmarshal
	var intermediate map[string]interface{}
	err := viper.UnmarshalKey(c.prefixKey(key), &intermediate)
	if err == nil {
		b, _ := json.Marshal(intermediate)
		err = json.Unmarshal(b, rawVal)
	}
	if err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgConfigKeyFailed, key)
	}
	return nil
}
