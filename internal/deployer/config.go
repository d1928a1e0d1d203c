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

package deployer

import (
	"context"
	"strings"
	"time"

	"github.com/holiman/uint256"
	"github.com/kaleido-io/nftmarket/internal/config"
	"github.com/kaleido-io/nftmarket/internal/i18n"
	"github.com/kaleido-io/nftmarket/internal/near"
)

type tokenTypeCap struct {
	Name string
	Cap  string
}

// options is the configuration of a deployment, read and validated once up front so
// that a misconfiguration fails before any transaction is submitted
type options struct {
	ContractID       string
	ContractSecret   string
	ContractWasm     string
	ContractRoyalty  uint32
	ContractName     string
	ContractSymbol   string
	Users            []string
	UserBalance      *near.Balance
	ContractBalance  *near.Balance
	GuestsSecret     string
	TokenTypeCaps    []tokenTypeCap
	TokenTypesLocked bool
	TokenTypesSuffix string

	FungibleID              string
	FungibleWasm            string
	FungibleTotalSupply     *near.Balance
	FungibleName            string
	FungibleSymbol          string
	FungibleVersion         string
	FungibleDecimals        uint8
	FungibleReference       string
	FungibleReferenceHash   string
	FungibleStorageAccounts []string

	MarketID               string
	MarketWasm             string
	MarketBidHistoryLength uint8

	Timeout time.Duration
}

func parseTokenTypeCaps(ctx context.Context, entries []string) ([]tokenTypeCap, error) {
	caps := make([]tokenTypeCap, 0, len(entries))
	for _, entry := range entries {
		parts := strings.SplitN(entry, "=", 2)
		name := strings.TrimSpace(parts[0])
		if len(parts) != 2 || name == "" {
			return nil, i18n.NewError(ctx, i18n.MsgInvalidTokenTypeCap, entry, name)
		}
		supplyCap := strings.TrimSpace(parts[1])
		if n, err := uint256.FromDecimal(supplyCap); err != nil || n.IsZero() {
			return nil, i18n.NewError(ctx, i18n.MsgInvalidTokenTypeCap, supplyCap, name)
		}
		caps = append(caps, tokenTypeCap{Name: name, Cap: supplyCap})
	}
	return caps, nil
}

func readOptions(ctx context.Context) (*options, error) {
	o := &options{
		ContractID:              config.GetString(config.ContractID),
		ContractSecret:          config.GetString(config.ContractSecret),
		ContractWasm:            config.GetString(config.ContractWasm),
		ContractRoyalty:         uint32(config.GetUint(config.ContractRoyalty)),
		ContractName:            config.GetString(config.ContractName),
		ContractSymbol:          config.GetString(config.ContractSymbol),
		Users:                   config.GetStringSlice(config.AccountsUsers),
		GuestsSecret:            config.GetString(config.GuestsSecret),
		TokenTypesLocked:        config.GetBool(config.TokenTypesLocked),
		TokenTypesSuffix:        config.GetString(config.TokenTypesSuffix),
		FungibleWasm:            config.GetString(config.FungibleWasm),
		FungibleName:            config.GetString(config.FungibleName),
		FungibleSymbol:          config.GetString(config.FungibleSymbol),
		FungibleVersion:         config.GetString(config.FungibleVersion),
		FungibleDecimals:        uint8(config.GetUint(config.FungibleDecimals)),
		FungibleReference:       config.GetString(config.FungibleReference),
		FungibleReferenceHash:   config.GetString(config.FungibleReferenceHash),
		FungibleStorageAccounts: config.GetStringSlice(config.FungibleStorageAccounts),
		MarketWasm:              config.GetString(config.MarketWasm),
		MarketBidHistoryLength:  uint8(config.GetUint(config.MarketBidHistoryLength)),
		Timeout:                 config.GetDuration(config.DeployTimeout),
	}
	if o.ContractID == "" {
		return nil, i18n.NewError(ctx, i18n.MsgMissingContractID)
	}
	if err := near.ValidateAccountID(ctx, o.ContractID); err != nil {
		return nil, err
	}
	o.FungibleID = config.GetString(config.FungiblePrefix) + "." + o.ContractID
	o.MarketID = config.GetString(config.MarketPrefix) + "." + o.ContractID

	var err error
	if o.TokenTypeCaps, err = parseTokenTypeCaps(ctx, config.GetStringSlice(config.TokenTypesCaps)); err != nil {
		return nil, err
	}
	if o.UserBalance, err = near.ParseNearAmount(ctx, config.GetString(config.AccountsInitialBalance)); err != nil {
		return nil, err
	}
	if o.ContractBalance, err = near.ParseNearAmount(ctx, config.GetString(config.AccountsContractBalance)); err != nil {
		return nil, err
	}
	if o.FungibleTotalSupply, err = near.ParseNearAmount(ctx, config.GetString(config.FungibleTotalSupply)); err != nil {
		return nil, err
	}
	for _, id := range append([]string{o.FungibleID, o.MarketID}, o.FungibleStorageAccounts...) {
		if err := near.ValidateAccountID(ctx, id); err != nil {
			return nil, err
		}
	}
	return o, nil
}
