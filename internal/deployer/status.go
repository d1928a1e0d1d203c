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
	"sort"

	"github.com/kaleido-io/nftmarket/internal/contracts"
	"github.com/kaleido-io/nftmarket/internal/i18n"
	"github.com/kaleido-io/nftmarket/internal/near"
)

type ContractStatus struct {
	AccountID string        `json:"accountId"`
	Exists    bool          `json:"exists"`
	Deployed  bool          `json:"deployed"`
	Balance   *near.Balance `json:"balance,omitempty"`
}

type NFTStatus struct {
	ContractStatus
	Metadata         *contracts.NFTMetadata `json:"metadata,omitempty"`
	ContractRoyalty  uint32                 `json:"contractRoyalty"`
	SupplyCapByType  map[string]string      `json:"supplyCapByType,omitempty"`
	TokenTypesLocked []string               `json:"tokenTypesLocked,omitempty"`
}

type FungibleStatus struct {
	ContractStatus
	TotalSupply    *near.Balance            `json:"totalSupply,omitempty"`
	OwnerBalance   *near.Balance            `json:"ownerBalance,omitempty"`
	StorageMinimum *near.Balance            `json:"storageMinimum,omitempty"`
	Registered     map[string]*near.Balance `json:"registered,omitempty"`
}

type MarketStatus struct {
	ContractStatus
	SupportedFtTokenIDs []string      `json:"supportedFtTokenIds,omitempty"`
	StorageAmount       *near.Balance `json:"storageAmount,omitempty"`
}

// Status is what is currently deployed, read from the chain without signing anything
type Status struct {
	Network  string          `json:"network"`
	NFT      *NFTStatus      `json:"nft"`
	Fungible *FungibleStatus `json:"fungible"`
	Market   *MarketStatus   `json:"market"`
}

func (dp *Deployer) contractStatus(ctx context.Context, accountID string) (ContractStatus, error) {
	cs := ContractStatus{AccountID: accountID}
	av, err := dp.conn.ViewAccount(ctx, accountID)
	if err != nil {
		if i18n.HasCode(err, i18n.MsgUnknownAccount) {
			return cs, nil
		}
		return cs, err
	}
	cs.Exists = true
	cs.Deployed = av.HasCode()
	cs.Balance = av.Amount
	return cs, nil
}

// Status reports the state of the three contracts. Contracts that are not deployed
// are reported as such, rather than as an error.
func (dp *Deployer) Status(ctx context.Context) (s *Status, err error) {
	s = &Status{
		Network:  dp.conn.NetworkID(),
		NFT:      &NFTStatus{},
		Fungible: &FungibleStatus{},
		Market:   &MarketStatus{},
	}

	if s.NFT.ContractStatus, err = dp.contractStatus(ctx, dp.opts.ContractID); err != nil {
		return nil, err
	}
	if s.NFT.Deployed {
		nft := contracts.NewNFT(dp.opts.ContractID)
		if s.NFT.Metadata, err = nft.Metadata(ctx, dp.conn); err != nil {
			return nil, err
		}
		if s.NFT.ContractRoyalty, err = nft.ContractRoyalty(ctx, dp.conn); err != nil {
			return nil, err
		}
		if s.NFT.SupplyCapByType, err = nft.SupplyCapByType(ctx, dp.conn); err != nil {
			return nil, err
		}
		if s.NFT.TokenTypesLocked, err = nft.TokenTypesLocked(ctx, dp.conn); err != nil {
			return nil, err
		}
		sort.Strings(s.NFT.TokenTypesLocked)
	}

	if s.Fungible.ContractStatus, err = dp.contractStatus(ctx, dp.opts.FungibleID); err != nil {
		return nil, err
	}
	if s.Fungible.Deployed {
		ft := contracts.NewFT(dp.opts.FungibleID)
		if s.Fungible.TotalSupply, err = ft.TotalSupply(ctx, dp.conn); err != nil {
			return nil, err
		}
		if s.Fungible.OwnerBalance, err = ft.BalanceOf(ctx, dp.conn, dp.opts.ContractID); err != nil {
			return nil, err
		}
		if s.Fungible.StorageMinimum, err = ft.StorageMinimumBalance(ctx, dp.conn); err != nil {
			return nil, err
		}
		s.Fungible.Registered = map[string]*near.Balance{}
		accounts := append([]string{dp.opts.MarketID}, dp.opts.FungibleStorageAccounts...)
		for _, accountID := range accounts {
			sb, err := ft.StorageBalanceOf(ctx, dp.conn, accountID)
			if err != nil {
				return nil, err
			}
			if sb != nil {
				s.Fungible.Registered[accountID] = sb.Total
			}
		}
	}

	if s.Market.ContractStatus, err = dp.contractStatus(ctx, dp.opts.MarketID); err != nil {
		return nil, err
	}
	if s.Market.Deployed {
		mkt := contracts.NewMarket(dp.opts.MarketID)
		if s.Market.SupportedFtTokenIDs, err = mkt.SupportedFtTokenIDs(ctx, dp.conn); err != nil {
			return nil, err
		}
		sort.Strings(s.Market.SupportedFtTokenIDs)
		if s.Market.StorageAmount, err = mkt.StorageAmount(ctx, dp.conn); err != nil {
			return nil, err
		}
	}
	return s, nil
}
