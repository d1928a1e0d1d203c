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

	"github.com/kaleido-io/nftmarket/internal/near"
)

// MarketStorageAmount is 0.01 NEAR, the storage a seller must pre-pay per listing
var MarketStorageAmount = mustYocto("10000000000000000000000")

// MarketContract emulates the fungible token administration of the market contract
type MarketContract struct {
	ContractID       string
	Initialized      bool
	Owner            string
	FtTokenIDs       []string
	BidHistoryLength uint8
}

func NewMarketContract(contractID string) Contract {
	return &MarketContract{
		ContractID: contractID,
	}
}

func (c *MarketContract) supports(ftTokenID string) bool {
	for _, t := range c.FtTokenIDs {
		if t == ftTokenID {
			return true
		}
	}
	return false
}

func (c *MarketContract) Call(cc *CallContext, method string, args []byte) ([]byte, error) {
	if method == "new" {
		if c.Initialized {
			return nil, panicf("The contract has already been initialized")
		}
		var a struct {
			OwnerID          string   `json:"owner_id"`
			FtTokenIDs       []string `json:"ft_token_ids"`
			BidHistoryLength *uint8   `json:"bid_history_length"`
		}
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		c.Initialized = true
		c.Owner = a.OwnerID
		c.BidHistoryLength = 1
		if a.BidHistoryLength != nil {
			c.BidHistoryLength = *a.BidHistoryLength
		}
		for _, t := range a.FtTokenIDs {
			if !c.supports(t) {
				c.FtTokenIDs = append(c.FtTokenIDs, t)
			}
		}
		return nil, nil
	}
	if !c.Initialized {
		return nil, panicf("The contract is not initialized")
	}
	switch method {
	case "add_ft_token_ids":
		if cc.PredecessorID != c.Owner {
			return nil, panicf("Owner's method")
		}
		var a struct {
			FtTokenIDs []string `json:"ft_token_ids"`
		}
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		added := make([]bool, len(a.FtTokenIDs))
		for i, t := range a.FtTokenIDs {
			if err := near.ValidateAccountID(context.Background(), t); err != nil {
				return nil, panicf("Invalid token ID %s", t)
			}
			if !c.supports(t) {
				c.FtTokenIDs = append(c.FtTokenIDs, t)
				added[i] = true
			}
		}
		return encodeResult(added)
	default:
		return nil, &MethodNotFound{Method: method}
	}
}

func (c *MarketContract) View(method string, args []byte) ([]byte, error) {
	switch method {
	case "supported_ft_token_ids":
		ids := c.FtTokenIDs
		if ids == nil {
			ids = []string{}
		}
		return encodeResult(ids)
	case "storage_amount":
		return encodeResult(MarketStorageAmount)
	default:
		return nil, &MethodNotFound{Method: method}
	}
}
