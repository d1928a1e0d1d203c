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
	"github.com/kaleido-io/nftmarket/internal/nmtypes"
)

// FTStorageMinimum is 0.00125 NEAR, the cost of one registered account
var FTStorageMinimum = mustYocto("1250000000000000000000")

// FTContract emulates the registration and balance views of a fungible token
type FTContract struct {
	ContractID  string
	Initialized bool
	Owner       string
	TotalSupply *near.Balance
	Metadata    nmtypes.JSONObject
	Accounts    map[string]*near.Balance
}

func NewFTContract(contractID string) Contract {
	return &FTContract{
		ContractID: contractID,
		Accounts:   map[string]*near.Balance{},
	}
}

type storageBalance struct {
	Total     *near.Balance `json:"total"`
	Available *near.Balance `json:"available"`
}

func (c *FTContract) Call(cc *CallContext, method string, args []byte) ([]byte, error) {
	if method == "new" {
		if c.Initialized {
			return nil, panicf("The contract has already been initialized")
		}
		var a struct {
			OwnerID       string        `json:"owner_id"`
			TotalSupply   *near.Balance `json:"total_supply"`
			Name          string        `json:"name"`
			Symbol        string        `json:"symbol"`
			Version       string        `json:"version"`
			Reference     string        `json:"reference"`
			ReferenceHash string        `json:"reference_hash"`
			Decimals      uint8         `json:"decimals"`
		}
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.TotalSupply == nil {
			return nil, panicf("total_supply is required")
		}
		c.Initialized = true
		c.Owner = a.OwnerID
		c.TotalSupply = a.TotalSupply
		c.Metadata = nmtypes.JSONObject{
			"spec":           "ft-1.0.0",
			"name":           a.Name,
			"symbol":         a.Symbol,
			"version":        a.Version,
			"reference":      a.Reference,
			"reference_hash": a.ReferenceHash,
			"decimals":       a.Decimals,
		}
		c.Accounts[a.OwnerID] = a.TotalSupply
		cc.Log("Minted %s to %s", a.TotalSupply, a.OwnerID)
		return nil, nil
	}
	if !c.Initialized {
		return nil, panicf("The contract is not initialized")
	}
	switch method {
	case "storage_deposit":
		var a struct {
			AccountID string `json:"account_id"`
		}
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		accountID := a.AccountID
		if accountID == "" {
			accountID = cc.PredecessorID
		}
		if err := near.ValidateAccountID(context.Background(), accountID); err != nil {
			return nil, panicf("Invalid account ID %s", accountID)
		}
		if _, exists := c.Accounts[accountID]; exists {
			cc.Log("The account %s is already registered, refunding the deposit", accountID)
		} else {
			if cc.Deposit.Cmp(FTStorageMinimum) < 0 {
				return nil, panicf("The attached deposit is less than the minimum storage balance")
			}
			c.Accounts[accountID] = near.NewBalance(0)
			cc.Log("Registered %s", accountID)
		}
		return encodeResult(&storageBalance{Total: FTStorageMinimum, Available: near.NewBalance(0)})
	default:
		return nil, &MethodNotFound{Method: method}
	}
}

func (c *FTContract) View(method string, args []byte) ([]byte, error) {
	switch method {
	case "storage_minimum_balance":
		return encodeResult(FTStorageMinimum)
	case "storage_balance_of":
		var a struct {
			AccountID string `json:"account_id"`
		}
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if _, ok := c.Accounts[a.AccountID]; !ok {
			return encodeResult(nil)
		}
		return encodeResult(&storageBalance{Total: FTStorageMinimum, Available: near.NewBalance(0)})
	case "ft_balance_of":
		var a struct {
			AccountID string `json:"account_id"`
		}
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if b, ok := c.Accounts[a.AccountID]; ok {
			return encodeResult(b)
		}
		return encodeResult(near.NewBalance(0))
	case "ft_total_supply":
		return encodeResult(c.TotalSupply)
	case "ft_metadata":
		return encodeResult(c.Metadata)
	default:
		return nil, &MethodNotFound{Method: method}
	}
}
