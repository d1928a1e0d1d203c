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
	"sort"

	"github.com/kaleido-io/nftmarket/internal/nmtypes"
)

const maxContractRoyalty = 5000

// NFTContract emulates the royalty and token type administration of the NFT contract
type NFTContract struct {
	ContractID  string
	Initialized bool
	Owner       string
	Metadata    nmtypes.JSONObject
	Royalty     uint32
	SupplyCaps  map[string]string
	Locked      map[string]bool
}

func NewNFTContract(contractID string) Contract {
	return &NFTContract{
		ContractID: contractID,
		SupplyCaps: map[string]string{},
		Locked:     map[string]bool{},
	}
}

type tokenTypesArgs struct {
	SupplyCapByType map[string]string `json:"supply_cap_by_type"`
	Locked          bool              `json:"locked"`
}

func (c *NFTContract) addTokenTypes(args *tokenTypesArgs) error {
	for t := range args.SupplyCapByType {
		if _, exists := c.SupplyCaps[t]; exists {
			return panicf("Token type %s already exists", t)
		}
	}
	for t, supplyCap := range args.SupplyCapByType {
		c.SupplyCaps[t] = supplyCap
		c.Locked[t] = args.Locked
	}
	return nil
}

func (c *NFTContract) Call(cc *CallContext, method string, args []byte) ([]byte, error) {
	if method == "new" {
		if c.Initialized {
			return nil, panicf("The contract has already been initialized")
		}
		var a struct {
			OwnerID  string             `json:"owner_id"`
			Metadata nmtypes.JSONObject `json:"metadata"`
			tokenTypesArgs
		}
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		c.Initialized = true
		c.Owner = a.OwnerID
		c.Metadata = a.Metadata
		cc.Log("Initialized NFT contract owned by %s", c.Owner)
		return nil, c.addTokenTypes(&a.tokenTypesArgs)
	}
	if !c.Initialized {
		return nil, panicf("The contract is not initialized")
	}
	switch method {
	case "set_contract_royalty":
		if cc.PredecessorID != c.Owner {
			return nil, panicf("Owner's method")
		}
		var a struct {
			ContractRoyalty uint32 `json:"contract_royalty"`
		}
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.ContractRoyalty > maxContractRoyalty {
			return nil, panicf("Contract royalty too high")
		}
		c.Royalty = a.ContractRoyalty
		return nil, nil
	case "add_token_types":
		if cc.PredecessorID != c.Owner {
			return nil, panicf("Owner's method")
		}
		var a tokenTypesArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		return nil, c.addTokenTypes(&a)
	default:
		return nil, &MethodNotFound{Method: method}
	}
}

func (c *NFTContract) View(method string, args []byte) ([]byte, error) {
	switch method {
	case "get_contract_royalty":
		return encodeResult(c.Royalty)
	case "get_supply_caps":
		return encodeResult(c.SupplyCaps)
	case "get_token_types_locked":
		locked := make([]string, 0, len(c.Locked))
		for t, l := range c.Locked {
			if l {
				locked = append(locked, t)
			}
		}
		sort.Strings(locked)
		return encodeResult(locked)
	case "nft_metadata":
		return encodeResult(c.Metadata)
	default:
		return nil, &MethodNotFound{Method: method}
	}
}
