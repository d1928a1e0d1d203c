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

// Package contracts provides typed bindings for the NFT, fungible token and market
// contracts. Every remote method name is declared once, in the constants below.
package contracts

import (
	"context"

	"github.com/kaleido-io/nftmarket/internal/near"
)

const (
	methodNew = "new"

	methodSetContractRoyalty = "set_contract_royalty"
	methodAddTokenTypes      = "add_token_types"
	methodContractRoyalty    = "get_contract_royalty"
	methodSupplyCaps         = "get_supply_caps"
	methodTokenTypesLocked   = "get_token_types_locked"
	methodNFTMetadata        = "nft_metadata"

	methodStorageMinimumBalance = "storage_minimum_balance"
	methodStorageDeposit        = "storage_deposit"
	methodStorageBalanceOf      = "storage_balance_of"
	methodFTBalanceOf           = "ft_balance_of"
	methodFTTotalSupply         = "ft_total_supply"

	methodSupportedFtTokenIDs = "supported_ft_token_ids"
	methodAddFtTokenIDs       = "add_ft_token_ids"
	methodStorageAmount       = "storage_amount"
)

// Viewer calls read-only methods. Both *near.Connection and *near.Account satisfy it.
type Viewer interface {
	ViewFunction(ctx context.Context, contractID, method string, args interface{}, result interface{}) error
}

// Signer submits change methods. *near.Account satisfies it.
type Signer interface {
	Viewer
	ID() string
	FunctionCall(ctx context.Context, contractID, method string, args interface{}, deposit *near.Balance) (*near.FinalExecutionOutcome, error)
	FunctionCallAction(ctx context.Context, method string, args interface{}, deposit *near.Balance) (near.Action, error)
	SignAndSendTransaction(ctx context.Context, receiverID string, actions ...near.Action) (*near.FinalExecutionOutcome, error)
}

// deployAndInit deploys code and calls the initializer in a single transaction, so a
// contract is never left deployed but uninitialized. With no code only the initializer is sent.
func deployAndInit(ctx context.Context, signer Signer, contractID string, code []byte, args interface{}) (*near.FinalExecutionOutcome, error) {
	initAction, err := signer.FunctionCallAction(ctx, methodNew, args, nil)
	if err != nil {
		return nil, err
	}
	actions := []near.Action{initAction}
	if code != nil {
		actions = []near.Action{near.NewDeployContractAction(code), initAction}
	}
	return signer.SignAndSendTransaction(ctx, contractID, actions...)
}
