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

package contracts

import (
	"context"

	"github.com/kaleido-io/nftmarket/internal/near"
)

type FTInitArgs struct {
	OwnerID       string        `json:"owner_id"`
	TotalSupply   *near.Balance `json:"total_supply"`
	Name          string        `json:"name"`
	Symbol        string        `json:"symbol"`
	Version       string        `json:"version"`
	Reference     string        `json:"reference"`
	ReferenceHash string        `json:"reference_hash"`
	Decimals      uint8         `json:"decimals"`
}

// StorageBalance is the storage an account has paid for on a fungible token
type StorageBalance struct {
	Total     *near.Balance `json:"total"`
	Available *near.Balance `json:"available"`
}

// FT is a fungible token contract implementing the storage management standard
type FT struct {
	ID string
}

func NewFT(contractID string) *FT {
	return &FT{ID: contractID}
}

func (f *FT) New(ctx context.Context, signer Signer, code []byte, args *FTInitArgs) (*near.FinalExecutionOutcome, error) {
	return deployAndInit(ctx, signer, f.ID, code, args)
}

// StorageMinimumBalance is the deposit needed to register one account
func (f *FT) StorageMinimumBalance(ctx context.Context, v Viewer) (*near.Balance, error) {
	var min near.Balance
	if err := v.ViewFunction(ctx, f.ID, methodStorageMinimumBalance, nil, &min); err != nil {
		return nil, err
	}
	return &min, nil
}

// StorageDeposit registers accountID, paid for by the payer. An empty accountID registers the payer.
func (f *FT) StorageDeposit(ctx context.Context, payer Signer, accountID string, deposit *near.Balance) (*near.FinalExecutionOutcome, error) {
	args := map[string]interface{}{}
	if accountID != "" {
		args["account_id"] = accountID
	}
	return payer.FunctionCall(ctx, f.ID, methodStorageDeposit, args, deposit)
}

// StorageBalanceOf returns nil for an account that is not registered
func (f *FT) StorageBalanceOf(ctx context.Context, v Viewer, accountID string) (*StorageBalance, error) {
	var sb *StorageBalance
	err := v.ViewFunction(ctx, f.ID, methodStorageBalanceOf, map[string]string{"account_id": accountID}, &sb)
	return sb, err
}

func (f *FT) BalanceOf(ctx context.Context, v Viewer, accountID string) (*near.Balance, error) {
	var b near.Balance
	if err := v.ViewFunction(ctx, f.ID, methodFTBalanceOf, map[string]string{"account_id": accountID}, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (f *FT) TotalSupply(ctx context.Context, v Viewer) (*near.Balance, error) {
	var b near.Balance
	if err := v.ViewFunction(ctx, f.ID, methodFTTotalSupply, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}
