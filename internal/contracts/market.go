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

type MarketInitArgs struct {
	OwnerID          string   `json:"owner_id"`
	FtTokenIDs       []string `json:"ft_token_ids"`
	BidHistoryLength uint8    `json:"bid_history_length"`
}

// Market is the marketplace contract, which accepts bids in NEAR or any supported fungible token
type Market struct {
	ID string
}

func NewMarket(contractID string) *Market {
	return &Market{ID: contractID}
}

func (m *Market) New(ctx context.Context, signer Signer, code []byte, args *MarketInitArgs) (*near.FinalExecutionOutcome, error) {
	return deployAndInit(ctx, signer, m.ID, code, args)
}

func (m *Market) SupportedFtTokenIDs(ctx context.Context, v Viewer) ([]string, error) {
	var ids []string
	err := v.ViewFunction(ctx, m.ID, methodSupportedFtTokenIDs, nil, &ids)
	return ids, err
}

// AddFtTokenIDs returns one entry per token, true where the token was not already supported
func (m *Market) AddFtTokenIDs(ctx context.Context, owner Signer, ftTokenIDs []string) ([]bool, *near.FinalExecutionOutcome, error) {
	outcome, err := owner.FunctionCall(ctx, m.ID, methodAddFtTokenIDs, map[string]interface{}{
		"ft_token_ids": ftTokenIDs,
	}, nil)
	if err != nil {
		return nil, outcome, err
	}
	var added []bool
	if err := outcome.DecodeResult(ctx, methodAddFtTokenIDs, &added); err != nil {
		return nil, outcome, err
	}
	return added, outcome, nil
}

// StorageAmount is the storage a seller pays for each listing
func (m *Market) StorageAmount(ctx context.Context, v Viewer) (*near.Balance, error) {
	var b near.Balance
	if err := v.ViewFunction(ctx, m.ID, methodStorageAmount, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}
