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

type NFTMetadata struct {
	Spec   string `json:"spec"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

type NFTInitArgs struct {
	OwnerID         string            `json:"owner_id"`
	Metadata        NFTMetadata       `json:"metadata"`
	SupplyCapByType map[string]string `json:"supply_cap_by_type"`
	Locked          bool              `json:"locked"`
}

// NFT is the NFT contract deployed to ID. Royalty and token type administration must be
// signed by the contract owner.
type NFT struct {
	ID string
}

func NewNFT(contractID string) *NFT {
	return &NFT{ID: contractID}
}

func (n *NFT) New(ctx context.Context, signer Signer, code []byte, args *NFTInitArgs) (*near.FinalExecutionOutcome, error) {
	return deployAndInit(ctx, signer, n.ID, code, args)
}

// SetContractRoyalty sets the royalty in basis points taken by the contract on every sale
func (n *NFT) SetContractRoyalty(ctx context.Context, owner Signer, basisPoints uint32) (*near.FinalExecutionOutcome, error) {
	return owner.FunctionCall(ctx, n.ID, methodSetContractRoyalty, map[string]interface{}{
		"contract_royalty": basisPoints,
	}, nil)
}

// AddTokenTypes registers hard supply caps. The contract rejects a type that already exists.
func (n *NFT) AddTokenTypes(ctx context.Context, owner Signer, supplyCapByType map[string]string, locked bool) (*near.FinalExecutionOutcome, error) {
	return owner.FunctionCall(ctx, n.ID, methodAddTokenTypes, map[string]interface{}{
		"supply_cap_by_type": supplyCapByType,
		"locked":             locked,
	}, nil)
}

func (n *NFT) ContractRoyalty(ctx context.Context, v Viewer) (uint32, error) {
	var royalty uint32
	err := v.ViewFunction(ctx, n.ID, methodContractRoyalty, nil, &royalty)
	return royalty, err
}

func (n *NFT) SupplyCapByType(ctx context.Context, v Viewer) (map[string]string, error) {
	caps := map[string]string{}
	err := v.ViewFunction(ctx, n.ID, methodSupplyCaps, nil, &caps)
	return caps, err
}

func (n *NFT) TokenTypesLocked(ctx context.Context, v Viewer) ([]string, error) {
	var locked []string
	err := v.ViewFunction(ctx, n.ID, methodTokenTypesLocked, nil, &locked)
	return locked, err
}

func (n *NFT) Metadata(ctx context.Context, v Viewer) (*NFTMetadata, error) {
	var md NFTMetadata
	if err := v.ViewFunction(ctx, n.ID, methodNFTMetadata, nil, &md); err != nil {
		return nil, err
	}
	return &md, nil
}
