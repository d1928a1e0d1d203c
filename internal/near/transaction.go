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

package near

import (
	"context"
	"crypto/sha256"
	"encoding/base64"

	"github.com/akamensky/base58"
	"github.com/kaleido-io/nftmarket/internal/i18n"
	"github.com/near/borsh-go"
)

// U128 is a little-endian unsigned 128bit integer, as laid out by borsh
type U128 [16]byte

// CryptoHash is a sha256 hash, rendered as base58
type CryptoHash [sha256.Size]byte

func (h CryptoHash) String() string {
	return base58.Encode(h[:])
}

// ParseCryptoHash decodes a base58 hash, such as a block hash returned by the node
func ParseCryptoHash(ctx context.Context, s string) (CryptoHash, error) {
	var h CryptoHash
	b, err := base58.Decode(s)
	if err != nil || len(b) == 0 || len(b) > len(h) {
		return h, i18n.NewError(ctx, i18n.MsgInvalidHash, s)
	}
	// leading zero bytes are implied when the encoding is short
	copy(h[len(h)-len(b):], b)
	return h, nil
}

// Transaction is the borsh layout of an unsigned transaction
type Transaction struct {
	SignerID   string
	PublicKey  PublicKey
	Nonce      uint64
	ReceiverID string
	BlockHash  CryptoHash
	Actions    []Action
}

// SignedTransaction is what gets base64 encoded and broadcast
type SignedTransaction struct {
	Transaction Transaction
	Signature   Signature
}

// Action is a borsh enum. Exactly one variant is populated, selected by Enum.
type Action struct {
	Enum           borsh.Enum `borsh_enum:"true"`
	CreateAccount  CreateAccount
	DeployContract DeployContract
	FunctionCall   FunctionCall
	Transfer       Transfer
	Stake          Stake
	AddKey         AddKey
	DeleteKey      DeleteKey
	DeleteAccount  DeleteAccount
}

const (
	ActionCreateAccount borsh.Enum = iota
	ActionDeployContract
	ActionFunctionCall
	ActionTransfer
	ActionStake
	ActionAddKey
	ActionDeleteKey
	ActionDeleteAccount
)

type CreateAccount struct{}

type DeployContract struct {
	Code []byte
}

type FunctionCall struct {
	MethodName string
	Args       []byte
	Gas        uint64
	Deposit    U128
}

type Transfer struct {
	Deposit U128
}

type Stake struct {
	Stake     U128
	PublicKey PublicKey
}

type AddKey struct {
	PublicKey PublicKey
	AccessKey AccessKey
}

type DeleteKey struct {
	PublicKey PublicKey
}

type DeleteAccount struct {
	BeneficiaryID string
}

type AccessKey struct {
	Nonce      uint64
	Permission AccessKeyPermission
}

type AccessKeyPermission struct {
	Enum         borsh.Enum `borsh_enum:"true"`
	FunctionCall FunctionCallPermission
	FullAccess   FullAccessPermission
}

const (
	PermissionFunctionCall borsh.Enum = iota
	PermissionFullAccess
)

type FunctionCallPermission struct {
	Allowance   *U128
	ReceiverID  string
	MethodNames []string
}

type FullAccessPermission struct{}

func NewCreateAccountAction() Action {
	return Action{Enum: ActionCreateAccount}
}

func NewDeployContractAction(code []byte) Action {
	return Action{Enum: ActionDeployContract, DeployContract: DeployContract{Code: code}}
}

func NewFunctionCallAction(method string, args []byte, gas uint64, deposit *Balance) Action {
	return Action{Enum: ActionFunctionCall, FunctionCall: FunctionCall{
		MethodName: method,
		Args:       args,
		Gas:        gas,
		Deposit:    deposit.U128(),
	}}
}

func NewTransferAction(deposit *Balance) Action {
	return Action{Enum: ActionTransfer, Transfer: Transfer{Deposit: deposit.U128()}}
}

func NewAddFullAccessKeyAction(pk PublicKey) Action {
	return Action{Enum: ActionAddKey, AddKey: AddKey{
		PublicKey: pk,
		AccessKey: AccessKey{Permission: AccessKeyPermission{Enum: PermissionFullAccess}},
	}}
}

// Hash is the sha256 of the borsh encoding, which is both the transaction ID and the signed payload
func (tx *Transaction) Hash() (CryptoHash, []byte, error) {
	b, err := borsh.Serialize(*tx)
	if err != nil {
		return CryptoHash{}, nil, err
	}
	return sha256.Sum256(b), b, nil
}

// Sign hashes and signs the transaction, returning the base64 payload for broadcast_tx_commit
func (tx *Transaction) Sign(ctx context.Context, kp *KeyPair) (CryptoHash, string, error) {
	hash, _, err := tx.Hash()
	if err != nil {
		return hash, "", i18n.WrapError(ctx, err, i18n.MsgTxSerializeFailed, tx.ReceiverID)
	}
	stx := SignedTransaction{
		Transaction: *tx,
		Signature:   kp.Sign(hash[:]),
	}
	b, err := borsh.Serialize(stx)
	if err != nil {
		return hash, "", i18n.WrapError(ctx, err, i18n.MsgTxSerializeFailed, tx.ReceiverID)
	}
	return hash, base64.StdEncoding.EncodeToString(b), nil
}

// DecodeSignedTransaction is the inverse of Sign, used when acting as a node
func DecodeSignedTransaction(ctx context.Context, b64 string) (*SignedTransaction, error) {
	b, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgTxSerializeFailed, "")
	}
	var stx SignedTransaction
	if err := borsh.Deserialize(&stx, b); err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgTxSerializeFailed, "")
	}
	return &stx, nil
}
