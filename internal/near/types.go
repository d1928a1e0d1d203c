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
	"encoding/base64"
	"encoding/json"

	"github.com/kaleido-io/nftmarket/internal/i18n"
)

// EmptyCodeHash is the code hash of an account with no contract deployed
const EmptyCodeHash = "11111111111111111111111111111111"

const (
	FinalityFinal = "final"
)

type AccountView struct {
	Amount       *Balance `json:"amount"`
	Locked       *Balance `json:"locked"`
	CodeHash     string   `json:"code_hash"`
	StorageUsage uint64   `json:"storage_usage"`
	BlockHeight  uint64   `json:"block_height"`
	BlockHash    string   `json:"block_hash"`
}

// HasCode is false until a contract is deployed to the account
func (av *AccountView) HasCode() bool {
	return av.CodeHash != "" && av.CodeHash != EmptyCodeHash
}

type AccessKeyView struct {
	Nonce       uint64          `json:"nonce"`
	Permission  json.RawMessage `json:"permission"`
	BlockHeight uint64          `json:"block_height"`
	BlockHash   string          `json:"block_hash"`
}

type CallFunctionResult struct {
	Result      []byte   `json:"result"`
	Logs        []string `json:"logs"`
	BlockHeight uint64   `json:"block_height"`
	BlockHash   string   `json:"block_hash"`
	// Older nodes report view failures in the result rather than as a JSON-RPC error
	Error string `json:"error,omitempty"`
}

type BlockHeader struct {
	Height    uint64 `json:"height"`
	Hash      string `json:"hash"`
	Timestamp uint64 `json:"timestamp"`
}

type BlockView struct {
	Author string      `json:"author"`
	Header BlockHeader `json:"header"`
}

// ExecutionStatus has exactly one field set
type ExecutionStatus struct {
	SuccessValue     *string         `json:"SuccessValue,omitempty"`
	SuccessReceiptID *string         `json:"SuccessReceiptId,omitempty"`
	Failure          json.RawMessage `json:"Failure,omitempty"`
}

type ExecutionOutcome struct {
	Logs        []string        `json:"logs"`
	ReceiptIDs  []string        `json:"receipt_ids"`
	GasBurnt    uint64          `json:"gas_burnt"`
	TokensBurnt *Balance        `json:"tokens_burnt"`
	ExecutorID  string          `json:"executor_id"`
	Status      ExecutionStatus `json:"status"`
}

type ExecutionOutcomeWithID struct {
	ID      string           `json:"id"`
	Outcome ExecutionOutcome `json:"outcome"`
}

type TransactionView struct {
	SignerID   string `json:"signer_id"`
	PublicKey  string `json:"public_key"`
	Nonce      uint64 `json:"nonce"`
	ReceiverID string `json:"receiver_id"`
	Hash       string `json:"hash"`
}

// FinalExecutionOutcome is the result of broadcast_tx_commit
type FinalExecutionOutcome struct {
	Status             ExecutionStatus          `json:"status"`
	Transaction        TransactionView          `json:"transaction"`
	TransactionOutcome ExecutionOutcomeWithID   `json:"transaction_outcome"`
	ReceiptsOutcome    []ExecutionOutcomeWithID `json:"receipts_outcome"`
}

// Error returns a coded error when the transaction, or any receipt it spawned, failed
func (o *FinalExecutionOutcome) Error(ctx context.Context) error {
	failure := o.Status.Failure
	if len(failure) == 0 {
		for _, r := range o.ReceiptsOutcome {
			if len(r.Outcome.Status.Failure) > 0 {
				failure = r.Outcome.Status.Failure
				break
			}
		}
	}
	if len(failure) > 0 && string(failure) != "null" {
		return i18n.NewError(ctx, i18n.MsgTxFailed, o.Transaction.Hash, o.Transaction.ReceiverID, string(failure))
	}
	return nil
}

// SuccessValue is the decoded return value of the last function call, if any
func (o *FinalExecutionOutcome) SuccessValue() ([]byte, error) {
	if o.Status.SuccessValue == nil {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(*o.Status.SuccessValue)
}

// DecodeResult unmarshals the JSON return value of the transaction into result.
// A transaction that returned nothing leaves result untouched.
func (o *FinalExecutionOutcome) DecodeResult(ctx context.Context, method string, result interface{}) error {
	b, err := o.SuccessValue()
	if err == nil && len(b) > 0 {
		err = json.Unmarshal(b, result)
	}
	if err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgTxResultDecode, method, o.Transaction.ReceiverID)
	}
	return nil
}
