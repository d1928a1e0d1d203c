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
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/kaleido-io/nftmarket/internal/near"
)

func invalidTx(info interface{}) *near.RPCError {
	body := map[string]interface{}{"TxExecutionError": map[string]interface{}{"InvalidTxError": info}}
	return handlerError("INVALID_TRANSACTION", body, body)
}

type actionFailure struct {
	index int
	kind  interface{}
}

func (sb *Sandbox) broadcastTxCommit(signedB64 string) (interface{}, *near.RPCError) {
	stx, err := near.DecodeSignedTransaction(context.Background(), signedB64)
	if err != nil {
		return nil, &near.RPCError{Name: "REQUEST_VALIDATION_ERROR", Code: -32602, Message: "Invalid params", Data: mustJSON(err.Error())}
	}
	tx := &stx.Transaction
	hash, _, err := tx.Hash()
	if err != nil {
		return nil, invalidTx("InvalidTransaction")
	}

	signer, ok := sb.accounts[tx.SignerID]
	if !ok {
		return nil, invalidTx(map[string]interface{}{"SignerDoesNotExist": map[string]interface{}{"signer_id": tx.SignerID}})
	}
	ak, ok := signer.keys[tx.PublicKey.String()]
	if !ok {
		return nil, invalidTx(map[string]interface{}{"InvalidAccessKeyError": map[string]interface{}{
			"AccessKeyNotFound": map[string]interface{}{"account_id": tx.SignerID, "public_key": tx.PublicKey.String()},
		}})
	}
	if !tx.PublicKey.Verify(hash[:], stx.Signature) {
		return nil, invalidTx("InvalidSignature")
	}
	if !sb.blockHashes[tx.BlockHash.String()] {
		return nil, invalidTx("Expired")
	}
	if tx.Nonce <= ak.nonce {
		return nil, invalidTx(map[string]interface{}{"InvalidNonce": map[string]interface{}{"ak_nonce": ak.nonce, "tx_nonce": tx.Nonce}})
	}
	ak.nonce = tx.Nonce

	accepted := &AcceptedTx{
		Hash:       hash.String(),
		SignerID:   tx.SignerID,
		PublicKey:  tx.PublicKey.String(),
		Nonce:      tx.Nonce,
		ReceiverID: tx.ReceiverID,
		Method:     txMethod(tx.Actions),
	}
	sb.accepted = append(sb.accepted, accepted)

	// Actions preceding a failed action are not rolled back
	var logs []string
	var returnValue []byte
	var failure *actionFailure
	createdHere := false
	for i, action := range tx.Actions {
		var kind interface{}
		logs, returnValue, createdHere, kind = sb.executeAction(tx, action, createdHere, logs)
		if kind != nil {
			failure = &actionFailure{index: i, kind: kind}
			break
		}
	}
	sb.produceBlock()

	var status near.ExecutionStatus
	if failure != nil {
		accepted.Failed = true
		status.Failure = mustJSON(map[string]interface{}{
			"ActionError": map[string]interface{}{"index": failure.index, "kind": failure.kind},
		})
	} else {
		v := base64.StdEncoding.EncodeToString(returnValue)
		status.SuccessValue = &v
	}
	receiptID := near.CryptoHash(sha256.Sum256(append(hash[:], 'r'))).String()
	return &near.FinalExecutionOutcome{
		Status: status,
		Transaction: near.TransactionView{
			SignerID:   tx.SignerID,
			PublicKey:  tx.PublicKey.String(),
			Nonce:      tx.Nonce,
			ReceiverID: tx.ReceiverID,
			Hash:       hash.String(),
		},
		TransactionOutcome: near.ExecutionOutcomeWithID{
			ID: hash.String(),
			Outcome: near.ExecutionOutcome{
				Logs:        []string{},
				ReceiptIDs:  []string{receiptID},
				TokensBurnt: near.NewBalance(0),
				ExecutorID:  tx.SignerID,
				Status:      near.ExecutionStatus{SuccessReceiptID: &receiptID},
			},
		},
		ReceiptsOutcome: []near.ExecutionOutcomeWithID{{
			ID: receiptID,
			Outcome: near.ExecutionOutcome{
				Logs:        logs,
				ReceiptIDs:  []string{},
				TokensBurnt: near.NewBalance(0),
				ExecutorID:  tx.ReceiverID,
				Status:      status,
			},
		}},
	}, nil
}

func txMethod(actions []near.Action) string {
	for _, a := range actions {
		if a.Enum == near.ActionFunctionCall {
			return a.FunctionCall.MethodName
		}
	}
	if len(actions) > 0 && actions[0].Enum == near.ActionCreateAccount {
		return "create_account"
	}
	if len(actions) > 0 && actions[0].Enum == near.ActionDeployContract {
		return "deploy_contract"
	}
	return ""
}

func (sb *Sandbox) transfer(from, to *account, amount *near.Balance) interface{} {
	if from.amount.Cmp(amount) < 0 {
		return map[string]interface{}{"LackBalanceForState": map[string]interface{}{"amount": amount}}
	}
	from.amount = from.amount.Sub(amount)
	to.amount = to.amount.Add(amount)
	return nil
}

// executeAction applies one action, returning a non-nil failure kind if it failed
func (sb *Sandbox) executeAction(tx *near.Transaction, action near.Action, created bool, logs []string) ([]string, []byte, bool, interface{}) {
	signer := sb.accounts[tx.SignerID]
	receiver, exists := sb.accounts[tx.ReceiverID]
	if action.Enum == near.ActionCreateAccount {
		if exists {
			return logs, nil, created, map[string]interface{}{"AccountAlreadyExists": map[string]interface{}{"account_id": tx.ReceiverID}}
		}
		if !strings.HasSuffix(tx.ReceiverID, "."+tx.SignerID) {
			return logs, nil, created, map[string]interface{}{"CreateAccountNotAllowed": map[string]interface{}{
				"account_id": tx.ReceiverID, "predecessor_id": tx.SignerID,
			}}
		}
		sb.accounts[tx.ReceiverID] = &account{
			amount:       near.NewBalance(0),
			codeHash:     near.EmptyCodeHash,
			storageUsage: 182,
			keys:         map[string]*accessKey{},
		}
		return logs, nil, true, nil
	}
	if !exists {
		return logs, nil, created, map[string]interface{}{"AccountDoesNotExist": map[string]interface{}{"account_id": tx.ReceiverID}}
	}
	ownAccount := tx.SignerID == tx.ReceiverID || created
	switch action.Enum {
	case near.ActionTransfer:
		return logs, nil, created, sb.transfer(signer, receiver, action.Transfer.Deposit.Balance())
	case near.ActionAddKey:
		if !ownAccount {
			return logs, nil, created, map[string]interface{}{"ActorNoPermission": map[string]interface{}{"account_id": tx.ReceiverID, "actor_id": tx.SignerID}}
		}
		pk := action.AddKey.PublicKey.String()
		if _, exists := receiver.keys[pk]; exists {
			return logs, nil, created, map[string]interface{}{"AddKeyAlreadyExists": map[string]interface{}{"account_id": tx.ReceiverID, "public_key": pk}}
		}
		receiver.keys[pk] = &accessKey{nonce: sb.height * 1000000}
		return logs, nil, created, nil
	case near.ActionDeployContract:
		if !ownAccount {
			return logs, nil, created, map[string]interface{}{"ActorNoPermission": map[string]interface{}{"account_id": tx.ReceiverID, "actor_id": tx.SignerID}}
		}
		code := action.DeployContract.Code
		newHash := codeHash(code)
		if receiver.codeHash != newHash || receiver.contract == nil {
			if factory, ok := sb.factories[newHash]; ok {
				receiver.contract = factory(tx.ReceiverID)
			} else {
				receiver.contract = unknownContract{}
			}
		}
		receiver.codeHash = newHash
		receiver.storageUsage = 182 + uint64(len(code))
		return logs, nil, created, nil
	case near.ActionFunctionCall:
		fc := &action.FunctionCall
		if receiver.contract == nil {
			return logs, nil, created, map[string]interface{}{"FunctionCallError": map[string]interface{}{
				"CompilationError": map[string]interface{}{"CodeDoesNotExist": map[string]interface{}{"account_id": tx.ReceiverID}},
			}}
		}
		deposit := fc.Deposit.Balance()
		if kind := sb.transfer(signer, receiver, deposit); kind != nil {
			return logs, nil, created, kind
		}
		cc := &CallContext{
			ContractID:    tx.ReceiverID,
			PredecessorID: tx.SignerID,
			SignerID:      tx.SignerID,
			Deposit:       deposit,
		}
		result, err := receiver.contract.Call(cc, fc.MethodName, fc.Args)
		logs = append(logs, cc.Logs...)
		if err != nil {
			// the attached deposit is refunded on failure
			_ = sb.transfer(receiver, signer, deposit)
			return logs, nil, created, map[string]interface{}{"FunctionCallError": map[string]interface{}{"ExecutionError": "Smart contract panicked: " + err.Error()}}
		}
		return logs, result, created, nil
	default:
		return logs, nil, created, map[string]interface{}{"UnsupportedAction": action.Enum}
	}
}
