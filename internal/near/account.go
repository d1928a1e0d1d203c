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
	"encoding/json"
	"sync"
	"time"

	"github.com/kaleido-io/nftmarket/internal/i18n"
	"github.com/kaleido-io/nftmarket/internal/log"
)

const maxNonceAttempts = 12

// Account signs transactions for one account ID with one key. It is safe for
// concurrent use: nonces are allocated under a lock, so parallel submissions
// never share a nonce.
type Account struct {
	conn *Connection
	id   string
	key  *KeyPair

	nonceLock  sync.Mutex
	nonce      uint64
	nonceKnown bool
}

func (a *Account) ID() string {
	return a.id
}

func (a *Account) PublicKey() PublicKey {
	return a.key.PublicKey()
}

func (a *Account) KeyPair() *KeyPair {
	return a.key
}

func (a *Account) State(ctx context.Context) (*AccountView, error) {
	return a.conn.ViewAccount(ctx, a.id)
}

func (a *Account) nextNonce(ctx context.Context) (uint64, error) {
	a.nonceLock.Lock()
	defer a.nonceLock.Unlock()
	if !a.nonceKnown {
		a.conn.metrics.QueryIssued(a.id, "view_access_key")
		akv, err := a.conn.rpc.ViewAccessKey(ctx, a.id, a.key.PublicKey())
		if err != nil {
			return 0, err
		}
		// never step backwards past a nonce already handed out
		if akv.Nonce > a.nonce {
			a.nonce = akv.Nonce
		}
		a.nonceKnown = true
	}
	a.nonce++
	return a.nonce, nil
}

func (a *Account) resetNonce() {
	a.nonceLock.Lock()
	defer a.nonceLock.Unlock()
	a.nonceKnown = false
}

func describeActions(actions []Action) string {
	if len(actions) == 0 {
		return "none"
	}
	// a deploy+init is labelled by its init call
	for _, action := range actions {
		if action.Enum == ActionFunctionCall {
			return action.FunctionCall.MethodName
		}
	}
	switch actions[0].Enum {
	case ActionCreateAccount:
		return "create_account"
	case ActionDeployContract:
		return "deploy_contract"
	case ActionTransfer:
		return "transfer"
	case ActionAddKey:
		return "add_key"
	default:
		return "other"
	}
}

// SignAndSendTransaction signs the actions with this account's key and waits for the final outcome.
// A nonce collision is retried with a fresh nonce. A failed outcome is returned alongside a coded error.
func (a *Account) SignAndSendTransaction(ctx context.Context, receiverID string, actions ...Action) (*FinalExecutionOutcome, error) {
	method := describeActions(actions)
	for attempt := 1; ; attempt++ {
		nonce, err := a.nextNonce(ctx)
		if err != nil {
			return nil, err
		}
		blockHash, err := a.conn.recentBlockHash(ctx)
		if err != nil {
			return nil, err
		}
		tx := &Transaction{
			SignerID:   a.id,
			PublicKey:  a.key.PublicKey(),
			Nonce:      nonce,
			ReceiverID: receiverID,
			BlockHash:  blockHash,
			Actions:    actions,
		}
		hash, signed, err := tx.Sign(ctx, a.key)
		if err != nil {
			return nil, err
		}
		log.L(ctx).Infof("--> %s %s -> %s nonce=%d tx=%s", method, a.id, receiverID, nonce, hash)

		start := time.Now()
		a.conn.metrics.TransactionSubmitted(receiverID, method)
		outcome, err := a.conn.rpc.BroadcastTxCommit(ctx, signed)
		if err != nil {
			if rpcErr, ok := AsRPCError(err); ok && rpcErr.IsInvalidNonce() {
				a.resetNonce()
				if attempt < maxNonceAttempts {
					log.L(ctx).Warnf("Nonce %d rejected for %s (attempt %d): %s", nonce, a.id, attempt, rpcErr.Detail())
					continue
				}
				err = i18n.WrapError(ctx, err, i18n.MsgInvalidNonce, a.id, attempt, rpcErr.Detail())
			}
			a.conn.metrics.TransactionFailed(receiverID, method)
			return nil, err
		}
		a.conn.metrics.TransactionDuration(method, time.Since(start))
		if err := outcome.Error(ctx); err != nil {
			log.L(ctx).Errorf("<-- %s tx=%s failed", method, hash)
			a.conn.metrics.TransactionFailed(receiverID, method)
			return outcome, err
		}
		log.L(ctx).Infof("<-- %s tx=%s ok (%.2fs)", method, hash, time.Since(start).Seconds())
		return outcome, nil
	}
}

// FunctionCall calls a change method on a contract, attaching the connection's gas and the given deposit
func (a *Account) FunctionCall(ctx context.Context, contractID, method string, args interface{}, deposit *Balance) (*FinalExecutionOutcome, error) {
	action, err := a.FunctionCallAction(ctx, method, args, deposit)
	if err != nil {
		return nil, err
	}
	return a.SignAndSendTransaction(ctx, contractID, action)
}

// FunctionCallAction builds a function call for inclusion in a multi-action transaction
func (a *Account) FunctionCallAction(ctx context.Context, method string, args interface{}, deposit *Balance) (Action, error) {
	if args == nil {
		args = map[string]interface{}{}
	}
	argBytes, err := json.Marshal(args)
	if err != nil {
		return Action{}, i18n.WrapError(ctx, err, i18n.MsgArgsSerializeFailed, method)
	}
	return NewFunctionCallAction(method, argBytes, a.conn.gas, deposit), nil
}

// CreateAccount creates a sub-account, funds it, and gives it a full access key
func (a *Account) CreateAccount(ctx context.Context, newAccountID string, pk PublicKey, amount *Balance) (*FinalExecutionOutcome, error) {
	if err := ValidateAccountID(ctx, newAccountID); err != nil {
		return nil, err
	}
	return a.SignAndSendTransaction(ctx, newAccountID,
		NewCreateAccountAction(),
		NewTransferAction(amount),
		NewAddFullAccessKeyAction(pk),
	)
}

func (a *Account) DeployContract(ctx context.Context, code []byte) (*FinalExecutionOutcome, error) {
	return a.SignAndSendTransaction(ctx, a.id, NewDeployContractAction(code))
}

func (a *Account) ViewFunction(ctx context.Context, contractID, method string, args interface{}, result interface{}) error {
	return a.conn.ViewFunction(ctx, contractID, method, args, result)
}
