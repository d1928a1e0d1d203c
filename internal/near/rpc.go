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
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/kaleido-io/nftmarket/internal/config"
	"github.com/kaleido-io/nftmarket/internal/i18n"
	"github.com/kaleido-io/nftmarket/internal/log"
	"github.com/kaleido-io/nftmarket/internal/nmtypes"
	"github.com/kaleido-io/nftmarket/internal/restclient"
	"github.com/pkg/errors"
)

const (
	causeUnknownAccount     = "UNKNOWN_ACCOUNT"
	causeUnknownAccessKey   = "UNKNOWN_ACCESS_KEY"
	causeContractExecution  = "CONTRACT_EXECUTION_ERROR"
	causeInvalidTransaction = "INVALID_TRANSACTION"
)

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is the error object of a JSON-RPC response from a NEAR node
type RPCError struct {
	Name    string          `json:"name,omitempty"`
	Cause   *RPCErrorCause  `json:"cause,omitempty"`
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type RPCErrorCause struct {
	Name string          `json:"name"`
	Info json.RawMessage `json:"info,omitempty"`
}

func (e *RPCError) Error() string {
	return e.Message + ": " + e.Detail()
}

// Detail is the most specific description available, either the data string or the cause
func (e *RPCError) Detail() string {
	var s string
	if len(e.Data) > 0 && json.Unmarshal(e.Data, &s) == nil {
		return s
	}
	if len(e.Data) > 0 && string(e.Data) != "null" {
		return string(e.Data)
	}
	if e.Cause != nil {
		return e.Cause.Name
	}
	return e.Name
}

// AsRPCError finds the node's JSON-RPC error in the chain of a wrapped error
func AsRPCError(err error) (*RPCError, bool) {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr, true
	}
	return nil, false
}

func (e *RPCError) causeIs(name string) bool {
	return e.Cause != nil && e.Cause.Name == name
}

// IsInvalidNonce is true when the node rejected a transaction because its nonce was already used
func (e *RPCError) IsInvalidNonce() bool {
	return strings.Contains(string(e.Data), "InvalidNonce") ||
		(e.causeIs(causeInvalidTransaction) && strings.Contains(string(e.Cause.Info), "InvalidNonce"))
}

// RPC is a JSON-RPC 2.0 client for the subset of the NEAR node API used to deploy contracts
type RPC struct {
	client *resty.Client
}

// InitConfig registers the HTTP client keys under the given prefix
func InitConfig(prefix config.Prefix) {
	restclient.InitPrefix(prefix)
}

func NewRPC(ctx context.Context, prefix config.Prefix) *RPC {
	return &RPC{
		client: restclient.New(ctx, prefix),
	}
}

func (r *RPC) call(ctx context.Context, method string, params interface{}, result interface{}) (*RPCError, error) {
	req := &rpcRequest{
		JSONRPC: "2.0",
		ID:      nmtypes.ShortID(),
		Method:  method,
		Params:  params,
	}
	var rpcRes rpcResponse
	res, err := r.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&rpcRes).
		SetError(&rpcRes).
		Post("/")
	if err != nil {
		return nil, restclient.WrapRestErr(ctx, res, err, i18n.MsgRPCRequestFailed, method)
	}
	if rpcRes.Error != nil {
		log.L(ctx).Debugf("JSON-RPC %s error: [%d] %s", method, rpcRes.Error.Code, rpcRes.Error.Detail())
		return rpcRes.Error, nil
	}
	if !res.IsSuccess() || rpcRes.Result == nil {
		return nil, restclient.WrapRestErr(ctx, res, nil, i18n.MsgRPCRequestFailed, method)
	}
	if err := json.Unmarshal(rpcRes.Result, result); err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgRPCResultDecode, method)
	}
	return nil, nil
}

func rpcError(ctx context.Context, method string, rpcErr *RPCError) error {
	return i18n.WrapError(ctx, rpcErr, i18n.MsgRPCError, strconv.FormatInt(rpcErr.Code, 10), method, rpcErr.Detail())
}

func isUnknownAccount(detail string) bool {
	return strings.Contains(detail, "does not exist while viewing")
}

// query runs a "query" request, handling both error styles: a JSON-RPC error with a
// cause, or an "error" string inside the result returned by older nodes
func (r *RPC) query(ctx context.Context, params map[string]interface{}, result interface{}) (*RPCError, error) {
	params["finality"] = FinalityFinal
	var raw json.RawMessage
	rpcErr, err := r.call(ctx, "query", params, &raw)
	if err != nil || rpcErr != nil {
		return rpcErr, err
	}
	var inline struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &inline); err == nil && inline.Error != "" {
		return &RPCError{Code: -32000, Message: "Server error", Data: mustJSON(inline.Error)}, nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgRPCResultDecode, "query")
	}
	return nil, nil
}

func mustJSON(v interface{}) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

// ViewAccount returns the account state, or an error coded MsgUnknownAccount when it does not exist
func (r *RPC) ViewAccount(ctx context.Context, accountID string) (*AccountView, error) {
	var av AccountView
	rpcErr, err := r.query(ctx, map[string]interface{}{
		"request_type": "view_account",
		"account_id":   accountID,
	}, &av)
	if err != nil {
		return nil, err
	}
	if rpcErr != nil {
		if rpcErr.causeIs(causeUnknownAccount) || isUnknownAccount(rpcErr.Detail()) {
			return nil, i18n.WrapError(ctx, rpcErr, i18n.MsgUnknownAccount, accountID)
		}
		return nil, rpcError(ctx, "query", rpcErr)
	}
	return &av, nil
}

func (r *RPC) ViewAccessKey(ctx context.Context, accountID string, pk PublicKey) (*AccessKeyView, error) {
	var akv AccessKeyView
	rpcErr, err := r.query(ctx, map[string]interface{}{
		"request_type": "view_access_key",
		"account_id":   accountID,
		"public_key":   pk.String(),
	}, &akv)
	if err != nil {
		return nil, err
	}
	if rpcErr != nil {
		switch {
		case rpcErr.causeIs(causeUnknownAccessKey) || strings.HasPrefix(rpcErr.Detail(), "access key"):
			return nil, i18n.WrapError(ctx, rpcErr, i18n.MsgUnknownAccessKey, pk.String(), accountID)
		case rpcErr.causeIs(causeUnknownAccount) || isUnknownAccount(rpcErr.Detail()):
			return nil, i18n.WrapError(ctx, rpcErr, i18n.MsgUnknownAccount, accountID)
		}
		return nil, rpcError(ctx, "query", rpcErr)
	}
	return &akv, nil
}

// CallFunction runs a view function. Args are passed through as raw bytes.
func (r *RPC) CallFunction(ctx context.Context, contractID, method string, args []byte) (*CallFunctionResult, error) {
	var cfr CallFunctionResult
	rpcErr, err := r.query(ctx, map[string]interface{}{
		"request_type": "call_function",
		"account_id":   contractID,
		"method_name":  method,
		"args_base64":  base64.StdEncoding.EncodeToString(args),
	}, &cfr)
	if err != nil {
		return nil, err
	}
	if rpcErr != nil {
		if rpcErr.causeIs(causeUnknownAccount) || isUnknownAccount(rpcErr.Detail()) {
			return nil, i18n.WrapError(ctx, rpcErr, i18n.MsgUnknownAccount, contractID)
		}
		return nil, i18n.WrapError(ctx, rpcErr, i18n.MsgViewFunctionFailed, method, contractID, rpcErr.Detail())
	}
	return &cfr, nil
}

// Block returns the latest final block
func (r *RPC) Block(ctx context.Context) (*BlockView, error) {
	var bv BlockView
	rpcErr, err := r.call(ctx, "block", map[string]interface{}{"finality": FinalityFinal}, &bv)
	if err != nil {
		return nil, err
	}
	if rpcErr != nil {
		return nil, rpcError(ctx, "block", rpcErr)
	}
	return &bv, nil
}

// BroadcastTxCommit submits a signed transaction and waits for its final outcome.
// The returned error wraps *RPCError when the node rejected the transaction.
func (r *RPC) BroadcastTxCommit(ctx context.Context, signedTxBase64 string) (*FinalExecutionOutcome, error) {
	var outcome FinalExecutionOutcome
	rpcErr, err := r.call(ctx, "broadcast_tx_commit", []string{signedTxBase64}, &outcome)
	if err != nil {
		return nil, err
	}
	if rpcErr != nil {
		return nil, rpcError(ctx, "broadcast_tx_commit", rpcErr)
	}
	return &outcome, nil
}
