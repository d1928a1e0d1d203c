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

// Package neartest is an in-memory NEAR network for tests. It speaks the subset of the
// JSON-RPC API used by the near package, verifies signatures and nonces, executes
// actions, and runs Go implementations of the NFT, FT and market contracts.
package neartest

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/kaleido-io/nftmarket/internal/near"
)

type accessKey struct {
	nonce uint64
}

type account struct {
	amount       *near.Balance
	codeHash     string
	storageUsage uint64
	keys         map[string]*accessKey
	contract     Contract
}

// AcceptedTx records a transaction that passed validation
type AcceptedTx struct {
	Hash       string
	SignerID   string
	PublicKey  string
	Nonce      uint64
	ReceiverID string
	Method     string
	Failed     bool
}

type Sandbox struct {
	server *httptest.Server

	mux         sync.Mutex
	height      uint64
	blockHashes map[string]bool
	latestHash  string
	accounts    map[string]*account
	factories   map[string]ContractFactory
	accepted    []*AcceptedTx
	requests    map[string]int
}

// New starts a sandbox with the NFT, FT and market contracts registered
func New() *Sandbox {
	sb := &Sandbox{
		blockHashes: map[string]bool{},
		accounts:    map[string]*account{},
		factories:   map[string]ContractFactory{},
		requests:    map[string]int{},
	}
	sb.RegisterContract(NFTWasm, NewNFTContract)
	sb.RegisterContract(FTWasm, NewFTContract)
	sb.RegisterContract(MarketWasm, NewMarketContract)
	sb.produceBlock()
	sb.server = httptest.NewServer(http.HandlerFunc(sb.serveHTTP))
	return sb
}

func (sb *Sandbox) URL() string {
	return sb.server.URL
}

func (sb *Sandbox) Close() {
	sb.server.Close()
}

func codeHash(code []byte) string {
	return near.CryptoHash(sha256.Sum256(code)).String()
}

// RegisterContract binds wasm bytes to a Go implementation
func (sb *Sandbox) RegisterContract(code []byte, factory ContractFactory) {
	sb.mux.Lock()
	defer sb.mux.Unlock()
	sb.factories[codeHash(code)] = factory
}

// CreateAccount adds an account directly, as genesis or a faucet would
func (sb *Sandbox) CreateAccount(accountID string, pk near.PublicKey, amount *near.Balance) {
	sb.mux.Lock()
	defer sb.mux.Unlock()
	sb.accounts[accountID] = &account{
		amount:       amount,
		codeHash:     near.EmptyCodeHash,
		storageUsage: 182,
		keys:         map[string]*accessKey{pk.String(): {nonce: sb.height * 1000000}},
	}
}

// Contract returns the state of the contract deployed to an account, for assertions
func (sb *Sandbox) Contract(accountID string) Contract {
	sb.mux.Lock()
	defer sb.mux.Unlock()
	if a, ok := sb.accounts[accountID]; ok {
		return a.contract
	}
	return nil
}

// Balance returns the balance of an account, or nil if it does not exist
func (sb *Sandbox) Balance(accountID string) *near.Balance {
	sb.mux.Lock()
	defer sb.mux.Unlock()
	if a, ok := sb.accounts[accountID]; ok {
		return a.amount
	}
	return nil
}

// Transactions returns every accepted transaction in the order it was executed
func (sb *Sandbox) Transactions() []AcceptedTx {
	sb.mux.Lock()
	defer sb.mux.Unlock()
	txs := make([]AcceptedTx, len(sb.accepted))
	for i, tx := range sb.accepted {
		txs[i] = *tx
	}
	return txs
}

// RequestCount returns the number of JSON-RPC requests received for a method
func (sb *Sandbox) RequestCount(method string) int {
	sb.mux.Lock()
	defer sb.mux.Unlock()
	return sb.requests[method]
}

// produceBlock must be called with the lock held
func (sb *Sandbox) produceBlock() {
	sb.height++
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], sb.height)
	h := sha256.Sum256(b[:])
	// keep the first byte non-zero so every hash renders to the full base58 width
	h[0] |= 0x80
	sb.latestHash = near.CryptoHash(h).String()
	sb.blockHashes[sb.latestHash] = true
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *near.RPCError  `json:"error,omitempty"`
}

func mustJSON(v interface{}) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

func handlerError(cause string, info interface{}, data interface{}) *near.RPCError {
	return &near.RPCError{
		Name:    "HANDLER_ERROR",
		Cause:   &near.RPCErrorCause{Name: cause, Info: mustJSON(info)},
		Code:    -32000,
		Message: "Server error",
		Data:    mustJSON(data),
	}
}

func (sb *Sandbox) serveHTTP(w http.ResponseWriter, req *http.Request) {
	var rpcReq rpcRequest
	res := &rpcResponse{JSONRPC: "2.0"}
	if err := json.NewDecoder(req.Body).Decode(&rpcReq); err != nil {
		res.Error = &near.RPCError{Name: "REQUEST_VALIDATION_ERROR", Code: -32700, Message: "Parse error", Data: mustJSON(err.Error())}
	} else {
		res.ID = rpcReq.ID
		res.Result, res.Error = sb.dispatch(&rpcReq)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(res)
}

func (sb *Sandbox) dispatch(req *rpcRequest) (interface{}, *near.RPCError) {
	sb.mux.Lock()
	defer sb.mux.Unlock()
	sb.requests[req.Method]++
	switch req.Method {
	case "block":
		return &near.BlockView{
			Author: "sandbox",
			Header: near.BlockHeader{Height: sb.height, Hash: sb.latestHash},
		}, nil
	case "query":
		return sb.query(req.Params)
	case "broadcast_tx_commit":
		var params []string
		if err := json.Unmarshal(req.Params, &params); err != nil || len(params) != 1 {
			return nil, &near.RPCError{Name: "REQUEST_VALIDATION_ERROR", Code: -32602, Message: "Invalid params", Data: mustJSON("expected [signed_tx_base64]")}
		}
		return sb.broadcastTxCommit(params[0])
	default:
		return nil, &near.RPCError{Name: "REQUEST_VALIDATION_ERROR", Code: -32601, Message: "Method not found", Data: mustJSON(req.Method)}
	}
}

type queryParams struct {
	RequestType string `json:"request_type"`
	Finality    string `json:"finality"`
	AccountID   string `json:"account_id"`
	PublicKey   string `json:"public_key"`
	MethodName  string `json:"method_name"`
	ArgsBase64  string `json:"args_base64"`
}

func unknownAccount(accountID string, height uint64) *near.RPCError {
	return handlerError("UNKNOWN_ACCOUNT",
		map[string]interface{}{"requested_account_id": accountID, "block_height": height},
		"account "+accountID+" does not exist while viewing")
}

func (sb *Sandbox) query(raw json.RawMessage) (interface{}, *near.RPCError) {
	var q queryParams
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, &near.RPCError{Name: "REQUEST_VALIDATION_ERROR", Code: -32602, Message: "Invalid params", Data: mustJSON(err.Error())}
	}
	acct, ok := sb.accounts[q.AccountID]
	if !ok {
		return nil, unknownAccount(q.AccountID, sb.height)
	}
	switch q.RequestType {
	case "view_account":
		return &near.AccountView{
			Amount:       acct.amount,
			Locked:       near.NewBalance(0),
			CodeHash:     acct.codeHash,
			StorageUsage: acct.storageUsage,
			BlockHeight:  sb.height,
			BlockHash:    sb.latestHash,
		}, nil
	case "view_access_key":
		ak, ok := acct.keys[q.PublicKey]
		if !ok {
			return nil, handlerError("UNKNOWN_ACCESS_KEY",
				map[string]interface{}{"public_key": q.PublicKey, "block_height": sb.height},
				"access key "+q.PublicKey+" does not exist while viewing")
		}
		return &near.AccessKeyView{
			Nonce:       ak.nonce,
			Permission:  mustJSON("FullAccess"),
			BlockHeight: sb.height,
			BlockHash:   sb.latestHash,
		}, nil
	case "call_function":
		if acct.contract == nil {
			return nil, handlerError("NO_CONTRACT_CODE",
				map[string]interface{}{"contract_account_id": q.AccountID},
				"wasm execution failed with error: CompilationError(CodeDoesNotExist { account_id: \""+q.AccountID+"\" })")
		}
		args, err := base64.StdEncoding.DecodeString(q.ArgsBase64)
		if err != nil {
			return nil, &near.RPCError{Name: "REQUEST_VALIDATION_ERROR", Code: -32602, Message: "Invalid params", Data: mustJSON(err.Error())}
		}
		result, err := acct.contract.View(q.MethodName, args)
		if err != nil {
			return nil, handlerError("CONTRACT_EXECUTION_ERROR",
				map[string]interface{}{"vm_error": err.Error(), "block_height": sb.height},
				"wasm execution failed with error: "+executionError(err))
		}
		// results are returned as an array of byte values, not base64
		ints := make([]int, len(result))
		for i, b := range result {
			ints[i] = int(b)
		}
		return map[string]interface{}{
			"result":       ints,
			"logs":         []string{},
			"block_height": sb.height,
			"block_hash":   sb.latestHash,
		}, nil
	default:
		return nil, &near.RPCError{Name: "REQUEST_VALIDATION_ERROR", Code: -32602, Message: "Invalid params", Data: mustJSON("unsupported request_type " + q.RequestType)}
	}
}

func executionError(err error) string {
	switch e := err.(type) {
	case *MethodNotFound:
		return "FunctionCallError(MethodResolveError(MethodNotFound))"
	case *ContractPanic:
		return "FunctionCallError(HostError(GuestPanic { panic_msg: \"" + e.Message + "\" }))"
	default:
		return err.Error()
	}
}
