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
	"encoding/json"
	"fmt"

	"github.com/kaleido-io/nftmarket/internal/near"
)

// Wasm artifacts understood by the sandbox. Deploying any other code gives an
// account whose every method fails to resolve.
var (
	NFTWasm    = []byte("\x00asm\x01\x00\x00\x00nftmarket:nft")
	FTWasm     = []byte("\x00asm\x01\x00\x00\x00nftmarket:ft")
	MarketWasm = []byte("\x00asm\x01\x00\x00\x00nftmarket:market")
)

// CallContext is the environment of a change method call
type CallContext struct {
	ContractID    string
	PredecessorID string
	SignerID      string
	Deposit       *near.Balance
	Logs          []string
}

func (cc *CallContext) Log(format string, args ...interface{}) {
	cc.Logs = append(cc.Logs, fmt.Sprintf(format, args...))
}

// Contract is a Go stand-in for a deployed wasm contract
type Contract interface {
	Call(cc *CallContext, method string, args []byte) ([]byte, error)
	View(method string, args []byte) ([]byte, error)
}

// ContractFactory creates the state of a freshly deployed contract
type ContractFactory func(contractID string) Contract

// ContractPanic is raised by a contract method, and reported as a failed execution
type ContractPanic struct {
	Message string
}

func (p *ContractPanic) Error() string {
	return p.Message
}

func panicf(format string, args ...interface{}) error {
	return &ContractPanic{Message: fmt.Sprintf(format, args...)}
}

// MethodNotFound is returned for methods a contract does not implement
type MethodNotFound struct {
	Method string
}

func (m *MethodNotFound) Error() string {
	return "MethodNotFound: " + m.Method
}

func decodeArgs(args []byte, v interface{}) error {
	if len(args) == 0 {
		args = []byte("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return panicf("Failed to deserialize input from JSON: %s", err)
	}
	return nil
}

func mustYocto(s string) *near.Balance {
	b, err := near.ParseYocto(context.Background(), s)
	if err != nil {
		panic(err)
	}
	return b
}

func encodeResult(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

type unknownContract struct{}

func (unknownContract) Call(cc *CallContext, method string, args []byte) ([]byte, error) {
	return nil, &MethodNotFound{Method: method}
}

func (unknownContract) View(method string, args []byte) ([]byte, error) {
	return nil, &MethodNotFound{Method: method}
}
