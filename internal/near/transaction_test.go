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
	"encoding/hex"
	"testing"

	"github.com/near/borsh-go"
	"github.com/stretchr/testify/assert"
)

func TestTransactionBorshLayout(t *testing.T) {
	tx := &Transaction{
		SignerID:   "a",
		PublicKey:  PublicKey{KeyType: KeyTypeED25519},
		Nonce:      1,
		ReceiverID: "b",
		Actions:    []Action{NewTransferAction(NewBalance(1))},
	}
	hash, b, err := tx.Hash()
	assert.NoError(t, err)

	expected := "01000000" + "61" + // signer_id
		"00" + hex.EncodeToString(make([]byte, 32)) + // public_key
		"0100000000000000" + // nonce
		"01000000" + "62" + // receiver_id
		hex.EncodeToString(make([]byte, 32)) + // block_hash
		"01000000" + // actions length
		"03" + "01" + hex.EncodeToString(make([]byte, 15)) // Transfer{deposit: 1}
	assert.Equal(t, expected, hex.EncodeToString(b))
	assert.Equal(t, CryptoHash(sha256.Sum256(b)), hash)
}

func TestFunctionCallBorshLayout(t *testing.T) {
	action := NewFunctionCallAction("new", []byte(`{}`), 30, nil)
	b, err := borsh.Serialize(action)
	assert.NoError(t, err)
	expected := "02" +
		"03000000" + hex.EncodeToString([]byte("new")) +
		"02000000" + hex.EncodeToString([]byte("{}")) +
		"1e00000000000000" +
		hex.EncodeToString(make([]byte, 16))
	assert.Equal(t, expected, hex.EncodeToString(b))
}

func TestAddKeyBorshLayout(t *testing.T) {
	kp, _ := GenerateKeyPair()
	action := NewAddFullAccessKeyAction(kp.PublicKey())
	b, err := borsh.Serialize(action)
	assert.NoError(t, err)
	pk := kp.PublicKey()
	expected := "05" + "00" + hex.EncodeToString(pk.Data[:]) +
		"0000000000000000" + // access key nonce
		"01" // FullAccess
	assert.Equal(t, expected, hex.EncodeToString(b))
}

func TestSignAndDecode(t *testing.T) {
	ctx := context.Background()
	kp, _ := GenerateKeyPair()
	tx := &Transaction{
		SignerID:   "alice.test.near",
		PublicKey:  kp.PublicKey(),
		Nonce:      42,
		ReceiverID: "alice.test.near",
		BlockHash:  sha256.Sum256([]byte("block")),
		Actions: []Action{
			NewCreateAccountAction(),
			NewDeployContractAction([]byte{0x00, 0x61, 0x73, 0x6d}),
			NewFunctionCallAction("new", []byte(`{"owner_id":"alice.test.near"}`), 300000000000000, NewBalance(1)),
			NewAddFullAccessKeyAction(kp.PublicKey()),
		},
	}
	hash, signed, err := tx.Sign(ctx, kp)
	assert.NoError(t, err)

	stx, err := DecodeSignedTransaction(ctx, signed)
	assert.NoError(t, err)
	assert.Equal(t, *tx, stx.Transaction)
	decodedHash, _, _ := stx.Transaction.Hash()
	assert.Equal(t, hash, decodedHash)
	assert.True(t, stx.Transaction.PublicKey.Verify(hash[:], stx.Signature))
	assert.Equal(t, ActionFunctionCall, stx.Transaction.Actions[2].Enum)
	assert.Equal(t, "new", stx.Transaction.Actions[2].FunctionCall.MethodName)
	assert.Equal(t, "1", stx.Transaction.Actions[2].FunctionCall.Deposit.Balance().String())
}

func TestDecodeSignedTransactionBad(t *testing.T) {
	_, err := DecodeSignedTransaction(context.Background(), "!!!")
	assert.Regexp(t, "NM10117", err)
	_, err = DecodeSignedTransaction(context.Background(), "AAAA")
	assert.Regexp(t, "NM10117", err)
}

func TestCryptoHashParse(t *testing.T) {
	ctx := context.Background()
	h := CryptoHash(sha256.Sum256([]byte("x")))
	parsed, err := ParseCryptoHash(ctx, h.String())
	assert.NoError(t, err)
	assert.Equal(t, h, parsed)

	_, err = ParseCryptoHash(ctx, "")
	assert.Regexp(t, "NM10121", err)
	_, err = ParseCryptoHash(ctx, "0OIl")
	assert.Regexp(t, "NM10121", err)
}
