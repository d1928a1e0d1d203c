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
	"testing"

	"github.com/akamensky/base58"
	"github.com/stretchr/testify/assert"
)

func TestKeyPairRoundTrip(t *testing.T) {
	ctx := context.Background()
	kp, err := GenerateKeyPair()
	assert.NoError(t, err)

	s := kp.String()
	assert.Regexp(t, "^ed25519:", s)
	kp2, err := ParseKeyPair(ctx, s)
	assert.NoError(t, err)
	assert.Equal(t, kp.PublicKey(), kp2.PublicKey())

	pk, err := ParsePublicKey(ctx, kp.PublicKey().String())
	assert.NoError(t, err)
	assert.Equal(t, kp.PublicKey(), pk)

	sig := kp.Sign([]byte("hello"))
	assert.True(t, pk.Verify([]byte("hello"), sig))
	assert.False(t, pk.Verify([]byte("hellO"), sig))
}

func TestParseKeyPairFromSeed(t *testing.T) {
	seed := make([]byte, 32)
	seed[0] = 1
	kp, err := ParseKeyPair(context.Background(), base58.Encode(seed))
	assert.NoError(t, err)
	assert.Equal(t, KeyTypeED25519, kp.PublicKey().KeyType)
}

func TestParseKeyPairBad(t *testing.T) {
	ctx := context.Background()
	_, err := ParseKeyPair(ctx, "secp256k1:abcd")
	assert.Regexp(t, "NM10119", err)
	_, err = ParseKeyPair(ctx, "ed25519:0OIl")
	assert.Regexp(t, "NM10118", err)
	_, err = ParseKeyPair(ctx, "ed25519:"+base58.Encode([]byte{1, 2, 3}))
	assert.Regexp(t, "NM10118", err)

	kp, _ := GenerateKeyPair()
	other, _ := GenerateKeyPair()
	mismatched := append([]byte{}, kp.priv[:32]...)
	mismatched = append(mismatched, other.priv[32:]...)
	_, err = ParseKeyPair(ctx, "ed25519:"+base58.Encode(mismatched))
	assert.Regexp(t, "NM10118", err)
}

func TestParsePublicKeyBadLength(t *testing.T) {
	_, err := ParsePublicKey(context.Background(), "ed25519:"+base58.Encode([]byte{1, 2, 3}))
	assert.Regexp(t, "NM10118", err)
	_, err = ParsePublicKey(context.Background(), "rsa:abc")
	assert.Regexp(t, "NM10119", err)
}

func TestErrorsDoNotLeakSecrets(t *testing.T) {
	_, err := ParseKeyPair(context.Background(), "ed25519:"+base58.Encode(make([]byte, 40)))
	assert.Regexp(t, `\.\.\.`, err)
}
