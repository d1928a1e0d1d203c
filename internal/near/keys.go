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
	"crypto/ed25519"
	"crypto/rand"
	"strings"

	"github.com/akamensky/base58"
	"github.com/kaleido-io/nftmarket/internal/i18n"
)

// KeyType is the curve tag carried in borsh encoded keys and signatures
type KeyType uint8

const (
	KeyTypeED25519 KeyType = 0
)

const ed25519Prefix = "ed25519:"

// PublicKey is the borsh layout of a public key
type PublicKey struct {
	KeyType KeyType
	Data    [ed25519.PublicKeySize]byte
}

// Signature is the borsh layout of a signature
type Signature struct {
	KeyType KeyType
	Data    [ed25519.SignatureSize]byte
}

// KeyPair holds an ed25519 secret key, in the 64 byte seed+public form used by NEAR tooling
type KeyPair struct {
	priv ed25519.PrivateKey
}

// GenerateKeyPair creates a new random key pair
func GenerateKeyPair() (*KeyPair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &KeyPair{priv: priv}, nil
}

func splitKeyString(ctx context.Context, s string) ([]byte, error) {
	encoded := s
	if idx := strings.Index(s, ":"); idx >= 0 {
		if s[:idx+1] != ed25519Prefix {
			return nil, i18n.NewError(ctx, i18n.MsgUnsupportedKeyType, s[:idx])
		}
		encoded = s[idx+1:]
	}
	b, err := base58.Decode(encoded)
	if err != nil || len(b) == 0 {
		return nil, i18n.NewError(ctx, i18n.MsgInvalidKey, truncateKey(s))
	}
	return b, nil
}

// ParseKeyPair accepts "ed25519:<base58>" with either a 64 byte secret key or a 32 byte seed
func ParseKeyPair(ctx context.Context, s string) (*KeyPair, error) {
	b, err := splitKeyString(ctx, s)
	if err != nil {
		return nil, err
	}
	switch len(b) {
	case ed25519.PrivateKeySize:
		priv := ed25519.NewKeyFromSeed(b[:ed25519.SeedSize])
		if string(priv[ed25519.SeedSize:]) != string(b[ed25519.SeedSize:]) {
			return nil, i18n.NewError(ctx, i18n.MsgInvalidKey, truncateKey(s))
		}
		return &KeyPair{priv: priv}, nil
	case ed25519.SeedSize:
		return &KeyPair{priv: ed25519.NewKeyFromSeed(b)}, nil
	default:
		return nil, i18n.NewError(ctx, i18n.MsgInvalidKey, truncateKey(s))
	}
}

// truncateKey keeps secrets out of error messages
func truncateKey(s string) string {
	if len(s) > 12 {
		return s[:12] + "..."
	}
	return s
}

func (kp *KeyPair) PublicKey() PublicKey {
	pk := PublicKey{KeyType: KeyTypeED25519}
	copy(pk.Data[:], kp.priv.Public().(ed25519.PublicKey))
	return pk
}

func (kp *KeyPair) Sign(message []byte) Signature {
	sig := Signature{KeyType: KeyTypeED25519}
	copy(sig.Data[:], ed25519.Sign(kp.priv, message))
	return sig
}

// String returns the secret key in "ed25519:<base58>" form, as stored in credential files
func (kp *KeyPair) String() string {
	return ed25519Prefix + base58.Encode(kp.priv)
}

// ParsePublicKey parses "ed25519:<base58>"
func ParsePublicKey(ctx context.Context, s string) (PublicKey, error) {
	b, err := splitKeyString(ctx, s)
	if err != nil {
		return PublicKey{}, err
	}
	if len(b) != ed25519.PublicKeySize {
		return PublicKey{}, i18n.NewError(ctx, i18n.MsgInvalidKey, s)
	}
	pk := PublicKey{KeyType: KeyTypeED25519}
	copy(pk.Data[:], b)
	return pk, nil
}

func (pk PublicKey) String() string {
	return ed25519Prefix + base58.Encode(pk.Data[:])
}

func (pk PublicKey) Verify(message []byte, sig Signature) bool {
	return pk.KeyType == KeyTypeED25519 && sig.KeyType == KeyTypeED25519 &&
		ed25519.Verify(ed25519.PublicKey(pk.Data[:]), message, sig.Data[:])
}
