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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyFileSchemaCompiles(t *testing.T) {
	schema, err := getKeyFileSchema()
	assert.NoError(t, err)
	assert.NotNil(t, schema)
}

func TestFileKeyStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	ks := NewFileKeyStore(dir)

	kp, _ := GenerateKeyPair()
	err := ks.SetKey(ctx, "testnet", "alice.testnet", kp)
	assert.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "testnet", "alice.testnet.json"))

	// A fresh store reads from disk rather than the cache
	kp2, err := NewFileKeyStore(dir).GetKey(ctx, "testnet", "alice.testnet")
	assert.NoError(t, err)
	assert.Equal(t, kp.String(), kp2.String())

	kp3, err := ks.GetKey(ctx, "testnet", "alice.testnet")
	assert.NoError(t, err)
	assert.Same(t, kp, kp3)
}

func TestFileKeyStoreCLIFormat(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	kp, _ := GenerateKeyPair()
	err := os.MkdirAll(filepath.Join(dir, "testnet"), 0700)
	assert.NoError(t, err)
	err = ioutil.WriteFile(filepath.Join(dir, "testnet", "dev-1623333795623-21399959778159.json"),
		[]byte(`{"account_id":"dev-1623333795623-21399959778159","public_key":"`+kp.PublicKey().String()+`","private_key":"`+kp.String()+`"}`), 0600)
	assert.NoError(t, err)

	got, err := NewFileKeyStore(dir).GetKey(ctx, "testnet", "dev-1623333795623-21399959778159")
	assert.NoError(t, err)
	assert.Equal(t, kp.PublicKey(), got.PublicKey())
}

func TestFileKeyStoreNotFound(t *testing.T) {
	_, err := NewFileKeyStore(t.TempDir()).GetKey(context.Background(), "testnet", "bob.testnet")
	assert.Regexp(t, "NM10122.*bob.testnet", err)
}

func TestFileKeyStoreInvalidAccountID(t *testing.T) {
	ks := NewFileKeyStore(t.TempDir())
	_, err := ks.GetKey(context.Background(), "testnet", "../../etc/passwd")
	assert.Regexp(t, "NM10125", err)
	kp, _ := GenerateKeyPair()
	err = ks.SetKey(context.Background(), "testnet", "UPPER.testnet", kp)
	assert.Regexp(t, "NM10125", err)
}

func TestFileKeyStoreSchemaFailure(t *testing.T) {
	dir := t.TempDir()
	_ = os.MkdirAll(filepath.Join(dir, "testnet"), 0700)
	_ = ioutil.WriteFile(filepath.Join(dir, "testnet", "carol.testnet.json"), []byte(`{"account_id":"carol.testnet","private_key":"secp256k1:abc"}`), 0600)
	_, err := NewFileKeyStore(dir).GetKey(context.Background(), "testnet", "carol.testnet")
	assert.Regexp(t, "NM10133.*private_key", err)
}

func TestFileKeyStoreNotJSON(t *testing.T) {
	dir := t.TempDir()
	_ = os.MkdirAll(filepath.Join(dir, "testnet"), 0700)
	_ = ioutil.WriteFile(filepath.Join(dir, "testnet", "carol.testnet.json"), []byte(`!json`), 0600)
	_, err := NewFileKeyStore(dir).GetKey(context.Background(), "testnet", "carol.testnet")
	assert.Regexp(t, "NM10123", err)
}

func TestFileKeyStoreMismatchedPublicKey(t *testing.T) {
	dir := t.TempDir()
	kp, _ := GenerateKeyPair()
	other, _ := GenerateKeyPair()
	_ = os.MkdirAll(filepath.Join(dir, "testnet"), 0700)
	_ = ioutil.WriteFile(filepath.Join(dir, "testnet", "carol.testnet.json"),
		[]byte(`{"account_id":"carol.testnet","public_key":"`+other.PublicKey().String()+`","private_key":"`+kp.String()+`"}`), 0600)
	_, err := NewFileKeyStore(dir).GetKey(context.Background(), "testnet", "carol.testnet")
	assert.Regexp(t, "NM10133.*does not match", err)
}

func TestFileKeyStoreReadFailure(t *testing.T) {
	dir := t.TempDir()
	// a directory where the file should be
	_ = os.MkdirAll(filepath.Join(dir, "testnet", "carol.testnet.json"), 0700)
	_, err := NewFileKeyStore(dir).GetKey(context.Background(), "testnet", "carol.testnet")
	assert.Regexp(t, "NM10123", err)
}

func TestFileKeyStoreWriteFailure(t *testing.T) {
	dir := t.TempDir()
	// a file where the network directory should be
	_ = ioutil.WriteFile(filepath.Join(dir, "testnet"), []byte{}, 0600)
	kp, _ := GenerateKeyPair()
	err := NewFileKeyStore(dir).SetKey(context.Background(), "testnet", "carol.testnet", kp)
	assert.Regexp(t, "NM10124", err)
}

func TestValidateAccountID(t *testing.T) {
	ctx := context.Background()
	for _, ok := range []string{"a1.testnet", "fungible.dev-1623333795623-21399959778159", "alice-1623333795623.nft.test.near", "a_b.near"} {
		assert.NoError(t, ValidateAccountID(ctx, ok), ok)
	}
	for _, bad := range []string{"a", "Alice.testnet", "a..b", ".a", "a-", "this-account-id-is-much-too-long-to-be-accepted-by-the-near-network.testnet"} {
		assert.Error(t, ValidateAccountID(ctx, bad), bad)
	}
}
