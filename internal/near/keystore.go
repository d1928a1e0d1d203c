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
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/kaleido-io/nftmarket/internal/i18n"
	"github.com/kaleido-io/nftmarket/internal/log"
	"github.com/xeipuuv/gojsonschema"
)

var accountIDRegex = regexp.MustCompile(`^(([a-z\d]+[\-_])*[a-z\d]+\.)*([a-z\d]+[\-_])*[a-z\d]+$`)

// ValidateAccountID checks the account naming rules of the network
func ValidateAccountID(ctx context.Context, accountID string) error {
	if len(accountID) < 2 || len(accountID) > 64 || !accountIDRegex.MatchString(accountID) {
		return i18n.NewError(ctx, i18n.MsgInvalidAccountID, accountID)
	}
	return nil
}

// KeyStore looks up and persists the signing key of each account
type KeyStore interface {
	GetKey(ctx context.Context, networkID, accountID string) (*KeyPair, error)
	SetKey(ctx context.Context, networkID, accountID string, kp *KeyPair) error
}

type keyFile struct {
	AccountID  string `json:"account_id"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

const keyFileSchema = `{
	"type": "object",
	"required": ["account_id", "private_key"],
	"properties": {
		"account_id": {"type": "string", "minLength": 2, "maxLength": 64},
		"public_key": {"type": "string", "pattern": "^ed25519:"},
		"private_key": {"type": "string", "pattern": "^ed25519:"}
	}
}`

var keyFileSchemaOnce sync.Once
var keyFileSchemaCompiled *gojsonschema.Schema
var keyFileSchemaErr error

func getKeyFileSchema() (*gojsonschema.Schema, error) {
	keyFileSchemaOnce.Do(func() {
		keyFileSchemaCompiled, keyFileSchemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(keyFileSchema))
	})
	return keyFileSchemaCompiled, keyFileSchemaErr
}

// FileKeyStore uses the directory layout of the NEAR CLI: <dir>/<network>/<account>.json
type FileKeyStore struct {
	dir   string
	cache *lru.Cache
}

func NewFileKeyStore(dir string) *FileKeyStore {
	cache, _ := lru.New(100)
	return &FileKeyStore{
		dir:   dir,
		cache: cache,
	}
}

func (ks *FileKeyStore) keyPath(networkID, accountID string) string {
	return filepath.Join(ks.dir, networkID, accountID+".json")
}

func (ks *FileKeyStore) GetKey(ctx context.Context, networkID, accountID string) (*KeyPair, error) {
	if err := ValidateAccountID(ctx, accountID); err != nil {
		return nil, err
	}
	path := ks.keyPath(networkID, accountID)
	if cached, ok := ks.cache.Get(path); ok {
		return cached.(*KeyPair), nil
	}
	b, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, i18n.NewError(ctx, i18n.MsgKeyNotFound, accountID, ks.dir)
	}
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgKeystoreReadFailed, path)
	}
	schema, err := getKeyFileSchema()
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgKeystoreReadFailed, path)
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(b))
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgKeystoreReadFailed, path)
	}
	if !res.Valid() {
		errStrings := make([]string, len(res.Errors()))
		for i, e := range res.Errors() {
			errStrings[i] = e.String()
		}
		return nil, i18n.NewError(ctx, i18n.MsgInvalidKeyFile, path, strings.Join(errStrings, ","))
	}
	var kf keyFile
	_ = json.Unmarshal(b, &kf)
	kp, err := ParseKeyPair(ctx, kf.PrivateKey)
	if err != nil {
		return nil, err
	}
	if kf.PublicKey != "" && kf.PublicKey != kp.PublicKey().String() {
		return nil, i18n.NewError(ctx, i18n.MsgInvalidKeyFile, path, "public_key does not match private_key")
	}
	ks.cache.Add(path, kp)
	return kp, nil
}

func (ks *FileKeyStore) SetKey(ctx context.Context, networkID, accountID string, kp *KeyPair) error {
	if err := ValidateAccountID(ctx, accountID); err != nil {
		return err
	}
	path := ks.keyPath(networkID, accountID)
	b, _ := json.Marshal(&keyFile{
		AccountID:  accountID,
		PublicKey:  kp.PublicKey().String(),
		PrivateKey: kp.String(),
	})
	err := os.MkdirAll(filepath.Dir(path), 0700)
	if err == nil {
		err = ioutil.WriteFile(path, b, 0600)
	}
	if err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgKeystoreWriteFailed, path)
	}
	log.L(ctx).Infof("Stored key %s for %s in %s", kp.PublicKey(), accountID, path)
	ks.cache.Add(path, kp)
	return nil
}
