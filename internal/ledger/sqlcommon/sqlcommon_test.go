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

package sqlcommon

import (
	"context"
	"fmt"
	"testing"

	"github.com/kaleido-io/nftmarket/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestInitSQLCommonMissingOptions(t *testing.T) {
	mp := newMockProvider()
	mp.noPlaceholder = true
	err := mp.Init(context.Background(), mp, mp.prefix)
	assert.Regexp(t, "NM10160", err)
}

func TestInitSQLCommonOpenFailed(t *testing.T) {
	mp := newMockProvider()
	mp.openError = fmt.Errorf("pop")
	err := mp.Init(context.Background(), mp, mp.prefix)
	assert.Regexp(t, "NM10160.*pop", err)
}

func TestInitSQLCommonMigrationDriverFailed(t *testing.T) {
	mp := newMockProvider()
	config.Set(config.LedgerMigrationsAuto, true)
	mp.getMigrationDriverError = fmt.Errorf("pop")
	err := mp.Init(context.Background(), mp, mp.prefix)
	assert.Regexp(t, "NM10161.*pop", err)
}

func TestInitSQLCommonMaxConns(t *testing.T) {
	mp := newMockProvider()
	config.Set(config.LedgerMaxConns, 5)
	err := mp.Init(context.Background(), mp, mp.prefix)
	assert.NoError(t, err)
	assert.Equal(t, 5, mp.DB().Stats().MaxOpenConnections)
}

func TestMigrationsIdempotent(t *testing.T) {
	p := newSQLiteTestProvider(t)
	// a second run finds nothing to apply
	err := p.applyDBMigrations(context.Background(), p)
	assert.NoError(t, err)
}

func TestBeginFail(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin().WillReturnError(fmt.Errorf("pop"))
	_, _, err := s.beginTx(context.Background())
	assert.Regexp(t, "NM10162", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRollbackFailLogged(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(fmt.Errorf("pop"))
	ctx, tx, err := s.beginTx(context.Background())
	assert.NoError(t, err)
	s.rollbackTx(ctx, tx)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseNoDB(t *testing.T) {
	s := &SQLCommon{}
	s.Close()
}
