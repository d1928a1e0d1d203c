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
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/kaleido-io/nftmarket/internal/config"
	"github.com/stretchr/testify/require"

	// Import the pure Go SQLite driver
	_ "modernc.org/sqlite"
)

// mockProvider uses the datadog mocking framework
type mockProvider struct {
	SQLCommon
	prefix config.Prefix

	mockDB *sql.DB
	mdb    sqlmock.Sqlmock

	noPlaceholder           bool
	openError               error
	getMigrationDriverError error
}

func newMockProvider() *mockProvider {
	config.Reset()
	config.Set(config.LedgerMigrationsAuto, false)
	mp := &mockProvider{
		prefix: config.NewPluginConfig("ledger"),
	}
	mp.mockDB, mp.mdb, _ = sqlmock.New()
	return mp
}

// init is a convenience to init for tests that aren't testing init itself
func (mp *mockProvider) init() (*mockProvider, sqlmock.Sqlmock) {
	_ = mp.Init(context.Background(), mp, mp.prefix)
	return mp, mp.mdb
}

func (mp *mockProvider) Name() string {
	return "mockdb"
}

func (mp *mockProvider) MigrationsDir() string {
	return "sqlite"
}

func (mp *mockProvider) Features() SQLFeatures {
	if mp.noPlaceholder {
		return SQLFeatures{}
	}
	return DefaultSQLProviderFeatures()
}

func (mp *mockProvider) Open(url string) (*sql.DB, error) {
	return mp.mockDB, mp.openError
}

func (mp *mockProvider) GetMigrationDriver(db *sql.DB) (migratedb.Driver, error) {
	return nil, mp.getMigrationDriverError
}

// sqliteTestProvider runs the real migrations against a file in a temporary directory
type sqliteTestProvider struct {
	SQLCommon
}

func newSQLiteTestProvider(t *testing.T) *sqliteTestProvider {
	config.Reset()
	config.Set(config.LedgerURL, filepath.Join(t.TempDir(), "ledger.db"))
	p := &sqliteTestProvider{}
	err := p.Init(context.Background(), p, config.NewPluginConfig("ledger"))
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func (p *sqliteTestProvider) Name() string {
	return "sqlite"
}

func (p *sqliteTestProvider) MigrationsDir() string {
	return "sqlite"
}

func (p *sqliteTestProvider) Features() SQLFeatures {
	return DefaultSQLProviderFeatures()
}

func (p *sqliteTestProvider) Open(url string) (*sql.DB, error) {
	return sql.Open("sqlite", url)
}

func (p *sqliteTestProvider) GetMigrationDriver(db *sql.DB) (migratedb.Driver, error) {
	return migratesqlite.WithInstance(db, &migratesqlite.Config{})
}
