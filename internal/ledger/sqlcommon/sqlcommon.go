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
	"embed"

	sq "github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/kaleido-io/nftmarket/internal/config"
	"github.com/kaleido-io/nftmarket/internal/i18n"
	"github.com/kaleido-io/nftmarket/internal/log"
	"github.com/kaleido-io/nftmarket/internal/nmtypes"
)

const (
	// LedgerConfURL is the datasource connection URL string
	LedgerConfURL = "url"
	// LedgerConfMaxConnections is the maximum connections to the database
	LedgerConfMaxConnections = "maxConns"
	// LedgerConfMigrationsAuto applies the embedded migrations on Init
	LedgerConfMigrationsAuto = "migrations.auto"
)

//go:embed migrations
var migrations embed.FS

type SQLCommon struct {
	db       *sql.DB
	provider Provider
	features SQLFeatures
}

type txWrapper struct {
	sqlTX *sql.Tx
}

func (s *SQLCommon) Init(ctx context.Context, provider Provider, prefix config.Prefix) (err error) {
	s.provider = provider
	if s.provider == nil || s.provider.Features().PlaceholderFormat == nil {
		log.L(ctx).Errorf("Invalid SQL options from provider '%T'", s.provider)
		return i18n.NewError(ctx, i18n.MsgDBInitFailed)
	}
	s.features = s.provider.Features()

	if s.db, err = provider.Open(prefix.GetString(LedgerConfURL)); err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgDBInitFailed)
	}
	connLimit := prefix.GetInt(LedgerConfMaxConnections)
	if connLimit > 0 {
		s.db.SetMaxOpenConns(connLimit)
	}

	if prefix.GetBool(LedgerConfMigrationsAuto) {
		if err = s.applyDBMigrations(ctx, provider); err != nil {
			return err
		}
	}

	log.L(ctx).Debugf("Ledger '%s' ready", provider.Name())
	return nil
}

func (s *SQLCommon) applyDBMigrations(ctx context.Context, provider Provider) error {
	driver, err := provider.GetMigrationDriver(s.db)
	if err == nil {
		var src source.Driver
		src, err = iofs.New(migrations, "migrations/"+provider.MigrationsDir())
		if err == nil {
			var m *migrate.Migrate
			m, err = migrate.NewWithInstance("iofs", src, provider.MigrationsDir(), driver)
			if err == nil {
				err = m.Up()
			}
		}
	}
	if err != nil && err != migrate.ErrNoChange {
		return i18n.WrapError(ctx, err, i18n.MsgDBMigrationFailed)
	}
	return nil
}

func (s *SQLCommon) beginTx(ctx context.Context) (context.Context, *txWrapper, error) {
	l := log.L(ctx).WithField("dbtx", nmtypes.ShortID())
	ctx = log.WithLogger(ctx, l)
	l.Debugf("SQL-> begin")
	sqlTX, err := s.db.Begin()
	if err != nil {
		return ctx, nil, i18n.WrapError(ctx, err, i18n.MsgDBBeginFailed)
	}
	l.Debugf("SQL<- begin")
	return ctx, &txWrapper{sqlTX: sqlTX}, nil
}

func (s *SQLCommon) query(ctx context.Context, q sq.SelectBuilder) (*sql.Rows, error) {
	l := log.L(ctx)
	sqlQuery, args, err := q.PlaceholderFormat(s.features.PlaceholderFormat).ToSql()
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgDBQueryBuildFailed)
	}
	l.Debugf(`SQL-> query: %s`, sqlQuery)
	l.Tracef(`SQL-> query args: %+v`, args)
	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		l.Errorf(`SQL query failed: %s sql=[ %s ]`, err, sqlQuery)
		return nil, i18n.WrapError(ctx, err, i18n.MsgDBQueryFailed)
	}
	l.Debugf(`SQL<- query`)
	return rows, nil
}

func (s *SQLCommon) insertTx(ctx context.Context, tx *txWrapper, q sq.InsertBuilder) error {
	l := log.L(ctx)
	sqlQuery, args, err := q.PlaceholderFormat(s.features.PlaceholderFormat).ToSql()
	if err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgDBQueryBuildFailed)
	}
	l.Debugf(`SQL-> insert: %s`, sqlQuery)
	l.Tracef(`SQL-> insert args: %+v`, args)
	res, err := tx.sqlTX.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		l.Errorf(`SQL insert failed: %s sql=[ %s ]`, err, sqlQuery)
		return i18n.WrapError(ctx, err, i18n.MsgDBInsertFailed)
	}
	ra, _ := res.RowsAffected()
	l.Debugf(`SQL<- insert affected=%d`, ra)
	return nil
}

func (s *SQLCommon) updateTx(ctx context.Context, tx *txWrapper, q sq.UpdateBuilder) (int64, error) {
	l := log.L(ctx)
	sqlQuery, args, err := q.PlaceholderFormat(s.features.PlaceholderFormat).ToSql()
	if err != nil {
		return -1, i18n.WrapError(ctx, err, i18n.MsgDBQueryBuildFailed)
	}
	l.Debugf(`SQL-> update: %s`, sqlQuery)
	l.Tracef(`SQL-> update args: %+v`, args)
	res, err := tx.sqlTX.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		l.Errorf(`SQL update failed: %s sql=[ %s ]`, err, sqlQuery)
		return -1, i18n.WrapError(ctx, err, i18n.MsgDBUpdateFailed)
	}
	ra, _ := res.RowsAffected()
	l.Debugf(`SQL<- update affected=%d`, ra)
	return ra, nil
}

// rollbackTx can be safely called as a defer, as it is a no-op if the transaction is complete
func (s *SQLCommon) rollbackTx(ctx context.Context, tx *txWrapper) {
	err := tx.sqlTX.Rollback()
	if err == nil {
		log.L(ctx).Warnf("SQL! transaction rollback")
	}
	if err != nil && err != sql.ErrTxDone {
		log.L(ctx).Errorf(`SQL rollback failed: %s`, err)
	}
}

func (s *SQLCommon) commitTx(ctx context.Context, tx *txWrapper) error {
	l := log.L(ctx)
	l.Debugf(`SQL-> commit`)
	if err := tx.sqlTX.Commit(); err != nil {
		l.Errorf(`SQL commit failed: %s`, err)
		return i18n.WrapError(ctx, err, i18n.MsgDBCommitFailed)
	}
	l.Debugf(`SQL<- commit`)
	return nil
}

func (s *SQLCommon) DB() *sql.DB {
	return s.db
}

func (s *SQLCommon) Close() {
	if s.db != nil {
		err := s.db.Close()
		log.L(context.Background()).Debugf("Ledger closed (err=%v)", err)
	}
}
