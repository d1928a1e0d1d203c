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

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/kaleido-io/nftmarket/internal/i18n"
	"github.com/kaleido-io/nftmarket/internal/ledger"
	"github.com/kaleido-io/nftmarket/internal/log"
	"github.com/kaleido-io/nftmarket/internal/nmtypes"
)

var (
	runColumns = []string{
		"id",
		"network",
		"contract",
		"status",
		"error",
		"created",
		"updated",
	}
)

func (s *SQLCommon) InsertRun(ctx context.Context, run *ledger.Run) (err error) {
	ctx, tx, err := s.beginTx(ctx)
	if err != nil {
		return err
	}
	defer s.rollbackTx(ctx, tx)

	if run.Created == nil {
		run.Created = nmtypes.Now()
	}
	run.Updated = run.Created
	if err = s.insertTx(ctx, tx,
		sq.Insert("runs").
			Columns(runColumns...).
			Values(
				run.ID.String(),
				run.Network,
				run.ContractID,
				string(run.Status),
				run.Error,
				run.Created,
				run.Updated,
			),
	); err != nil {
		return err
	}

	return s.commitTx(ctx, tx)
}

func (s *SQLCommon) UpdateRunStatus(ctx context.Context, runID *uuid.UUID, status ledger.RunStatus, errMsg string) (err error) {
	ctx, tx, err := s.beginTx(ctx)
	if err != nil {
		return err
	}
	defer s.rollbackTx(ctx, tx)

	updated, err := s.updateTx(ctx, tx,
		sq.Update("runs").
			Set("status", string(status)).
			Set("error", errMsg).
			Set("updated", nmtypes.Now()).
			Where(sq.Eq{"id": runID.String()}),
	)
	if err != nil {
		return err
	}
	if updated < 1 {
		return i18n.NewError(ctx, i18n.MsgRunNotFound, runID)
	}

	return s.commitTx(ctx, tx)
}

func (s *SQLCommon) runResult(ctx context.Context, row *sql.Rows) (*ledger.Run, error) {
	var run ledger.Run
	var id uuid.UUID
	var status string
	run.Created = &nmtypes.NMTime{}
	run.Updated = &nmtypes.NMTime{}
	err := row.Scan(
		&id,
		&run.Network,
		&run.ContractID,
		&status,
		&run.Error,
		run.Created,
		run.Updated,
	)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgDBReadErr, "runs")
	}
	run.ID = &id
	run.Status = ledger.RunStatus(status)
	return &run, nil
}

func (s *SQLCommon) GetRunByID(ctx context.Context, runID *uuid.UUID) (*ledger.Run, error) {
	rows, err := s.query(ctx,
		sq.Select(runColumns...).
			From("runs").
			Where(sq.Eq{"id": runID.String()}),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		log.L(ctx).Debugf("Run '%s' not found", runID)
		return nil, nil
	}
	return s.runResult(ctx, rows)
}

func (s *SQLCommon) GetRuns(ctx context.Context, limit uint64) ([]*ledger.Run, error) {
	q := sq.Select(runColumns...).From("runs").OrderBy("seq DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	rows, err := s.query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []*ledger.Run{}
	for rows.Next() {
		run, err := s.runResult(ctx, rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}
