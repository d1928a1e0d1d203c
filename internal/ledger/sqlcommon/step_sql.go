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
	"github.com/kaleido-io/nftmarket/internal/nmtypes"
)

var (
	stepColumns = []string{
		"run_id",
		"name",
		"receiver",
		"method",
		"tx_hash",
		"status",
		"error",
		"duration",
		"created",
	}
)

func (s *SQLCommon) InsertStep(ctx context.Context, step *ledger.Step) (err error) {
	ctx, tx, err := s.beginTx(ctx)
	if err != nil {
		return err
	}
	defer s.rollbackTx(ctx, tx)

	if step.Created == nil {
		step.Created = nmtypes.Now()
	}
	if err = s.insertTx(ctx, tx,
		sq.Insert("steps").
			Columns(stepColumns...).
			Values(
				step.RunID.String(),
				step.Name,
				step.Receiver,
				step.Method,
				step.TxHash,
				string(step.Status),
				step.Error,
				step.Duration,
				step.Created,
			),
	); err != nil {
		return err
	}

	return s.commitTx(ctx, tx)
}

func (s *SQLCommon) stepResult(ctx context.Context, row *sql.Rows) (*ledger.Step, error) {
	var step ledger.Step
	var runID uuid.UUID
	var status string
	step.Created = &nmtypes.NMTime{}
	err := row.Scan(
		&runID,
		&step.Name,
		&step.Receiver,
		&step.Method,
		&step.TxHash,
		&status,
		&step.Error,
		&step.Duration,
		step.Created,
	)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgDBReadErr, "steps")
	}
	step.RunID = &runID
	step.Status = ledger.StepStatus(status)
	return &step, nil
}

func (s *SQLCommon) GetSteps(ctx context.Context, runID *uuid.UUID) ([]*ledger.Step, error) {
	rows, err := s.query(ctx,
		sq.Select(stepColumns...).
			From("steps").
			Where(sq.Eq{"run_id": runID.String()}).
			OrderBy("seq"),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	steps := []*ledger.Step{}
	for rows.Next() {
		step, err := s.stepResult(ctx, rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}
