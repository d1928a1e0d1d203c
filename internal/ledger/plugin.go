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

// Package ledger records deployment runs, and the transactions submitted by each
// step, so the history of what was deployed to a network survives the process.
package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/kaleido-io/nftmarket/internal/config"
	"github.com/kaleido-io/nftmarket/internal/nmtypes"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

type StepStatus string

const (
	StepStatusSucceeded StepStatus = "succeeded"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// Run is one execution of the setup sequence against a network
type Run struct {
	ID         *uuid.UUID      `json:"id"`
	Network    string          `json:"network"`
	ContractID string          `json:"contract"`
	Status     RunStatus       `json:"status"`
	Error      string          `json:"error,omitempty"`
	Created    *nmtypes.NMTime `json:"created"`
	Updated    *nmtypes.NMTime `json:"updated"`
}

// Step is one transaction submitted by a step of a run, or a step that was skipped or failed
// before anything was submitted
type Step struct {
	RunID    *uuid.UUID      `json:"run"`
	Name     string          `json:"name"`
	Receiver string          `json:"receiver,omitempty"`
	Method   string          `json:"method,omitempty"`
	TxHash   string          `json:"txHash,omitempty"`
	Status   StepStatus      `json:"status"`
	Error    string          `json:"error,omitempty"`
	Duration int64           `json:"durationMs"`
	Created  *nmtypes.NMTime `json:"created"`
}

// Plugin is a ledger backed by a particular database
type Plugin interface {
	Name() string

	// Init opens the database, and applies any outstanding migrations
	Init(ctx context.Context, prefix config.Prefix) error

	Close()

	InsertRun(ctx context.Context, run *Run) error

	// UpdateRunStatus fails with a not found error if the run does not exist
	UpdateRunStatus(ctx context.Context, runID *uuid.UUID, status RunStatus, errMsg string) error

	InsertStep(ctx context.Context, step *Step) error

	// GetRunByID returns nil if the run does not exist
	GetRunByID(ctx context.Context, runID *uuid.UUID) (*Run, error)

	// GetRuns returns the most recent runs first
	GetRuns(ctx context.Context, limit uint64) ([]*Run, error)

	// GetSteps returns the steps of a run in the order they were recorded
	GetSteps(ctx context.Context, runID *uuid.UUID) ([]*Step, error)
}
