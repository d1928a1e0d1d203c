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

package cmd

import (
	"github.com/google/uuid"
	"github.com/kaleido-io/nftmarket/internal/i18n"
	"github.com/kaleido-io/nftmarket/internal/ledger"
	"github.com/spf13/cobra"
)

var historyOutput string
var historyLimit uint64

type runDetail struct {
	*ledger.Run
	Steps []*ledger.Step `json:"steps"`
}

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Lists previous deployment runs from the ledger",
	Long:  "Lists previous deployment runs, newest first, or shows every transaction of a single run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkOutputFormat(historyOutput); err != nil {
			return err
		}
		ctx, cancel, err := initEnv()
		if err != nil {
			return err
		}
		defer cancel()

		lp, err := getLedger(ctx)
		if err != nil {
			return err
		}
		if lp == nil {
			return i18n.NewError(ctx, i18n.MsgLedgerDisabled)
		}
		defer func() {
			// cancel first, so nothing is still querying when the pool closes
			cancel()
			lp.Close()
		}()

		if len(args) == 0 {
			runs, err := lp.GetRuns(ctx, historyLimit)
			if err != nil {
				return err
			}
			return printOutput(cmd, historyOutput, runs)
		}

		id, err := uuid.Parse(args[0])
		if err != nil {
			return i18n.WrapError(ctx, err, i18n.MsgInvalidRunID, args[0])
		}
		run, err := lp.GetRunByID(ctx, &id)
		if err != nil {
			return err
		}
		if run == nil {
			return i18n.NewError(ctx, i18n.MsgRunNotFound, id)
		}
		steps, err := lp.GetSteps(ctx, &id)
		if err != nil {
			return err
		}
		return printOutput(cmd, historyOutput, &runDetail{Run: run, Steps: steps})
	},
}

func init() {
	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", "yaml", "output format (\"yaml\"|\"json\")")
	historyCmd.Flags().Uint64VarP(&historyLimit, "limit", "n", 20, "maximum number of runs to list (0 for all)")
	rootCmd.AddCommand(historyCmd)
}
