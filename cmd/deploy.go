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
	"github.com/kaleido-io/nftmarket/internal/deployer"
	"github.com/kaleido-io/nftmarket/internal/log"
	"github.com/spf13/cobra"
)

var deployOutput string

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploys and wires the contracts",
	Long: `Deploys the NFT contract, creates the test users, sets the royalty and token types,
then deploys the fungible token and market and registers their storage.
Contracts that are already deployed are reused.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkOutputFormat(deployOutput); err != nil {
			return err
		}
		ctx, cancel, err := initEnv()
		if err != nil {
			return err
		}
		defer cancel()

		conn, mm, err := newConnection(ctx)
		if err != nil {
			return err
		}
		lp, err := getLedger(ctx)
		if err != nil {
			return err
		}
		if lp != nil {
			defer func() {
				// cancel first, so nothing is still querying when the pool closes
				cancel()
				lp.Close()
			}()
		}
		dp, err := deployer.NewDeployer(ctx, conn, lp, mm)
		if err != nil {
			return err
		}
		d, err := dp.Run(ctx)
		if err != nil {
			return err
		}
		log.L(ctx).Infof("Run %s complete", d.RunID)
		return printOutput(cmd, deployOutput, d)
	},
}

func init() {
	deployCmd.Flags().StringVarP(&deployOutput, "output", "o", "yaml", "output format (\"yaml\"|\"json\")")
	rootCmd.AddCommand(deployCmd)
}
