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
	"github.com/spf13/cobra"
)

var statusOutput string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Shows what is deployed",
	Long:  "Reads the state of the NFT, fungible token and market contracts without submitting any transaction",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkOutputFormat(statusOutput); err != nil {
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
		dp, err := deployer.NewDeployer(ctx, conn, nil, mm)
		if err != nil {
			return err
		}
		s, err := dp.Status(ctx)
		if err != nil {
			return err
		}
		return printOutput(cmd, statusOutput, s)
	},
}

func init() {
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "yaml", "output format (\"yaml\"|\"json\")")
	rootCmd.AddCommand(statusCmd)
}
