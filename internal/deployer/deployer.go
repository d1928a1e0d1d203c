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

// Package deployer runs the setup sequence that deploys and wires the NFT, fungible
// token and market contracts, recording what it submits in the ledger.
package deployer

import (
	"context"
	"fmt"
	"io/ioutil"
	"sort"
	"sync"
	"time"

	"github.com/docker/go-units"
	"github.com/google/uuid"
	"github.com/kaleido-io/nftmarket/internal/contracts"
	"github.com/kaleido-io/nftmarket/internal/i18n"
	"github.com/kaleido-io/nftmarket/internal/ledger"
	"github.com/kaleido-io/nftmarket/internal/log"
	"github.com/kaleido-io/nftmarket/internal/metrics"
	"github.com/kaleido-io/nftmarket/internal/near"
	"github.com/kaleido-io/nftmarket/internal/nmtypes"
	"golang.org/x/sync/errgroup"
)

const (
	StepInitContract = "initContract"
	StepUsers        = "users"
	StepRoyalty      = "royalty"
	StepTokenTypes   = "tokenTypes"
	StepFungible     = "fungible"
	StepMarket       = "market"
	StepConfirm      = "confirm"
)

const nftMetadataSpec = "nft-1.0.0"

// Deployment is the outcome of a run of the setup sequence
type Deployment struct {
	RunID               *uuid.UUID          `json:"runId"`
	Network             string              `json:"network"`
	ContractID          string              `json:"contract"`
	ContractDeployed    bool                `json:"contractDeployed"`
	Users               []string            `json:"users"`
	ContractRoyalty     uint32              `json:"contractRoyalty"`
	TokenTypes          map[string]string   `json:"tokenTypes"`
	FungibleID          string              `json:"fungible"`
	FungibleDeployed    bool                `json:"fungibleDeployed"`
	StorageMinimum      *near.Balance       `json:"storageMinimum"`
	StorageAccounts     []string            `json:"storageAccounts"`
	MarketID            string              `json:"market"`
	MarketDeployed      bool                `json:"marketDeployed"`
	SupportedFtTokenIDs []string            `json:"supportedFtTokenIds"`
	AddedFtTokenIDs     []bool              `json:"addedFtTokenIds"`
	MarketStorageAmount *near.Balance       `json:"marketStorageAmount"`
	Transactions        map[string][]string `json:"transactions"`
}

type Deployer struct {
	conn    *near.Connection
	ledger  ledger.Plugin
	metrics metrics.Manager
	opts    *options
	now     func() time.Time
}

// run is the state shared by the steps of one Run
type run struct {
	id        *uuid.UUID
	d         *Deployment
	mux       sync.Mutex
	owner     *near.Account
	fungible  *near.Account
	market    *near.Account
	nft       *contracts.NFT
	ft        *contracts.FT
	mkt       *contracts.Market
	startedAt time.Time
}

// NewDeployer validates the configuration. The ledger is optional.
func NewDeployer(ctx context.Context, conn *near.Connection, lp ledger.Plugin, mm metrics.Manager) (*Deployer, error) {
	opts, err := readOptions(ctx)
	if err != nil {
		return nil, err
	}
	return &Deployer{
		conn:    conn,
		ledger:  lp,
		metrics: mm,
		opts:    opts,
		now:     time.Now,
	}, nil
}

// Run performs every step in order, stopping at the first failure
func (dp *Deployer) Run(ctx context.Context) (*Deployment, error) {
	start := time.Now()
	r := &run{
		id:        nmtypes.NewUUID(),
		startedAt: dp.now(),
		nft:       contracts.NewNFT(dp.opts.ContractID),
		ft:        contracts.NewFT(dp.opts.FungibleID),
		mkt:       contracts.NewMarket(dp.opts.MarketID),
	}
	r.d = &Deployment{
		RunID:           r.id,
		Network:         dp.conn.NetworkID(),
		ContractID:      dp.opts.ContractID,
		FungibleID:      dp.opts.FungibleID,
		MarketID:        dp.opts.MarketID,
		StorageAccounts: dp.opts.FungibleStorageAccounts,
		TokenTypes:      map[string]string{},
		Transactions:    map[string][]string{},
	}
	ctx = log.WithLogField(ctx, "run", r.id.String())
	ctx, cancel := context.WithTimeout(ctx, dp.opts.Timeout)
	defer cancel()

	log.L(ctx).Infof("Deploying to '%s' on network '%s'", dp.opts.ContractID, r.d.Network)
	dp.ledgerWrite(ctx, func(lctx context.Context) error {
		return dp.ledger.InsertRun(lctx, &ledger.Run{
			ID:         r.id,
			Network:    r.d.Network,
			ContractID: dp.opts.ContractID,
			Status:     ledger.RunStatusRunning,
		})
	})

	steps := []struct {
		name string
		fn   func(ctx context.Context, r *run) error
	}{
		{StepInitContract, dp.initContract},
		{StepUsers, dp.createUsers},
		{StepRoyalty, dp.setRoyalty},
		{StepTokenTypes, dp.addTokenTypes},
		{StepFungible, dp.deployFungible},
		{StepMarket, dp.deployMarket},
		{StepConfirm, dp.confirm},
	}
	for _, step := range steps {
		if err := dp.runStep(ctx, r, step.name, step.fn); err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				err = i18n.WrapError(ctx, err, i18n.MsgDeployTimeout, dp.opts.Timeout)
			}
			dp.ledgerWrite(ctx, func(lctx context.Context) error {
				return dp.ledger.UpdateRunStatus(lctx, r.id, ledger.RunStatusFailed, err.Error())
			})
			return r.d, err
		}
	}

	dp.ledgerWrite(ctx, func(lctx context.Context) error {
		return dp.ledger.UpdateRunStatus(lctx, r.id, ledger.RunStatusSucceeded, "")
	})
	log.L(ctx).Infof("Deployment complete in %.2fs", time.Since(start).Seconds())
	return r.d, nil
}

func (dp *Deployer) runStep(ctx context.Context, r *run, name string, fn func(ctx context.Context, r *run) error) error {
	ctx = log.WithLogField(ctx, "step", name)
	start := time.Now()
	log.L(ctx).Infof("==> %s", name)
	err := fn(ctx, r)
	status := ledger.StepStatusSucceeded
	if err != nil {
		status = ledger.StepStatusFailed
		log.L(ctx).Errorf("<== %s failed: %s", name, err)
	} else {
		log.L(ctx).Infof("<== %s (%.2fs)", name, time.Since(start).Seconds())
	}
	dp.metrics.DeployStep(name, string(status), time.Since(start))
	if err != nil {
		dp.recordStep(ctx, r, &ledger.Step{Name: name, Status: status, Error: err.Error(), Duration: time.Since(start).Milliseconds()})
		return i18n.WrapError(ctx, err, i18n.MsgDeployStepFailed, name)
	}
	return nil
}

// ledgerWrite logs rather than returns ledger failures, as the on-chain state is the
// source of truth and a deployment must not be abandoned half way for a local record.
// The write runs outside the run deadline, so a timed out run is still recorded.
func (dp *Deployer) ledgerWrite(ctx context.Context, fn func(lctx context.Context) error) {
	if dp.ledger == nil {
		return
	}
	lctx := log.WithLogger(context.Background(), log.L(ctx))
	if err := fn(lctx); err != nil {
		log.L(ctx).Warnf("Failed to update ledger: %s", err)
	}
}

func (dp *Deployer) recordStep(ctx context.Context, r *run, step *ledger.Step) {
	step.RunID = r.id
	dp.ledgerWrite(ctx, func(lctx context.Context) error {
		return dp.ledger.InsertStep(lctx, step)
	})
}

// submitted records a transaction against the step, whether or not it succeeded
func (dp *Deployer) submitted(ctx context.Context, r *run, stepName, receiver, method string, start time.Time, outcome *near.FinalExecutionOutcome, err error) error {
	step := &ledger.Step{
		Name:     stepName,
		Receiver: receiver,
		Method:   method,
		Status:   ledger.StepStatusSucceeded,
		Duration: time.Since(start).Milliseconds(),
	}
	if outcome != nil {
		step.TxHash = outcome.Transaction.Hash
		r.mux.Lock()
		r.d.Transactions[stepName] = append(r.d.Transactions[stepName], outcome.Transaction.Hash)
		r.mux.Unlock()
	}
	if err != nil {
		step.Status = ledger.StepStatusFailed
		step.Error = err.Error()
	}
	dp.recordStep(ctx, r, step)
	return err
}

func (dp *Deployer) readArtifact(ctx context.Context, path string) ([]byte, error) {
	code, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgArtifactReadFailed, path)
	}
	log.L(ctx).Infof("Read %s (%s)", path, units.HumanSize(float64(len(code))))
	return code, nil
}

// loadKey finds the key for an account in the key store, falling back to a configured secret
// which is then written to the key store
func (dp *Deployer) loadKey(ctx context.Context, accountID, secret string) (*near.KeyPair, error) {
	kp, err := dp.conn.KeyStore().GetKey(ctx, dp.conn.NetworkID(), accountID)
	if err == nil || secret == "" || !i18n.HasCode(err, i18n.MsgKeyNotFound) {
		return kp, err
	}
	if kp, err = near.ParseKeyPair(ctx, secret); err != nil {
		return nil, err
	}
	return kp, dp.conn.KeyStore().SetKey(ctx, dp.conn.NetworkID(), accountID, kp)
}

func (dp *Deployer) initContract(ctx context.Context, r *run) error {
	kp, err := dp.loadKey(ctx, dp.opts.ContractID, dp.opts.ContractSecret)
	if err != nil {
		return err
	}
	r.owner = dp.conn.Account(dp.opts.ContractID, kp)
	state, err := r.owner.State(ctx)
	if err != nil {
		return err
	}
	log.L(ctx).Infof("Contract '%s' balance %s NEAR code_hash %s", dp.opts.ContractID, near.FormatNearAmount(state.Amount, 4), state.CodeHash)
	if state.HasCode() {
		return nil
	}
	code, err := dp.readArtifact(ctx, dp.opts.ContractWasm)
	if err != nil {
		return err
	}
	start := time.Now()
	outcome, err := r.nft.New(ctx, r.owner, code, &contracts.NFTInitArgs{
		OwnerID: dp.opts.ContractID,
		Metadata: contracts.NFTMetadata{
			Spec:   nftMetadataSpec,
			Name:   dp.opts.ContractName,
			Symbol: dp.opts.ContractSymbol,
		},
		SupplyCapByType: map[string]string{},
		Locked:          dp.opts.TokenTypesLocked,
	})
	if err = dp.submitted(ctx, r, StepInitContract, dp.opts.ContractID, "new", start, outcome, err); err != nil {
		return err
	}
	r.d.ContractDeployed = true
	_, err = dp.conn.WaitForCode(ctx, dp.opts.ContractID)
	return err
}

// getOrCreateAccount reuses an account whose key we hold, or creates it as a sub-account of the owner
func (dp *Deployer) getOrCreateAccount(ctx context.Context, r *run, stepName, accountID, secret string, amount *near.Balance) (*near.Account, error) {
	kp, err := dp.loadKey(ctx, accountID, secret)
	if err != nil && !i18n.HasCode(err, i18n.MsgKeyNotFound) {
		return nil, err
	}
	if kp != nil {
		if _, err := dp.conn.ViewAccount(ctx, accountID); err == nil {
			log.L(ctx).Infof("Using existing account '%s'", accountID)
			return dp.conn.Account(accountID, kp), nil
		} else if !i18n.HasCode(err, i18n.MsgUnknownAccount) {
			return nil, err
		}
	} else if kp, err = near.GenerateKeyPair(); err != nil {
		return nil, err
	}

	start := time.Now()
	outcome, err := r.owner.CreateAccount(ctx, accountID, kp.PublicKey(), amount)
	if err = dp.submitted(ctx, r, stepName, accountID, "create_account", start, outcome, err); err != nil {
		return nil, err
	}
	if err := dp.conn.KeyStore().SetKey(ctx, dp.conn.NetworkID(), accountID, kp); err != nil {
		return nil, err
	}
	if _, err := dp.conn.WaitForAccount(ctx, accountID); err != nil {
		return nil, err
	}
	log.L(ctx).Infof("Created account '%s' with %s NEAR", accountID, near.FormatNearAmount(amount, 2))
	return dp.conn.Account(accountID, kp), nil
}

func (dp *Deployer) timestamp(r *run) string {
	return fmt.Sprintf("%d", r.startedAt.UnixNano()/int64(time.Millisecond))
}

func (dp *Deployer) createUsers(ctx context.Context, r *run) error {
	for _, name := range dp.opts.Users {
		accountID := fmt.Sprintf("%s-%s.%s", name, dp.timestamp(r), dp.opts.ContractID)
		if _, err := dp.getOrCreateAccount(ctx, r, StepUsers, accountID, "", dp.opts.UserBalance); err != nil {
			return err
		}
		r.d.Users = append(r.d.Users, accountID)
	}
	return nil
}

func (dp *Deployer) setRoyalty(ctx context.Context, r *run) error {
	start := time.Now()
	outcome, err := r.nft.SetContractRoyalty(ctx, r.owner, dp.opts.ContractRoyalty)
	if err = dp.submitted(ctx, r, StepRoyalty, dp.opts.ContractID, "set_contract_royalty", start, outcome, err); err != nil {
		return err
	}
	r.d.ContractRoyalty = dp.opts.ContractRoyalty
	return nil
}

func (dp *Deployer) addTokenTypes(ctx context.Context, r *run) error {
	suffix := dp.opts.TokenTypesSuffix
	if suffix == "" {
		suffix = dp.timestamp(r)
	}
	caps := make(map[string]string, len(dp.opts.TokenTypeCaps))
	for _, tc := range dp.opts.TokenTypeCaps {
		caps[tc.Name+":"+suffix] = tc.Cap
	}
	start := time.Now()
	outcome, err := r.nft.AddTokenTypes(ctx, r.owner, caps, dp.opts.TokenTypesLocked)
	if err = dp.submitted(ctx, r, StepTokenTypes, dp.opts.ContractID, "add_token_types", start, outcome, err); err != nil {
		return err
	}
	r.d.TokenTypes = caps
	return nil
}

func (dp *Deployer) deployFungible(ctx context.Context, r *run) (err error) {
	if r.fungible, err = dp.getOrCreateAccount(ctx, r, StepFungible, dp.opts.FungibleID, dp.opts.GuestsSecret, dp.opts.ContractBalance); err != nil {
		return err
	}
	state, err := r.fungible.State(ctx)
	if err != nil {
		return err
	}
	if state.HasCode() {
		log.L(ctx).Infof("Fungible token already deployed to '%s'", dp.opts.FungibleID)
		dp.recordStep(ctx, r, &ledger.Step{Name: StepFungible, Receiver: dp.opts.FungibleID, Method: "new", Status: ledger.StepStatusSkipped})
		r.d.StorageMinimum, err = r.ft.StorageMinimumBalance(ctx, r.owner)
		return err
	}

	code, err := dp.readArtifact(ctx, dp.opts.FungibleWasm)
	if err != nil {
		return err
	}
	start := time.Now()
	outcome, err := r.ft.New(ctx, r.fungible, code, &contracts.FTInitArgs{
		OwnerID:       dp.opts.ContractID,
		TotalSupply:   dp.opts.FungibleTotalSupply,
		Name:          dp.opts.FungibleName,
		Symbol:        dp.opts.FungibleSymbol,
		Version:       dp.opts.FungibleVersion,
		Reference:     dp.opts.FungibleReference,
		ReferenceHash: dp.opts.FungibleReferenceHash,
		Decimals:      dp.opts.FungibleDecimals,
	})
	if err = dp.submitted(ctx, r, StepFungible, dp.opts.FungibleID, "new", start, outcome, err); err != nil {
		return err
	}
	r.d.FungibleDeployed = true

	if r.d.StorageMinimum, err = r.ft.StorageMinimumBalance(ctx, r.owner); err != nil {
		return err
	}
	log.L(ctx).Infof("Storage minimum %s NEAR", near.FormatNearAmount(r.d.StorageMinimum, 5))

	// one registration per royalty receiver, submitted together and awaited jointly
	g, gctx := errgroup.WithContext(ctx)
	for _, accountID := range dp.opts.FungibleStorageAccounts {
		accountID := accountID
		g.Go(func() error {
			start := time.Now()
			outcome, err := r.ft.StorageDeposit(gctx, r.fungible, accountID, r.d.StorageMinimum)
			return dp.submitted(gctx, r, StepFungible, dp.opts.FungibleID, "storage_deposit", start, outcome, err)
		})
	}
	return g.Wait()
}

func (dp *Deployer) deployMarket(ctx context.Context, r *run) (err error) {
	if r.market, err = dp.getOrCreateAccount(ctx, r, StepMarket, dp.opts.MarketID, dp.opts.GuestsSecret, dp.opts.ContractBalance); err != nil {
		return err
	}
	state, err := r.market.State(ctx)
	if err != nil {
		return err
	}
	if state.HasCode() {
		log.L(ctx).Infof("Market already deployed to '%s'", dp.opts.MarketID)
		dp.recordStep(ctx, r, &ledger.Step{Name: StepMarket, Receiver: dp.opts.MarketID, Method: "new", Status: ledger.StepStatusSkipped})
		return nil
	}

	code, err := dp.readArtifact(ctx, dp.opts.MarketWasm)
	if err != nil {
		return err
	}
	ftTokenIDs := []string{dp.opts.FungibleID}
	start := time.Now()
	outcome, err := r.mkt.New(ctx, r.market, code, &contracts.MarketInitArgs{
		OwnerID:          dp.opts.ContractID,
		FtTokenIDs:       ftTokenIDs,
		BidHistoryLength: dp.opts.MarketBidHistoryLength,
	})
	if err = dp.submitted(ctx, r, StepMarket, dp.opts.MarketID, "new", start, outcome, err); err != nil {
		return err
	}
	r.d.MarketDeployed = true

	// the market must hold storage on every token it accepts bids in
	for _, ftTokenID := range ftTokenIDs {
		ft := contracts.NewFT(ftTokenID)
		deposit, err := ft.StorageMinimumBalance(ctx, r.market)
		if err != nil {
			return err
		}
		start := time.Now()
		outcome, err := ft.StorageDeposit(ctx, r.market, "", deposit)
		if err = dp.submitted(ctx, r, StepMarket, ftTokenID, "storage_deposit", start, outcome, err); err != nil {
			return err
		}
	}
	return nil
}

func (dp *Deployer) confirm(ctx context.Context, r *run) (err error) {
	if r.d.SupportedFtTokenIDs, err = r.mkt.SupportedFtTokenIDs(ctx, r.market); err != nil {
		return err
	}
	sort.Strings(r.d.SupportedFtTokenIDs)
	log.L(ctx).Infof("Market supports %v", r.d.SupportedFtTokenIDs)

	start := time.Now()
	added, outcome, err := r.mkt.AddFtTokenIDs(ctx, r.owner, []string{dp.opts.FungibleID})
	if err = dp.submitted(ctx, r, StepConfirm, dp.opts.MarketID, "add_ft_token_ids", start, outcome, err); err != nil {
		return err
	}
	r.d.AddedFtTokenIDs = added

	if r.d.MarketStorageAmount, err = r.mkt.StorageAmount(ctx, r.owner); err != nil {
		return err
	}
	log.L(ctx).Infof("Market storage %s NEAR per listing", near.FormatNearAmount(r.d.MarketStorageAmount, 5))
	return nil
}
