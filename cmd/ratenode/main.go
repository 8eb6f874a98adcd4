// Copyright 2025 The cipherrate Authors
// This file is part of the cipherrate library.
//
// The cipherrate library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The cipherrate library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the cipherrate library. If not, see <http://www.gnu.org/licenses/>.

// ratenode runs one scripted encrypted-rating round against an in-process
// vault wired to the mock scheme and oracle: providers submit encrypted
// ratings, the average of the batch is requested, the oracle resolves it,
// and the callback publishes the cleartext average. It demonstrates the
// full protocol without any network surface.
package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/cipherrate/cipherrate/fhe"
	"github.com/cipherrate/cipherrate/internal/config"
	"github.com/cipherrate/cipherrate/ratings"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to TOML configuration file",
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "Log verbosity (0=crit, 3=info, 5=trace)",
		Value: 3,
	}
	ratingsFlag = &cli.Uint64SliceFlag{
		Name:  "ratings",
		Usage: "Plaintext ratings the scripted providers submit",
		Value: cli.NewUint64Slice(4, 2),
	}
)

func main() {
	app := &cli.App{
		Name:   "ratenode",
		Usage:  "run a scripted encrypted-rating round against a mock oracle",
		Flags:  []cli.Flag{configFlag, verbosityFlag, ratingsFlag},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.String(configFlag.Name))
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if ctx.IsSet(verbosityFlag.Name) {
		cfg.Verbosity = ctx.Int(verbosityFlag.Name)
	}
	if cfg.Owner == "" {
		// No config: run with a throwaway owner so the demo works out of
		// the box.
		cfg.Owner = "0x00000000000000000000000000000000000000a1"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	handler := log.NewTerminalHandlerWithLevel(os.Stderr, log.FromLegacyLevel(cfg.Verbosity), false)
	log.SetDefault(log.NewLogger(handler))

	scheme := fhe.NewMockScheme()
	oracle, err := fhe.NewMockOracle(scheme)
	if err != nil {
		return err
	}

	owner := cfg.OwnerAddress()
	identity := crypto.CreateAddress(owner, 0)
	vault, err := ratings.NewVault(owner, identity, scheme, oracle, &ratings.VaultConfig{
		CooldownSeconds: cfg.CooldownSeconds,
	})
	if err != nil {
		return err
	}

	events := make(chan ratings.Event, 64)
	sub := vault.SubscribeEvents(events)
	defer sub.Unsubscribe()

	providers := cfg.ProviderAddresses()
	values := ctx.Uint64Slice(ratingsFlag.Name)
	for len(providers) < len(values) {
		// Script more providers than configured if more ratings were
		// asked for; each submission needs a distinct address anyway
		// because of the per-address cooldown.
		providers = append(providers, crypto.CreateAddress(owner, uint64(len(providers)+1)))
	}
	for _, p := range providers {
		if err := vault.AddProvider(owner, p); err != nil {
			return err
		}
	}

	batchID := vault.CurrentBatchID()
	for i, val := range values {
		if err := vault.SubmitReview(providers[i], batchID, scheme.Encrypt(val)); err != nil {
			return err
		}
	}

	reqID, err := vault.RequestAverageDecryption(owner, batchID)
	if err != nil {
		return err
	}
	cleartext, proof, err := oracle.Resolve(reqID)
	if err != nil {
		return err
	}
	if err := vault.OnDecryptionCallback(reqID, cleartext, proof); err != nil {
		return err
	}

	drain(events)
	req, err := vault.Request(reqID)
	if err != nil {
		return err
	}
	log.Info("Round finished", "batch", req.BatchID, "request", reqID, "consumed", req.Consumed,
		"events", len(vault.Events()))
	return nil
}

func drain(events chan ratings.Event) {
	for {
		select {
		case ev := <-events:
			log.Info("Event", "kind", ev.Kind, "batch", ev.BatchID, "average", ev.Average)
		default:
			return
		}
	}
}
