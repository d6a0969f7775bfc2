package main

import (
	"fmt"

	"github.com/solwall/soldid/internal/chainadapter"
	"github.com/solwall/soldid/internal/config"
	"github.com/solwall/soldid/internal/simchain"
	"github.com/solwall/soldid/internal/wallet"
)

// app bundles the per-invocation collaborators a subcommand needs: the
// wallet directory resolved from -w, SOLDID_CONFIG, or $HOME/.solwall,
// its config, the opened Wallet, and the chain adapter named by that
// config. There is no package-level app: the wallet root is a
// per-process argument, not ambient mutable state.
type app struct {
	cfg   *config.Config
	w     *wallet.Wallet
	chain chainadapter.Adapter
}

func openApp(walletDir string) (*app, error) {
	walletDir, err := config.ResolveWalletDir(walletDir)
	if err != nil {
		return nil, withExit(1, err)
	}

	cfg, err := config.Load(walletDir)
	if err != nil {
		return nil, withExit(1, err)
	}

	w, err := wallet.Open(walletDir)
	if err != nil {
		return nil, withExit(1, err)
	}

	chain, err := simchain.New(cfg.Adapter.URL)
	if err != nil {
		return nil, withExit(1, fmt.Errorf("connect chain adapter: %w", err))
	}

	return &app{cfg: cfg, w: w, chain: chain}, nil
}
