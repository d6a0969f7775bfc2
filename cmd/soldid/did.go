package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solwall/soldid/internal/keys"
	"github.com/solwall/soldid/internal/wallet"
	"github.com/solwall/soldid/internal/walletkeys"
)

func didListCmd(walletDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "did-list",
		Short: "List every DID in the wallet with its latest ledger state",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*walletDir)
			if err != nil {
				return err
			}
			ctx := context.Background()

			for _, prefix := range a.w.Prefixes() {
				k, err := a.w.KeysForPrefix(prefix)
				if err != nil {
					return withExit(1, err)
				}
				rec, err := a.chain.Fetch(ctx, prefix)
				if err != nil {
					return withExit(1, fmt.Errorf("fetch ledger state for %s: %w", prefix, err))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\n", k.Name, k.DIDString(), k.Account, rec.State, k.Prefix)
			}
			return nil
		},
	}
}

func didCreateCmd(walletDir *string) *cobra.Command {
	var (
		name      string
		keyCount  int
		threshold int
	)

	cmd := &cobra.Command{
		Use:   "did-create",
		Short: "Incept a new Pasta DID",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*walletDir)
			if err != nil {
				return err
			}

			ks, err := keys.NewFor(keys.Pasta, keyCount)
			if err != nil {
				return withExit(1, err)
			}

			txSig, prefix, digest, err := a.w.NewDID(context.Background(), name, a.chain, ks, threshold)
			if err != nil {
				if errors.Is(err, wallet.ErrKeysNameExists) {
					return withExit(2, err)
				}
				return withExit(1, err)
			}
			k, err := a.w.KeysForName(name)
			if err != nil {
				return withExit(1, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "incepted %s\ndid:     %s\nprefix:  %s\ndigest:  %s\ntx:      %s\n", name, k.DIDString(), prefix, digest, txSig)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "DID name (required)")
	cmd.Flags().IntVarP(&keyCount, "keys", "k", 2, "number of current/next keypairs")
	cmd.Flags().IntVarP(&threshold, "threshold", "t", 1, "signing threshold")
	cmd.MarkFlagRequired("name")
	return cmd
}

// barrenFor returns an empty KeySet of the type recorded by name's
// most recent ChainEvent, the shape RotateKeys/DecommissionKeys expect;
// they take the key type from it and hydrate a separate key set from
// wallet-stored private key material.
func barrenFor(w *wallet.Wallet, name string) (*keys.KeySet, error) {
	k, err := w.KeysForName(name)
	if err != nil {
		return nil, err
	}
	if len(k.ChainEvents) == 0 {
		return nil, fmt.Errorf("%s: %w", name, walletkeys.ErrRotationIncoherence)
	}
	last := k.ChainEvents[len(k.ChainEvents)-1]
	return keys.NewEmpty(last.KeyType), nil
}

// stateExitCode maps a rotate/decommission failure onto the CLI's
// exit codes: 3 for a state-machine rejection (bad prior event), 1 for
// everything else (unknown name, I/O, chain-adapter failure).
func stateExitCode(err error) int {
	if errors.Is(err, walletkeys.ErrRotationIncoherence) || errors.Is(err, walletkeys.ErrRotationIncompatible) {
		return 3
	}
	return 1
}

func didRotateCmd(walletDir *string) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "did-rotate",
		Short: "Rotate a DID, minting a fresh next key set",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*walletDir)
			if err != nil {
				return err
			}

			barren, err := barrenFor(a.w, name)
			if err != nil {
				return withExit(stateExitCode(err), err)
			}
			if err := a.w.RotateDIDWithName(context.Background(), name, barren, nil, nil, a.chain); err != nil {
				return withExit(stateExitCode(err), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rotated %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "DID name (required)")
	cmd.MarkFlagRequired("name")
	return cmd
}

func didDecommissionCmd(walletDir *string) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "did-decommission",
		Short: "Permanently decommission a DID",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*walletDir)
			if err != nil {
				return err
			}

			barren, err := barrenFor(a.w, name)
			if err != nil {
				return withExit(stateExitCode(err), err)
			}
			if err := a.w.DecommissionDIDWithName(context.Background(), name, barren, a.chain); err != nil {
				return withExit(stateExitCode(err), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "decommissioned %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "DID name (required)")
	cmd.MarkFlagRequired("name")
	return cmd
}

func didCloseCmd(walletDir *string) *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "did-close",
		Short: "Close the ledger account backing a DID (admin operation)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*walletDir)
			if err != nil {
				return err
			}
			if err := a.chain.Close(context.Background(), prefix); err != nil {
				return withExit(4, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "closed %s\n", prefix)
			return nil
		},
	}
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "DID prefix (PDA seed, base58) (required)")
	cmd.MarkFlagRequired("prefix")
	return cmd
}
