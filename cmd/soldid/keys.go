package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/solwall/soldid/internal/walletkeys"
)

func keysListCmd(walletDir *string) *cobra.Command {
	var (
		name string
		all  bool
		full bool
	)

	cmd := &cobra.Command{
		Use:   "keys-list",
		Short: "Print a DID's ChainEvent log",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*walletDir)
			if err != nil {
				return err
			}

			if all == (name != "") {
				return withExit(1, fmt.Errorf("exactly one of -n or -a is required"))
			}

			if all {
				for _, prefix := range a.w.Prefixes() {
					k, err := a.w.KeysForPrefix(prefix)
					if err != nil {
						return withExit(1, err)
					}
					printKeyLog(cmd.OutOrStdout(), k, full)
				}
				return nil
			}

			k, err := a.w.KeysForName(name)
			if err != nil {
				return withExit(1, err)
			}
			printKeyLog(cmd.OutOrStdout(), k, full)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "DID name")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "list every DID")
	cmd.Flags().BoolVarP(&full, "complete", "c", false, "include every event, not just the latest")
	return cmd
}

func printKeyLog(w io.Writer, k *walletkeys.Keys, full bool) {
	events := k.ChainEvents
	if !full && len(events) > 0 {
		events = events[len(events)-1:]
	}
	for _, e := range events {
		fmt.Fprintf(w, "%s\tsn=%d\t%s\tdigest=%s\tprior=%s\ttx=%s\n",
			k.Name, e.SN, e.EventType, e.Digest, e.PriorDigest, e.TxSignature)
	}
}
