// Command soldid is the wallet CLI: inception, rotation, and
// decommission of self-certifying DIDs backed by an on-ledger program,
// plus listing of wallet and ledger state.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/solwall/soldid/pkg/logging"
)

// exitError pairs an error with the process exit code its subcommand
// assigns on failure. Errors without an exitError wrapper exit 1.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExit(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

func main() {
	os.Exit(run())
}

// newRootCmd builds the CLI's command tree. Split out from run() so
// tests can execute it directly against a temp wallet dir without
// going through os.Exit.
func newRootCmd() *cobra.Command {
	var walletDir string

	root := &cobra.Command{
		Use:           "soldid",
		Short:         "Manage self-certifying DIDs and their ledger accounts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&walletDir, "wallet-dir", "w", "", "wallet root directory (default $HOME/.solwall)")

	root.AddCommand(
		didListCmd(&walletDir),
		keysListCmd(&walletDir),
		didCreateCmd(&walletDir),
		didRotateCmd(&walletDir),
		didDecommissionCmd(&walletDir),
		didCloseCmd(&walletDir),
	)
	return root
}

func run() int {
	if err := newRootCmd().Execute(); err != nil {
		log().Error("command failed", "err", err)
		fmt.Fprintln(os.Stderr, err)
		var ee *exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		return 1
	}
	return 0
}

func log() *logging.Logger {
	return logging.GetDefault().Component("cli")
}
