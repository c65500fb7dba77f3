package main

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/shineliang/reddit-intent-leads-cli/drafts"
)

// runKeyCmd manages the draft-provider API key in the OS keyring, so the
// environment variable is never required on shared machines.
func runKeyCmd(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: rilf key set <api-key> | rilf key delete")
	}

	switch args[0] {
	case "set":
		if len(args) < 2 {
			return errors.New("usage: rilf key set <api-key>")
		}
		if err := drafts.StoreAPIKey(args[1]); err != nil {
			return errors.Wrap(err, "store key")
		}
		fmt.Println("API key stored in keyring")
		return nil
	case "delete":
		if err := drafts.DeleteAPIKey(); err != nil {
			return errors.Wrap(err, "delete key")
		}
		fmt.Println("API key removed from keyring")
		return nil
	default:
		return errors.Errorf("unknown key subcommand %q", args[0])
	}
}
