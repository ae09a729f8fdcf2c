package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modwarden/modwarden/internal/modfile"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle <file>",
	Short: "Enable or disable a mod without deleting it",
	Long: `Flip a mod between enabled and disabled. Disabling renames the archive
with a ` + modfile.DisabledSuffix + ` suffix so the game skips it; the file and its
update tracking stay intact. Either form of the name is accepted.`,
	Args: cobra.ExactArgs(1),
	RunE: runToggle,
}

func init() {
	rootCmd.AddCommand(toggleCmd)
}

func runToggle(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	enabled, err := eng.Toggle(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	name := modfile.EnabledName(args[0])
	if enabled {
		fmt.Printf("Enabled %s\n", name)
	} else {
		fmt.Printf("Disabled %s\n", name)
	}
	return nil
}
