package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modwarden/modwarden/internal/modfile"
	"github.com/modwarden/modwarden/internal/prompt"
)

var removeCmd = &cobra.Command{
	Use:   "remove <file>",
	Short: "Delete a mod from the instance",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	name := modfile.EnabledName(args[0])
	if !prompt.Confirm(fmt.Sprintf("Delete %s?", name), prompt.Config{NonInteractive: flagYes}) {
		fmt.Println("Aborted.")
		return nil
	}

	if err := eng.Remove(cmd.Context(), name); err != nil {
		return err
	}
	fmt.Printf("Removed %s\n", name)
	return nil
}
