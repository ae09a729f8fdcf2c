package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/modwarden/modwarden/internal/changelog"
)

var checkChangelog bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check for newer compatible versions",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkChangelog, "changelog", false, "show a changelog excerpt per update")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if _, err := eng.Refresh(ctx); err != nil {
		return err
	}
	descs, err := eng.Check(ctx)
	if err != nil {
		return err
	}

	if len(descs) == 0 {
		color.Green("Everything is up to date.")
		return nil
	}

	color.Yellow("%d update(s) available:", len(descs))
	for _, d := range descs {
		fmt.Println(changelog.Entry(d, checkChangelog))
	}
	fmt.Println("\nRun 'modwarden update' to apply.")
	return nil
}
