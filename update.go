package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/modwarden/modwarden/internal/changelog"
	"github.com/modwarden/modwarden/internal/prompt"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Download and apply available updates",
	Long: `Check for updates and apply them as one sequential batch. Each update
downloads the new archive first and deletes the replaced file only after the
download landed, so a failure never costs you the installed version.`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("%d update(s) pending:\n", len(descs))
	for _, d := range descs {
		fmt.Println(changelog.Entry(d, false))
	}
	fmt.Println()

	if !prompt.Confirm("Apply these updates?", prompt.Config{NonInteractive: flagYes}) {
		fmt.Println("Aborted.")
		return nil
	}

	res, err := eng.Apply(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(changelog.Summary(eng.Channel().String(), res.Applied, res))

	if res.Failed > 0 {
		color.Red("%d update(s) failed", res.Failed)
		return fmt.Errorf("%d of %d update(s) failed", res.Failed, res.Updated+res.Failed)
	}
	color.Green("Updated %d mod(s)", res.Updated)
	return nil
}
