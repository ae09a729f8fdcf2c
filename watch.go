package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/modwarden/modwarden/internal/logging"
	"github.com/modwarden/modwarden/internal/resolve"
	"github.com/modwarden/modwarden/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the mods directory and re-resolve on changes",
	Long: `Keep running and re-resolve identities whenever mod archives are added,
removed, renamed, or rewritten. Bursts of filesystem activity collapse into
one rescan. Stop with ctrl-c.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	ids, err := eng.Refresh(ctx)
	if err != nil {
		return err
	}
	printScan(ids)

	w, err := watch.New(watch.Config{Dir: flagDir, Logger: logging.L()})
	if err != nil {
		return err
	}

	fmt.Printf("Watching %s (ctrl-c to stop)\n", flagDir)
	err = w.Run(ctx, func() {
		ids, err := eng.Refresh(ctx)
		if err != nil {
			logging.L().Warn("rescan failed", zap.Error(err))
			return
		}
		printScan(ids)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printScan(ids []resolve.Identity) {
	unresolved, disabled := 0, 0
	for _, id := range ids {
		if !id.Resolved() {
			unresolved++
		}
		if id.Disabled {
			disabled++
		}
	}
	fmt.Printf("scanned: %d mod(s), %d unresolved, %d disabled\n", len(ids), unresolved, disabled)
}
