package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/modwarden/modwarden/internal/resolve"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show every installed mod and its catalog identity",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	ids, err := eng.Refresh(cmd.Context())
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("No mod archives found.")
		return nil
	}

	rows := make([]table.Row, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, table.Row{
			id.Name,
			orDash(id.Title),
			orDash(id.CurrentVersionNumber),
			orDash(id.Author),
			formatSize(id.SizeBytes),
			stateLabel(id),
		})
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"File", "Title", "Version", "Author", "Size", "State"})
	t.AppendRows(rows)
	t.Render()
	return nil
}

func stateLabel(id resolve.Identity) string {
	switch {
	case id.Disabled:
		return color.YellowString("disabled")
	case !id.Resolved():
		return color.RedString("unresolved")
	default:
		return color.GreenString("ok")
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatSize formats bytes to a human-readable string
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
