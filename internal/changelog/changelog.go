// Package changelog renders catalog version changelogs and update reports
// for terminal display.
package changelog

import (
	"fmt"
	"strings"
	"time"

	"github.com/modwarden/modwarden/internal/update"
)

// maxExcerptLines bounds how much of a version changelog one entry shows.
const maxExcerptLines = 8

// Excerpt trims a raw changelog body down to at most maxLines displayable
// lines: blank runs collapse, markdown heading markers are stripped, and a
// truncated body ends with an ellipsis line. maxLines <= 0 uses the package
// default.
func Excerpt(body string, maxLines int) string {
	if maxLines <= 0 {
		maxLines = maxExcerptLines
	}

	var out []string
	truncated := false
	for _, line := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		trimmed = strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		if trimmed == "" {
			continue
		}
		if len(out) == maxLines {
			truncated = true
			break
		}
		out = append(out, trimmed)
	}
	if truncated {
		out = append(out, "...")
	}
	return strings.Join(out, "\n")
}

// Entry formats one pending update as a cliff note. withBody appends the
// target version's changelog excerpt, indented under the note.
func Entry(d update.Descriptor, withBody bool) string {
	note := fmt.Sprintf("* %s: %s", d.FileName, step(d))
	if !withBody {
		return note
	}
	body := Excerpt(d.Latest.Changelog, maxExcerptLines)
	if body == "" {
		return note
	}
	return note + "\n" + indent(body, "    ")
}

// Summary builds the post-reconciliation report: channel, timestamp,
// counts, and the per-file outcome lists.
func Summary(channelName string, applied []update.Descriptor, res update.Result) string {
	var b strings.Builder

	b.WriteString("Mod update summary\n\n")
	b.WriteString(fmt.Sprintf("Channel: %s\n", channelName))
	b.WriteString(fmt.Sprintf("Completed: %s\n", time.Now().Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("Total: %d attempted (%d updated, %d failed)\n",
		res.Updated+res.Failed, res.Updated, res.Failed))

	if len(applied) > 0 {
		b.WriteString(fmt.Sprintf("\nApplied (%d files):\n", len(applied)))
		for _, d := range applied {
			b.WriteString(fmt.Sprintf("  + %s (%s)\n", d.Latest.FileName, d.Latest.VersionNumber))
		}
	}

	if len(res.Errors) > 0 {
		b.WriteString(fmt.Sprintf("\nProblems (%d):\n", len(res.Errors)))
		for _, err := range res.Errors {
			b.WriteString(fmt.Sprintf("  - %s\n", err))
		}
	}

	return b.String()
}

// step renders the version transition of a pending update.
func step(d update.Descriptor) string {
	if d.CurrentVersionNumber != "" {
		return d.CurrentVersionNumber + " -> " + d.Latest.VersionNumber
	}
	return "-> " + d.Latest.VersionNumber
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
