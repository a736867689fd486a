package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/maruel/natural"

	"github.com/cosmic-utils/diskscan/mounts"
	"github.com/cosmic-utils/diskscan/scan"
)

const (
	defaultWidth = 100
	barWidth     = 24
	mutedHex     = "#5C6370"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(mutedHex))
	sizeStyle   = lipgloss.NewStyle().Width(10).Align(lipgloss.Right)
	pctStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(mutedHex)).Width(7).Align(lipgloss.Right)
)

// formatSummary renders the category table and the per-category top
// files as a plain report for non-TTY friendly output.
func formatSummary(res *scan.Result, width int) string {
	if width <= 0 {
		width = defaultWidth
	}

	var b strings.Builder

	status := ""
	if res.Incomplete {
		status = mutedStyle.Render("  (interrupted, partial)")
	}
	fmt.Fprintf(&b, "%s%s\n", headerStyle.Render(fmt.Sprintf(
		"Scanned %s in %s files across %s mounts",
		humanize.Bytes(res.TotalBytes),
		humanize.Comma(int64(res.FilesScanned)),
		humanize.Comma(int64(res.MountsScanned)))), status)
	if res.SkippedErrors > 0 {
		fmt.Fprintf(&b, "%s\n", mutedStyle.Render(fmt.Sprintf(
			"%s entries skipped due to errors", humanize.Comma(int64(res.SkippedErrors)))))
	}
	b.WriteString("\n")

	for _, cu := range res.Categories {
		name := cu.Category.Name()
		colorHex := cu.Category.Color()

		var ratio float64
		if res.TotalBytes > 0 {
			ratio = float64(cu.Bytes) / float64(res.TotalBytes)
		}

		nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorHex)).Bold(true).Width(10)
		if cu.Bytes == 0 {
			nameStyle = nameStyle.Foreground(lipgloss.Color(dimHex(colorHex))).Bold(false)
		}

		fmt.Fprintf(&b, "%s %s %s %s %s\n",
			nameStyle.Render(name),
			categoryBar(colorHex, ratio),
			sizeStyle.Render(humanize.Bytes(cu.Bytes)),
			pctStyle.Render(fmt.Sprintf("%.1f%%", ratio*100)),
			mutedStyle.Render(fmt.Sprintf("%s files", humanize.Comma(int64(cu.Files)))))

		if len(cu.TopExtensions) > 0 {
			parts := make([]string, 0, len(cu.TopExtensions))
			for _, e := range cu.TopExtensions {
				parts = append(parts, fmt.Sprintf("%s %s", e.Extension, humanize.Bytes(e.Bytes)))
			}
			fmt.Fprintf(&b, "           %s\n", mutedStyle.Render(strings.Join(parts, "  ")))
		}
	}

	b.WriteString("\n")
	b.WriteString(formatTopFiles(res, width))
	return b.String()
}

// formatTopFiles lists the largest files per category, biggest
// categories first, long paths truncated to the terminal width.
func formatTopFiles(res *scan.Result, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	pathWidth := width - 14
	if pathWidth < 20 {
		pathWidth = 20
	}

	var b strings.Builder
	for _, ct := range res.TopFilesByCategory {
		colorHex := ct.Category.Color()
		fmt.Fprintf(&b, "%s\n", lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorHex)).Bold(true).
			Render(fmt.Sprintf("Largest %s", ct.Category.Name())))

		if len(ct.Files) == 0 {
			fmt.Fprintf(&b, "  %s\n", mutedStyle.Render("no files"))
			continue
		}
		for _, f := range ct.Files {
			fmt.Fprintf(&b, "  %s  %s\n",
				sizeStyle.Render(humanize.Bytes(f.Bytes)),
				ansi.Truncate(f.Path, pathWidth, "…"))
		}
	}
	return b.String()
}

// formatMounts lists discovered mount points, scanned roots first,
// both groups in natural order so sda10 sorts after sda2.
func formatMounts(entries []mounts.Entry, roots []string) string {
	scanned := make(map[string]bool, len(roots))
	for _, r := range roots {
		scanned[r] = true
	}

	sorted := append([]mounts.Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		si, sj := scanned[sorted[i].MountPoint], scanned[sorted[j].MountPoint]
		if si != sj {
			return si
		}
		return natural.Less(sorted[i].MountPoint, sorted[j].MountPoint)
	})

	var b strings.Builder
	b.WriteString(headerStyle.Render("Mount points") + "\n")
	for _, e := range sorted {
		mark := mutedStyle.Render("skip")
		line := fmt.Sprintf("%-28s %s", e.MountPoint, e.FSType)
		if scanned[e.MountPoint] {
			mark = "scan"
			fmt.Fprintf(&b, "  %s  %s\n", mark, line)
		} else {
			fmt.Fprintf(&b, "  %s  %s\n", mark, mutedStyle.Render(line))
		}
	}
	return b.String()
}

// dimHex blends a category color toward the muted gray for zero-byte
// rows.
func dimHex(hex string) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return mutedHex
	}
	gray, _ := colorful.Hex(mutedHex)
	return c.BlendLab(gray, 0.7).Hex()
}

func categoryBar(hex string, ratio float64) string {
	filled := int(ratio*float64(barWidth) + 0.5)
	if filled > barWidth {
		filled = barWidth
	}
	if ratio > 0 && filled == 0 {
		filled = 1
	}

	var buf strings.Builder
	if filled > 0 {
		buf.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(hex)).
			Render(strings.Repeat("━", filled)))
	}
	if filled < barWidth {
		buf.WriteString(mutedStyle.Render(strings.Repeat("─", barWidth-filled)))
	}
	return buf.String()
}
