package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/vkgraph/pkg/crawler"
	"github.com/matzehuels/vkgraph/pkg/graph"
	"github.com/matzehuels/vkgraph/pkg/identity"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader      = lipgloss.NewStyle().Bold(true).Foreground(colorGray).Padding(0, 1)
	styleCell        = lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(14)
	fmt.Println("  " + keyStyle.Render(key) + " " + StyleValue.Render(value))
}

func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Crawl Summary
// =============================================================================

// printCrawlResult prints the outcome of a crawl.
func printCrawlResult(res *crawler.Result, cache identity.Stats) {
	if res.Cancelled {
		printWarning("Crawl cancelled after %d identities", res.Identities)
	} else {
		printSuccess("Crawled %s identities, %s groups, %s edges",
			StyleNumber.Render(strconv.Itoa(res.Identities)),
			StyleNumber.Render(strconv.Itoa(res.Groups)),
			StyleNumber.Render(strconv.Itoa(res.Edges)))
	}
	printKeyValue("run", res.RunID)
	printKeyValue("seed", res.Seed.String())
	printKeyValue("dispatched", strconv.Itoa(res.Dispatched))
	printKeyValue("unresolved", strconv.Itoa(res.Unresolved))
	printKeyValue("deepest level", strconv.Itoa(res.MaxDepthSeen))
	printKeyValue("lookups", fmt.Sprintf("%d remote, %d cached", cache.Remote, cache.Hits))
	printKeyValue("elapsed", res.Duration.Round(time.Millisecond).String())
	if res.SinkErrors > 0 {
		printWarning("%d graph store writes failed, see log", res.SinkErrors)
	}
}

// =============================================================================
// Tables
// =============================================================================

// renderTable renders rows under headers with the CLI table style.
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(StyleDim).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return styleCell
		}).
		Headers(headers...).
		Rows(rows...).
		Render()
}

func rankedRows(ranked []graph.Ranked) [][]string {
	rows := make([][]string, len(ranked))
	for i, r := range ranked {
		rows[i] = []string{strconv.Itoa(i + 1), r.Name, r.Key.String(), strconv.Itoa(r.Count)}
	}
	return rows
}

func sharedRows(pairs []graph.SharedSubscriptions) [][]string {
	rows := make([][]string, len(pairs))
	for i, p := range pairs {
		rows[i] = []string{
			p.First.Name + " & " + p.Second.Name,
			strconv.Itoa(len(p.Shared)),
			truncate(strings.Join(p.Shared, ", "), 60),
		}
	}
	return rows
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// printSection writes a titled block to w.
func printSection(w io.Writer, title, body string) {
	fmt.Fprintln(w, StyleTitle.Render(title))
	fmt.Fprintln(w, body)
	fmt.Fprintln(w)
}
