package cmd

import (
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/rybkr/orepack/internal/board"
	"github.com/rybkr/orepack/internal/solver"
)

// writeHTMLReport writes the input grid and the best placement found to an
// HTML file, with the search totals underneath.
func writeHTMLReport(filename string, initial *board.Board, res *solver.Result) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create HTML file: %w", err)
	}
	defer file.Close()

	_, err = fmt.Fprint(file, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>orepack run</title>
<style>
body { font-family: sans-serif; margin: 2em; }
.ore-grid table { border-collapse: collapse; font-family: monospace; }
.ore-grid td { width: 1.6em; height: 1.6em; text-align: center; border: 1px solid #ddd; }
td.empty { color: #bbb; }
td.reachable { background: #e3f2e1; }
td.ore { background: #d4a72c; }
td.exit { background: #2e8b57; color: #fff; }
td.wall { background: #444; color: #444; }
td.miner { background: #4a6fa5; color: #fff; }
table.stats td { padding: 0 1em 0 0; }
</style>
</head>
<body>
`)
	if err != nil {
		return err
	}

	best := "<p>No miner could be placed with a path to the exit.</p>"
	if res.Best != nil {
		best = boardToHTML(res.Best)
	}

	_, err = fmt.Fprintf(file, `<h1>Run %s</h1>
<h2>Input</h2>
%s
<h2>Best placement: %d ore, %d miners</h2>
%s
<h2>Search</h2>
%s
`, html.EscapeString(res.RunID), boardToHTML(initial), res.Score, res.Miners, best, statsToHTML(res))
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(file, "</body>\n</html>\n")
	return err
}

// boardToHTML converts a board to an HTML table, shading the empty tiles
// reachable from the exit.
func boardToHTML(b *board.Board) string {
	reachable := b.Reachable()

	var sb strings.Builder
	sb.WriteString("<div class=\"ore-grid\"><table>")

	for y := 0; y < b.Height(); y++ {
		sb.WriteString("<tr>")
		for x := 0; x < b.Width(); x++ {
			t := b.At(x, y)
			cellClass := ""
			switch {
			case t == board.Ore:
				cellClass = "ore"
			case t == board.Exit:
				cellClass = "exit"
			case t == board.Wall:
				cellClass = "wall"
			case t.IsMiner():
				cellClass = "miner"
			case reachable[y*b.Width()+x]:
				cellClass = "empty reachable"
			default:
				cellClass = "empty"
			}
			sb.WriteString(fmt.Sprintf("<td class=\"%s\">%s</td>", cellClass, html.EscapeString(t.String())))
		}
		sb.WriteString("</tr>")
	}

	sb.WriteString("</table></div>")
	return sb.String()
}

func statsToHTML(res *solver.Result) string {
	rows := []struct {
		name  string
		value any
	}{
		{"State", res.State},
		{"Duration", res.Duration},
		{"Expanded", res.Stats.Expanded},
		{"Registered", res.Stats.Registered},
		{"Duplicates", res.Stats.Duplicates},
		{"Disconnected", res.Stats.Disconnected},
		{"Improvements", res.Stats.Improvements},
	}

	var sb strings.Builder
	sb.WriteString("<table class=\"stats\">")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%v</td></tr>", row.name, row.value))
	}
	sb.WriteString("</table>")
	return sb.String()
}
