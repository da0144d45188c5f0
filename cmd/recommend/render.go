package main

import (
	"io"
	"os"
	"strings"

	"mflix/internal/domain/entity"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

const plotWidth = 60

func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func renderSubmission(sub *entity.Submission, color bool) string {
	var b strings.Builder
	heading := "Recommendations for " + sub.BaseTitle
	if color {
		heading = text.Bold.Sprint("Recommendations for ") + text.FgHiRed.Sprint(sub.BaseTitle)
	}
	b.WriteString(heading)
	b.WriteString("\n")

	if sub.NoResults() {
		b.WriteString("No recommendations found.\n")
		return b.String()
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if !color {
		tw.SetStyle(table.StyleLight)
	}
	tw.AppendHeader(table.Row{"#", "Title", "Year", "IMDb", "Plot"})
	for i, m := range sub.Movies {
		tw.AppendRow(table.Row{i + 1, m.Title, m.Year, m.Rating, m.Plot})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, WidthMax: plotWidth},
	})
	tw.AppendFooter(table.Row{"", formatCount(len(sub.Movies))})
	b.WriteString(tw.Render())
	b.WriteString("\n")
	return b.String()
}
