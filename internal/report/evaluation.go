// Package report renders trainer results for the terminal.
package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/nflstats/predictor/internal/ml"
)

// WriteEvaluation prints one row per target followed by the combined score.
func WriteEvaluation(w io.Writer, ev ml.Evaluation) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Target", "MSE", "R²", "MAE"})
	for i, name := range ev.Targets {
		t.AppendRow(table.Row{
			name,
			fmt.Sprintf("%.4f", ev.MSE[i]),
			fmt.Sprintf("%.4f", ev.R2[i]),
			fmt.Sprintf("%.4f", ev.MAE[i]),
		})
	}
	t.AppendFooter(table.Row{"Combined", fmt.Sprintf("%.4f", ev.Combined), "", ""})
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	t.Render()
}
