package usecase

import (
	"bytes"
	"encoding/csv"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/codefreeze/pkg/domain/model"
)

var reportHeader = []string{"flag", "status", "previous", "current"}

// EncodeFlagReport renders the report as CSV with a header row
func EncodeFlagReport(report model.FlagDiffs) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(reportHeader); err != nil {
		return nil, goerr.Wrap(err, "failed to write report header")
	}
	for _, row := range report {
		if err := w.Write([]string{row.Name, string(row.Status), row.Old, row.New}); err != nil {
			return nil, goerr.Wrap(err, "failed to write report row", goerr.V("flag", row.Name))
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, goerr.Wrap(err, "failed to flush report")
	}

	return buf.Bytes(), nil
}

var statusColors = map[model.FlagStatus]*color.Color{
	model.FlagAdded:     color.New(color.FgGreen),
	model.FlagRemoved:   color.New(color.FgRed),
	model.FlagChanged:   color.New(color.FgYellow, color.Bold),
	model.FlagUnchanged: color.New(color.Faint),
}

// RenderFlagReport renders the report as a console table
func RenderFlagReport(report model.FlagDiffs) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(reportHeader))
	for i, h := range reportHeader {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range report {
		status := string(row.Status)
		if c, ok := statusColors[row.Status]; ok {
			status = c.Sprint(status)
		}
		tw.AppendRow(table.Row{row.Name, status, row.Old, row.New})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignCenter},
		{Number: 4, Align: text.AlignCenter},
	})

	return tw.Render()
}
