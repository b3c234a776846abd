package render

import (
	"io"

	"github.com/killallgit/cortex-chat/pkg/warehouse"
	"github.com/olekukonko/tablewriter"
)

// WriteTable writes the result set as a bordered table
func WriteTable(w io.Writer, result *warehouse.Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(result.Columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(result.Rows)
	table.Render()
}
