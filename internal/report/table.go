package report

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/paveg/retail-eda/internal/dataframe"
)

// RenderTable writes rows as a bordered console table.
func RenderTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.AppendBulk(rows)
	table.Render()
}

// RenderFrame writes the first n rows of df. Nulls show as empty cells.
func RenderFrame(w io.Writer, df *dataframe.DataFrame, n int) {
	n = min(max(n, 0), df.Len())
	rows := make([][]string, n)
	for i := range n {
		rows[i] = df.Row(i)
	}
	RenderTable(w, df.Columns(), rows)
}

// RenderCounts writes a column → count table, e.g. null counts.
func RenderCounts(w io.Writer, counts []dataframe.ColumnCount) {
	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{c.Column, formatInt(c.Count)}
	}
	RenderTable(w, []string{"Column", "Count"}, rows)
}
