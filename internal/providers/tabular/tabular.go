// Package tabular is the format-neutral shape handed to the export providers.
package tabular

// Report is a titled table. Cells are preformatted; numeric cells parse as decimals.
type Report struct {
	Title    string
	Subtitle string
	Headers  []string
	Rows     [][]string
	Totals   []string
}

// Width returns the widest row, header row included.
func (r Report) Width() int {
	width := len(r.Headers)
	for _, row := range r.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if len(r.Totals) > width {
		width = len(r.Totals)
	}
	return width
}
