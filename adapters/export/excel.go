// Package export renders saved dashboards into downloadable workbooks.
package export

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"godash/domain/dashboard"
)

const overviewSheet = "Overview"

// XLSXExporter writes a dashboard snapshot as an Excel workbook: an overview
// sheet with metrics and the chart listing, then one sheet per table.
type XLSXExporter struct{}

func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// ContentType returns the MIME type for XLSX downloads.
func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// FileExtension returns the extension for XLSX downloads.
func (e *XLSXExporter) FileExtension() string {
	return ".xlsx"
}

// Export writes the workbook for snapshot to w.
func (e *XLSXExporter) Export(snapshot *dashboard.Snapshot, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", overviewSheet)

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	e.writeOverview(f, headerStyle, snapshot)

	// Sheets are numbered rather than named after table titles: titles come
	// from the AI and can collide or exceed the 31-char sheet name limit.
	for i, table := range snapshot.Config.Tables {
		sheet := fmt.Sprintf("Table %d", i+1)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", sheet, err)
		}
		e.writeTable(f, headerStyle, sheet, table)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (e *XLSXExporter) writeOverview(f *excelize.File, headerStyle int, snapshot *dashboard.Snapshot) {
	f.SetCellValue(overviewSheet, "A1", snapshot.Title)
	f.SetCellStyle(overviewSheet, "A1", "A1", headerStyle)
	f.SetCellValue(overviewSheet, "A2", "Dataset")
	f.SetCellValue(overviewSheet, "B2", snapshot.DatasetName)
	f.SetCellValue(overviewSheet, "A3", "Created")
	f.SetCellValue(overviewSheet, "B3", snapshot.CreatedAt.Format("2006-01-02 15:04:05"))

	row := 5
	if len(snapshot.Config.Metrics) > 0 {
		e.writeHeaderRow(f, headerStyle, overviewSheet, row, []string{"Metric", "Value", "Unit"})
		row++
		for _, m := range snapshot.Config.Metrics {
			f.SetCellValue(overviewSheet, cell(1, row), m.Label)
			f.SetCellValue(overviewSheet, cell(2, row), fmt.Sprintf("%v", m.Value))
			f.SetCellValue(overviewSheet, cell(3, row), m.Unit)
			row++
		}
		row++
	}

	if len(snapshot.Config.Charts) > 0 {
		e.writeHeaderRow(f, headerStyle, overviewSheet, row, []string{"Chart", "Type", "X Axis", "Y Axis"})
		row++
		for _, c := range snapshot.Config.Charts {
			f.SetCellValue(overviewSheet, cell(1, row), c.Title)
			f.SetCellValue(overviewSheet, cell(2, row), string(c.Type))
			f.SetCellValue(overviewSheet, cell(3, row), c.XAxis)
			f.SetCellValue(overviewSheet, cell(4, row), c.YAxis)
			row++
		}
	}
}

func (e *XLSXExporter) writeTable(f *excelize.File, headerStyle int, sheet string, table dashboard.TableSpec) {
	f.SetCellValue(sheet, "A1", table.Title)
	f.SetCellStyle(sheet, "A1", "A1", headerStyle)
	f.SetCellValue(sheet, "A2", string(table.Kind))

	if table.Data == nil {
		f.SetCellValue(sheet, "A4", "No data available.")
		return
	}

	row := 4
	switch {
	case table.Data.Summary != nil:
		e.writeHeaderRow(f, headerStyle, sheet, row, []string{"Column", "Count", "Mean", "Median", "Min", "Max", "Std Dev"})
		row++
		for _, col := range orderedKeys(table, len(table.Data.Summary)) {
			s, ok := table.Data.Summary[col]
			if !ok {
				continue
			}
			f.SetCellValue(sheet, cell(1, row), col)
			f.SetCellValue(sheet, cell(2, row), s.Count)
			f.SetCellValue(sheet, cell(3, row), s.Mean)
			f.SetCellValue(sheet, cell(4, row), s.Median)
			f.SetCellValue(sheet, cell(5, row), s.Min)
			f.SetCellValue(sheet, cell(6, row), s.Max)
			f.SetCellValue(sheet, cell(7, row), s.StdDev)
			row++
		}
	case table.Data.Frequency != nil:
		for _, col := range orderedKeys(table, len(table.Data.Frequency)) {
			freq, ok := table.Data.Frequency[col]
			if !ok {
				continue
			}
			f.SetCellValue(sheet, cell(1, row), col)
			f.SetCellStyle(sheet, cell(1, row), cell(1, row), headerStyle)
			row++
			e.writeHeaderRow(f, headerStyle, sheet, row, []string{"Value", "Count"})
			row++
			for _, entry := range freq.Entries() {
				f.SetCellValue(sheet, cell(1, row), entry.Value)
				f.SetCellValue(sheet, cell(2, row), entry.Count)
				row++
			}
			row++
		}
	case len(table.Data.Notes) > 0:
		for _, note := range table.Data.Notes {
			f.SetCellValue(sheet, cell(1, row), note)
			row++
		}
	}
}

func (e *XLSXExporter) writeHeaderRow(f *excelize.File, headerStyle int, sheet string, row int, headers []string) {
	for i, h := range headers {
		c := cell(i+1, row)
		f.SetCellValue(sheet, c, h)
		f.SetCellStyle(sheet, c, c, headerStyle)
	}
}

// orderedKeys lists the columns a table targets in spec order. Map keys the
// spec never named (there should be none) are appended sorted so nothing is
// silently dropped.
func orderedKeys(table dashboard.TableSpec, mapLen int) []string {
	designated := table.Columns
	if len(designated) == 0 && table.Column != "" {
		designated = []string{table.Column}
	}
	if len(designated) >= mapLen {
		return designated
	}

	seen := make(map[string]bool, len(designated))
	for _, c := range designated {
		seen[c] = true
	}
	var extra []string
	if table.Data != nil {
		for k := range table.Data.Summary {
			if !seen[k] {
				extra = append(extra, k)
			}
		}
		for k := range table.Data.Frequency {
			if !seen[k] {
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	return append(designated, extra...)
}

// cell converts 1-based column and row numbers to an A1-style reference.
func cell(col, row int) string {
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+(col%26))) + name
		col /= 26
	}
	return name + strconv.Itoa(row)
}
