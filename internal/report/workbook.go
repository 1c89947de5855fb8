package report

import (
	"fmt"

	"github.com/paveg/retail-eda/internal/errors"
	"github.com/xuri/excelize/v2"
)

const (
	totalsSheet      = "Totals"
	subCategorySheet = "Top Sub-Categories"
	regionSheet      = "Sales by Region"
)

// WriteWorkbook saves the summary as an xlsx file with one sheet per aggregate.
// Skipped aggregates get no sheet.
func WriteWorkbook(path string, s *Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", totalsSheet); err != nil {
		return errors.NewInternalError("WriteWorkbook", err)
	}
	if err := f.SetSheetRow(totalsSheet, "A1", &[]any{"Metric", "Value"}); err != nil {
		return errors.NewInternalError("WriteWorkbook", err)
	}
	row := 2
	if s.Totals.HasSales {
		if err := f.SetSheetRow(totalsSheet, fmt.Sprintf("A%d", row), &[]any{"Total Sales", s.Totals.Sales}); err != nil {
			return errors.NewInternalError("WriteWorkbook", err)
		}
		row++
	}
	if s.Totals.HasProfit {
		if err := f.SetSheetRow(totalsSheet, fmt.Sprintf("A%d", row), &[]any{"Total Profit", s.Totals.Profit}); err != nil {
			return errors.NewInternalError("WriteWorkbook", err)
		}
	}

	if s.TopSubCategories != nil {
		if err := writeRankedSheet(f, subCategorySheet, SubCategoryColumn, s.TopSubCategories); err != nil {
			return err
		}
	}
	if s.RegionSales != nil {
		if err := writeRankedSheet(f, regionSheet, RegionColumn, s.RegionSales); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.NewIOError("WriteWorkbook", path, err)
	}
	return nil
}

func writeRankedSheet(f *excelize.File, sheet, keyHeader string, ranked []Ranked) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.NewInternalError("WriteWorkbook", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &[]any{keyHeader, SalesColumn}); err != nil {
		return errors.NewInternalError("WriteWorkbook", err)
	}
	for i, r := range ranked {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.NewInternalError("WriteWorkbook", err)
		}
		if err := f.SetSheetRow(sheet, cell, &[]any{r.Key, r.Value}); err != nil {
			return errors.NewInternalError("WriteWorkbook", err)
		}
	}
	return f.SetColWidth(sheet, "A", "B", 20)
}
