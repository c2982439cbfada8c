// Package audit builds Excel exports of the appointment tables.
package audit

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// TableSource provides the tables to export.
type TableSource interface {
	TableNames(ctx context.Context) ([]string, error)
	TableData(ctx context.Context, tableName string) (data []map[string]interface{}, columns []string, err error)
}

// Exporter renders every exportable table into one xlsx workbook, one
// sheet per table with a bold header row.
type Exporter struct {
	source TableSource
}

// NewExporter creates an exporter over the given source.
func NewExporter(source TableSource) *Exporter {
	return &Exporter{source: source}
}

// Export builds the workbook and returns its bytes.
func (e *Exporter) Export(ctx context.Context) ([]byte, error) {
	tables, err := e.source.TableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("get table names: %w", err)
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("no tables to export")
	}

	file := excelize.NewFile()
	defer file.Close()

	for i, table := range tables {
		sheet := sheetName(table)
		if i == 0 {
			file.SetSheetName("Sheet1", sheet)
		} else {
			if _, err := file.NewSheet(sheet); err != nil {
				return nil, fmt.Errorf("create sheet %s: %w", sheet, err)
			}
		}

		data, columns, err := e.source.TableData(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("get table data %s: %w", table, err)
		}
		if err := writeSheet(file, sheet, columns, data); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, fmt.Errorf("save workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(file *excelize.File, sheet string, columns []string, data []map[string]interface{}) error {
	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}

	if style, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	}); err == nil && len(columns) > 0 {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), 1)
		_ = file.SetCellStyle(sheet, startCell, endCell, style)
	}

	for rowIdx, row := range data {
		for colIdx, col := range columns {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := file.SetCellValue(sheet, cell, row[col]); err != nil {
				return err
			}
		}
	}
	return nil
}

// sheetName trims a table name to the 31 character Excel sheet limit.
func sheetName(table string) string {
	if len(table) > 31 {
		return table[:31]
	}
	return table
}
