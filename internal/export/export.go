// Package export writes a built dataset to disk as a JSON document, one CSV
// file per table, or a workbook with one sheet per table.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "legalaid-seeder/internal/common/errors"
	"legalaid-seeder/internal/generator/builder"

	"github.com/xuri/excelize/v2"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	JSONFile = "output.json"
	XLSXFile = "output.xlsx"
)

// Formats lists every supported format.
var Formats = []string{FormatJSON, FormatCSV, FormatXLSX}

// Write exports ds into dir in each of formats and returns the written
// paths. dir is created if missing.
func Write(dir string, ds *builder.Dataset, formats []string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.NewExportFailedError(dir, err)
	}

	var files []string
	tables := ds.Rows()
	for _, format := range formats {
		switch format {
		case FormatJSON:
			path := filepath.Join(dir, JSONFile)
			if err := WriteJSON(path, ds); err != nil {
				return files, err
			}
			files = append(files, path)
		case FormatCSV:
			written, err := WriteCSV(dir, tables)
			files = append(files, written...)
			if err != nil {
				return files, err
			}
		case FormatXLSX:
			path := filepath.Join(dir, XLSXFile)
			if err := WriteXLSX(path, tables); err != nil {
				return files, err
			}
			files = append(files, path)
		default:
			return files, apperrors.NewInvalidArgumentError(fmt.Sprintf("unknown export format %q", format))
		}
	}
	return files, nil
}

// WriteJSON writes the dataset keyed by table name.
func WriteJSON(path string, ds *builder.Dataset) error {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return apperrors.NewExportFailedError(path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperrors.NewExportFailedError(path, err)
	}
	return nil
}

// ReadJSON loads a dataset written by WriteJSON.
func ReadJSON(path string) (*builder.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewExportFailedError(path, err)
	}
	var ds builder.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, apperrors.NewExportFailedError(path, err)
	}
	return &ds, nil
}

// WriteCSV writes <table>.csv for every table, header row first.
func WriteCSV(dir string, tables []builder.TableRows) ([]string, error) {
	files := make([]string, 0, len(tables))
	for _, t := range tables {
		path := filepath.Join(dir, t.Name+".csv")
		records, err := Records(t)
		if err != nil {
			return files, apperrors.NewExportFailedError(path, err)
		}
		if err := writeCSVFile(path, records); err != nil {
			return files, apperrors.NewExportFailedError(path, err)
		}
		files = append(files, path)
	}
	return files, nil
}

func writeCSVFile(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return f.Close()
}

// WriteXLSX writes a workbook with one sheet per table.
func WriteXLSX(path string, tables []builder.TableRows) error {
	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	for _, t := range tables {
		records, err := Records(t)
		if err != nil {
			return apperrors.NewExportFailedError(path, err)
		}
		if _, err := f.NewSheet(t.Name); err != nil {
			return apperrors.NewExportFailedError(path, err)
		}
		for i, record := range records {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return apperrors.NewExportFailedError(path, err)
			}
			row := make([]interface{}, len(record))
			for j, v := range record {
				row[j] = v
			}
			if err := f.SetSheetRow(t.Name, cell, &row); err != nil {
				return apperrors.NewExportFailedError(path, err)
			}
		}
	}

	if len(tables) > 0 {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return apperrors.NewExportFailedError(path, err)
		}
		if index, err := f.GetSheetIndex(tables[0].Name); err == nil {
			f.SetActiveSheet(index)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return apperrors.NewExportFailedError(path, err)
	}
	return nil
}

// Records flattens a table into a header row followed by one record per
// row. Scalars are written as text and nested values as JSON.
func Records(t builder.TableRows) ([][]string, error) {
	columns := t.Columns()
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, columns)

	for _, row := range t.Rows {
		data, err := json.Marshal(row)
		if err != nil {
			return nil, err
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, err
		}

		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = cell(fields[col])
		}
		records = append(records, record)
	}
	return records, nil
}

func cell(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
