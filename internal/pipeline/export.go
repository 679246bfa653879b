package pipeline

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/forecast-cli/internal/model"
)

// exportBasename prefixes every export file; the date makes runs from
// different days sort naturally.
const exportBasename = "strategic_questions"

// ExportFilename returns the conventional export file name for the given
// extension, e.g. "strategic_questions_2026-08-28.csv".
func ExportFilename(ext string) string {
	return fmt.Sprintf("%s_%s.%s", exportBasename, time.Now().Format("2006-01-02"), ext)
}

// ExportText returns the final stage output as plain-text bytes.
func ExportText(finalText string) []byte {
	return []byte(finalText)
}

// ExportCSV parses the final stage output and serializes the question
// records as CSV with the fixed eight-column header. Records with empty
// optional fields still emit empty cells.
func ExportCSV(finalText string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(model.Columns); err != nil {
		return nil, eris.Wrap(err, "export: write csv header")
	}
	for _, rec := range ParseQuestions(finalText) {
		if err := w.Write(rec.Row()); err != nil {
			return nil, eris.Wrap(err, "export: write csv row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, eris.Wrap(err, "export: flush csv")
	}
	return buf.Bytes(), nil
}

// ExportXLSX serializes the parsed question records as a single-sheet
// workbook with the same column order as the CSV export.
func ExportXLSX(finalText string) ([]byte, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Questions")
	if err != nil {
		return nil, eris.Wrap(err, "export: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, col := range model.Columns {
		header.AddCell().SetString(col)
	}
	for _, rec := range ParseQuestions(finalText) {
		row := sheet.AddRow()
		for _, cell := range rec.Row() {
			row.AddCell().SetString(cell)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, eris.Wrap(err, "export: write xlsx")
	}
	return buf.Bytes(), nil
}

// WriteExports writes the txt, csv, and xlsx exports for a final text into
// dir and returns the written paths.
func WriteExports(dir, finalText string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrap(err, "export: create output dir")
	}

	csvData, err := ExportCSV(finalText)
	if err != nil {
		return nil, err
	}
	xlsxData, err := ExportXLSX(finalText)
	if err != nil {
		return nil, err
	}

	files := []struct {
		ext  string
		data []byte
	}{
		{"txt", ExportText(finalText)},
		{"csv", csvData},
		{"xlsx", xlsxData},
	}

	var paths []string
	for _, f := range files {
		path := filepath.Join(dir, ExportFilename(f.ext))
		if err := os.WriteFile(path, f.data, 0o644); err != nil {
			return nil, eris.Wrap(err, "export: write "+f.ext)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
