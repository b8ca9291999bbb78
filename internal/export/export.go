// Package export implements generate_comprehensive_report and
// export_report: composing a report document from prior tool outputs and
// serializing it to one of several formats.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Section is one labeled block of a comprehensive report, e.g. a
// liquidity-gap table or a market-data summary contributed by a specialist.
type Section struct {
	Title   string
	Content string
}

// GenerateComprehensiveReport composes title and sections into a single
// Markdown-formatted report string by plain textual composition; no LLM
// call is made.
func GenerateComprehensiveReport(title string, sections []Section) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "생성 시간: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	for _, s := range sections {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", s.Title, s.Content)
	}
	return b.String()
}

// Format is a supported export target for ExportReport.
type Format string

const (
	FormatExcel    Format = "xlsx"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
)

// ExportReport writes content to dir under name in format, returning the
// written path. No PDF writer exists anywhere in this system's dependency
// surface, so FormatPDF writes the same content as plain text with a
// ".txt" extension instead of producing a real PDF.
func ExportReport(dir, name string, format Format, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: create dir: %w", err)
	}

	switch format {
	case FormatMarkdown:
		path := filepath.Join(dir, name+".md")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return "", fmt.Errorf("export: write markdown: %w", err)
		}
		return path, nil

	case FormatExcel:
		return exportExcel(dir, name, content)

	case FormatPDF:
		path := filepath.Join(dir, name+".txt")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return "", fmt.Errorf("export: write pdf fallback: %w", err)
		}
		return path, nil

	default:
		return "", fmt.Errorf("export: unsupported format %q", format)
	}
}

// exportExcel writes content as one row per line into a single-sheet
// workbook, built from scratch via excelize.NewFile — this system has no
// pre-existing spreadsheet template to fill in.
func exportExcel(dir, name, content string) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Report"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return "", fmt.Errorf("export: new sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for i, line := range strings.Split(content, "\n") {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return "", fmt.Errorf("export: cell coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, line); err != nil {
			return "", fmt.Errorf("export: set cell: %w", err)
		}
	}

	path := filepath.Join(dir, name+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("export: save workbook: %w", err)
	}
	return path, nil
}
