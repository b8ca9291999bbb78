package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateComprehensiveReportComposesSections(t *testing.T) {
	report := GenerateComprehensiveReport("ALM 종합 리포트", []Section{
		{Title: "유동성 갭", Content: "0-3M: +120,000"},
		{Title: "환율", Content: "USD/KRW: 1382.10"},
	})

	if !strings.Contains(report, "# ALM 종합 리포트") {
		t.Fatalf("report missing title: %s", report)
	}
	if !strings.Contains(report, "## 유동성 갭") || !strings.Contains(report, "## 환율") {
		t.Fatalf("report missing section headers: %s", report)
	}
}

func TestExportReportMarkdown(t *testing.T) {
	dir := t.TempDir()
	path, err := ExportReport(dir, "report", FormatMarkdown, "# hello")
	if err != nil {
		t.Fatalf("ExportReport: %v", err)
	}
	if filepath.Ext(path) != ".md" {
		t.Fatalf("path = %q, want .md", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "# hello" {
		t.Fatalf("content = %q, want %q", string(data), "# hello")
	}
}

func TestExportReportPDFFallsBackToText(t *testing.T) {
	dir := t.TempDir()
	path, err := ExportReport(dir, "report", FormatPDF, "content")
	if err != nil {
		t.Fatalf("ExportReport: %v", err)
	}
	if filepath.Ext(path) != ".txt" {
		t.Fatalf("path = %q, want .txt (no PDF writer available)", path)
	}
}

func TestExportReportExcel(t *testing.T) {
	dir := t.TempDir()
	path, err := ExportReport(dir, "report", FormatExcel, "row1\nrow2")
	if err != nil {
		t.Fatalf("ExportReport: %v", err)
	}
	if filepath.Ext(path) != ".xlsx" {
		t.Fatalf("path = %q, want .xlsx", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected workbook to exist: %v", err)
	}
}

func TestExportReportUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	if _, err := ExportReport(dir, "report", Format("doc"), "x"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
