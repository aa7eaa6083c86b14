package export

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"posu-analytics/internal/model"
)

func sampleDocument() Document {
	violations := []model.ReportRow{
		{{Name: "ID", Value: uint(1)}, {Name: "Violation Name", Value: "No Helmet"}, {Name: "Count", Value: int64(4)}},
		{{Name: "ID", Value: uint(2)}, {Name: "Violation Name", Value: "Reckless Driving"}, {Name: "Count", Value: int64(2)}},
	}
	revenue := []model.ReportRow{{{Name: "Total Revenue", Value: 1500.5}}}
	return Document{
		Title:       "Combined Report",
		Period:      "custom",
		Range:       model.DateRange{From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)},
		Tables:      []Table{NewTable("Common Violations", violations), NewTable("Total Revenue", revenue)},
		TotalAmount: 1500.5,
		PreparedBy:  "Maria Santos",
	}
}

func TestExcelExporterWritesSheetPerTable(t *testing.T) {
	data, err := NewExcelExporter().Export(context.Background(), sampleDocument())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Common Violations", "Total Revenue"}, f.GetSheetList())

	header, err := f.GetCellValue("Common Violations", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Violation Name", header)

	name, err := f.GetCellValue("Common Violations", "B3")
	require.NoError(t, err)
	assert.Equal(t, "Reckless Driving", name)

	total, err := f.GetCellValue("Total Revenue", "A2")
	require.NoError(t, err)
	assert.Equal(t, "1500.5", total)
}

func TestExcelExporterHandlesEmptyDocument(t *testing.T) {
	data, err := NewExcelExporter().Export(context.Background(), Document{Title: "All Violators"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"All Violators"}, f.GetSheetList())
}

func TestSheetNameSanitizesAndDeduplicates(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "Report", sheetName("", 0, used))
	assert.Equal(t, "a b", sheetName("a/b", 1, used))
	assert.Equal(t, "a b 3", sheetName("a:b", 2, used))
	long := sheetName("Enforcer Performance Enforcer Performance", 3, used)
	assert.Len(t, long, maxSheetName)
}

func TestPDFExporterProducesPDF(t *testing.T) {
	data, err := NewPDFExporter().Export(context.Background(), sampleDocument())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestWordExporterPostsPDFToConverter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("Apikey"))
		file, _, err := r.FormFile("inputFile")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		body, _ := io.ReadAll(file)
		assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
		_, _ = w.Write([]byte("PK-docx"))
	}))
	defer srv.Close()

	exporter := NewWordExporter(NewPDFExporter(), srv.URL, "secret", srv.Client())
	data, err := exporter.Export(context.Background(), sampleDocument())
	require.NoError(t, err)
	assert.Equal(t, []byte("PK-docx"), data)
}

func TestWordExporterFailsOnConverterError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewWordExporter(NewPDFExporter(), srv.URL, "bad", srv.Client()).Export(context.Background(), sampleDocument())
	assert.Error(t, err)

	_, err = NewWordExporter(NewPDFExporter(), srv.URL, "", nil).Export(context.Background(), sampleDocument())
	assert.ErrorIs(t, err, ErrConverterNotConfigured)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(NewExcelExporter(), NewPDFExporter())
	assert.Equal(t, []string{"excel", "pdf"}, r.Formats())
	_, ok := r.Get("word")
	assert.False(t, ok)
	e, ok := r.Get("pdf")
	require.True(t, ok)
	assert.Equal(t, "application/pdf", e.MimeType())
}

func TestLocalStorage(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir, "http://localhost:7090/")

	path, err := s.Save("total_revenue_20240301_101500.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "reports/total_revenue_20240301_101500.pdf", path)
	assert.Equal(t, "http://localhost:7090/api/admin/reports/files/total_revenue_20240301_101500.pdf", s.URL("total_revenue_20240301_101500.pdf"))

	full, err := s.Path("total_revenue_20240301_101500.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reports", "total_revenue_20240301_101500.pdf"), full)

	require.NoError(t, s.Remove("total_revenue_20240301_101500.pdf"))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, s.Remove("total_revenue_20240301_101500.pdf"))

	_, err = s.Save("../escape.pdf", nil)
	assert.ErrorIs(t, err, ErrInvalidFilename)
	_, err = s.Path(".hidden")
	assert.ErrorIs(t, err, ErrInvalidFilename)
}

func TestText(t *testing.T) {
	assert.Equal(t, "", Text(nil))
	assert.Equal(t, "N/A", Text("N/A"))
	assert.Equal(t, "12.50", Text(12.5))
	assert.Equal(t, "7", Text(int64(7)))
}
