package export

import (
	"context"
	"fmt"
	"sort"
	"time"

	"posu-analytics/internal/model"
)

const (
	FormatExcel = "excel"
	FormatWord  = "word"
	FormatPDF   = "pdf"
)

// Table is one titled block of rows; every row shares the column order of the first.
type Table struct {
	Title   string
	Columns []string
	Rows    []model.ReportRow
}

type Document struct {
	Title       string
	Period      string
	Range       model.DateRange
	Tables      []Table
	TotalAmount float64
	PreparedBy  string
	NotedBy     string
	GeneratedAt time.Time
}

type Exporter interface {
	Format() string
	Extension() string
	MimeType() string
	Export(ctx context.Context, doc Document) ([]byte, error)
}

type Registry struct {
	exporters map[string]Exporter
}

func NewRegistry(exporters ...Exporter) *Registry {
	r := &Registry{exporters: make(map[string]Exporter, len(exporters))}
	for _, e := range exporters {
		r.exporters[e.Format()] = e
	}
	return r
}

func (r *Registry) Get(format string) (Exporter, bool) {
	e, ok := r.exporters[format]
	return e, ok
}

func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.exporters))
	for f := range r.exporters {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// NewTable derives the column header from the first row.
func NewTable(title string, rows []model.ReportRow) Table {
	t := Table{Title: title, Rows: rows}
	if len(rows) > 0 {
		t.Columns = rows[0].Columns()
	}
	return t
}

// Text renders a cell value for text-only formats.
func Text(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return fmt.Sprintf("%.2f", val)
	case float32:
		return fmt.Sprintf("%.2f", val)
	default:
		return fmt.Sprint(val)
	}
}
