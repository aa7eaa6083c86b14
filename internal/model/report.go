package model

import (
	"bytes"

	"github.com/goccy/go-json"
)

type ReportType string

const (
	ReportAllViolators        ReportType = "all_violators"
	ReportCommonViolations    ReportType = "common_violations"
	ReportEnforcerPerformance ReportType = "enforcer_performance"
	ReportTotalRevenue        ReportType = "total_revenue"
	ReportCombined            ReportType = "combined"
)

var reportTypes = []ReportType{ReportAllViolators, ReportCommonViolations, ReportEnforcerPerformance, ReportTotalRevenue}

// ReportTypes lists the concrete report types in the order a combined report renders them.
func ReportTypes() []ReportType {
	out := make([]ReportType, len(reportTypes))
	copy(out, reportTypes)
	return out
}

func ParseReportType(s string) (ReportType, bool) {
	for _, t := range reportTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

func (t ReportType) Title() string {
	switch t {
	case ReportAllViolators:
		return "All Violators"
	case ReportCommonViolations:
		return "Common Violations"
	case ReportEnforcerPerformance:
		return "Enforcer Performance"
	case ReportTotalRevenue:
		return "Total Revenue"
	default:
		return "Combined Report"
	}
}

type ReportField struct {
	Name  string
	Value interface{}
}

// ReportRow is an ordered record; column order is part of the export layout.
type ReportRow []ReportField

func (r ReportRow) Columns() []string {
	cols := make([]string, len(r))
	for i, f := range r {
		cols[i] = f.Name
	}
	return cols
}

func (r ReportRow) Get(name string) (interface{}, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

func (r ReportRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type ReportFile struct {
	Format   string `json:"format"`
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	URL      string `json:"url"`
	Path     string `json:"path"`
}

type ReportSummary struct {
	TotalPenalty        float64               `json:"total_penalty"`
	TotalViolators      int                   `json:"total_violators"`
	CommonViolations    []ReportRow           `json:"common_violations"`
	EnforcerPerformance []EnforcerPerformance `json:"enforcer_performance"`
}

type GeneratedReport struct {
	Report   *Report                    `json:"report"`
	Type     ReportType                 `json:"type"`
	Range    DateRange                  `json:"range"`
	Sections map[ReportType][]ReportRow `json:"data"`
	Summary  ReportSummary              `json:"summary"`
	Files    []ReportFile               `json:"files"`
}

type ReportPreview struct {
	Type      ReportType  `json:"type"`
	Period    string      `json:"period"`
	Range     DateRange   `json:"range"`
	Rows      []ReportRow `json:"rows"`
	TotalRows int         `json:"total_rows"`
	Limit     int         `json:"limit"`
}

type ReportHistoryPage struct {
	Reports    []Report   `json:"reports"`
	Pagination Pagination `json:"pagination"`
}
