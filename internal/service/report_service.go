package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"posu-analytics/internal/audit"
	"posu-analytics/internal/export"
	"posu-analytics/internal/metrics"
	"posu-analytics/internal/model"
	"posu-analytics/internal/period"
	"posu-analytics/internal/repository"
	"posu-analytics/internal/secure"
)

const (
	reportViolationLimit = 10
	defaultPreviewLimit  = 100
	maxPreviewLimit      = 1000
	fileStampLayout      = "20060102_150405"
)

type FileStore interface {
	Save(filename string, data []byte) (string, error)
	URL(filename string) string
	Path(filename string) (string, error)
	Remove(filename string) error
}

type ReportService struct {
	transactions *repository.TransactionRepository
	analytics    *repository.AnalyticsRepository
	reports      *repository.ReportRepository
	actors       *repository.ActorRepository
	periods      *period.Resolver
	cipher       *secure.Cipher
	exporters    *export.Registry
	files        FileStore
	audit        AuditRecorder
	log          zerolog.Logger
}

type ReportDeps struct {
	Transactions *repository.TransactionRepository
	Analytics    *repository.AnalyticsRepository
	Reports      *repository.ReportRepository
	Actors       *repository.ActorRepository
	Periods      *period.Resolver
	Cipher       *secure.Cipher
	Exporters    *export.Registry
	Files        FileStore
	Audit        AuditRecorder
}

func NewReportService(deps ReportDeps, log zerolog.Logger) *ReportService {
	return &ReportService{
		transactions: deps.Transactions,
		analytics:    deps.Analytics,
		reports:      deps.Reports,
		actors:       deps.Actors,
		periods:      deps.Periods,
		cipher:       deps.Cipher,
		exporters:    deps.Exporters,
		files:        deps.Files,
		audit:        deps.Audit,
		log:          log,
	}
}

type ReportRequest struct {
	Period        string
	StartDate     string
	EndDate       string
	Type          string
	ExportFormats []string
}

type PreviewRequest struct {
	Type      string
	Period    string
	StartDate string
	EndDate   string
	Limit     *int
}

// reportData holds every producer's output for one range.
type reportData struct {
	sections map[model.ReportType][]model.ReportRow
	summary  model.ReportSummary
}

// Generate builds the requested report, writes its exports and persists it. Any export failure aborts before persistence.
func (s *ReportService) Generate(ctx context.Context, principal model.Principal, req ReportRequest) (*model.GeneratedReport, error) {
	actor, err := s.actor(ctx, principal)
	if err != nil {
		return nil, err
	}

	fields := map[string][]string{}
	if req.Period == "" {
		fields["period"] = []string{"The period field is required."}
	} else if !period.IsKeyword(req.Period) {
		fields["period"] = []string{fmt.Sprintf("The selected period is invalid. Use one of: %s.", strings.Join(period.Keywords(), ", "))}
	}
	formats := dedupe(req.ExportFormats)
	for i, f := range formats {
		if _, ok := s.exporters.Get(f); !ok {
			fields["export_formats."+strconv.Itoa(i)] = []string{"The selected export format is invalid."}
		}
	}
	if len(fields) > 0 {
		return nil, NewValidationError(fields)
	}

	rng, err := s.resolve(req.Period, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	reportType, ok := model.ParseReportType(req.Type)
	if !ok {
		reportType = model.ReportCombined
	}

	data, err := s.collect(ctx, rng)
	if err != nil {
		return nil, err
	}
	sections := data.sections
	if reportType != model.ReportCombined {
		sections = map[model.ReportType][]model.ReportRow{reportType: data.sections[reportType]}
	}

	doc := export.Document{
		Title:       reportType.Title(),
		Period:      req.Period,
		Range:       rng,
		TotalAmount: data.summary.TotalPenalty,
		PreparedBy:  actor.FullName(),
		GeneratedAt: s.periods.Now(),
	}
	for _, t := range model.ReportTypes() {
		if rows, ok := sections[t]; ok {
			doc.Tables = append(doc.Tables, export.NewTable(t.Title(), rows))
		}
	}

	files, err := s.writeExports(ctx, reportType, doc, formats)
	if err != nil {
		return nil, err
	}

	var content interface{} = sections
	if reportType != model.ReportCombined {
		content = sections[reportType]
	}
	report := &model.Report{
		Type:            string(reportType),
		Period:          req.Period,
		StartDate:       rng.From,
		EndDate:         rng.To,
		GeneratedByRole: principal.Role,
		GeneratedByID:   principal.ActorID,
		PreparedByName:  actor.FullName(),
	}
	if report.ReportContent, err = jsonColumn(content); err != nil {
		return nil, err
	}
	if report.Summary, err = jsonColumn(data.summary); err != nil {
		return nil, err
	}
	if report.Files, err = jsonColumn(files); err != nil {
		return nil, err
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	metrics.ReportsGenerated.WithLabelValues(string(reportType)).Inc()
	s.audit.Record(audit.Entry{
		ActorRole:   principal.Role,
		ActorID:     principal.ActorID,
		ActorName:   actor.FullName(),
		Action:      audit.ActionReportGenerated,
		TargetType:  "Report",
		TargetID:    &report.ID,
		TargetName:  report.Type,
		Description: fmt.Sprintf("%s generated a '%s' report for period '%s'", actor.FullName(), report.Type, req.Period),
	})

	return &model.GeneratedReport{
		Report:   report,
		Type:     reportType,
		Range:    rng,
		Sections: sections,
		Summary:  data.summary,
		Files:    files,
	}, nil
}

// Preview runs a single producer without persisting anything.
func (s *ReportService) Preview(ctx context.Context, req PreviewRequest) (*model.ReportPreview, error) {
	fields := map[string][]string{}
	reportType, ok := model.ParseReportType(req.Type)
	if req.Type == "" {
		fields["type"] = []string{"The type field is required."}
	} else if !ok {
		fields["type"] = []string{"The selected type is invalid."}
	}
	limit := defaultPreviewLimit
	if req.Limit != nil {
		limit = *req.Limit
		if limit < 1 || limit > maxPreviewLimit {
			fields["limit"] = []string{fmt.Sprintf("The limit must be between 1 and %d.", maxPreviewLimit)}
		}
	}
	if len(fields) > 0 {
		return nil, NewValidationError(fields)
	}

	rng, err := s.resolve(req.Period, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	rows, err := s.produce(ctx, reportType, rng)
	if err != nil {
		return nil, err
	}

	total := len(rows)
	if total > limit {
		rows = rows[:limit]
	}
	return &model.ReportPreview{
		Type:      reportType,
		Period:    req.Period,
		Range:     rng,
		Rows:      rows,
		TotalRows: total,
		Limit:     limit,
	}, nil
}

type HistoryQuery struct {
	Type           string
	StartDate      string
	EndDate        string
	IncludeDeleted bool
	Page           int
	PerPage        int
}

// History pages through generated reports, newest first. Date bounds apply to creation time.
func (s *ReportService) History(ctx context.Context, q HistoryQuery) (*model.ReportHistoryPage, error) {
	filter := model.ReportHistoryFilter{
		Type:           q.Type,
		IncludeDeleted: q.IncludeDeleted,
		Page:           q.Page,
		PerPage:        q.PerPage,
	}
	fields := map[string][]string{}
	if q.StartDate != "" {
		t, err := s.periods.ParseDate(q.StartDate)
		if err != nil {
			fields["start_date"] = []string{"The start date is not a valid date."}
		} else {
			from := period.StartOfDay(t)
			filter.From = &from
		}
	}
	if q.EndDate != "" {
		t, err := s.periods.ParseDate(q.EndDate)
		if err != nil {
			fields["end_date"] = []string{"The end date is not a valid date."}
		} else {
			to := period.EndOfDay(t)
			filter.To = &to
		}
	}
	if len(fields) > 0 {
		return nil, NewValidationError(fields)
	}

	filter = filter.Normalize()
	reports, total, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &model.ReportHistoryPage{
		Reports:    reports,
		Pagination: model.NewPagination(filter.Page, filter.PerPage, total),
	}, nil
}

func (s *ReportService) Delete(ctx context.Context, principal model.Principal, id uint) error {
	actor, err := s.actor(ctx, principal)
	if err != nil {
		return err
	}
	report, err := s.reports.FindByID(ctx, id, false)
	if errors.Is(err, repository.ErrNotFound) {
		return NewNotFoundError("Report not found.")
	}
	if err != nil {
		return err
	}
	if err := s.reports.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFoundError("Report not found.")
		}
		return err
	}

	s.audit.Record(audit.Entry{
		ActorRole:   principal.Role,
		ActorID:     principal.ActorID,
		ActorName:   actor.FullName(),
		Action:      audit.ActionReportDeleted,
		TargetType:  "Report",
		TargetID:    &report.ID,
		TargetName:  report.Type,
		Description: fmt.Sprintf("%s deleted report #%d", actor.FullName(), report.ID),
	})
	return nil
}

func (s *ReportService) Restore(ctx context.Context, principal model.Principal, id uint) (*model.Report, error) {
	actor, err := s.actor(ctx, principal)
	if err != nil {
		return nil, err
	}
	report, err := s.reports.Restore(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, NewNotFoundError("Report not found.")
	case errors.Is(err, repository.ErrNotDeleted):
		return nil, NewBadRequestError("Report is not deleted.")
	case err != nil:
		return nil, err
	}

	s.audit.Record(audit.Entry{
		ActorRole:   principal.Role,
		ActorID:     principal.ActorID,
		ActorName:   actor.FullName(),
		Action:      audit.ActionReportRestored,
		TargetType:  "Report",
		TargetID:    &report.ID,
		TargetName:  report.Type,
		Description: fmt.Sprintf("%s restored report #%d", actor.FullName(), report.ID),
	})
	return report, nil
}

// Clear removes every stored export and soft-deletes all live reports.
func (s *ReportService) Clear(ctx context.Context, principal model.Principal) (int64, error) {
	actor, err := s.actor(ctx, principal)
	if err != nil {
		return 0, err
	}
	reports, err := s.reports.All(ctx)
	if err != nil {
		return 0, err
	}
	for _, report := range reports {
		var files []model.ReportFile
		if len(report.Files) > 0 {
			if err := json.Unmarshal(report.Files, &files); err != nil {
				s.log.Warn().Err(err).Uint("report_id", report.ID).Msg("unreadable report files")
				continue
			}
		}
		for _, f := range files {
			if err := s.files.Remove(f.Filename); err != nil {
				s.log.Warn().Err(err).Str("file", f.Filename).Msg("failed to remove report file")
			}
		}
	}

	cleared, err := s.reports.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}

	s.audit.Record(audit.Entry{
		ActorRole:   principal.Role,
		ActorID:     principal.ActorID,
		ActorName:   actor.FullName(),
		Action:      audit.ActionReportHistoryCleared,
		TargetType:  "Report",
		TargetName:  "all",
		Description: fmt.Sprintf("%s cleared the report history (%d reports)", actor.FullName(), cleared),
	})
	return cleared, nil
}

// OpenFile resolves a stored export that a live report still references.
func (s *ReportService) OpenFile(ctx context.Context, filename string) (string, error) {
	referenced, err := s.reports.ReferencesFile(ctx, filename)
	if err != nil {
		return "", err
	}
	if !referenced {
		return "", NewNotFoundError("File not found.")
	}
	path, err := s.files.Path(filename)
	if err != nil {
		return "", NewNotFoundError("File not found.")
	}
	return path, nil
}

func (s *ReportService) actor(ctx context.Context, principal model.Principal) (*model.Actor, error) {
	actor, err := s.actors.FindByPrincipal(ctx, principal)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPermissionDenied
	}
	return actor, err
}

func (s *ReportService) resolve(keyword, startDate, endDate string) (model.DateRange, error) {
	fields := map[string][]string{}
	var start, end *time.Time
	if startDate != "" {
		t, err := s.periods.ParseDate(startDate)
		if err != nil {
			fields["start_date"] = []string{"The start date is not a valid date."}
		} else {
			start = &t
		}
	}
	if endDate != "" {
		t, err := s.periods.ParseDate(endDate)
		if err != nil {
			fields["end_date"] = []string{"The end date is not a valid date."}
		} else {
			end = &t
		}
	}
	if len(fields) > 0 {
		return model.DateRange{}, NewValidationError(fields)
	}

	rng, err := s.periods.Resolve(keyword, start, end)
	if err != nil {
		return model.DateRange{}, rangeError(err)
	}
	return rng, nil
}

func (s *ReportService) collect(ctx context.Context, rng model.DateRange) (*reportData, error) {
	txs, err := s.transactions.InRange(ctx, rng)
	if err != nil {
		return nil, err
	}
	violations, err := s.analytics.ViolationCountsByPrimary(ctx, &rng, reportViolationLimit)
	if err != nil {
		return nil, err
	}
	perf, err := s.analytics.EnforcerPerformance(ctx, &rng)
	if err != nil {
		return nil, err
	}
	perf = ActiveEnforcers(perf)
	revenue, err := s.analytics.PaidRevenue(ctx, &rng)
	if err != nil {
		return nil, err
	}

	violators := AllViolatorRows(txs, s.cipher, s.periods.Location())
	common := CommonViolationRows(violations)
	return &reportData{
		sections: map[model.ReportType][]model.ReportRow{
			model.ReportAllViolators:        violators,
			model.ReportCommonViolations:    common,
			model.ReportEnforcerPerformance: EnforcerRows(perf),
			model.ReportTotalRevenue:        RevenueRows(revenue),
		},
		summary: model.ReportSummary{
			TotalPenalty:        revenue.InexactFloat64(),
			TotalViolators:      len(violators),
			CommonViolations:    common,
			EnforcerPerformance: perf,
		},
	}, nil
}

func (s *ReportService) produce(ctx context.Context, reportType model.ReportType, rng model.DateRange) ([]model.ReportRow, error) {
	switch reportType {
	case model.ReportAllViolators:
		txs, err := s.transactions.InRange(ctx, rng)
		if err != nil {
			return nil, err
		}
		return AllViolatorRows(txs, s.cipher, s.periods.Location()), nil
	case model.ReportCommonViolations:
		counts, err := s.analytics.ViolationCountsByPrimary(ctx, &rng, reportViolationLimit)
		if err != nil {
			return nil, err
		}
		return CommonViolationRows(counts), nil
	case model.ReportEnforcerPerformance:
		perf, err := s.analytics.EnforcerPerformance(ctx, &rng)
		if err != nil {
			return nil, err
		}
		return EnforcerRows(ActiveEnforcers(perf)), nil
	default:
		revenue, err := s.analytics.PaidRevenue(ctx, &rng)
		if err != nil {
			return nil, err
		}
		return RevenueRows(revenue), nil
	}
}

func (s *ReportService) writeExports(ctx context.Context, reportType model.ReportType, doc export.Document, formats []string) ([]model.ReportFile, error) {
	stamp := s.periods.Now().Format(fileStampLayout) + "_" + uuid.NewString()[:8]
	files := make([]model.ReportFile, 0, len(formats))
	for _, format := range formats {
		exporter, _ := s.exporters.Get(format)
		data, err := exporter.Export(ctx, doc)
		if err != nil {
			metrics.ExportFailures.WithLabelValues(format).Inc()
			s.log.Error().Err(err).Str("format", format).Msg("report export failed")
			return nil, NewExternalServiceError(fmt.Sprintf("Failed to generate %s export.", format), err)
		}

		filename := fmt.Sprintf("%s_%s.%s", reportType, stamp, exporter.Extension())
		path, err := s.files.Save(filename, data)
		if err != nil {
			metrics.ExportFailures.WithLabelValues(format).Inc()
			s.log.Error().Err(err).Str("file", filename).Msg("report export could not be stored")
			return nil, NewExternalServiceError(fmt.Sprintf("Failed to store %s export.", format), err)
		}
		files = append(files, model.ReportFile{
			Format:   format,
			Filename: filename,
			MimeType: exporter.MimeType(),
			URL:      s.files.URL(filename),
			Path:     path,
		})
	}
	return files, nil
}

func jsonColumn(v interface{}) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode report column: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func dedupe(values []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
