package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"posu-analytics/internal/audit"
	"posu-analytics/internal/geo"
	"posu-analytics/internal/model"
	"posu-analytics/internal/period"
	"posu-analytics/internal/repository"
	"posu-analytics/internal/secure"
)

type AuditRecorder interface {
	Record(entry audit.Entry)
}

type TransactionService struct {
	transactions *repository.TransactionRepository
	actors       *repository.ActorRepository
	periods      *period.Resolver
	namer        LocationNamer
	cipher       *secure.Cipher
	audit        AuditRecorder
	log          zerolog.Logger
}

func NewTransactionService(
	transactions *repository.TransactionRepository,
	actors *repository.ActorRepository,
	periods *period.Resolver,
	namer LocationNamer,
	cipher *secure.Cipher,
	recorder AuditRecorder,
	log zerolog.Logger,
) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		actors:       actors,
		periods:      periods,
		namer:        namer,
		cipher:       cipher,
		audit:        recorder,
		log:          log,
	}
}

type TransactionQuery struct {
	Search         string
	ViolationID    *uint
	VehicleType    string
	Address        string
	RepeatOffender string
	DateFrom       string
	DateTo         string
	DateRange      string
	Page           int
	PerPage        int
}

func (s *TransactionService) Search(ctx context.Context, q TransactionQuery) (*model.TransactionPage, error) {
	filter, err := s.buildFilter(q)
	if err != nil {
		return nil, err
	}
	filter = filter.Normalize()

	txs, total, err := s.transactions.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	violatorIDs := uniqueViolators(txs)
	totals, err := s.transactions.ViolatorTotals(ctx, violatorIDs)
	if err != nil {
		return nil, err
	}
	occurrences, err := s.transactions.Occurrences(ctx, violatorIDs)
	if err != nil {
		return nil, err
	}
	attempts := AttemptNumbers(occurrences)

	views := make([]model.TransactionView, 0, len(txs))
	for i := range txs {
		view := s.view(ctx, &txs[i], totals)
		if n, ok := attempts[view.ID]; ok && n > 0 {
			view.AttemptNumber = n
		}
		views = append(views, view)
	}

	return &model.TransactionPage{
		Transactions: views,
		Pagination:   model.NewPagination(filter.Page, filter.PerPage, total),
	}, nil
}

func (s *TransactionService) buildFilter(q TransactionQuery) (model.TransactionFilter, error) {
	filter := model.TransactionFilter{
		Search:      q.Search,
		ViolationID: q.ViolationID,
		Address:     q.Address,
		Page:        q.Page,
		PerPage:     q.PerPage,
	}
	fields := map[string][]string{}

	if q.VehicleType != "" {
		vt, ok := model.ParseVehicleType(q.VehicleType)
		if !ok {
			fields["vehicle_type"] = []string{"The selected vehicle type is invalid."}
		} else {
			filter.VehicleType = &vt
		}
	}

	switch q.RepeatOffender {
	case "", "true", "false":
		filter.RepeatOffender = model.RepeatFilter(q.RepeatOffender)
	case "1":
		filter.RepeatOffender = model.RepeatOnly
	case "0":
		filter.RepeatOffender = model.RepeatExclude
	default:
		fields["repeat_offender"] = []string{"The repeat offender field must be true or false."}
	}

	if q.DateFrom != "" || q.DateTo != "" {
		rng := model.DateRange{}
		if q.DateFrom != "" {
			from, err := s.periods.ParseDate(q.DateFrom)
			if err != nil {
				fields["dateFrom"] = []string{"The dateFrom is not a valid date."}
			}
			rng.From = period.StartOfDay(from)
		}
		if q.DateTo != "" {
			to, err := s.periods.ParseDate(q.DateTo)
			if err != nil {
				fields["dateTo"] = []string{"The dateTo is not a valid date."}
			}
			rng.To = period.EndOfDay(to)
		} else {
			rng.To = period.EndOfDay(s.periods.Now())
		}
		filter.Range = &rng
	} else if q.DateRange != "" {
		filter.Range = s.periods.LedgerRange(q.DateRange)
	}

	if len(fields) > 0 {
		return model.TransactionFilter{}, NewValidationError(fields)
	}
	return filter, nil
}

// MarkPaid settles a pending citation. Paid citations never move back to pending.
func (s *TransactionService) MarkPaid(ctx context.Context, principal model.Principal, id uint) (*model.TransactionView, error) {
	actor, err := s.actors.FindByPrincipal(ctx, principal)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPermissionDenied
	}
	if err != nil {
		return nil, err
	}

	tx, err := s.transactions.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewNotFoundError("Transaction not found.")
	}
	if err != nil {
		return nil, err
	}
	if tx.Status == model.StatusPaid {
		return nil, NewValidationError(map[string][]string{"status": {"Transaction is already paid."}})
	}

	updated, err := s.transactions.UpdateStatus(ctx, id, model.StatusPending, model.StatusPaid)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, NewValidationError(map[string][]string{"status": {"Transaction is already paid."}})
	}
	tx.Status = model.StatusPaid

	actorName := actor.FullName()
	s.audit.Record(audit.Entry{
		ActorRole:   principal.Role,
		ActorID:     principal.ActorID,
		ActorName:   actorName,
		Action:      audit.ActionTransactionUpdated,
		TargetType:  "Transaction",
		TargetID:    &tx.ID,
		TargetName:  fmt.Sprintf("Ticket #%d", tx.TicketNumber),
		Description: fmt.Sprintf("%s marked as Paid Ticket #%d", actorName, tx.TicketNumber),
	})

	totals, err := s.transactions.ViolatorTotals(ctx, []uint{tx.ViolatorID})
	if err != nil {
		return nil, err
	}
	view := s.view(ctx, tx, totals)
	occurrences, err := s.transactions.Occurrences(ctx, []uint{tx.ViolatorID})
	if err != nil {
		return nil, err
	}
	if n, ok := AttemptNumbers(occurrences)[tx.ID]; ok {
		view.AttemptNumber = n
	}
	return &view, nil
}

func (s *TransactionService) view(ctx context.Context, tx *model.Transaction, totals map[uint]repository.ViolatorTotals) model.TransactionView {
	view := model.TransactionView{
		ID:                tx.ID,
		TicketNumber:      tx.TicketNumber,
		Status:            tx.Status,
		Location:          s.displayLocation(ctx, tx),
		FormattedLocation: s.formattedLocation(ctx, tx),
		GPSLatitude:       tx.GPSLatitude,
		GPSLongitude:      tx.GPSLongitude,
		FineAmount:        tx.FineAmount.InexactFloat64(),
		DateTime:          tx.DateTime.In(s.periods.Location()),
		AttemptNumber:     1,
		Violations:        make([]model.ViolationView, 0, len(tx.Violations)),
	}

	if v := tx.Violator; v != nil {
		t := totals[v.ID]
		view.Violator = &model.ViolatorView{
			ID:                v.ID,
			FullName:          v.FullName(),
			FirstName:         v.FirstName,
			MiddleName:        v.MiddleName,
			LastName:          v.LastName,
			MobileNumber:      s.cipher.Reveal(v.MobileNumber),
			LicenseNumber:     s.cipher.Reveal(v.LicenseNumber),
			Barangay:          v.Barangay,
			City:              v.City,
			Province:          v.Province,
			TransactionsCount: t.Count,
			TotalAmount:       t.TotalAmount.InexactFloat64(),
		}
	}
	if v := tx.Vehicle; v != nil {
		view.Vehicle = &model.VehicleView{
			ID:          v.ID,
			PlateNumber: s.cipher.Reveal(v.PlateNumber),
			Make:        v.Make,
			Model:       v.Model,
			Color:       v.Color,
			VehicleType: v.VehicleType,
			OwnerName:   v.OwnerName(),
		}
	}
	if v := tx.Violation; v != nil {
		view.Violation = &model.ViolationView{ID: v.ID, Name: v.Name, FineAmount: v.FineAmount.InexactFloat64()}
	}
	for _, v := range tx.Violations {
		view.Violations = append(view.Violations, model.ViolationView{ID: v.ID, Name: v.Name, FineAmount: v.FineAmount.InexactFloat64()})
	}
	if o := tx.Officer; o != nil {
		view.Officer = &model.OfficerView{ID: o.ID, FullName: o.FullName(), Username: o.Username}
	}
	return view
}

// displayLocation replaces placeholder labels with a resolved place name when coordinates are known.
func (s *TransactionService) displayLocation(ctx context.Context, tx *model.Transaction) string {
	if !geo.IsGenericLabel(tx.Location) || !tx.HasGPS() {
		return tx.Location
	}
	return s.namer.Name(ctx, geo.Round(*tx.GPSLatitude, 4), geo.Round(*tx.GPSLongitude, 4))
}

// formattedLocation renders coordinate-shaped labels as a place name, falling back to the corrected pair.
func (s *TransactionService) formattedLocation(ctx context.Context, tx *model.Transaction) string {
	first, second, ok := geo.ParseCoordinateLabel(tx.Location)
	if !ok {
		if tx.Location == "" {
			return "N/A"
		}
		return tx.Location
	}

	lat, lng := geo.CorrectLabelCoordinates(first, second)
	if tx.HasGPS() {
		lat, lng = geo.Round(*tx.GPSLatitude, 6), geo.Round(*tx.GPSLongitude, 6)
	}
	if name, ok := s.namer.Lookup(ctx, lat, lng); ok {
		return name
	}
	return geo.FormatPair(lat, lng)
}

func uniqueViolators(txs []model.Transaction) []uint {
	seen := map[uint]bool{}
	var ids []uint
	for _, tx := range txs {
		if !seen[tx.ViolatorID] {
			seen[tx.ViolatorID] = true
			ids = append(ids, tx.ViolatorID)
		}
	}
	return ids
}
