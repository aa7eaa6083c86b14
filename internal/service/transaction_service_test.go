package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"posu-analytics/internal/audit"
	"posu-analytics/internal/model"
	"posu-analytics/internal/repository"
	"posu-analytics/internal/testutil"
)

type ledgerFixture struct {
	db       *gorm.DB
	svc      *TransactionService
	audit    *recordingAudit
	namer    *stubNamer
	admin    model.Actor
	enforcer model.Actor
	first    model.Transaction
	second   model.Transaction
	other    model.Transaction
}

func newLedgerFixture(t *testing.T) ledgerFixture {
	database := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, database)
	cipher := testCipher(t)

	admin := fx.Actor(model.RoleAdmin, "Ada", "Admin")
	enforcer := fx.Actor(model.RoleEnforcer, "Eli", "Enforcer")
	helmet := fx.Violation("No Helmet", 500)

	rico := fx.Violator("Rico", "Repeat")
	require.NoError(t, database.Model(&rico).Updates(map[string]interface{}{
		"mobile_number":  sealed(t, cipher, "09171234567"),
		"license_number": "corrupted",
	}).Error)
	olga := fx.Violator("Olga", "Once")

	car := fx.Vehicle(model.VehicleCar, "Toyota", "Vios")
	require.NoError(t, database.Model(&car).Update("plate_number", sealed(t, cipher, "ABC 1234")).Error)

	second := fx.Transaction(testutil.TxOpts{Violator: rico, Violation: &helmet, Vehicle: &car, Officer: &enforcer, Fine: 500,
		At: localDay(12, 9), Location: "GPS Location", Lat: testutil.Float(16.7123456), Lng: testutil.Float(121.6712344)})
	first := fx.Transaction(testutil.TxOpts{Violator: rico, Violation: &helmet, Officer: &enforcer, Fine: 300,
		At: localDay(1, 9), Location: "121.680000, 16.710000"})
	other := fx.Transaction(testutil.TxOpts{Violator: olga, Violation: &helmet, Officer: &enforcer, Status: model.StatusPaid, Fine: 500,
		At: localDay(13, 8), Location: ""})

	rec := &recordingAudit{}
	namer := newStubNamer()
	svc := NewTransactionService(
		repository.NewTransactionRepository(database),
		repository.NewActorRepository(database),
		testResolver(),
		namer,
		cipher,
		rec,
		testLogger(),
	)
	return ledgerFixture{db: database, svc: svc, audit: rec, namer: namer, admin: admin, enforcer: enforcer, first: first, second: second, other: other}
}

func findView(t *testing.T, page *model.TransactionPage, id uint) model.TransactionView {
	t.Helper()
	for _, v := range page.Transactions {
		if v.ID == id {
			return v
		}
	}
	t.Fatalf("transaction %d not in page", id)
	return model.TransactionView{}
}

func TestSearchBuildsViews(t *testing.T) {
	fx := newLedgerFixture(t)

	page, err := fx.svc.Search(context.Background(), TransactionQuery{})
	require.NoError(t, err)
	require.Len(t, page.Transactions, 3)
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, model.DefaultPerPage, page.Pagination.PerPage)

	second := findView(t, page, fx.second.ID)
	assert.Equal(t, 2, second.AttemptNumber)
	assert.Equal(t, "Place 16.7123, 121.6712", second.Location)
	assert.Equal(t, "GPS Location", second.FormattedLocation)
	require.NotNil(t, second.Violator)
	assert.Equal(t, int64(2), second.Violator.TransactionsCount)
	assert.Equal(t, 800.0, second.Violator.TotalAmount)
	require.NotNil(t, second.Violator.MobileNumber)
	assert.Equal(t, "09171234567", *second.Violator.MobileNumber)
	assert.Nil(t, second.Violator.LicenseNumber)
	require.NotNil(t, second.Vehicle)
	require.NotNil(t, second.Vehicle.PlateNumber)
	assert.Equal(t, "ABC 1234", *second.Vehicle.PlateNumber)
	require.NotNil(t, second.Officer)
	assert.Equal(t, "Eli Enforcer", second.Officer.FullName)

	first := findView(t, page, fx.first.ID)
	assert.Equal(t, 1, first.AttemptNumber)
	assert.Equal(t, "16.710000, 121.680000", first.FormattedLocation)

	other := findView(t, page, fx.other.ID)
	assert.Equal(t, 1, other.AttemptNumber)
	assert.Equal(t, "N/A", other.FormattedLocation)
}

func TestSearchFormattedLocationUsesNamer(t *testing.T) {
	fx := newLedgerFixture(t)
	fx.namer.lookups[[2]float64{16.71, 121.68}] = "Echague Poblacion"

	page, err := fx.svc.Search(context.Background(), TransactionQuery{})
	require.NoError(t, err)
	assert.Equal(t, "Echague Poblacion", findView(t, page, fx.first.ID).FormattedLocation)
}

func TestSearchExplicitDatesOverrideKeyword(t *testing.T) {
	fx := newLedgerFixture(t)

	page, err := fx.svc.Search(context.Background(), TransactionQuery{DateRange: "today", DateFrom: "2024-03-01", DateTo: "2024-03-05"})
	require.NoError(t, err)
	require.Len(t, page.Transactions, 1)
	assert.Equal(t, fx.first.ID, page.Transactions[0].ID)

	page, err = fx.svc.Search(context.Background(), TransactionQuery{DateRange: "today"})
	require.NoError(t, err)
	require.Len(t, page.Transactions, 1)
	assert.Equal(t, fx.other.ID, page.Transactions[0].ID)
}

func TestSearchRepeatOffenderFilter(t *testing.T) {
	fx := newLedgerFixture(t)

	page, err := fx.svc.Search(context.Background(), TransactionQuery{RepeatOffender: "true"})
	require.NoError(t, err)
	assert.Len(t, page.Transactions, 2)

	page, err = fx.svc.Search(context.Background(), TransactionQuery{RepeatOffender: "false"})
	require.NoError(t, err)
	require.Len(t, page.Transactions, 1)
	assert.Equal(t, fx.other.ID, page.Transactions[0].ID)
}

func TestSearchRejectsBadInput(t *testing.T) {
	fx := newLedgerFixture(t)

	_, err := fx.svc.Search(context.Background(), TransactionQuery{VehicleType: "Boat", RepeatOffender: "maybe", DateFrom: "yesterday-ish"})
	require.Error(t, err)

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Fields, "vehicle_type")
	assert.Contains(t, appErr.Fields, "repeat_offender")
	assert.Contains(t, appErr.Fields, "dateFrom")
}

func TestMarkPaid(t *testing.T) {
	fx := newLedgerFixture(t)
	principal := model.Principal{ActorID: fx.admin.ID, Role: model.RoleAdmin}

	view, err := fx.svc.MarkPaid(context.Background(), principal, fx.second.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, view.Status)
	assert.Equal(t, 2, view.AttemptNumber)

	var stored model.Transaction
	require.NoError(t, fx.db.First(&stored, fx.second.ID).Error)
	assert.Equal(t, model.StatusPaid, stored.Status)

	entries := fx.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionTransactionUpdated, entries[0].Action)
	assert.Equal(t, "Ada Admin marked as Paid Ticket #1001", entries[0].Description)

	_, err = fx.svc.MarkPaid(context.Background(), principal, fx.second.ID)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Len(t, fx.audit.Entries(), 1)
}

func TestMarkPaidErrors(t *testing.T) {
	fx := newLedgerFixture(t)

	_, err := fx.svc.MarkPaid(context.Background(), model.Principal{ActorID: fx.admin.ID, Role: model.RoleAdmin}, 9999)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = fx.svc.MarkPaid(context.Background(), model.Principal{ActorID: fx.admin.ID, Role: model.RoleHead}, fx.first.ID)
	assert.True(t, errors.Is(err, ErrPermissionDenied))
}
