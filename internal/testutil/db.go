package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"posu-analytics/internal/db"
	"posu-analytics/internal/model"
)

// NewDB opens an isolated in-memory SQLite database with the full schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(database))
	return database
}

type Fixtures struct {
	t  *testing.T
	db *gorm.DB
}

func NewFixtures(t *testing.T, database *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: database}
}

func (f *Fixtures) Actor(role model.Role, first, last string) model.Actor {
	f.t.Helper()
	a := model.Actor{
		Role:      role,
		FirstName: first,
		LastName:  last,
		Username:  strings.ToLower(first + "." + last),
		Status:    model.ActorActivated,
	}
	require.NoError(f.t, f.db.Create(&a).Error)
	return a
}

func (f *Fixtures) Violator(first, last string) model.Violator {
	f.t.Helper()
	v := model.Violator{
		FirstName: first,
		LastName:  last,
		Barangay:  "San Fabian",
		City:      "Echague",
		Province:  "Isabela",
	}
	require.NoError(f.t, f.db.Create(&v).Error)
	return v
}

func (f *Fixtures) Violation(name string, fine int64) model.Violation {
	f.t.Helper()
	v := model.Violation{Name: name, Description: name, FineAmount: decimal.NewFromInt(fine)}
	require.NoError(f.t, f.db.Create(&v).Error)
	return v
}

func (f *Fixtures) Vehicle(vt model.VehicleType, make, mdl string) model.Vehicle {
	f.t.Helper()
	v := model.Vehicle{VehicleType: vt, Make: make, Model: mdl, Color: "Red", OwnerFirstName: "Owner", OwnerLastName: "Person"}
	require.NoError(f.t, f.db.Create(&v).Error)
	return v
}

// TxOpts describes a transaction fixture; zero values get sensible defaults.
type TxOpts struct {
	Violator  model.Violator
	Violation *model.Violation
	Vehicle   *model.Vehicle
	Officer   *model.Actor
	Status    model.TransactionStatus
	Fine      int64
	At        time.Time
	CreatedAt time.Time
	Location  string
	Lat, Lng  *float64
}

func (f *Fixtures) Transaction(o TxOpts) model.Transaction {
	f.t.Helper()
	if o.Status == "" {
		o.Status = model.StatusPending
	}
	tx := model.Transaction{
		ViolatorID:   o.Violator.ID,
		Status:       o.Status,
		FineAmount:   decimal.NewFromInt(o.Fine),
		DateTime:     o.At.UTC(),
		Location:     o.Location,
		GPSLatitude:  o.Lat,
		GPSLongitude: o.Lng,
	}
	if !o.CreatedAt.IsZero() {
		tx.CreatedAt = o.CreatedAt.UTC()
	}
	if o.Violation != nil {
		tx.ViolationID = &o.Violation.ID
	}
	if o.Vehicle != nil {
		tx.VehicleID = &o.Vehicle.ID
	}
	if o.Officer != nil {
		tx.ApprehendingOfficer = &o.Officer.ID
	}
	require.NoError(f.t, f.db.Create(&tx).Error)
	return tx
}

func Float(v float64) *float64 { return &v }
