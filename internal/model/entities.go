package model

import (
	"database/sql"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TransactionStatus string

const (
	StatusPending TransactionStatus = "Pending"
	StatusPaid    TransactionStatus = "Paid"
)

const firstTicketNumber = 1001

type Transaction struct {
	ID                  uint              `gorm:"primaryKey" json:"id"`
	TicketNumber        int64             `gorm:"uniqueIndex" json:"ticket_number"`
	ViolatorID          uint              `gorm:"index;not null" json:"violator_id"`
	VehicleID           *uint             `gorm:"index" json:"vehicle_id"`
	ViolationID         *uint             `gorm:"index" json:"violation_id"`
	ApprehendingOfficer *uint             `gorm:"column:apprehending_officer;index" json:"apprehending_officer"`
	Status              TransactionStatus `gorm:"type:varchar(16);index;not null;default:Pending" json:"status"`
	Location            string            `json:"location"`
	GPSLatitude         *float64          `gorm:"column:gps_latitude" json:"gps_latitude"`
	GPSLongitude        *float64          `gorm:"column:gps_longitude" json:"gps_longitude"`
	GPSAccuracy         *float64          `gorm:"column:gps_accuracy" json:"gps_accuracy"`
	GPSTimestamp        *time.Time        `gorm:"column:gps_timestamp" json:"gps_timestamp"`
	FineAmount          decimal.Decimal   `gorm:"type:decimal(10,2);not null;default:0" json:"fine_amount"`
	DateTime            time.Time         `gorm:"column:date_time;index" json:"date_time"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
	DeletedAt           gorm.DeletedAt    `gorm:"index" json:"-"`

	Violator   *Violator   `gorm:"foreignKey:ViolatorID" json:"violator,omitempty"`
	Vehicle    *Vehicle    `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Violation  *Violation  `gorm:"foreignKey:ViolationID" json:"violation,omitempty"`
	Violations []Violation `gorm:"many2many:transaction_violation;" json:"violations,omitempty"`
	Officer    *Actor      `gorm:"foreignKey:ApprehendingOfficer" json:"officer,omitempty"`
}

// BeforeCreate assigns the next ticket number when none was supplied.
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.TicketNumber != 0 {
		return nil
	}
	var last sql.NullInt64
	row := tx.Session(&gorm.Session{NewDB: true}).
		Model(&Transaction{}).
		Unscoped().
		Select("MAX(ticket_number)").
		Row()
	if err := row.Scan(&last); err != nil {
		return err
	}
	if !last.Valid {
		t.TicketNumber = firstTicketNumber
		return nil
	}
	t.TicketNumber = last.Int64 + 1
	return nil
}

func (t Transaction) HasGPS() bool {
	return t.GPSLatitude != nil && t.GPSLongitude != nil
}

type Violator struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	Email              *string        `json:"email"`
	FirstName          string         `gorm:"not null" json:"first_name"`
	MiddleName         *string        `json:"middle_name"`
	LastName           string         `gorm:"not null" json:"last_name"`
	MobileNumber       *string        `gorm:"type:text" json:"-"`
	Gender             bool           `json:"gender"`
	LicenseNumber      *string        `gorm:"type:text" json:"-"`
	Barangay           string         `json:"barangay"`
	City               string         `json:"city"`
	Province           string         `json:"province"`
	Professional       bool           `json:"professional"`
	LicenseSuspendedAt *time.Time     `json:"license_suspended_at"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	Transactions []Transaction `gorm:"foreignKey:ViolatorID" json:"-"`
}

func (v Violator) FullName() string {
	return joinName(v.FirstName, deref(v.MiddleName), v.LastName)
}

type Vehicle struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	ViolatorsID     *uint          `gorm:"column:violators_id;index" json:"violators_id"`
	OwnerFirstName  string         `json:"owner_first_name"`
	OwnerMiddleName *string        `json:"owner_middle_name"`
	OwnerLastName   string         `json:"owner_last_name"`
	PlateNumber     *string        `gorm:"type:text" json:"-"`
	Make            string         `json:"make"`
	Model           string         `json:"model"`
	Color           string         `json:"color"`
	VehicleType     VehicleType    `gorm:"type:varchar(32)" json:"vehicle_type"`
	OwnerBarangay   string         `json:"owner_barangay"`
	OwnerCity       string         `json:"owner_city"`
	OwnerProvince   string         `json:"owner_province"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (v Vehicle) OwnerName() string {
	return joinName(v.OwnerFirstName, deref(v.OwnerMiddleName), v.OwnerLastName)
}

type VehicleType string

const (
	VehicleMotor      VehicleType = "Motor"
	VehicleMotorcycle VehicleType = "Motorcycle"
	VehicleVan        VehicleType = "Van"
	VehicleCar        VehicleType = "Car"
	VehicleSUV        VehicleType = "SUV"
	VehicleTruck      VehicleType = "Truck"
	VehicleBus        VehicleType = "Bus"
)

var vehicleTypes = []VehicleType{VehicleMotor, VehicleMotorcycle, VehicleVan, VehicleCar, VehicleSUV, VehicleTruck, VehicleBus}

func ParseVehicleType(s string) (VehicleType, bool) {
	for _, vt := range vehicleTypes {
		if strings.EqualFold(string(vt), s) {
			return vt, true
		}
	}
	return "", false
}

type Violation struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `json:"description"`
	FineAmount  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"fine_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

const ActorActivated = "activated"

type Actor struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Role       Role           `gorm:"type:varchar(16);index;not null" json:"role"`
	FirstName  string         `json:"first_name"`
	MiddleName *string        `json:"middle_name"`
	LastName   string         `json:"last_name"`
	Extension  *string        `json:"extension"`
	Username   string         `gorm:"index" json:"username"`
	Office     string         `json:"office"`
	Email      string         `json:"email"`
	Status     string         `gorm:"type:varchar(16);default:activated" json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (a Actor) FullName() string {
	return joinName(a.FirstName, deref(a.MiddleName), a.LastName, deref(a.Extension))
}

type Report struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Type            string         `gorm:"type:varchar(32);index" json:"type"`
	Period          string         `gorm:"type:varchar(32)" json:"period"`
	StartDate       time.Time      `json:"start_date"`
	EndDate         time.Time      `json:"end_date"`
	ReportContent   datatypes.JSON `json:"report_content"`
	Summary         datatypes.JSON `json:"summary"`
	Files           datatypes.JSON `json:"files"`
	GeneratedByRole Role           `gorm:"type:varchar(16)" json:"generated_by_type"`
	GeneratedByID   uint           `json:"generated_by_id"`
	PreparedByName  string         `json:"prepared_by_name"`
	NotedByName     string         `json:"noted_by_name"`
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

type AuditLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ActorRole   Role      `gorm:"type:varchar(16);index" json:"actor_role"`
	ActorID     uint      `gorm:"index" json:"actor_id"`
	ActorName   string    `json:"actor_name"`
	Action      string    `gorm:"index" json:"action"`
	TargetType  string    `json:"target_type"`
	TargetID    *uint     `json:"target_id"`
	TargetName  string    `json:"target_name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// All returns every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&Actor{},
		&Violator{},
		&Vehicle{},
		&Violation{},
		&Transaction{},
		&Report{},
		&AuditLog{},
	}
}

func joinName(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
