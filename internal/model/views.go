package model

import "time"

type TransactionView struct {
	ID                uint              `json:"id"`
	TicketNumber      int64             `json:"ticket_number"`
	Status            TransactionStatus `json:"status"`
	Location          string            `json:"location"`
	FormattedLocation string            `json:"formatted_location"`
	GPSLatitude       *float64          `json:"gps_latitude"`
	GPSLongitude      *float64          `json:"gps_longitude"`
	FineAmount        float64           `json:"fine_amount"`
	DateTime          time.Time         `json:"date_time"`
	AttemptNumber     int               `json:"attempt_number"`
	Violator          *ViolatorView     `json:"violator"`
	Vehicle           *VehicleView      `json:"vehicle"`
	Violation         *ViolationView    `json:"violation"`
	Violations        []ViolationView   `json:"violations"`
	Officer           *OfficerView      `json:"officer"`
}

type ViolatorView struct {
	ID                uint    `json:"id"`
	FullName          string  `json:"full_name"`
	FirstName         string  `json:"first_name"`
	MiddleName        *string `json:"middle_name"`
	LastName          string  `json:"last_name"`
	MobileNumber      *string `json:"mobile_number"`
	LicenseNumber     *string `json:"license_number"`
	Barangay          string  `json:"barangay"`
	City              string  `json:"city"`
	Province          string  `json:"province"`
	TransactionsCount int64   `json:"transactions_count"`
	TotalAmount       float64 `json:"total_amount"`
}

type VehicleView struct {
	ID          uint        `json:"id"`
	PlateNumber *string     `json:"plate_number"`
	Make        string      `json:"make"`
	Model       string      `json:"model"`
	Color       string      `json:"color"`
	VehicleType VehicleType `json:"vehicle_type"`
	OwnerName   string      `json:"owner_name"`
}

type ViolationView struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	FineAmount float64 `json:"fine_amount"`
}

type OfficerView struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
	Username string `json:"username"`
}

type TransactionPage struct {
	Transactions []TransactionView `json:"transactions"`
	Pagination   Pagination        `json:"pagination"`
}
