package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"posu-analytics/internal/model"
	"posu-analytics/internal/secure"
)

const notAvailable = "N/A"

// AllViolatorRows lists one row per citation in the order given.
func AllViolatorRows(txs []model.Transaction, cipher *secure.Cipher, loc *time.Location) []model.ReportRow {
	rows := make([]model.ReportRow, 0, len(txs))
	for _, tx := range txs {
		violatorName, violatorAddress := notAvailable, notAvailable
		if v := tx.Violator; v != nil {
			violatorName = orNA(v.FullName())
			violatorAddress = address(v.Barangay, v.City, v.Province)
		}

		ownerName, ownerAddress := notAvailable, notAvailable
		vehicleType, vehicleMake, vehicleModel, plate := notAvailable, notAvailable, notAvailable, notAvailable
		if v := tx.Vehicle; v != nil {
			ownerName = orNA(v.OwnerName())
			ownerAddress = address(v.OwnerBarangay, v.OwnerCity, v.OwnerProvince)
			vehicleType = orNA(string(v.VehicleType))
			vehicleMake = orNA(v.Make)
			vehicleModel = orNA(v.Model)
			if p := cipher.Reveal(v.PlateNumber); p != nil {
				plate = orNA(*p)
			}
		}

		violationName := notAvailable
		if tx.Violation != nil {
			violationName = orNA(tx.Violation.Name)
		}

		officerName, office := notAvailable, notAvailable
		if o := tx.Officer; o != nil {
			officerName = orNA(o.FullName())
			office = orNA(o.Office)
		}

		ticketDate, ticketTime := notAvailable, notAvailable
		if !tx.DateTime.IsZero() {
			at := tx.DateTime.In(loc)
			ticketDate = at.Format("January 2, 2006")
			ticketTime = at.Format("3:04 PM")
		}

		rows = append(rows, model.ReportRow{
			{Name: "Violator Name", Value: violatorName},
			{Name: "Violator Address", Value: violatorAddress},
			{Name: "Violation Name", Value: violationName},
			{Name: "Owner Name", Value: ownerName},
			{Name: "Owner Address", Value: ownerAddress},
			{Name: "Vehicle Type", Value: vehicleType},
			{Name: "Vehicle Make", Value: vehicleMake},
			{Name: "Vehicle Model", Value: vehicleModel},
			{Name: "Plate Number", Value: plate},
			{Name: "Ticket Number", Value: tx.TicketNumber},
			{Name: "Ticket Date", Value: ticketDate},
			{Name: "Ticket Time", Value: ticketTime},
			{Name: "Officer Name", Value: officerName},
			{Name: "Officer Office", Value: office},
			{Name: "Remarks", Value: string(tx.Status)},
			{Name: "Penalty Amount", Value: tx.FineAmount.InexactFloat64()},
		})
	}
	return rows
}

func CommonViolationRows(counts []model.ViolationCount) []model.ReportRow {
	rows := make([]model.ReportRow, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, model.ReportRow{
			{Name: "ID", Value: c.ID},
			{Name: "Violation Name", Value: c.Name},
			{Name: "Count", Value: c.TransactionsCount},
		})
	}
	return rows
}

func EnforcerRows(perf []model.EnforcerPerformance) []model.ReportRow {
	rows := make([]model.ReportRow, 0, len(perf))
	for _, p := range perf {
		rows = append(rows, model.ReportRow{
			{Name: "Enforcer Name", Value: p.Name},
			{Name: "Violations Issued", Value: p.TotalTransactions},
			{Name: "Collection Rate (%)", Value: p.CollectionRate},
			{Name: "Total Fines", Value: p.TotalFines},
		})
	}
	return rows
}

func RevenueRows(total decimal.Decimal) []model.ReportRow {
	return []model.ReportRow{{{Name: "Total Revenue", Value: total.InexactFloat64()}}}
}

func address(barangay, city, province string) string {
	local := strings.TrimSpace(strings.TrimSpace(barangay) + " " + strings.TrimSpace(city))
	province = strings.TrimSpace(province)
	switch {
	case local == "" && province == "":
		return notAvailable
	case province == "":
		return local
	case local == "":
		return province
	default:
		return local + ", " + province
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}
