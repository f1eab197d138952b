package interfaces

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	ledger "rental-cloud/internal/ledger/domain"
)

const dateLayout = "2006-01-02"

// BuildIncomeCSV renders ledger entries as CSV.
func BuildIncomeCSV(records []ledger.IncomeRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	_ = writer.Write([]string{
		"received_on",
		"category",
		"amount",
		"property_id",
		"unit_id",
		"lease_id",
		"payment_id",
		"description",
	})
	for _, record := range records {
		_ = writer.Write([]string{
			record.ReceivedOn.Format(dateLayout),
			string(record.Category),
			strconv.FormatFloat(record.Amount, 'f', 2, 64),
			record.PropertyID,
			record.UnitID,
			record.LeaseID,
			record.PaymentID,
			record.Description,
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildIncomeXLSX renders ledger entries plus a monthly rollup as XLSX.
func BuildIncomeXLSX(records []ledger.IncomeRecord, monthly []ledger.MonthlyIncome) ([]byte, error) {
	f := excelize.NewFile()
	entriesSheet := "entries"
	summarySheet := "monthly"
	f.SetSheetName("Sheet1", entriesSheet)
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(entriesSheet, "A1", "Received")
	_ = f.SetCellValue(entriesSheet, "B1", "Category")
	_ = f.SetCellValue(entriesSheet, "C1", "Amount")
	_ = f.SetCellValue(entriesSheet, "D1", "Property")
	_ = f.SetCellValue(entriesSheet, "E1", "Unit")
	_ = f.SetCellValue(entriesSheet, "F1", "Lease")
	_ = f.SetCellValue(entriesSheet, "G1", "Description")
	for i, record := range records {
		row := i + 2
		_ = f.SetCellValue(entriesSheet, fmt.Sprintf("A%d", row), record.ReceivedOn.Format(dateLayout))
		_ = f.SetCellValue(entriesSheet, fmt.Sprintf("B%d", row), string(record.Category))
		_ = f.SetCellValue(entriesSheet, fmt.Sprintf("C%d", row), record.Amount)
		_ = f.SetCellValue(entriesSheet, fmt.Sprintf("D%d", row), record.PropertyID)
		_ = f.SetCellValue(entriesSheet, fmt.Sprintf("E%d", row), record.UnitID)
		_ = f.SetCellValue(entriesSheet, fmt.Sprintf("F%d", row), record.LeaseID)
		_ = f.SetCellValue(entriesSheet, fmt.Sprintf("G%d", row), record.Description)
	}

	_ = f.SetCellValue(summarySheet, "A1", "Month")
	_ = f.SetCellValue(summarySheet, "B1", "Category")
	_ = f.SetCellValue(summarySheet, "C1", "Total")
	_ = f.SetCellValue(summarySheet, "D1", "Entries")
	for i, row := range monthly {
		line := i + 2
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", line), row.Month.Format("2006-01"))
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", line), string(row.Category))
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("C%d", line), row.Total)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("D%d", line), row.Count)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
