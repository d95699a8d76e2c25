// Package export renders loan statements as XLSX workbooks.
package export

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary  = "Summary"
	SheetSchedule = "Schedule"
	SheetCharges  = "Charges"
)

type Statement struct {
	LoanID       string
	LoanName     string
	Lender       string
	Borrower     string
	Principal    decimal.Decimal
	InterestRate decimal.Decimal
	Tenure       int
	EMI          decimal.Decimal
	Status       string
	Paid         int
	Rows         []ScheduleRow
	Charges      []ChargeRow
}

type ScheduleRow struct {
	Sequence int
	DueDate  string
	Amount   decimal.Decimal
	Status   string
	PaidAt   string
	LateFee  decimal.Decimal
}

type ChargeRow struct {
	Date   string
	Kind   string
	Amount decimal.Decimal
	Reason string
}

var (
	scheduleHeaders = []string{"#", "Due date", "Amount", "Status", "Paid at", "Late fee"}
	chargeHeaders   = []string{"Date", "Kind", "Amount", "Reason"}
)

func money(d decimal.Decimal) float64 { return d.Round(2).InexactFloat64() }

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

// Render builds the workbook and returns its bytes.
func Render(s Statement) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	f.SetSheetName(f.GetSheetName(0), SheetSummary)
	_ = f.SetDocProps(&excelize.DocProperties{
		Creator: "FlexEMI",
		Title:   fmt.Sprintf("Statement %s", s.LoanID),
	})

	summary := [][]any{
		{"Loan", s.LoanName},
		{"Loan ID", s.LoanID},
		{"Lender", s.Lender},
		{"Borrower", s.Borrower},
		{"Principal", money(s.Principal)},
		{"Interest rate (% p.a.)", s.InterestRate.InexactFloat64()},
		{"Tenure (months)", s.Tenure},
		{"Monthly installment", money(s.EMI)},
		{"Installments paid", fmt.Sprintf("%d / %d", s.Paid, s.Tenure)},
		{"Status", s.Status},
	}
	for i, r := range summary {
		writeRow(f, SheetSummary, i+1, r...)
	}

	if _, err := f.NewSheet(SheetSchedule); err != nil {
		return nil, err
	}
	writeRow(f, SheetSchedule, 1, toAny(scheduleHeaders)...)
	for i, r := range s.Rows {
		writeRow(f, SheetSchedule, i+2, r.Sequence, r.DueDate, money(r.Amount), r.Status, r.PaidAt, money(r.LateFee))
	}

	if _, err := f.NewSheet(SheetCharges); err != nil {
		return nil, err
	}
	writeRow(f, SheetCharges, 1, toAny(chargeHeaders)...)
	for i, c := range s.Charges {
		writeRow(f, SheetCharges, i+2, c.Date, c.Kind, money(c.Amount), c.Reason)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
