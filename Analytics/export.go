package Analytics

import (
	"bytes"
	"fmt"
	"time"

	"Fatura/Models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// MonthlyReportXLSX renders one month's invoices and totals as an Excel
// workbook for download.
func MonthlyReportXLSX(db *gorm.DB, userID uint, month time.Month, year int) (*bytes.Buffer, error) {
	var invoices []Models.Invoice
	if err := db.Where("user_id = ?", userID).Preload("Customer").
		Order("issue_date ASC").Find(&invoices).Error; err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Invoices"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Number", "Customer", "Amount", "Paid", "Status", "Issue Date", "Due Date"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6FA"},
			Pattern: 1,
		},
	})
	if err == nil {
		f.SetRowStyle(sheetName, 1, 1, headerStyle)
	}

	row := 2
	for _, invoice := range invoices {
		if !inMonth(invoice.IssueDate, month, year) {
			continue
		}
		customerName := ""
		if invoice.Customer != nil {
			customerName = invoice.Customer.Name
		}
		dueDate := ""
		if invoice.DueDate != nil {
			dueDate = invoice.DueDate.UTC().Format("2006-01-02")
		}
		values := []interface{}{
			invoice.Number,
			customerName,
			invoice.Amount.InexactFloat64(),
			invoice.PaidAmount.InexactFloat64(),
			invoice.Status,
			invoice.IssueDate.UTC().Format("2006-01-02"),
			dueDate,
		}
		for i, value := range values {
			cell := fmt.Sprintf("%c%d", 'A'+i, row)
			f.SetCellValue(sheetName, cell, value)
		}
		row++
	}

	summary, err := Dashboard(db, userID, month, year)
	if err != nil {
		return nil, err
	}
	row++
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Invoiced")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), summary.Monthly.Invoices.InexactFloat64())
	row++
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Expensed")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), summary.Monthly.Expenses.InexactFloat64())
	row++
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Profit")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), summary.Monthly.Profit.InexactFloat64())

	return f.WriteToBuffer()
}
