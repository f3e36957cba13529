package Analytics

import (
	"sort"
	"time"

	"Fatura/Models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// All date bucketing in this package extracts year and month in UTC.
// Mixing local-time and UTC extraction across endpoints shifts records
// across month boundaries depending on the server timezone.

type PeriodTotals struct {
	Invoices decimal.Decimal `json:"invoices"`
	Expenses decimal.Decimal `json:"expenses"`
	Payments decimal.Decimal `json:"payments"`
	Profit   decimal.Decimal `json:"profit"`
}

type YearlyTotals struct {
	Invoices decimal.Decimal `json:"invoices"`
	Expenses decimal.Decimal `json:"expenses"`
	Profit   decimal.Decimal `json:"profit"`
}

type DashboardSummary struct {
	Monthly     PeriodTotals    `json:"monthly"`
	Yearly      YearlyTotals    `json:"yearly"`
	Receivables decimal.Decimal `json:"receivables"`
}

func inMonth(date time.Time, month time.Month, year int) bool {
	utc := date.UTC()
	return utc.Year() == year && utc.Month() == month
}

func inYear(date time.Time, year int) bool {
	return date.UTC().Year() == year
}

// Dashboard computes the monthly and yearly totals plus all-time receivables
// for one user. Collections are small at bookkeeping scale, so rows are
// loaded and summed in Go rather than aggregated in SQL.
func Dashboard(db *gorm.DB, userID uint, month time.Month, year int) (*DashboardSummary, error) {
	var invoices []Models.Invoice
	if err := db.Where("user_id = ?", userID).Find(&invoices).Error; err != nil {
		return nil, err
	}
	var expenses []Models.Expense
	if err := db.Where("user_id = ?", userID).Find(&expenses).Error; err != nil {
		return nil, err
	}
	var payments []Models.Payment
	if err := db.Joins("JOIN invoices ON invoices.id = payments.invoice_id").
		Where("invoices.user_id = ?", userID).Find(&payments).Error; err != nil {
		return nil, err
	}

	summary := DashboardSummary{
		Monthly:     PeriodTotals{Invoices: decimal.Zero, Expenses: decimal.Zero, Payments: decimal.Zero, Profit: decimal.Zero},
		Yearly:      YearlyTotals{Invoices: decimal.Zero, Expenses: decimal.Zero, Profit: decimal.Zero},
		Receivables: decimal.Zero,
	}

	for _, invoice := range invoices {
		if inMonth(invoice.IssueDate, month, year) {
			summary.Monthly.Invoices = summary.Monthly.Invoices.Add(invoice.Amount)
		}
		if inYear(invoice.IssueDate, year) {
			summary.Yearly.Invoices = summary.Yearly.Invoices.Add(invoice.Amount)
		}
		// Receivables span all time, not the reporting period
		if invoice.Status != Models.StatusPaid {
			summary.Receivables = summary.Receivables.Add(invoice.Remaining())
		}
	}
	for _, expense := range expenses {
		if inMonth(expense.Date, month, year) {
			summary.Monthly.Expenses = summary.Monthly.Expenses.Add(expense.Amount)
		}
		if inYear(expense.Date, year) {
			summary.Yearly.Expenses = summary.Yearly.Expenses.Add(expense.Amount)
		}
	}
	for _, payment := range payments {
		if inMonth(payment.Date, month, year) {
			summary.Monthly.Payments = summary.Monthly.Payments.Add(payment.Amount)
		}
	}

	// Profit is invoiced revenue minus expensed cost, both recognized at
	// their own dates. Payments received do not enter the profit figure.
	summary.Monthly.Profit = summary.Monthly.Invoices.Sub(summary.Monthly.Expenses)
	summary.Yearly.Profit = summary.Yearly.Invoices.Sub(summary.Yearly.Expenses)

	return &summary, nil
}

type CategorySummary struct {
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// ExpensesByCategory groups one month's expenses by their category label.
func ExpensesByCategory(db *gorm.DB, userID uint, month time.Month, year int) (map[string]CategorySummary, error) {
	var expenses []Models.Expense
	if err := db.Where("user_id = ?", userID).Find(&expenses).Error; err != nil {
		return nil, err
	}

	result := make(map[string]CategorySummary)
	for _, expense := range expenses {
		if !inMonth(expense.Date, month, year) {
			continue
		}
		entry := result[expense.Category]
		if entry.Count == 0 {
			entry.Total = decimal.Zero
		}
		entry.Total = entry.Total.Add(expense.Amount)
		entry.Count++
		result[expense.Category] = entry
	}
	return result, nil
}

type AgingReport struct {
	Bucket10To20 []Models.Invoice `json:"bucket_10_20"`
	Bucket20Plus []Models.Invoice `json:"bucket_20_plus"`
}

// Aging buckets non-paid invoices with an outstanding balance by how many
// days their due date lies in the past. Invoices less than 10 days overdue
// are not reported.
func Aging(db *gorm.DB, userID uint) (*AgingReport, error) {
	var invoices []Models.Invoice
	if err := db.Where("user_id = ? AND status <> ? AND due_date IS NOT NULL", userID, Models.StatusPaid).
		Preload("Customer").Find(&invoices).Error; err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	report := AgingReport{
		Bucket10To20: []Models.Invoice{},
		Bucket20Plus: []Models.Invoice{},
	}
	for _, invoice := range invoices {
		if invoice.Remaining().Sign() <= 0 {
			continue
		}
		due := invoice.DueDate.UTC()
		if !due.Before(now) {
			continue
		}
		days := int(now.Sub(due).Hours() / 24)
		switch {
		case days >= 20:
			report.Bucket20Plus = append(report.Bucket20Plus, invoice)
		case days >= 10:
			report.Bucket10To20 = append(report.Bucket10To20, invoice)
		}
	}
	return &report, nil
}

type CustomerRanking struct {
	Customer      Models.Customer `json:"customer"`
	TotalInvoiced decimal.Decimal `json:"total_invoiced"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	InvoiceCount  int             `json:"invoice_count"`
}

// TopCustomers ranks a user's customers by invoiced amount within the period
// ("month", "year" or "all") and returns at most the top five. Ties break on
// customer id ascending so the ordering is stable across calls.
func TopCustomers(db *gorm.DB, userID uint, period string, month time.Month, year int) ([]CustomerRanking, error) {
	var invoices []Models.Invoice
	if err := db.Where("user_id = ? AND customer_id IS NOT NULL", userID).
		Preload("Customer").Find(&invoices).Error; err != nil {
		return nil, err
	}

	totals := make(map[uint]*CustomerRanking)
	for _, invoice := range invoices {
		switch period {
		case "month":
			if !inMonth(invoice.IssueDate, month, year) {
				continue
			}
		case "year":
			if !inYear(invoice.IssueDate, year) {
				continue
			}
		}
		if invoice.Customer == nil {
			continue
		}
		ranking, ok := totals[*invoice.CustomerID]
		if !ok {
			ranking = &CustomerRanking{
				Customer:      *invoice.Customer,
				TotalInvoiced: decimal.Zero,
				TotalPaid:     decimal.Zero,
			}
			totals[*invoice.CustomerID] = ranking
		}
		ranking.TotalInvoiced = ranking.TotalInvoiced.Add(invoice.Amount)
		ranking.TotalPaid = ranking.TotalPaid.Add(invoice.PaidAmount)
		ranking.InvoiceCount++
	}

	rankings := make([]CustomerRanking, 0, len(totals))
	for _, ranking := range totals {
		rankings = append(rankings, *ranking)
	}
	sort.Slice(rankings, func(i, j int) bool {
		if !rankings[i].TotalInvoiced.Equal(rankings[j].TotalInvoiced) {
			return rankings[i].TotalInvoiced.GreaterThan(rankings[j].TotalInvoiced)
		}
		return rankings[i].Customer.ID < rankings[j].Customer.ID
	})
	if len(rankings) > 5 {
		rankings = rankings[:5]
	}
	return rankings, nil
}
