package Analytics

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"Fatura/Models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000&_journal_mode=WAL"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, Models.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) Models.User {
	t.Helper()
	user := Models.User{Name: "Test", Email: email, Password: []byte("x")}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedCustomer(t *testing.T, db *gorm.DB, userID uint, name string) Models.Customer {
	t.Helper()
	customer := Models.Customer{UserID: userID, Name: name}
	require.NoError(t, db.Create(&customer).Error)
	return customer
}

func seedInvoice(t *testing.T, db *gorm.DB, invoice Models.Invoice) Models.Invoice {
	t.Helper()
	if invoice.Status == "" {
		invoice.Status = Models.StatusFor(invoice.PaidAmount, invoice.Amount)
	}
	require.NoError(t, db.Create(&invoice).Error)
	return invoice
}

func seedExpense(t *testing.T, db *gorm.DB, userID uint, category, amount string, date time.Time) {
	t.Helper()
	expense := Models.Expense{UserID: userID, Category: category, Amount: decimal.RequireFromString(amount), Date: date}
	require.NoError(t, db.Create(&expense).Error)
}

func utcDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestDashboardTotals(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "a@example.com")

	inv := seedInvoice(t, db, Models.Invoice{
		UserID: user.ID, Number: "FT-2025-001",
		Amount:    decimal.RequireFromString("1000.00"),
		IssueDate: utcDate(2025, time.March, 15),
	})
	// Previous year; counts in neither period
	seedInvoice(t, db, Models.Invoice{
		UserID: user.ID, Number: "FT-2024-001",
		Amount:    decimal.RequireFromString("500.00"),
		IssueDate: utcDate(2024, time.December, 10),
	})
	// Same year, other month; yearly only
	seedInvoice(t, db, Models.Invoice{
		UserID: user.ID, Number: "FT-2025-002",
		Amount:     decimal.RequireFromString("200.00"),
		PaidAmount: decimal.RequireFromString("200.00"),
		Status:     Models.StatusPaid,
		IssueDate:  utcDate(2025, time.January, 5),
	})

	seedExpense(t, db, user.ID, "Yakıt", "150.00", utcDate(2025, time.March, 20))
	seedExpense(t, db, user.ID, "Ofis", "50.00", utcDate(2025, time.April, 2))

	require.NoError(t, db.Create(&Models.Payment{
		InvoiceID: inv.ID, Amount: decimal.RequireFromString("400.00"), Date: utcDate(2025, time.March, 25),
	}).Error)
	require.NoError(t, db.Model(&Models.Invoice{}).Where("id = ?", inv.ID).
		Updates(map[string]interface{}{"paid_amount": decimal.RequireFromString("400.00"), "status": Models.StatusPartial}).Error)

	summary, err := Dashboard(db, user.ID, time.March, 2025)
	require.NoError(t, err)

	assert.True(t, summary.Monthly.Invoices.Equal(decimal.RequireFromString("1000.00")))
	assert.True(t, summary.Monthly.Expenses.Equal(decimal.RequireFromString("150.00")))
	assert.True(t, summary.Monthly.Payments.Equal(decimal.RequireFromString("400.00")))
	assert.True(t, summary.Monthly.Profit.Equal(decimal.RequireFromString("850.00")))

	assert.True(t, summary.Yearly.Invoices.Equal(decimal.RequireFromString("1200.00")))
	assert.True(t, summary.Yearly.Expenses.Equal(decimal.RequireFromString("200.00")))
	assert.True(t, summary.Yearly.Profit.Equal(decimal.RequireFromString("1000.00")))

	// 600 outstanding on the partial invoice plus the untouched 2024 invoice
	assert.True(t, summary.Receivables.Equal(decimal.RequireFromString("1100.00")))
}

func TestDashboardMonthBoundariesAreUTC(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "a@example.com")

	east := time.FixedZone("UTC+3", 3*60*60)
	// Local time says April 1st, UTC says March 31st 23:00
	seedInvoice(t, db, Models.Invoice{
		UserID: user.ID, Number: "FT-2025-001",
		Amount:    decimal.RequireFromString("100.00"),
		IssueDate: time.Date(2025, time.April, 1, 2, 0, 0, 0, east),
	})

	march, err := Dashboard(db, user.ID, time.March, 2025)
	require.NoError(t, err)
	assert.True(t, march.Monthly.Invoices.Equal(decimal.RequireFromString("100.00")))

	april, err := Dashboard(db, user.ID, time.April, 2025)
	require.NoError(t, err)
	assert.True(t, april.Monthly.Invoices.IsZero())
}

func TestDashboardIgnoresOtherUsers(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "a@example.com")
	other := seedUser(t, db, "b@example.com")

	inv := seedInvoice(t, db, Models.Invoice{
		UserID: other.ID, Number: "FT-2025-001",
		Amount:    decimal.RequireFromString("1000.00"),
		IssueDate: utcDate(2025, time.March, 15),
	})
	require.NoError(t, db.Create(&Models.Payment{
		InvoiceID: inv.ID, Amount: decimal.RequireFromString("100.00"), Date: utcDate(2025, time.March, 16),
	}).Error)
	seedExpense(t, db, other.ID, "Ofis", "50.00", utcDate(2025, time.March, 20))

	summary, err := Dashboard(db, user.ID, time.March, 2025)
	require.NoError(t, err)
	assert.True(t, summary.Monthly.Invoices.IsZero())
	assert.True(t, summary.Monthly.Expenses.IsZero())
	assert.True(t, summary.Monthly.Payments.IsZero())
	assert.True(t, summary.Receivables.IsZero())
}

func TestDashboardIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "a@example.com")
	seedInvoice(t, db, Models.Invoice{
		UserID: user.ID, Number: "FT-2025-001",
		Amount:    decimal.RequireFromString("1000.00"),
		IssueDate: utcDate(2025, time.March, 15),
	})
	seedExpense(t, db, user.ID, "Yakıt", "150.00", utcDate(2025, time.March, 20))

	first, err := Dashboard(db, user.ID, time.March, 2025)
	require.NoError(t, err)
	second, err := Dashboard(db, user.ID, time.March, 2025)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestExpensesByCategory(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "a@example.com")

	seedExpense(t, db, user.ID, "Yakıt", "100.00", utcDate(2025, time.March, 5))
	seedExpense(t, db, user.ID, "Yakıt", "50.00", utcDate(2025, time.March, 18))
	seedExpense(t, db, user.ID, "Ofis", "75.00", utcDate(2025, time.March, 20))
	// Different month; excluded
	seedExpense(t, db, user.ID, "Yakıt", "30.00", utcDate(2025, time.April, 1))

	byCategory, err := ExpensesByCategory(db, user.ID, time.March, 2025)
	require.NoError(t, err)

	require.Len(t, byCategory, 2)
	assert.True(t, byCategory["Yakıt"].Total.Equal(decimal.RequireFromString("150.00")))
	assert.Equal(t, 2, byCategory["Yakıt"].Count)
	assert.True(t, byCategory["Ofis"].Total.Equal(decimal.RequireFromString("75.00")))
	assert.Equal(t, 1, byCategory["Ofis"].Count)
}

func TestAgingBuckets(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "a@example.com")
	now := time.Now().UTC()

	due := func(daysAgo int) *time.Time {
		d := now.AddDate(0, 0, -daysAgo)
		return &d
	}

	seedInvoice(t, db, Models.Invoice{
		UserID: user.ID, Number: "FT-2025-001",
		Amount: decimal.RequireFromString("100.00"), IssueDate: now.AddDate(0, -2, 0), DueDate: due(15),
	})
	seedInvoice(t, db, Models.Invoice{
		UserID: user.ID, Number: "FT-2025-002",
		Amount: decimal.RequireFromString("200.00"), IssueDate: now.AddDate(0, -2, 0), DueDate: due(25),
	})
	// Under the 10 day threshold
	seedInvoice(t, db, Models.Invoice{
		UserID: user.ID, Number: "FT-2025-003",
		Amount: decimal.RequireFromString("300.00"), IssueDate: now.AddDate(0, -1, 0), DueDate: due(5),
	})
	// Fully paid; never reported regardless of age
	seedInvoice(t, db, Models.Invoice{
		UserID: user.ID, Number: "FT-2025-004",
		Amount:     decimal.RequireFromString("400.00"),
		PaidAmount: decimal.RequireFromString("400.00"),
		Status:     Models.StatusPaid,
		IssueDate:  now.AddDate(0, -2, 0), DueDate: due(30),
	})
	// No due date; cannot be overdue
	seedInvoice(t, db, Models.Invoice{
		UserID: user.ID, Number: "FT-2025-005",
		Amount: decimal.RequireFromString("500.00"), IssueDate: now.AddDate(0, -2, 0),
	})

	report, err := Aging(db, user.ID)
	require.NoError(t, err)

	require.Len(t, report.Bucket10To20, 1)
	assert.Equal(t, "FT-2025-001", report.Bucket10To20[0].Number)
	require.Len(t, report.Bucket20Plus, 1)
	assert.Equal(t, "FT-2025-002", report.Bucket20Plus[0].Number)
}

func TestTopCustomersRankingAndTieBreak(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "a@example.com")

	customers := make([]Models.Customer, 7)
	for i := range customers {
		customers[i] = seedCustomer(t, db, user.ID, "Customer "+string(rune('A'+i)))
	}

	amounts := []string{"100.00", "700.00", "300.00", "300.00", "500.00", "200.00", "50.00"}
	for i, amount := range amounts {
		id := customers[i].ID
		seedInvoice(t, db, Models.Invoice{
			UserID: user.ID, Number: "FT-2025-00" + string(rune('1'+i)),
			CustomerID: &id,
			Amount:     decimal.RequireFromString(amount),
			IssueDate:  utcDate(2025, time.March, 10),
		})
	}

	rankings, err := TopCustomers(db, user.ID, "all", time.March, 2025)
	require.NoError(t, err)

	require.Len(t, rankings, 5)
	assert.Equal(t, customers[1].ID, rankings[0].Customer.ID)
	assert.Equal(t, customers[4].ID, rankings[1].Customer.ID)
	// 300.00 tie resolves on customer id ascending
	assert.Equal(t, customers[2].ID, rankings[2].Customer.ID)
	assert.Equal(t, customers[3].ID, rankings[3].Customer.ID)
	assert.Equal(t, customers[5].ID, rankings[4].Customer.ID)
}

func TestTopCustomersPeriodFilter(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "a@example.com")
	customer := seedCustomer(t, db, user.ID, "Acme")
	id := customer.ID

	seedInvoice(t, db, Models.Invoice{
		UserID: user.ID, Number: "FT-2025-001", CustomerID: &id,
		Amount: decimal.RequireFromString("100.00"), IssueDate: utcDate(2025, time.March, 10),
	})
	seedInvoice(t, db, Models.Invoice{
		UserID: user.ID, Number: "FT-2025-002", CustomerID: &id,
		Amount: decimal.RequireFromString("250.00"), IssueDate: utcDate(2025, time.June, 10),
	})
	seedInvoice(t, db, Models.Invoice{
		UserID: user.ID, Number: "FT-2024-001", CustomerID: &id,
		Amount: decimal.RequireFromString("400.00"), IssueDate: utcDate(2024, time.June, 10),
	})

	monthly, err := TopCustomers(db, user.ID, "month", time.March, 2025)
	require.NoError(t, err)
	require.Len(t, monthly, 1)
	assert.True(t, monthly[0].TotalInvoiced.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, 1, monthly[0].InvoiceCount)

	yearly, err := TopCustomers(db, user.ID, "year", time.March, 2025)
	require.NoError(t, err)
	require.Len(t, yearly, 1)
	assert.True(t, yearly[0].TotalInvoiced.Equal(decimal.RequireFromString("350.00")))

	all, err := TopCustomers(db, user.ID, "all", time.March, 2025)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].TotalInvoiced.Equal(decimal.RequireFromString("750.00")))
	assert.Equal(t, 3, all[0].InvoiceCount)
}

func TestMonthlyReportXLSX(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "a@example.com")
	seedInvoice(t, db, Models.Invoice{
		UserID: user.ID, Number: "FT-2025-001",
		Amount:    decimal.RequireFromString("1000.00"),
		IssueDate: utcDate(2025, time.March, 15),
	})
	seedExpense(t, db, user.ID, "Yakıt", "150.00", utcDate(2025, time.March, 20))

	buf, err := MonthlyReportXLSX(db, user.ID, time.March, 2025)
	require.NoError(t, err)
	assert.Greater(t, buf.Len(), 0)
}
