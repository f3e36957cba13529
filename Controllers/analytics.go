package Controllers

import (
	"fmt"
	"strconv"
	"time"

	"Fatura/Analytics"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AnalyticsController handles reporting endpoints
type AnalyticsController struct {
	DB *gorm.DB
}

// NewAnalyticsController creates a new AnalyticsController
func NewAnalyticsController(db *gorm.DB) *AnalyticsController {
	return &AnalyticsController{DB: db}
}

// reportingPeriod reads month/year query params, defaulting to the current
// UTC month.
func reportingPeriod(ctx *fiber.Ctx) (time.Month, int) {
	now := time.Now().UTC()
	month := int(now.Month())
	year := now.Year()
	if m, err := strconv.Atoi(ctx.Query("month")); err == nil && m >= 1 && m <= 12 {
		month = m
	}
	if y, err := strconv.Atoi(ctx.Query("year")); err == nil && y > 0 {
		year = y
	}
	return time.Month(month), year
}

// Dashboard returns monthly and yearly totals plus outstanding receivables
func (c *AnalyticsController) Dashboard(ctx *fiber.Ctx) error {
	user := authedUser(ctx)
	month, year := reportingPeriod(ctx)

	summary, err := Analytics.Dashboard(c.DB, user.ID, month, year)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to compute dashboard"})
	}
	return ctx.JSON(summary)
}

// ExpensesByCategory returns one month's expenses grouped by category
func (c *AnalyticsController) ExpensesByCategory(ctx *fiber.Ctx) error {
	user := authedUser(ctx)
	month, year := reportingPeriod(ctx)

	categories, err := Analytics.ExpensesByCategory(c.DB, user.ID, month, year)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to compute expense breakdown"})
	}
	return ctx.JSON(categories)
}

// Aging returns overdue invoices bucketed by days past due
func (c *AnalyticsController) Aging(ctx *fiber.Ctx) error {
	user := authedUser(ctx)

	report, err := Analytics.Aging(c.DB, user.ID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to compute aging report"})
	}
	return ctx.JSON(report)
}

// TopCustomers returns the top five customers by invoiced amount
func (c *AnalyticsController) TopCustomers(ctx *fiber.Ctx) error {
	user := authedUser(ctx)
	month, year := reportingPeriod(ctx)

	period := ctx.Query("period", "all")
	if period != "month" && period != "year" && period != "all" {
		return ctx.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "Period must be month, year or all"})
	}

	rankings, err := Analytics.TopCustomers(c.DB, user.ID, period, month, year)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to compute customer rankings"})
	}
	return ctx.JSON(rankings)
}

// ExportMonthlyReport streams the month's invoices as an Excel workbook
func (c *AnalyticsController) ExportMonthlyReport(ctx *fiber.Ctx) error {
	user := authedUser(ctx)
	month, year := reportingPeriod(ctx)

	buffer, err := Analytics.MonthlyReportXLSX(c.DB, user.ID, month, year)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to generate report"})
	}

	filename := fmt.Sprintf("report-%d-%02d.xlsx", year, int(month))
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	return ctx.Send(buffer.Bytes())
}
