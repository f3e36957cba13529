package Controllers

import (
	"errors"
	"time"

	"Fatura/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ExpenseHandler contains the database connection
type ExpenseHandler struct {
	DB *gorm.DB
}

// NewExpenseHandler creates a new expense handler with the given database connection
func NewExpenseHandler(db *gorm.DB) *ExpenseHandler {
	return &ExpenseHandler{DB: db}
}

// CreateExpense adds a new expense for the authenticated user
func (h *ExpenseHandler) CreateExpense(c *fiber.Ctx) error {
	user := authedUser(c)

	var req Models.ExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"message": err.Error(),
		})
	}
	if req.Amount.Sign() <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Expense amount must be greater than zero",
		})
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Date must be in YYYY-MM-DD format",
		})
	}

	expense := Models.Expense{
		UserID:      user.ID,
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
	}
	if result := h.DB.Create(&expense); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create expense",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(expense)
}

// GetExpenses returns all expenses of the authenticated user
func (h *ExpenseHandler) GetExpenses(c *fiber.Ctx) error {
	user := authedUser(c)

	var expenses []Models.Expense
	result := h.DB.Where("user_id = ?", user.ID).Order("date DESC, id DESC").Find(&expenses)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch expenses",
		})
	}

	return c.JSON(expenses)
}

// GetExpense returns a specific expense by ID
func (h *ExpenseHandler) GetExpense(c *fiber.Ctx) error {
	user := authedUser(c)
	id := c.Params("id")

	var expense Models.Expense
	result := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&expense)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Expense not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch expense",
		})
	}

	return c.JSON(expense)
}

// UpdateExpense updates an expense's information
func (h *ExpenseHandler) UpdateExpense(c *fiber.Ctx) error {
	user := authedUser(c)
	id := c.Params("id")

	var expense Models.Expense
	if result := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&expense); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Expense not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch expense",
		})
	}

	var req Models.ExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"message": err.Error(),
		})
	}
	if req.Amount.Sign() <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Expense amount must be greater than zero",
		})
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Date must be in YYYY-MM-DD format",
		})
	}

	expense.Category = req.Category
	expense.Amount = req.Amount
	expense.Description = req.Description
	expense.Date = date
	if result := h.DB.Save(&expense); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update expense",
		})
	}

	return c.JSON(expense)
}

// DeleteExpense deletes an expense by ID
func (h *ExpenseHandler) DeleteExpense(c *fiber.Ctx) error {
	user := authedUser(c)
	id := c.Params("id")

	var expense Models.Expense
	if result := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&expense); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Expense not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch expense",
		})
	}

	if result := h.DB.Delete(&expense); result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete expense",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Expense deleted successfully",
	})
}

// GetExpenseCategories returns the conventional category labels
func (h *ExpenseHandler) GetExpenseCategories(c *fiber.Ctx) error {
	return c.JSON(Models.ExpenseCategories)
}
