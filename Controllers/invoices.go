package Controllers

import (
	"errors"
	"time"

	"Fatura/Models"
	"Fatura/Numbering"
	"Fatura/Payments"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// InvoiceHandler contains the database connection
type InvoiceHandler struct {
	DB *gorm.DB
}

// NewInvoiceHandler creates a new invoice handler with the given database connection
func NewInvoiceHandler(db *gorm.DB) *InvoiceHandler {
	return &InvoiceHandler{DB: db}
}

// CreateInvoice creates a new invoice, generating the next sequential number
// when none is supplied
func (h *InvoiceHandler) CreateInvoice(c *fiber.Ctx) error {
	user := authedUser(c)

	var req Models.InvoiceRequest
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
			"error": "Invoice amount must be greater than zero",
		})
	}

	issueDate, err := time.Parse("2006-01-02", req.IssueDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Issue date must be in YYYY-MM-DD format",
		})
	}
	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Due date must be in YYYY-MM-DD format",
			})
		}
		dueDate = &parsed
	}

	// The customer reference, when present, must belong to the same user
	if req.CustomerID != nil {
		var customer Models.Customer
		if result := h.DB.Where("id = ? AND user_id = ?", *req.CustomerID, user.ID).First(&customer); result.Error != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Customer not found",
			})
		}
	}

	invoice := Models.Invoice{
		UserID:      user.ID,
		Number:      req.Number,
		CustomerID:  req.CustomerID,
		Amount:      req.Amount,
		Status:      Models.StatusUnpaid,
		Description: req.Description,
		IssueDate:   issueDate,
		DueDate:     dueDate,
	}

	if err := Numbering.CreateInvoice(h.DB, &invoice); err != nil {
		switch {
		case errors.Is(err, Numbering.ErrNumberTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "An invoice with this number already exists",
			})
		case errors.Is(err, Numbering.ErrNumberExhausted):
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to create invoice",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// GetInvoices returns all invoices of the authenticated user
func (h *InvoiceHandler) GetInvoices(c *fiber.Ctx) error {
	user := authedUser(c)

	var invoices []Models.Invoice
	result := h.DB.Where("user_id = ?", user.ID).Preload("Customer").
		Order("issue_date DESC, id DESC").Find(&invoices)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch invoices",
		})
	}

	return c.JSON(invoices)
}

// GetInvoice returns a specific invoice with its customer and payments
func (h *InvoiceHandler) GetInvoice(c *fiber.Ctx) error {
	user := authedUser(c)
	id := c.Params("id")

	var invoice Models.Invoice
	result := h.DB.Where("id = ? AND user_id = ?", id, user.ID).
		Preload("Customer").Preload("Payments").First(&invoice)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Invoice not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch invoice",
		})
	}

	return c.JSON(invoice)
}

// UpdateInvoice updates an invoice's editable fields. A changed amount
// re-derives paid_amount and status from the payment rows.
func (h *InvoiceHandler) UpdateInvoice(c *fiber.Ctx) error {
	user := authedUser(c)
	id := c.Params("id")

	var invoice Models.Invoice
	if result := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&invoice); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Invoice not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch invoice",
		})
	}

	var req Models.InvoiceRequest
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
			"error": "Invoice amount must be greater than zero",
		})
	}
	issueDate, err := time.Parse("2006-01-02", req.IssueDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Issue date must be in YYYY-MM-DD format",
		})
	}
	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Due date must be in YYYY-MM-DD format",
			})
		}
		dueDate = &parsed
	}
	if req.CustomerID != nil {
		var customer Models.Customer
		if result := h.DB.Where("id = ? AND user_id = ?", *req.CustomerID, user.ID).First(&customer); result.Error != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Customer not found",
			})
		}
	}

	tx := h.DB.Begin()
	if tx.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Transaction error",
		})
	}

	invoice.CustomerID = req.CustomerID
	invoice.Amount = req.Amount
	invoice.Description = req.Description
	invoice.IssueDate = issueDate
	invoice.DueDate = dueDate
	if req.Number != "" {
		invoice.Number = req.Number
	}

	if err := tx.Save(&invoice).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "An invoice with this number already exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update invoice",
		})
	}

	if err := Payments.Recompute(tx, invoice.ID); err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to recompute invoice status",
		})
	}

	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to commit transaction",
		})
	}

	h.DB.Preload("Customer").Preload("Payments").First(&invoice, invoice.ID)
	return c.JSON(invoice)
}

// DeleteInvoice deletes an invoice and its payments as one unit
func (h *InvoiceHandler) DeleteInvoice(c *fiber.Ctx) error {
	user := authedUser(c)
	id := c.Params("id")

	var invoice Models.Invoice
	if result := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&invoice); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Invoice not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch invoice",
		})
	}

	tx := h.DB.Begin()
	if tx.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Transaction error",
		})
	}

	if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&Models.Payment{}).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete invoice payments",
		})
	}
	if err := tx.Delete(&invoice).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete invoice",
		})
	}

	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to commit transaction",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Invoice deleted successfully",
	})
}
