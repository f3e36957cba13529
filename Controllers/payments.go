package Controllers

import (
	"errors"
	"strconv"
	"time"

	"Fatura/Models"
	"Fatura/Payments"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// PaymentHandler records payments through the payment engine
type PaymentHandler struct {
	DB     *gorm.DB
	Engine *Payments.Engine
}

// NewPaymentHandler creates a new payment handler with the given engine
func NewPaymentHandler(db *gorm.DB, engine *Payments.Engine) *PaymentHandler {
	return &PaymentHandler{DB: db, Engine: engine}
}

// CreatePayment records a payment against an invoice and updates the
// invoice's paid total and status
func (h *PaymentHandler) CreatePayment(c *fiber.Ctx) error {
	user := authedUser(c)

	invoiceID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid invoice ID",
		})
	}

	var req Models.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Date must be in YYYY-MM-DD format",
		})
	}

	payment, err := h.Engine.Record(user.ID, uint(invoiceID), req.Amount, date)
	if err != nil {
		switch {
		case errors.Is(err, Payments.ErrInvalidAmount):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, Payments.ErrOverpayment):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, Payments.ErrInvoiceNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to record payment",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(payment)
}

// GetPayments returns all payments of an invoice
func (h *PaymentHandler) GetPayments(c *fiber.Ctx) error {
	user := authedUser(c)
	invoiceID := c.Params("id")

	// Verify the invoice belongs to the user before exposing its payments
	var invoice Models.Invoice
	if result := h.DB.Where("id = ? AND user_id = ?", invoiceID, user.ID).First(&invoice); result.Error != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Invoice not found",
		})
	}

	var payments []Models.Payment
	result := h.DB.Where("invoice_id = ?", invoice.ID).Order("date ASC, id ASC").Find(&payments)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch payments",
		})
	}

	return c.JSON(payments)
}
