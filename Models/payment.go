package Models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is immutable once created. It carries no user id of its own;
// ownership is derived through the invoice it belongs to.
type Payment struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	InvoiceID uint            `json:"invoice_id" gorm:"not null;index"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(18,2);not null"`
	Date      time.Time       `json:"date" gorm:"not null"`
	CreatedAt time.Time       `json:"created_at"`
}

type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Date   string          `json:"date" validate:"required"`
}
