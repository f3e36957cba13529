package Models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusUnpaid  = "unpaid"
	StatusPartial = "partial"
	StatusPaid    = "paid"
)

// Invoice carries a human-readable number of the form FT-YYYY-NNN, unique
// per (user, number). PaidAmount and Status are maintained by the payment
// engine only; nothing else writes them after creation.
type Invoice struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	UserID      uint            `json:"user_id" gorm:"not null;uniqueIndex:idx_invoices_user_number,priority:1"`
	Number      string          `json:"number" gorm:"size:50;not null;uniqueIndex:idx_invoices_user_number,priority:2"`
	CustomerID  *uint           `json:"customer_id" gorm:"index"`
	Customer    *Customer       `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(18,2);not null"`
	PaidAmount  decimal.Decimal `json:"paid_amount" gorm:"type:decimal(18,2);not null;default:0"`
	Status      string          `json:"status" gorm:"size:20;not null;default:'unpaid'"`
	Description string          `json:"description" gorm:"type:text"`
	IssueDate   time.Time       `json:"issue_date" gorm:"not null;index"`
	DueDate     *time.Time      `json:"due_date"`
	CreatedAt   time.Time       `json:"created_at"`

	Payments []Payment `json:"payments,omitempty" gorm:"foreignKey:InvoiceID"`
}

// Remaining is the outstanding balance on the invoice.
func (i *Invoice) Remaining() decimal.Decimal {
	return i.Amount.Sub(i.PaidAmount)
}

// StatusFor derives the invoice status from its paid and total amounts.
func StatusFor(paid, amount decimal.Decimal) string {
	if paid.Sign() <= 0 {
		return StatusUnpaid
	}
	if paid.GreaterThanOrEqual(amount) {
		return StatusPaid
	}
	return StatusPartial
}

type InvoiceRequest struct {
	CustomerID  *uint           `json:"customer_id"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	IssueDate   string          `json:"issue_date" validate:"required"`
	DueDate     string          `json:"due_date"`
	Description string          `json:"description"`
	// Number is only honored on explicit entry (e.g. editing); left empty
	// the next sequential number is generated.
	Number string `json:"number"`
}
