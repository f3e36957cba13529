package Payments

import (
	"database/sql"
	"errors"
	"time"

	"Fatura/Models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Policy controls what happens when a payment would push the paid total past
// the invoice amount. The business rule is undecided, so it stays configurable.
type Policy string

const (
	// PolicyReject refuses payments exceeding the outstanding balance.
	PolicyReject Policy = "reject"
	// PolicyClamp records the payment but caps the stored paid total at the
	// invoice amount.
	PolicyClamp Policy = "clamp"
	// PolicyAllow lets the paid total exceed the invoice amount.
	PolicyAllow Policy = "allow"
)

// ParsePolicy maps a config value to a Policy, defaulting to reject.
func ParsePolicy(value string) Policy {
	switch value {
	case "clamp":
		return PolicyClamp
	case "allow":
		return PolicyAllow
	default:
		return PolicyReject
	}
}

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrInvalidAmount   = errors.New("payment amount must be greater than zero")
	ErrOverpayment     = errors.New("payment exceeds the outstanding invoice balance")
)

// Engine applies payments to invoices.
type Engine struct {
	DB     *gorm.DB
	Policy Policy
}

// NewEngine creates a payment engine with the given overpayment policy.
func NewEngine(db *gorm.DB, policy Policy) *Engine {
	return &Engine{DB: db, Policy: policy}
}

// Record persists a payment and recomputes the owning invoice's paid_amount
// and status inside a single serializable transaction. The paid total is
// always re-summed from the payment rows rather than incremented, so a
// retried or reordered call cannot drift the stored total. Serializable
// isolation makes two concurrent payments on the same invoice conflict
// instead of overwriting each other; the loser surfaces a store error and
// the caller retries.
func (e *Engine) Record(userID, invoiceID uint, amount decimal.Decimal, date time.Time) (*Models.Payment, error) {
	if amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	tx := e.DB.Begin(&sql.TxOptions{Isolation: sql.LevelSerializable})
	if tx.Error != nil {
		return nil, tx.Error
	}

	// A foreign user's invoice reads as not found, never as forbidden
	var invoice Models.Invoice
	if err := tx.Where("id = ? AND user_id = ?", invoiceID, userID).First(&invoice).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}

	if e.Policy == PolicyReject && amount.GreaterThan(invoice.Remaining()) {
		tx.Rollback()
		return nil, ErrOverpayment
	}

	payment := Models.Payment{InvoiceID: invoice.ID, Amount: amount, Date: date}
	if err := tx.Create(&payment).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	var payments []Models.Payment
	if err := tx.Where("invoice_id = ?", invoice.ID).Find(&payments).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	if e.Policy == PolicyClamp && paid.GreaterThan(invoice.Amount) {
		paid = invoice.Amount
	}

	status := Models.StatusFor(paid, invoice.Amount)
	if err := tx.Model(&Models.Invoice{}).Where("id = ?", invoice.ID).
		Updates(map[string]interface{}{"paid_amount": paid, "status": status}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// Recompute re-derives paid_amount and status for an invoice from its payment
// rows. It runs after an invoice edit so a changed amount cannot leave a stale
// status behind.
func Recompute(tx *gorm.DB, invoiceID uint) error {
	var invoice Models.Invoice
	if err := tx.First(&invoice, invoiceID).Error; err != nil {
		return err
	}

	var payments []Models.Payment
	if err := tx.Where("invoice_id = ?", invoiceID).Find(&payments).Error; err != nil {
		return err
	}
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}

	return tx.Model(&Models.Invoice{}).Where("id = ?", invoiceID).
		Updates(map[string]interface{}{"paid_amount": paid, "status": Models.StatusFor(paid, invoice.Amount)}).Error
}
