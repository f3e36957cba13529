package Models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseCategories are the conventional labels offered by the client.
// Category is stored as free text, so anything else is accepted too.
var ExpenseCategories = []string{"Yakıt", "Ofis", "Yemek", "Ulaşım", "Malzeme", "Diğer"}

type Expense struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	UserID      uint            `json:"user_id" gorm:"not null;index"`
	Category    string          `json:"category" gorm:"size:100;not null;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(18,2);not null"`
	Description string          `json:"description" gorm:"type:text"`
	Date        time.Time       `json:"date" gorm:"not null;index"`
	CreatedAt   time.Time       `json:"created_at"`
}

type ExpenseRequest struct {
	Category    string          `json:"category" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Description string          `json:"description"`
	Date        string          `json:"date" validate:"required"`
}
