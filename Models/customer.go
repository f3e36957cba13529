package Models

import "time"

type Customer struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Company   string    `json:"company" gorm:"size:255"`
	Phone     string    `json:"phone" gorm:"size:50"`
	Email     string    `json:"email" gorm:"size:255"`
	Address   string    `json:"address" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`

	Invoices []Invoice `json:"invoices,omitempty" gorm:"foreignKey:CustomerID"`
}

type CustomerRequest struct {
	Name    string `json:"name" validate:"required"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
}
