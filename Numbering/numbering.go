package Numbering

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"Fatura/Models"

	"gorm.io/gorm"
)

// MaxAttempts bounds the read-propose-insert retry loop.
const MaxAttempts = 10

var (
	// ErrNumberTaken is returned when an explicitly supplied number collides.
	ErrNumberTaken = errors.New("invoice number already in use")
	// ErrNumberExhausted is returned when every retry attempt collided.
	ErrNumberExhausted = errors.New("unable to generate unique invoice number")
)

// NextNumber proposes the next FT-<year>-<seq> number for a user by scanning
// the numbers already on file. The sequence is derived from existing rows, not
// a counter table, so deleting every invoice of a year restarts it at 1.
func NextNumber(db *gorm.DB, userID uint, year int) (string, error) {
	prefix := fmt.Sprintf("FT-%d-", year)

	var numbers []string
	if err := db.Model(&Models.Invoice{}).
		Where("user_id = ? AND number LIKE ?", userID, prefix+"%").
		Pluck("number", &numbers).Error; err != nil {
		return "", err
	}

	max := 0
	for _, number := range numbers {
		// Manually entered numbers may not carry a numeric suffix
		seq, err := strconv.Atoi(strings.TrimPrefix(number, prefix))
		if err != nil {
			continue
		}
		if seq > max {
			max = seq
		}
	}

	// Padding is cosmetic: %03d keeps three digits minimum and grows past 999
	return fmt.Sprintf("FT-%d-%03d", year, max+1), nil
}

// CreateInvoice inserts the invoice, generating a sequential number when none
// is supplied. Two concurrent requests can race to the same proposed number;
// the unique index on (user_id, number) decides the winner and the loser
// retries with a fresh scan after a short random backoff.
func CreateInvoice(db *gorm.DB, invoice *Models.Invoice) error {
	if invoice.Number != "" {
		err := db.Create(invoice).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrNumberTaken
		}
		return err
	}

	year := invoice.IssueDate.UTC().Year()
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		number, err := NextNumber(db, invoice.UserID, year)
		if err != nil {
			return err
		}

		invoice.Number = number
		err = db.Create(invoice).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}

		invoice.ID = 0
		invoice.Number = ""
		time.Sleep(time.Duration(rand.Intn(100)) * time.Millisecond)
	}

	return ErrNumberExhausted
}
