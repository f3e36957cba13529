package Numbering

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"Fatura/Models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000&_journal_mode=WAL"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, Models.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) Models.User {
	t.Helper()
	user := Models.User{Name: "Test", Email: email, Password: []byte("x")}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func newInvoice(userID uint, year int) *Models.Invoice {
	return &Models.Invoice{
		UserID:    userID,
		Amount:    decimal.RequireFromString("100.00"),
		Status:    Models.StatusUnpaid,
		IssueDate: time.Date(year, time.March, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestNextNumberStartsAtOne(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "a@example.com")

	number, err := NextNumber(db, user.ID, 2025)
	require.NoError(t, err)
	assert.Equal(t, "FT-2025-001", number)
}

func TestCreateInvoiceAssignsSequentialNumbers(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "a@example.com")

	first := newInvoice(user.ID, 2025)
	require.NoError(t, CreateInvoice(db, first))
	assert.Equal(t, "FT-2025-001", first.Number)

	second := newInvoice(user.ID, 2025)
	require.NoError(t, CreateInvoice(db, second))
	assert.Equal(t, "FT-2025-002", second.Number)
}

func TestNumbersAreScopedPerUserAndYear(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")

	aliceInvoice := newInvoice(alice.ID, 2025)
	require.NoError(t, CreateInvoice(db, aliceInvoice))
	bobInvoice := newInvoice(bob.ID, 2025)
	require.NoError(t, CreateInvoice(db, bobInvoice))

	// Each user gets their own sequence
	assert.Equal(t, "FT-2025-001", aliceInvoice.Number)
	assert.Equal(t, "FT-2025-001", bobInvoice.Number)

	// A new year restarts the sequence for the same user
	nextYear := newInvoice(alice.ID, 2026)
	require.NoError(t, CreateInvoice(db, nextYear))
	assert.Equal(t, "FT-2026-001", nextYear.Number)
}

func TestPaddingGrowsPastThreeDigits(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "a@example.com")

	seeded := newInvoice(user.ID, 2025)
	seeded.Number = "FT-2025-999"
	require.NoError(t, CreateInvoice(db, seeded))

	next := newInvoice(user.ID, 2025)
	require.NoError(t, CreateInvoice(db, next))
	assert.Equal(t, "FT-2025-1000", next.Number)
}

func TestNonNumericSuffixesAreIgnored(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "a@example.com")

	manual := newInvoice(user.ID, 2025)
	manual.Number = "FT-2025-DRAFT"
	require.NoError(t, CreateInvoice(db, manual))

	next := newInvoice(user.ID, 2025)
	require.NoError(t, CreateInvoice(db, next))
	assert.Equal(t, "FT-2025-001", next.Number)
}

func TestSequenceRestartsWhenYearIsEmptied(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "a@example.com")

	invoice := newInvoice(user.ID, 2025)
	require.NoError(t, CreateInvoice(db, invoice))
	require.NoError(t, db.Delete(&Models.Invoice{}, invoice.ID).Error)

	next := newInvoice(user.ID, 2025)
	require.NoError(t, CreateInvoice(db, next))
	assert.Equal(t, "FT-2025-001", next.Number)
}

func TestExplicitNumberCollisionIsNotRetried(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "a@example.com")

	first := newInvoice(user.ID, 2025)
	first.Number = "FT-2025-007"
	require.NoError(t, CreateInvoice(db, first))

	duplicate := newInvoice(user.ID, 2025)
	duplicate.Number = "FT-2025-007"
	err := CreateInvoice(db, duplicate)
	assert.ErrorIs(t, err, ErrNumberTaken)

	var count int64
	db.Model(&Models.Invoice{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestConcurrentCreationYieldsDistinctNumbers(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "a@example.com")

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- CreateInvoice(db, newInvoice(user.ID, 2025))
		}()
	}
	wg.Wait()
	close(errs)

	// Every create either succeeds or fails loudly within the retry bound
	for err := range errs {
		require.NoError(t, err)
	}

	var numbers []string
	require.NoError(t, db.Model(&Models.Invoice{}).
		Where("user_id = ?", user.ID).Pluck("number", &numbers).Error)
	require.Len(t, numbers, n)

	seen := make(map[string]bool)
	for _, number := range numbers {
		assert.False(t, seen[number], "number %s issued twice", number)
		seen[number] = true
	}
}
