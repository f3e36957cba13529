package Models

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect opens the database selected by DB_DRIVER (sqlite by default,
// postgres when configured) and migrates the schema.
func Connect() {
	var dialector gorm.Dialector
	switch os.Getenv("DB_DRIVER") {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			os.Getenv("DB_HOST"), os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"), os.Getenv("DB_PORT"))
		dialector = postgres.Open(dsn)
	default:
		path := os.Getenv("DB_PATH")
		if path == "" {
			path = "database.db"
		}
		dialector = sqlite.Open(path + "?_busy_timeout=5000&_journal_mode=WAL")
	}

	connection, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	DB = connection

	if err := Migrate(DB); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}
}

// Migrate creates the schema. Users first, then the entities that hang off them.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}); err != nil {
		return err
	}
	return db.AutoMigrate(
		&Customer{},
		&Invoice{},
		&Expense{},
		&Payment{},
	)
}
