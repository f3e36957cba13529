package main

import (
	"Fatura/CronJobs"
	"Fatura/FiberConfig"
	"Fatura/Models"
	"Fatura/logger"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Debug().Msg("No .env file found, using environment")
	}
	if err := logger.Setup(logger.DefaultConfig()); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}

	Models.Connect()

	checker := CronJobs.NewOverdueChecker(Models.DB)
	if err := checker.Start(); err != nil {
		log.Error().Err(err).Msg("Failed to start overdue checker")
	}
	defer checker.Stop()

	FiberConfig.FiberConfig()
}
