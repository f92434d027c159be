package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"task-assignment-api/internal/config"
	"task-assignment-api/internal/database"
	"task-assignment-api/internal/logging"
	"task-assignment-api/internal/seed"

	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", os.Getenv("TASKAPP_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := database.Open(cfg.Database.Path, cfg.Database.LogLevel)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	logger.WithField("path", cfg.Database.Path).Info("Clearing existing data and seeding")
	res, err := seed.Run(context.Background(), db)
	if err != nil {
		logger.WithError(err).Fatal("Error seeding data")
	}
	logger.WithFields(logrus.Fields{
		"members": len(res.Members),
		"tasks":   len(res.Tasks),
	}).Info("Seed complete")

	fmt.Println("\n--- CREDENTIALS ---")
	fmt.Printf("Admin: %s / %s\n", res.Admin.Email, seed.AdminPassword)
	for _, m := range res.Members {
		fmt.Printf("User:  %s / %s\n", m.Email, seed.MemberPassword)
	}
	fmt.Println("-------------------")
}
