package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mauv0809/rally/internal/database"
	"github.com/mauv0809/rally/internal/digest"
	"github.com/mauv0809/rally/internal/schedule"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME":      "rally.db",
		"SEED_WEEKS":   "12",
		"SEED_USER_ID": uuid.NewString(),
	}
	for _, key := range []string{"DB_NAME", "TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN", "SEED_WEEKS", "SEED_USER_ID"} {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	return config
}

// The seeder fills the digest log with past weeks so the "already sent" path
// and the digest history can be tried without waiting for Mondays.
func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	weeks, err := strconv.Atoi(cfg["SEED_WEEKS"])
	if err != nil || weeks <= 0 {
		log.Fatalf("SEED_WEEKS must be a positive number, got %q", cfg["SEED_WEEKS"])
	}

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()
	log.Info("Successfully connected to the database.")

	ctx := context.Background()
	store := digest.NewStore(db)
	userID := cfg["SEED_USER_ID"]
	startTime := time.Now()

	// Start with last week; the current week is left for the real job.
	week := schedule.ComputeWeekWindow(time.Now()).Previous()
	inserted := 0
	for i := 0; i < weeks; i++ {
		sent, err := store.WasSent(ctx, userID, week.Start())
		if err != nil {
			log.Fatalf("Failed to check digest log: %s", err)
		}
		if !sent {
			rec := digest.Record{
				UserID:     userID,
				WeekStart:  week.Start(),
				ChannelID:  "C-SEEDED",
				MessageTS:  fmt.Sprintf("%d.%06d", week.Start().Unix(), i),
				MatchCount: rand.Intn(8),
				SentAt:     week.Start().Add(7 * time.Hour),
			}
			if err := store.Record(ctx, rec); err != nil {
				log.Fatalf("Failed to insert digest for week %s: %s", week.Start().Format("2006-01-02"), err)
			}
			inserted++
		}
		week = week.Previous()
	}

	recent, err := store.Recent(ctx, userID, weeks)
	if err != nil {
		log.Fatalf("Failed to read back digests: %s", err)
	}
	log.Info("Successfully seeded digest log.", "userID", userID, "inserted", inserted, "stored", len(recent), "duration", time.Since(startTime))
}
