// Command groupcart-reminders runs the incomplete-group reminder scan once
// and exits. It is meant to be invoked by an external scheduler (cron); any
// failure exits non-zero so the scheduler can alert and retry. Re-running is
// safe, duplicate reminders are acceptable.
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/groupcart-dev/groupcart/db"
	"github.com/groupcart-dev/groupcart/internal/notifier"
	"github.com/groupcart-dev/groupcart/internal/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dsn := os.Getenv("DATABASE_URL")

	if dsn == "" {
		log.Fatalf("DATABASE_URL is not set")
	}

	if err := db.ConnectDatabase(dsn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// The reminder run has no connected clients of its own; records are
	// persisted and delivered when recipients next poll their history.
	n := notifier.New(db.DB, ws.NewHub())

	if err := n.RemindIncompleteGroups(); err != nil {
		log.Fatalf("Reminder run failed: %v", err)
	}

	log.Println("Reminder run completed")
}
