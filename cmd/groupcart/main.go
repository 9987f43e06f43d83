package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/groupcart-dev/groupcart/db"
	"github.com/groupcart-dev/groupcart/internal/auth"
	"github.com/groupcart-dev/groupcart/internal/notifier"
	"github.com/groupcart-dev/groupcart/internal/router"
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

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT: %v", err)
	}

	hub := ws.NewHub()
	n := notifier.New(db.DB, hub)

	r := router.NewRouter(hub, n)

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
