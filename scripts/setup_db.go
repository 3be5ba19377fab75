package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/repository/postgres"
	"storefront/pkg/password"

	"github.com/joho/godotenv"
)

const setupTimeout = 30 * time.Second

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Error loading .env file: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	fmt.Println("=== Setting Up Database ===")
	fmt.Println()

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Connected to database")
	fmt.Println()

	fmt.Println("Executing schema...")
	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatalf("❌ Failed to execute schema: %v", err)
	}

	fmt.Println("✅ Schema executed successfully")
	fmt.Println()

	fmt.Println("=== Verifying Tables ===")
	for _, table := range postgres.Tables() {
		var exists bool
		query := `SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)`
		if err := db.Pool.QueryRow(ctx, query, table).Scan(&exists); err != nil {
			fmt.Printf("❌ Error checking table '%s': %v\n", table, err)
			continue
		}

		if exists {
			fmt.Printf("✅ Table '%s' created\n", table)
		} else {
			fmt.Printf("❌ Table '%s' NOT created\n", table)
		}
	}

	if cfg.Bootstrap.AdminEmail != "" {
		created, err := app.EnsureAdmin(ctx, postgres.NewAccountRepository(db), cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword, password.DefaultCost)
		if err != nil {
			log.Fatalf("❌ Failed to bootstrap admin: %v", err)
		}
		if created {
			fmt.Printf("✅ Admin '%s' created\n", cfg.Bootstrap.AdminEmail)
		} else {
			fmt.Printf("Admin '%s' already exists\n", cfg.Bootstrap.AdminEmail)
		}
	}

	fmt.Println()
	fmt.Println("=== Database Setup Complete ===")
	fmt.Println()
	fmt.Println("Next: Run 'go run ./cmd/storefront' to start the server")
}
