package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/locvowork/employee_activity_nlq/internal/bootstrap"
	"github.com/locvowork/employee_activity_nlq/internal/database"
	"github.com/locvowork/employee_activity_nlq/internal/logger"
)

func main() {
	// Define flags
	action := flag.String("action", "seed", "Action to perform: seed, clear")
	employees := flag.Int("employees", 0, "Number of employees to seed (default: all 30)")
	seed := flag.Int64("seed", 0, "Random seed for activity figures (overrides default)")
	yes := flag.Bool("yes", false, "Skip the confirmation prompt for clear")

	flag.Parse()

	ctx := context.Background()

	fmt.Println("🚀 Employee Activity Data Seeder")
	fmt.Println(strings.Repeat("=", 50))

	// Initialize app
	fmt.Println("📡 Initializing application...")
	app := bootstrap.NewApp()
	if err := app.Initialize(ctx); err != nil {
		logger.ErrorLog(ctx, "Failed to initialize application: %v", err)
		log.Fatal(err)
	}
	defer app.Close()
	ctx = logger.WithLogger(ctx, map[string]interface{}{"command": "seeder", "action": *action})

	// Get database connection
	db := app.DB
	if db == nil {
		logger.ErrorLog(ctx, "Database connection is nil")
		log.Fatal("Database connection is nil")
	}

	// Create seeder
	seeder := database.NewDataSeeder(db)

	// Execute action
	switch *action {
	case "seed":
		opts := database.DefaultSeedOptions()
		if *employees > 0 {
			opts.Employees = *employees
		}
		if *seed != 0 {
			opts.Seed = *seed
		}
		if err := seeder.SeedData(ctx, opts); err != nil {
			logger.ErrorLog(ctx, "Seeding failed: %v", err)
			log.Fatalf("❌ Seeding failed: %v", err)
		}
		logger.InfoLog(ctx, "Seeded %d employees (seed=%d)", opts.Employees, opts.Seed)

	case "clear":
		performClear(ctx, seeder, *yes)

	default:
		fmt.Printf("❌ Unknown action: %s\n", *action)
		flag.PrintDefaults()
	}

	fmt.Println("\n✅ Done!")
}

func performClear(ctx context.Context, seeder *database.DataSeeder, skipPrompt bool) {
	if !skipPrompt {
		fmt.Println("⚠️  This will delete all seeded data!")
		fmt.Print("Continue? (yes/no): ")

		var response string
		fmt.Scanln(&response)
		if response != "yes" {
			fmt.Println("Cancelled.")
			return
		}
	}

	if err := seeder.ClearData(ctx); err != nil {
		log.Fatalf("❌ Clear failed: %v", err)
	}
	logger.InfoLog(ctx, "Cleared seeded data")
}
