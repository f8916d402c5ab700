package main

import (
	"context"
	"fmt"
	"log"

	"procurement_tracker/internal/config"
	"procurement_tracker/internal/database"
	"procurement_tracker/internal/models"
	"procurement_tracker/internal/repository"
	"procurement_tracker/internal/services"
)

// Development helper: recreates the remote schema from scratch and
// seeds reference data. Destroys all remote data; never run against a
// live system of record.
func main() {
	fmt.Println("Initializing database...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Force recreate all tables
	fmt.Println("Dropping existing tables...")
	err = db.Migrator().DropTable(
		&models.Store{},
		&models.Supplier{},
		&models.Item{},
		&models.ItemPrice{},
		&models.Order{},
		&models.User{},
	)
	if err != nil {
		log.Printf("Warning: Error dropping tables: %v", err)
	}

	// Create tables with proper schema
	fmt.Println("Creating tables...")
	err = db.AutoMigrate(
		&models.Store{},
		&models.Supplier{},
		&models.Item{},
		&models.ItemPrice{},
		&models.Order{},
		&models.User{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Create default manager user
	fmt.Println("Creating default manager user...")
	userRepo := repository.NewUserRepository(db)
	userService := services.NewUserService(userRepo)

	manager := &models.User{
		Username: "manager",
		Role:     models.Manager,
		IsActive: true,
	}
	if err := userService.CreateUser(manager, "0000"); err != nil {
		log.Printf("Warning: Failed to create manager user: %v", err)
	} else {
		fmt.Println("Manager user created successfully")
		fmt.Println("Username: manager")
		fmt.Println("PIN: 0000 (change it)")
	}

	// Seed reference stores so order ids can be allocated right away
	fmt.Println("Creating default stores...")
	storeRepo := repository.NewStoreRepository(db)
	stores := []models.Store{
		{ID: 1, Name: "Central", Prefix: "CV2"},
		{ID: 2, Name: "North", Prefix: "NR1"},
	}
	ctx := context.Background()
	for i := range stores {
		if err := storeRepo.Upsert(ctx, &stores[i]); err != nil {
			log.Printf("Warning: Failed to seed store %s: %v", stores[i].Name, err)
		}
	}

	fmt.Println("Database initialization completed!")
}
