package migrations

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"procurement_tracker/internal/models"
	"procurement_tracker/internal/repository"
	"procurement_tracker/internal/services"
)

// RunMigrations creates the remote schema and seeds default data.
func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.Store{},
		&models.Supplier{},
		&models.Item{},
		&models.ItemPrice{},
		&models.Order{},
		&models.User{},
	)
	if err != nil {
		return err
	}

	if err := createDefaultData(db); err != nil {
		log.Printf("Warning: Failed to create default data: %v", err)
	}

	log.Println("Database migrations completed successfully!")
	return nil
}

// createDefaultData seeds the manager account used to authorize
// cross-status item moves.
func createDefaultData(db *gorm.DB) error {
	userRepo := repository.NewUserRepository(db)
	userService := services.NewUserService(userRepo)

	existing, err := userService.GetUserByUsername("manager")
	if err == nil && existing != nil {
		log.Println("Manager user already exists")
		return nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	log.Println("Creating default manager user...")
	manager := &models.User{
		Username: "manager",
		Role:     models.Manager,
		IsActive: true,
	}
	if err := userService.CreateUser(manager, "0000"); err != nil {
		return err
	}
	log.Println("Manager user created; change the default PIN")
	return nil
}
