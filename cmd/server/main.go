package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"procurement_tracker/internal/config"
	"procurement_tracker/internal/database"
	"procurement_tracker/internal/handlers"
	"procurement_tracker/internal/migrations"
	"procurement_tracker/internal/repository"
	"procurement_tracker/internal/services"
	"procurement_tracker/internal/snapshot"
	"procurement_tracker/internal/state"
	"procurement_tracker/pkg/whatsapp"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Local snapshot storage comes first: the application must be able
	// to boot from its last snapshot with no connectivity at all.
	snapStore, err := snapshot.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to snapshot storage:", err)
	}
	defer snapStore.Close()

	stateStore := state.NewStore(snapStore)
	if err := stateStore.Hydrate(context.Background()); err != nil {
		log.Fatal("Failed to hydrate state:", err)
	}

	// Remote datastore (system of record). An unreachable remote is not
	// fatal: the application keeps working from the hydrated snapshot
	// and the next sync reconciles.
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to open database handle:", err)
	}
	if err := migrations.RunMigrations(db); err != nil {
		log.Printf("Warning: database migration failed, continuing from local snapshot: %v", err)
	}

	// Initialize WhatsApp client
	whatsappClient := whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppUsername, cfg.WhatsAppPassword, cfg.WhatsAppPath)

	// Initialize repositories
	remote := repository.NewRemote(db)
	orderRepo := repository.NewOrderRepository(db)
	itemRepo := repository.NewItemRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize services
	notifier := services.NewNotificationService(whatsappClient, cfg.ReportChannel)
	inventoryService := services.NewInventoryService(stateStore, itemRepo)
	mutationService := services.NewMutationService(stateStore, orderRepo, inventoryService, notifier)
	syncService := services.NewSyncService(stateStore, remote, notifier)
	userService := services.NewUserService(userRepo)

	if cfg.SyncOnBoot {
		go func() {
			if err := syncService.Sync(context.Background()); err != nil {
				log.Printf("Warning: boot sync failed: %v", err)
			}
		}()
	}

	// Initialize handlers
	apiHandler := handlers.NewAPIHandler(stateStore, mutationService, syncService, userService)

	// Setup routes
	router := gin.Default()

	api := router.Group("/api")
	{
		api.GET("/state", apiHandler.GetState)

		api.POST("/orders", apiHandler.CreateOrder)
		api.DELETE("/orders/:id", apiHandler.DeleteOrder)
		api.POST("/orders/:id/status", apiHandler.SetStatus)
		api.POST("/orders/:id/spoil", apiHandler.SpoilItem)
		api.POST("/orders/:id/unspoil", apiHandler.UnspoilItem)
		api.POST("/orders/:id/acknowledge", apiHandler.AcknowledgeOrder)
		api.POST("/orders/:id/invoice", apiHandler.SetInvoiceAmount)
		api.PUT("/orders/:id/items", apiHandler.UpsertOrderItem)
		api.DELETE("/orders/:id/items", apiHandler.RemoveOrderItem)
		api.POST("/orders/move-item", apiHandler.MoveItem)
		api.POST("/orders/merge", apiHandler.MergeOrders)

		api.POST("/drag", apiHandler.StartDrag)
		api.DELETE("/drag", apiHandler.EndDrag)

		api.POST("/sync", apiHandler.TriggerSync)
		api.GET("/sync/status", apiHandler.SyncStatus)

		api.GET("/settings", apiHandler.GetSettings)
		api.PUT("/settings", apiHandler.UpdateSettings)
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
