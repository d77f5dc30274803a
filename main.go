package main

import (
	"context"
	"log"
	"os"

	"lebs_backend/app"
	"lebs_backend/config"
	"lebs_backend/db"
	"lebs_backend/routes"
)

func main() {
	config.LoadEnv()

	application := app.MustNew()
	defer application.Close()

	repo := db.NewRepo(application.DB)
	app.BootstrapFirstAdmin(context.Background(), application.Config, repo)
	if application.Config.SeedInventory {
		if err := db.SeedInventory(context.Background(), application.DB); err != nil {
			log.Printf("seed inventory: %v", err)
		}
	}

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	routes.RegisterRoutes(r, application)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	log.Printf("listening on :%s", port)
	_ = r.Run(":" + port)
}
