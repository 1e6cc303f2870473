package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"slowteabar/m/internal/api"
	"slowteabar/m/internal/config"
	"slowteabar/m/internal/database"
	"slowteabar/m/internal/migrations"
	"slowteabar/m/internal/seed"
	"slowteabar/m/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		log.Fatalf("migrations: %v", err)
	}
	if err := seed.Beverages(db); err != nil {
		log.Printf("seed: %v", err)
	}

	var store session.Store = session.NewMemoryStore()
	if cfg.RedisAddr != "" {
		store = session.NewRedisStore(session.NewRedisClient(cfg.RedisAddr))
		log.Printf("session carts stored in redis at %s", cfg.RedisAddr)
	}
	carts := session.NewManager(store)

	handler := api.New(db, carts, cfg.Secret, cfg.AdminPassword)

	log.Printf("slowteabar POS server starting on :%s", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
