// Command createschema provisions the Postgres schema: the vector
// index plus application tables, via index.EnsureSchema and
// repository.EnsureSchema.
package main

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"legalresearch-engine/chat"
	"legalresearch-engine/config"
	"legalresearch-engine/index"
	"legalresearch-engine/repository"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("Failed to connect to Postgres:", err)
	}
	defer db.Close()

	if err := index.EnsureSchema(ctx, db); err != nil {
		log.Fatal("Failed to create vector index schema:", err)
	}
	log.Println("Vector index schema ready")

	if err := repository.EnsureSchema(ctx, db); err != nil {
		log.Fatal("Failed to create application schema:", err)
	}
	log.Println("Application schema ready")

	if cfg.ChatStorage == "remote" {
		if err := chat.EnsureSchema(ctx, db); err != nil {
			log.Fatal("Failed to create chat schema:", err)
		}
		log.Println("Chat schema ready")
	}
}
