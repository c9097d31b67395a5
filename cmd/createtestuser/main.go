// Command createtestuser seeds a single test user, adapted from the
// teacher's cmd/create-test-user.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"legalresearch-engine/config"
	"legalresearch-engine/models"
	"legalresearch-engine/repository"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	users := repository.NewUserRepository(pool)

	email := "test@example.com"
	password := "testpassword123"
	name := "Test User"

	if existing, err := users.GetByEmail(ctx, email); err == nil {
		log.Printf("User with email %s already exists (ID: %s)", email, existing.ID)
		return
	} else if !errors.Is(err, pgx.ErrNoRows) {
		log.Fatalf("Failed to check for existing user: %v", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         name,
	}
	if err := users.Create(ctx, user); err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Printf("Test user created successfully!\n")
	fmt.Printf("  ID: %s\n", user.ID)
	fmt.Printf("  Email: %s\n", email)
	fmt.Printf("  Password: %s\n", password)
	fmt.Printf("  Name: %s\n", name)
}
