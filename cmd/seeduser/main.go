// Command seeduser creates an initial user account.
// Usage: go run ./cmd/seeduser -email admin@example.com -password secret123 -role admin
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"ims/internal/config"
	"ims/internal/domain"
	"ims/internal/repository/postgres"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	email := flag.String("email", "", "user email (required)")
	password := flag.String("password", "", "user password (required, min 8 chars)")
	name := flag.String("name", "Administrator", "full name")
	role := flag.String("role", string(domain.RoleAdmin), "role: admin, accounts or viewer")
	flag.Parse()

	if *email == "" || *password == "" {
		flag.Usage()
		return fmt.Errorf("email and password are required")
	}
	if len(*password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	switch domain.UserRole(*role) {
	case domain.RoleAdmin, domain.RoleAccounts, domain.RoleViewer:
	default:
		return fmt.Errorf("unknown role %q", *role)
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		Email:        *email,
		PasswordHash: string(hash),
		FullName:     *name,
		Role:         domain.UserRole(*role),
		IsActive:     true,
	}

	userRepo := postgres.NewUserRepo(db)
	if err := userRepo.Create(context.Background(), user); err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	log.Printf("created %s user %s (%s)", user.Role, user.Email, user.ID)
	return nil
}
