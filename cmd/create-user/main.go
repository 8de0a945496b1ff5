package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/veritest/veritest-backend/internal/config"
	"github.com/veritest/veritest-backend/internal/database"
	"github.com/veritest/veritest-backend/internal/logger"
	"github.com/veritest/veritest-backend/internal/model"
	"github.com/veritest/veritest-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New User ===")

	// Name
	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	// Email
	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	// Password
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// Role
	fmt.Print("Enter Role (ADMIN/TEACHER/STUDENT, default STUDENT): ")
	roleStr, _ := reader.ReadString('\n')
	roleStr = strings.ToUpper(strings.TrimSpace(roleStr))
	if roleStr == "" {
		roleStr = string(model.RoleStudent)
	}
	role := model.Role(roleStr)
	if !role.Valid() {
		fmt.Println("Error: Role must be ADMIN, TEACHER or STUDENT")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────

	// Hash Password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	newUser := &model.User{
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: string(hashedPassword),
	}

	if err := userRepo.Create(ctx, newUser); err != nil {
		log.Fatal().Err(err).Msg("Failed to create user")
	}

	fmt.Printf("\nSuccess! User '%s' (%s) created with ID: %d\n", newUser.Name, newUser.Email, newUser.ID)
}
