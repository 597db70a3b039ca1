// Package main provides admin account utilities for the job board.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"jobboard/internal/bootstrap"
	"jobboard/internal/config"
	"jobboard/internal/database"
	"jobboard/internal/models"

	"gorm.io/gorm"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin create <email> <password> [name]  - Create or promote an admin")
	fmt.Println("  go run ./cmd/admin demote <user_id>                  - Demote an admin to applicant")
	fmt.Println("  go run ./cmd/admin list-admins                       - List all admins")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	switch os.Args[1] {
	case "create":
		if len(os.Args) < 4 {
			usage()
		}
		name := ""
		if len(os.Args) > 4 {
			name = os.Args[4]
		}
		createAdmin(db, os.Args[2], os.Args[3], name)
	case "demote":
		if len(os.Args) < 3 {
			usage()
		}
		demoteAdmin(db, os.Args[2])
	case "list-admins":
		listAdmins(db)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func createAdmin(db *gorm.DB, email, password, name string) {
	created, err := bootstrap.EnsureAdmin(context.Background(), db, bootstrap.AdminAccount{
		Email:    email,
		Password: password,
		Name:     name,
	})
	if err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}
	if created {
		fmt.Printf("Created admin %s\n", email)
		return
	}
	fmt.Printf("%s is an admin\n", email)
}

func demoteAdmin(db *gorm.DB, rawID string) {
	id, err := strconv.ParseUint(rawID, 10, 32)
	if err != nil {
		fmt.Printf("Invalid user ID %q\n", rawID)
		os.Exit(1)
	}

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User with ID %d not found\n", id)
			os.Exit(1)
		}
		log.Fatalf("Database error: %v", err)
	}
	if user.Role != models.RoleAdmin {
		fmt.Printf("User %s (ID: %d) is not an admin\n", user.Email, user.ID)
		return
	}

	if err := db.Model(&user).Update("role", models.RoleApplicant).Error; err != nil {
		log.Fatalf("Failed to demote user: %v", err)
	}
	fmt.Printf("Demoted %s (ID: %d) to applicant\n", user.Email, user.ID)
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("role = ?", models.RoleAdmin).Order("id").Find(&admins).Error; err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}
	if len(admins) == 0 {
		fmt.Println("No admins found")
		return
	}
	for _, a := range admins {
		status := "active"
		if !a.IsActive {
			status = "inactive"
		}
		fmt.Printf("%d\t%s\t%s\t%s\n", a.ID, a.Email, a.Name, status)
	}
}
