// Command seed prepares a fresh database: it creates (or resets) the
// admin account from ADMIN_USERNAME/ADMIN_PASSWORD and, when a JSON
// file is given, replaces the student collection with its contents.
//
//	seed [studentsData.json]
//
// Registration can never mint an admin, so this command is the only
// way to obtain one.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/jwilber99/calbright-portal-backend-seperated/internal/config"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/database"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/model"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/repository"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/utils"
)

type studentDoc struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Address   struct {
		City  string `json:"city"`
		State string `json:"state"`
	} `json:"address"`
	EyeColor string `json:"eyeColor"`
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("database: %v", err)
	}

	if pass := os.Getenv("ADMIN_PASSWORD"); pass != "" {
		username := os.Getenv("ADMIN_USERNAME")
		if username == "" {
			username = "admin"
		}
		hash, err := utils.HashPassword(pass, cfg.BcryptCost)
		if err != nil {
			log.Fatalf("hash admin password: %v", err)
		}
		if err := repository.NewUserRepo(db).EnsureAdmin(ctx, username, hash); err != nil {
			log.Fatalf("ensure admin: %v", err)
		}
		log.Printf("admin account %q ready", username)
	}

	if len(os.Args) < 2 {
		return
	}
	path := os.Args[1]

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	var docs []studentDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		log.Fatalf("parse %s: %v", path, err)
	}

	students := repository.NewStudentRepo(db)
	if err := students.DeleteAll(ctx); err != nil {
		log.Fatalf("clear students: %v", err)
	}
	for _, d := range docs {
		s := model.Student{
			FirstName: d.FirstName,
			LastName:  d.LastName,
			Email:     d.Email,
			Address:   model.Address{City: d.Address.City, State: d.Address.State},
			EyeColor:  d.EyeColor,
		}
		if err := students.Create(ctx, &s); err != nil {
			log.Fatalf("insert student %q: %v", d.FirstName, err)
		}
	}
	log.Printf("seeded %d students from %s", len(docs), path)
}
