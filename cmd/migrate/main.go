// Command migrate runs schema operations for the job board database.
package main

import (
	"flag"
	"fmt"
	"log"

	"jobboard/internal/config"
	"jobboard/internal/database"

	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return fmt.Errorf("usage: go run ./cmd/migrate <auto|status>")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}

	switch flag.Arg(0) {
	case "auto":
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Println("Schema is up to date")
		return nil
	case "status":
		return status(db)
	default:
		return fmt.Errorf("unknown command %q", flag.Arg(0))
	}
}

func status(db *gorm.DB) error {
	stmt := &gorm.Statement{DB: db}
	for _, m := range database.PersistentModels() {
		if err := stmt.Parse(m); err != nil {
			return err
		}
		state := "missing"
		if db.Migrator().HasTable(m) {
			state = "present"
		}
		fmt.Printf("%-16s %s\n", stmt.Schema.Table, state)
	}
	return nil
}
