package main

import (
	"database/sql"
	"embed"
	"flag"
	"fmt"
	"log"

	"premier-open-group/pkg/config"
	"premier-open-group/pkg/database"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func main() {
	var (
		dir     = flag.String("dir", "cmd/migrate/migrations", "directory new migrations are created in")
		command = flag.String("command", "up", "migration command (up, down, status, version, create)")
		name    = flag.String("name", "", "name for new migration (used with create command)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// create writes to disk; everything else runs the embedded files.
	if *command == "create" {
		if *name == "" {
			log.Fatal("Name is required for create command")
		}
		if err := goose.Create(nil, *dir, *name, "sql"); err != nil {
			log.Fatalf("Failed to create migration: %v", err)
		}
		fmt.Printf("Created migration: %s\n", *name)
		return
	}

	db, err := sql.Open("postgres", database.DSN(cfg))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := run(db, *command); err != nil {
		log.Fatal(err)
	}
}

func run(db *sql.DB, command string) error {
	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	switch command {
	case "up":
		if err := goose.Up(db, "migrations"); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		fmt.Println("Migrations applied successfully")
	case "down":
		if err := goose.Down(db, "migrations"); err != nil {
			return fmt.Errorf("failed to rollback migrations: %w", err)
		}
		fmt.Println("Migrations rolled back successfully")
	case "status":
		if err := goose.Status(db, "migrations"); err != nil {
			return fmt.Errorf("failed to get migration status: %w", err)
		}
	case "version":
		if err := goose.Version(db, "migrations"); err != nil {
			return fmt.Errorf("failed to get migration version: %w", err)
		}
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
	return nil
}
