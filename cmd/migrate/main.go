// Command migrate manages the slidecast PostgreSQL schema outside of
// server startup, for deployments where the database user running the
// service has no DDL rights.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"slidecast-go/internal/migrations"

	_ "github.com/lib/pq"
)

func main() {
	dsn := flag.String("dsn", os.Getenv("SLIDECAST_POSTGRES_DSN"), "PostgreSQL connection string")
	action := flag.String("action", "up", "migration action: up, down, or version")
	steps := flag.Int("steps", 1, "steps to roll back when action=down")
	flag.Parse()

	if *dsn == "" {
		fmt.Fprintln(os.Stderr, "missing required flag: -dsn")
		os.Exit(2)
	}

	db, err := sql.Open("postgres", *dsn)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	switch *action {
	case "up":
		if err := migrations.PostgresUp(db); err != nil {
			log.Fatalf("migrate up: %v", err)
		}
		log.Info("migrations applied")
	case "down":
		if err := migrations.PostgresDown(db, *steps); err != nil {
			log.Fatalf("migrate down: %v", err)
		}
		log.Infof("rolled back %d step(s)", *steps)
	case "version":
		version, dirty, err := migrations.PostgresVersion(db)
		if err != nil {
			log.Fatalf("read version: %v", err)
		}
		state := "clean"
		if dirty {
			state = "dirty"
		}
		log.Infof("schema version %d (%s)", version, state)
	default:
		fmt.Fprintf(os.Stderr, "unknown action %q (expected up, down, version)\n", *action)
		os.Exit(2)
	}
}
