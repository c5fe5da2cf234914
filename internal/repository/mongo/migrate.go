package mongo

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

// MigrationURL points the migrate mongodb driver at database on the server in uri
func MigrationURL(uri, database string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("failed to parse mongo uri: %w", err)
	}
	u.Path = "/" + database
	return u.String(), nil
}

// RunMigrations applies index migrations from sourceURL
func RunMigrations(uri, database, sourceURL string) error {
	dsn, err := MigrationURL(uri, database)
	if err != nil {
		return err
	}

	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("database migration: no changes")
			return nil
		}
		return fmt.Errorf("failed to run migrate up: %w", err)
	}

	log.Info().Msg("database migration: success")
	return nil
}

// RollbackMigrations reverts the given number of migrations
func RollbackMigrations(uri, database, sourceURL string, steps int) error {
	dsn, err := MigrationURL(uri, database)
	if err != nil {
		return err
	}

	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrate down: %w", err)
	}
	return nil
}
