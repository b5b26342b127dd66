package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrator handles DB schema migrations using golang-migrate.
type Migrator struct {
	dsn string
	dir string
}

func NewMigrator(dsn, dir string) (*Migrator, error) {
	if dsn == "" {
		return nil, fmt.Errorf("missing DSN")
	}
	if dir == "" {
		dir = filepath.Join("db", "migrations")
	}
	return &Migrator{dsn: dsn, dir: dir}, nil
}

func (m *Migrator) sourceURL() (string, error) {
	p, err := filepath.Abs(m.dir)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(p)}
	return u.String(), nil
}

// Up applies every pending migration. ErrNoChange means the schema was current.
func (m *Migrator) Up(ctx context.Context) error {
	return m.run(ctx, func(mig *migrate.Migrate) error { return mig.Up() })
}

// Down rolls back the most recent migration.
func (m *Migrator) Down(ctx context.Context) error {
	return m.run(ctx, func(mig *migrate.Migrate) error { return mig.Steps(-1) })
}

func (m *Migrator) run(ctx context.Context, fn func(*migrate.Migrate) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := m.sourceURL()
	if err != nil {
		return err
	}
	mig, err := migrate.New(src, m.dsn)
	if err != nil {
		return wrap(err, "open migrations")
	}
	defer mig.Close()

	done := make(chan error, 1)
	go func() { done <- fn(mig) }()
	select {
	case err = <-done:
	case <-ctx.Done():
		mig.GracefulStop <- true
		err = <-done
	}
	if stderrors.Is(err, migrate.ErrNoChange) {
		return ErrNoChange
	}
	return err
}
