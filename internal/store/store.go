package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/DaanHessen/jwtviz/internal/narration"
)

var ErrNoChange = stderrors.New("no change")

// DB wraps gorm.DB for repositories and exposes Close.
type DB struct {
	gorm *gorm.DB
	sql  *sql.DB
}

func (d *DB) Close() error { return d.sql.Close() }
func (d *DB) Gorm() *gorm.DB { return d.gorm }

// Open connects to Postgres.
func Open(ctx context.Context, dsn string) (*DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("missing DSN")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, wrap(err, "open postgres")
	}
	return FromGorm(ctx, gdb)
}

// FromGorm wraps an already opened gorm handle and checks it is reachable.
func FromGorm(ctx context.Context, gdb *gorm.DB) (*DB, error) {
	sdb, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sdb.SetConnMaxLifetime(30 * time.Minute)
	sdb.SetMaxOpenConns(10)
	sdb.SetMaxIdleConns(5)
	if err := sdb.PingContext(ctx); err != nil {
		return nil, wrap(err, "ping postgres")
	}
	return &DB{gorm: gdb, sql: sdb}, nil
}

// NarrationRecord is one row of the narrations table.
type NarrationRecord struct {
	Step      int    `gorm:"primaryKey;autoIncrement:false"`
	Text      string `gorm:"not null"`
	UpdatedAt time.Time
}

func (NarrationRecord) TableName() string { return "narrations" }

// NarrationRepo serves narration text from Postgres. It satisfies narration.Source.
type NarrationRepo struct{ db *DB }

func NewNarrationRepo(db *DB) *NarrationRepo { return &NarrationRepo{db: db} }

func (r *NarrationRepo) Narration(ctx context.Context, step int) (string, error) {
	var rec NarrationRecord
	err := r.db.gorm.WithContext(ctx).Where("step = ?", step).First(&rec).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return "", narration.ErrStepNotFound
	}
	if err != nil {
		return "", wrap(err, fmt.Sprintf("load narration %d", step))
	}
	return rec.Text, nil
}

// Upsert replaces the text for a step.
func (r *NarrationRepo) Upsert(ctx context.Context, step int, text string) error {
	return wrap(r.db.gorm.WithContext(ctx).Exec(`INSERT INTO narrations(step, text, updated_at) VALUES (?,?,now())
	ON CONFLICT (step) DO UPDATE SET text=EXCLUDED.text, updated_at=now()`, step, text).Error, "upsert narration")
}

// List returns every stored narration ordered by step.
func (r *NarrationRepo) List(ctx context.Context) ([]NarrationRecord, error) {
	var out []NarrationRecord
	if err := r.db.gorm.WithContext(ctx).Order("step").Find(&out).Error; err != nil {
		return nil, wrap(err, "list narrations")
	}
	return out, nil
}

// Helper error wrap
func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}
