package db

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/VictorEyeEagle/cadweb/internal/config"
	"github.com/VictorEyeEagle/cadweb/internal/models"
)

// Models in dependency order; AutoMigrate creates FKs against earlier tables.
func allModels() []interface{} {
	return []interface{}{
		&models.Category{}, &models.Client{}, &models.Product{}, &models.Stock{},
		&models.Order{}, &models.OrderItem{}, &models.Payment{},
	}
}

func Connect(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is empty, check the environment configuration")
	}
	logLevel := logger.Silent
	if config.ParseBool("DB_DEBUG", false) {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	if IsSQLiteDSN(dsn) {
		db, err := gorm.Open(sqlite.Open(NormalizeDSN(dsn)), cfg)
		if err != nil {
			return nil, err
		}
		// sqlite does not enforce FK cascades unless asked
		db.Exec("PRAGMA foreign_keys = ON")
		return db, nil
	}

	var db *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		log.Println("Retrying DB connection...", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	return db, nil
}

// ConnectAndMigrate opens the database and brings the schema up to date.
// MIGRATIONS=1 runs the SQL migrations in ./migrations via golang-migrate
// (postgres only); otherwise AutoMigrate is used as the dev convenience path.
func ConnectAndMigrate() (*gorm.DB, error) {
	dsn := GetNormalizedDSN()
	db, err := Connect(dsn)
	if err != nil {
		return nil, err
	}

	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	masked := dsn
	if strings.Contains(masked, "password=") {
		re := regexp.MustCompile(`(password=)([^\s]+)`)
		masked = re.ReplaceAllString(masked, `${1}***`)
	}
	log.Println("[DB] Using DSN:", masked)

	if config.ParseBool("MIGRATIONS", false) {
		if IsSQLiteDSN(dsn) {
			return nil, errors.New("sql migrations require a postgres DSN")
		}
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range allModels() {
			if migErr := db.AutoMigrate(m); migErr != nil {
				return nil, fmt.Errorf("automigrate %T: %w", m, migErr)
			}
		}
	}

	// sanity check: ensure required core tables exist
	for _, table := range []string{"categories", "products", "orders", "payments"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}

	if config.ParseBool("DB_SEED", false) {
		Seed(db)
	}
	return db, nil
}

// runSQLMigrations executes migrations in ./migrations using golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
