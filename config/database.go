package config

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSNString builds a driver specific connection string unless one was given explicitly.
func (d DatabaseConfig) DSNString() (string, error) {
	if d.DSN != "" {
		return d.DSN, nil
	}

	switch d.Driver {
	case "mysql":
		port := d.Port
		if port == 0 {
			port = 3306
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.User, d.Password, d.Host, port, d.Name), nil
	case "postgres":
		port := d.Port
		if port == 0 {
			port = 5432
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			d.Host, port, d.User, d.Password, d.Name), nil
	case "sqlite":
		return d.Name + ".db", nil
	}
	return "", fmt.Errorf("unsupported DB_DRIVER %q", d.Driver)
}

func (d DatabaseConfig) dialector() (gorm.Dialector, error) {
	dsn, err := d.DSNString()
	if err != nil {
		return nil, err
	}

	switch d.Driver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	default:
		return sqlite.Open(dsn), nil
	}
}

// InitDB opens the configured database. Duplicate-key errors are translated to
// gorm.ErrDuplicatedKey so callers can detect unique index violations portably.
func InitDB(d DatabaseConfig) (*gorm.DB, error) {
	dialector, err := d.dialector()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Driver, err)
	}

	// SQLite allows a single writer; serialize through one connection.
	if d.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}
