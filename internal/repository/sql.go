package repository

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/darkodi/shortstore/internal/config"
	apperr "github.com/darkodi/shortstore/internal/errors"
	"github.com/darkodi/shortstore/internal/logger"
	"github.com/darkodi/shortstore/internal/model"
)

const createTable = `
        CREATE TABLE IF NOT EXISTS url_mappings (
            position   BIGINT PRIMARY KEY,
            code       TEXT UNIQUE NOT NULL,
            long_url   TEXT NOT NULL,
            id         BIGINT NOT NULL,
            created_at TEXT NOT NULL
        )
    `

// SQLBackend mirrors the table into a url_mappings table; position keeps
// insertion order and created_at is stored in the file layout so both
// drivers round-trip it identically.
type SQLBackend struct {
	db     *sql.DB
	driver string
	log    *logger.Logger
}

// NewSQLBackend opens driver ("sqlite" or "postgres") at dsn and creates
// the table if it does not exist.
func NewSQLBackend(driver, dsn string, log *logger.Logger) (*SQLBackend, error) {
	if log == nil {
		log = logger.Discard()
	}

	var driverName string
	switch driver {
	case config.DriverSQLite:
		driverName = "sqlite3"
	case config.DriverPostgres:
		driverName = "postgres"
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, apperr.StorageFailure("open "+driver, err)
	}
	if driver == config.DriverSQLite {
		// one writer; also keeps ":memory:" on a single database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, apperr.StorageFailure("connect "+driver, err)
	}

	// Create table if not exists
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, apperr.StorageFailure("create table", err)
	}

	return &SQLBackend{db: db, driver: driver, log: log}, nil
}

func (b *SQLBackend) Name() string { return b.driver }

func (b *SQLBackend) Load() ([]model.URL, error) {
	rows, err := b.db.Query(
		"SELECT code, long_url, id, created_at FROM url_mappings ORDER BY position",
	)
	if err != nil {
		return nil, apperr.StorageFailure("select mappings", err)
	}
	defer rows.Close()

	warn := warnSkipped(b.log, b.driver)
	var urls []model.URL
	position := 0
	for rows.Next() {
		position++
		var (
			code, longURL, created string
			id                     int64
		)
		if err := rows.Scan(&code, &longURL, &id, &created); err != nil {
			return nil, apperr.StorageFailure("scan mapping", err)
		}

		u, rowErr := parseRecord([]string{code, longURL, strconv.FormatInt(id, 10), created})
		if rowErr != nil {
			rowErr.Line = position
			warn(rowErr)
			continue
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StorageFailure("iterate mappings", err)
	}

	return urls, nil
}

// Save replaces the table contents inside one transaction.
func (b *SQLBackend) Save(urls []model.URL) error {
	for _, u := range urls {
		if u.ID > math.MaxInt64 {
			return apperr.StorageFailure("insert "+u.ShortCode, fmt.Errorf("id %d does not fit a BIGINT column", u.ID))
		}
	}

	tx, err := b.db.Begin()
	if err != nil {
		return apperr.StorageFailure("begin", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM url_mappings"); err != nil {
		return apperr.StorageFailure("clear mappings", err)
	}

	stmt, err := tx.Prepare(b.insertQuery())
	if err != nil {
		return apperr.StorageFailure("prepare insert", err)
	}
	defer stmt.Close()

	for i, u := range urls {
		if _, err := stmt.Exec(i+1, u.ShortCode, u.OriginalURL, int64(u.ID), u.Timestamp()); err != nil {
			return apperr.StorageFailure("insert "+u.ShortCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.StorageFailure("commit", err)
	}
	return nil
}

func (b *SQLBackend) Close() error {
	return b.db.Close()
}

func (b *SQLBackend) insertQuery() string {
	if b.driver == config.DriverPostgres {
		return "INSERT INTO url_mappings (position, code, long_url, id, created_at) VALUES ($1, $2, $3, $4, $5)"
	}
	return "INSERT INTO url_mappings (position, code, long_url, id, created_at) VALUES (?, ?, ?, ?, ?)"
}
