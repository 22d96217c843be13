// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package pkgtrack follows Python package releases: it keeps the
// package list and version history in a database, feeds it from the
// PyPI JSON API and shows it through an Excel workbook front-end.
package pkgtrack

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	// database/sql drivers: SQLite for the file-next-to-the-workbook
	// default, pgx for postgres:// DSNs.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// ErrPackageExists is returned by AddPackage for an already tracked name.
var ErrPackageExists = errors.New("package already exists")

// Package is a row of the packages table.
type Package struct {
	ID   int64  `db:"package_id"`
	Name string `db:"package_name"`
}

// Version is a row of the package_versions table.
type Version struct {
	PackageID  int64     `db:"package_id"`
	Version    string    `db:"version_string"`
	UploadedAt time.Time `db:"uploaded_at"`
}

// Store is the package database.
type Store struct {
	db *sqlx.DB
}

// OpenStore connects to the database behind dsn. A postgres:// or
// postgresql:// DSN selects the pgx driver, anything else is treated
// as an SQLite file path. SQLite gets foreign key enforcement switched
// on, which it keeps off by default.
func OpenStore(ctx context.Context, dsn string) (*Store, error) {
	driver := "sqlite3"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "pgx"
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", dsn, err)
	}
	if driver == "sqlite3" {
		// One connection, so the PRAGMA holds for everything we do.
		db.SetMaxOpenConns(1)
		if _, err = db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("PRAGMA foreign_keys: %w", err)
		}
	}
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %q: %w", dsn, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	db := s.db
	s.db = nil
	return db.Close()
}

// Init creates the schema. It is safe to call on an already
// initialized database.
func (s *Store) Init(ctx context.Context) error {
	idCol := "package_id INTEGER PRIMARY KEY"
	if s.db.DriverName() == "pgx" {
		idCol = "package_id INTEGER PRIMARY KEY GENERATED BY DEFAULT AS IDENTITY"
	}
	for _, qry := range []string{
		`CREATE TABLE IF NOT EXISTS packages (
	` + idCol + `,
	package_name TEXT NOT NULL,
	UNIQUE(package_name)
)`,
		`CREATE TABLE IF NOT EXISTS package_versions (
	package_id INTEGER,
	version_string TEXT,
	uploaded_at TIMESTAMP NOT NULL,
	PRIMARY KEY (package_id, version_string),
	FOREIGN KEY (package_id) REFERENCES packages (package_id)
)`,
	} {
		if _, err := s.db.ExecContext(ctx, qry); err != nil {
			return fmt.Errorf("%s: %w", qry, err)
		}
	}
	return nil
}

// Packages returns all tracked packages, oldest first.
func (s *Store) Packages(ctx context.Context) ([]Package, error) {
	var pkgs []Package
	err := s.db.SelectContext(ctx, &pkgs,
		"SELECT package_id, package_name FROM packages ORDER BY package_id")
	if err != nil {
		return nil, fmt.Errorf("select packages: %w", err)
	}
	return pkgs, nil
}

// AddPackage inserts a new package name, returning ErrPackageExists if
// it is already tracked.
func (s *Store) AddPackage(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx,
		s.db.Rebind("INSERT INTO packages (package_name) VALUES (?)"), name)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%q: %w", name, ErrPackageExists)
		}
		return fmt.Errorf("insert %q: %w", name, err)
	}
	return nil
}

// Versions returns the stored version history of the named package,
// ordered by upload time.
func (s *Store) Versions(ctx context.Context, packageName string) ([]Version, error) {
	var versions []Version
	err := s.db.SelectContext(ctx, &versions, s.db.Rebind(`SELECT v.package_id, v.version_string, v.uploaded_at
	FROM packages p
	INNER JOIN package_versions v ON p.package_id = v.package_id
	WHERE p.package_name = ?
	ORDER BY v.uploaded_at`),
		packageName)
	if err != nil {
		return nil, fmt.Errorf("select versions of %q: %w", packageName, err)
	}
	return versions, nil
}

// StoreVersions bulk inserts version rows in one transaction.
func (s *Store) StoreVersions(ctx context.Context, versions []Version) error {
	if len(versions) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.PreparexContext(ctx, s.db.Rebind(
		"INSERT INTO package_versions (package_id, version_string, uploaded_at) VALUES (?, ?, ?)"))
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, v := range versions {
		if _, err = stmt.ExecContext(ctx, v.PackageID, v.Version, v.UploadedAt); err != nil {
			return fmt.Errorf("insert %d/%q: %w", v.PackageID, v.Version, err)
		}
	}
	return tx.Commit()
}

// DeleteVersions empties the package_versions table.
func (s *Store) DeleteVersions(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM package_versions"); err != nil {
		return fmt.Errorf("delete versions: %w", err)
	}
	return nil
}

// isUniqueViolation sniffs the driver-specific unique constraint errors
// (sqlite3 and pgx word them differently).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "UNIQUE constraint") ||
		strings.Contains(s, "SQLSTATE 23505") ||
		strings.Contains(s, "duplicate key")
}
