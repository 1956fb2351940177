// Package store manages the Postgres connection pool, schema migration and
// shared error classification for the pg-backed repositories.
package store

import (
	"context"
	_ "embed"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// Connect opens a pgx pool and verifies connectivity.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Migrate applies the embedded schema. Statements are idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return err
}

const uniqueViolationCode = "23505"

// UniqueViolation reports whether err is a Postgres unique-constraint
// violation. The constraint, not application logic, is the arbiter for
// duplicate-creation races.
func UniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// Timeout reports whether err is a store call that exceeded its deadline.
func Timeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
