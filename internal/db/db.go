package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			full_name TEXT NOT NULL,
			bio TEXT NOT NULL DEFAULT '',
			native_language TEXT NOT NULL DEFAULT '',
			learning_language TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			profile_pic TEXT NOT NULL DEFAULT '',
			is_onboarded BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
		`CREATE TABLE IF NOT EXISTS friend_requests (
			id SERIAL PRIMARY KEY,
			sender_id INT NOT NULL REFERENCES users(id),
			recipient_id INT NOT NULL REFERENCES users(id),
			status TEXT NOT NULL CHECK (status IN ('pending','accepted')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			accepted_at TIMESTAMPTZ,
			CHECK (sender_id <> recipient_id)
			)`,
		// One outstanding request per unordered pair, either direction.
		`CREATE UNIQUE INDEX IF NOT EXISTS friend_requests_pending_pair
			ON friend_requests (LEAST(sender_id, recipient_id), GREATEST(sender_id, recipient_id))
			WHERE status = 'pending'`,
		`CREATE TABLE IF NOT EXISTS friendships (
			id SERIAL PRIMARY KEY,
			user_id INT NOT NULL REFERENCES users(id),
			friend_id INT NOT NULL REFERENCES users(id),
			UNIQUE (user_id, friend_id)
			)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}
