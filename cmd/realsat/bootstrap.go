package main

import (
	"context"
	"database/sql"
	"log"

	"github.com/google/uuid"
)

// bootstrapAdminUser inserts the configured admin login when the users
// table is empty, so a fresh deployment is reachable. No-op once any user
// exists or when no hash is configured.
func bootstrapAdminUser(ctx context.Context, dbh *sql.DB, username, passHash string) error {
	if passHash == "" {
		return nil
	}
	var n int
	if err := dbh.QueryRowContext(ctx, `SELECT COUNT(1) FROM users`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := dbh.ExecContext(ctx,
		`INSERT INTO users (id, username, pass_hash, role) VALUES ($1,$2,$3,'admin')`,
		uuid.NewString(), username, passHash)
	if err == nil {
		log.Printf("bootstrapped admin user %q", username)
	}
	return err
}
